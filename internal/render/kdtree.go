package render

import "math"

// kdNode indexes marker positions in base (untransformed) surface space.
// Axes alternate x, y; only the single nearest marker is queried.
type kdNode struct {
	i  int // index into the marker slice
	x  float64
	y  float64
	ax int
	l  *kdNode
	r  *kdNode
}

type kdPoint struct {
	i    int
	x, y float64
}

func buildKD(ps []kdPoint, depth int) *kdNode {
	if len(ps) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(ps) / 2
	selectNth(ps, mid, ax)
	node := &kdNode{i: ps[mid].i, x: ps[mid].x, y: ps[mid].y, ax: ax}
	node.l = buildKD(ps[:mid], depth+1)
	node.r = buildKD(ps[mid+1:], depth+1)
	return node
}

// selectNth partially orders ps in place so ps[n] is the median on ax.
func selectNth(a []kdPoint, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []kdPoint, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if lessPoint(a[j], pv, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func lessPoint(p, q kdPoint, ax int) bool {
	if ax == 0 {
		return p.x < q.x
	}
	return p.y < q.y
}

// nearest returns the closest marker index within maxD, or -1.
func nearest(node *kdNode, x, y, maxD float64) int {
	best := -1
	bestD := maxD
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := math.Hypot(n.x-x, n.y-y); d <= bestD {
			bestD, best = d, n.i
		}
		key, q := x, n.x
		if n.ax == 1 {
			key, q = y, n.y
		}
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		if math.Abs(key-q) <= bestD {
			dfs(second)
		}
	}
	dfs(node)
	return best
}
