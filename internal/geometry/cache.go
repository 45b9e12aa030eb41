package geometry

import (
	"container/list"
	"sync"
	"time"
)

// LRU keeps decoded collections in memory, keyed by resource object name.
// Constraint: values are shared read-only; callers must not mutate them.
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type kv struct {
	k   string
	v   *Collection
	exp time.Time
}

func NewLRU(capacity int, ttlSec int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		cap:  capacity,
		ttl:  time.Duration(ttlSec) * time.Second,
		lst:  list.New(),
		dict: make(map[string]*list.Element),
		now:  time.Now,
	}
}

func (c *LRU) Get(k string) (*Collection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(kv)
		if c.ttl <= 0 || c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return nil, false
}

func (c *LRU) Set(k string, v *Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := c.now().Add(c.ttl)
	if e, ok := c.dict[k]; ok {
		e.Value = kv{k: k, v: v, exp: exp}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(kv{k: k, v: v, exp: exp})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(kv).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
