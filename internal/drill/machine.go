// Package drill is the dashboard's drill-down state machine. It owns the
// active scope and filter and drives the render surface and the view board
// on every transition.
//
// Transitions are split in two: a Begin call validates and returns a Request
// naming the geometry to load; Complete applies it once the geometry arrives.
// The caller may run the fetch asynchronously. Only the most recent request
// can complete; anything older is discarded as stale.
package drill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/filter"
	"rental-atlas/internal/geometry"
	"rental-atlas/internal/listing"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/metrics"
	"rental-atlas/internal/projection"
	"rental-atlas/internal/render"
	"rental-atlas/internal/views"
)

// Fetcher loads decoded geometry. *geometry.Loader implements it.
type Fetcher interface {
	Fetch(ctx context.Context, r geometry.Resource) (*geometry.Collection, error)
}

// ColorMode selects the data behind the root map color scale.
type ColorMode int

const (
	// ColorUnfiltered colors city markers by the unfiltered city means.
	ColorUnfiltered ColorMode = iota
	// ColorFiltered colors them by the means of the filtered rows.
	ColorFiltered
)

// Deps lists everything the machine needs, in construction order.
type Deps struct {
	Rows          []listing.Listing
	Binding       geometry.Binding
	Fetcher       Fetcher
	Surface       *render.Surface
	Board         *views.Board
	Projection    projection.Factory
	TooltipFields []listing.Field
	Color         ColorMode
	Logger        *slog.Logger
}

// Request is one pending transition.
type Request struct {
	ID       string
	Kind     string
	Target   Scope
	Filter   filter.Filter
	Resource geometry.Resource
	fetcher  Fetcher
}

// Fetch loads the request's geometry. It touches no machine state and may
// run on any goroutine.
func (r *Request) Fetch(ctx context.Context) (*geometry.Collection, error) {
	return r.fetcher.Fetch(ctx, r.Resource)
}

// Machine is the drill-down state machine. It is not safe for concurrent
// use; the UI event loop is its only caller.
type Machine struct {
	d         Deps
	log       *slog.Logger
	summaries []aggregate.CitySummary

	scope     Scope
	filt      filter.Filter
	rows      []listing.Listing
	composeBy listing.Field
	pending   *Request
	notice    Notice
	started   bool
}

// New validates deps and computes the unfiltered city summaries once.
func New(d Deps) (*Machine, error) {
	if d.Fetcher == nil || d.Surface == nil || d.Board == nil {
		return nil, errors.New("drill: fetcher, surface and board are required")
	}
	if d.Projection == nil {
		d.Projection = projection.EqualEarth
	}
	if d.TooltipFields == nil {
		d.TooltipFields = listing.TooltipFields
	}
	if d.Binding.Root().Object == "" {
		d.Binding = geometry.DefaultBinding()
	}
	l := d.Logger
	if l == nil {
		l = logger.L()
	}
	return &Machine{
		d:         d,
		log:       l,
		summaries: aggregate.CityMeans(d.Rows),
		composeBy: listing.RoomType,
	}, nil
}

func (m *Machine) Scope() Scope { return m.scope }

func (m *Machine) Filter() filter.Filter { return m.filt }

// Rows returns the row set driving every dependent view.
func (m *Machine) Rows() []listing.Listing { return m.rows }

// Summaries returns the unfiltered city summaries.
func (m *Machine) Summaries() []aggregate.CitySummary { return m.summaries }

func (m *Machine) Busy() bool { return m.pending != nil }

func (m *Machine) Pending() *Request { return m.pending }

func (m *Machine) Notice() Notice { return m.notice }

// CanGoBack is the "Back" affordance.
func (m *Machine) CanGoBack() bool { return !m.scope.IsRoot() }

// Started reports whether the first transition has completed.
func (m *Machine) Started() bool { return m.started }

func (m *Machine) newRequest(kind string, target Scope, f filter.Filter, res geometry.Resource) *Request {
	if m.pending != nil {
		m.log.Info("transition_superseded", "req", m.pending.ID, "kind", m.pending.Kind, "by", kind)
	}
	r := &Request{ID: uuid.NewString(), Kind: kind, Target: target, Filter: f, Resource: res, fetcher: m.d.Fetcher}
	m.pending = r
	metrics.TransitionsTotal.WithLabelValues(kind, "begin").Inc()
	m.log.Debug("transition_begin", "req", r.ID, "kind", kind, "target", target.String(), "object", res.Object)
	return r
}

func (m *Machine) reject(kind string, err error, n Notice) error {
	m.notice = n
	metrics.TransitionsTotal.WithLabelValues(kind, "rejected").Inc()
	m.log.Info("drill_rejected", "kind", kind, "reason", err.Error(), "scope", m.scope.String())
	return err
}

// Start requests the initial root scope with an empty filter.
func (m *Machine) Start() *Request {
	return m.newRequest("start", Root(), filter.Filter{}, m.d.Binding.Root())
}

// BeginFilter targets Root with f from any scope. A pending transition is
// superseded.
func (m *Machine) BeginFilter(f filter.Filter) *Request {
	return m.newRequest("filter", Root(), f, m.d.Binding.Root())
}

// BeginDrill targets City(city). It is rejected while another transition is
// loading, outside Root, for an empty root scope, for a city without
// geometry, and for a city with no rows under the active filter. A rejection
// changes nothing but the notice.
func (m *Machine) BeginDrill(city string) (*Request, error) {
	if m.pending != nil {
		return nil, m.reject("drill", ErrBusy, Notice{NoticeBusy, "Still loading, please wait."})
	}
	if !m.scope.IsRoot() {
		return nil, m.reject("drill", ErrNotAtRoot, Notice{NoticeNone, ""})
	}
	if len(m.rows) == 0 {
		return nil, m.reject("drill", ErrEmptyScope, Notice{NoticeEmpty, "No Airbnb available."})
	}
	res, ok := m.d.Binding.City(city)
	if !ok {
		return nil, m.reject("drill", ErrMissingGeometry, Notice{NoticeMissingGeometry, fmt.Sprintf("No map geometry exists for %s.", city)})
	}
	if len(listing.InCity(m.rows, city)) == 0 {
		return nil, m.reject("drill", ErrEmptyScope, Notice{NoticeEmpty, fmt.Sprintf("No Airbnb available in %s for the current filters.", city)})
	}
	return m.newRequest("drill", City(city), m.filt, res), nil
}

// BeginBack targets Root from a city. At Root with a drill loading it
// cancels that drill instead and returns no request.
func (m *Machine) BeginBack() (*Request, error) {
	if m.scope.IsRoot() {
		if m.pending != nil && !m.pending.Target.IsRoot() {
			m.log.Info("drill_cancelled", "req", m.pending.ID, "city", m.pending.Target.Name())
			metrics.TransitionsTotal.WithLabelValues("drill", "cancelled").Inc()
			m.pending = nil
			return nil, nil
		}
		return nil, m.reject("back", ErrNotInCity, Notice{NoticeNone, ""})
	}
	return m.newRequest("back", Root(), m.filt, m.d.Binding.Root()), nil
}

// Complete applies the geometry for request id. Responses for anything but
// the pending request are discarded with ErrStale. A fetch error abandons
// the transition, keeps the previous scope and returns a *FetchError.
func (m *Machine) Complete(id string, c *geometry.Collection, fetchErr error) error {
	if m.pending == nil || m.pending.ID != id {
		metrics.StaleResponsesTotal.Inc()
		m.log.Info("stale_geometry_discarded", "req", id)
		return ErrStale
	}
	req := m.pending
	m.pending = nil
	if fetchErr == nil {
		fetchErr = m.apply(req, c)
	}
	if fetchErr != nil {
		fe := &FetchError{Resource: req.Resource, Err: fetchErr}
		m.notice = Notice{NoticeFetchFailed, fmt.Sprintf("Could not load the map for %s: %v", req.Target.String(), fetchErr)}
		metrics.TransitionsTotal.WithLabelValues(req.Kind, "fetch_error").Inc()
		m.log.Error("geometry_fetch_error", "req", req.ID, "object", req.Resource.Object, "err", fetchErr)
		return fe
	}
	metrics.TransitionsTotal.WithLabelValues(req.Kind, "ok").Inc()
	m.log.Info("transition_ok", "req", req.ID, "kind", req.Kind, "scope", m.scope.String(), "rows", len(m.rows))
	return nil
}

// Run fetches and completes req on the calling goroutine.
func (m *Machine) Run(ctx context.Context, req *Request) error {
	if req == nil {
		return nil
	}
	c, err := req.Fetch(ctx)
	return m.Complete(req.ID, c, err)
}

// apply installs the target scope. The base geometry is swapped first so a
// geometry that cannot be fitted leaves every piece of state untouched.
func (m *Machine) apply(req *Request, c *geometry.Collection) error {
	if c == nil {
		return errors.New("empty geometry")
	}
	if err := m.d.Surface.SetBaseGeometry(c, m.d.Projection); err != nil {
		return err
	}
	m.scope = req.Target
	m.filt = req.Filter
	m.started = true
	rootRows := m.filt.Apply(m.d.Rows)

	var layer render.Layer
	kind := views.RootScope
	if m.scope.IsRoot() {
		m.rows = rootRows
		scale := render.PriceScale(m.summaries)
		if m.d.Color == ColorFiltered {
			scale = render.PriceScale(aggregate.CityMeans(rootRows))
		}
		layer = render.Aggregated{Summaries: m.summaries, Scale: scale}
		if len(m.rows) == 0 {
			kind = views.EmptyScope
		}
	} else {
		m.rows = listing.InCity(rootRows, m.scope.Name())
		layer = render.Detail{Listings: m.rows}
		kind = views.CityScope
	}
	if err := m.d.Surface.RenderMarkers(layer, m.d.TooltipFields); err != nil {
		return err
	}
	m.d.Board.Apply(views.Build(views.Input{
		Rows:      m.rows,
		Summaries: m.summaries,
		City:      !m.scope.IsRoot(),
		ComposeBy: m.composeBy,
	}), kind)
	m.notice = Notice{}
	if kind == views.EmptyScope {
		m.notice = Notice{NoticeEmpty, "No Airbnb available."}
	}
	return nil
}

// Recompose re-keys the composition view over the current rows.
func (m *Machine) Recompose(field listing.Field) error {
	ok := false
	for _, f := range views.ComposeOptions {
		ok = ok || f == field
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadCompose, field)
	}
	m.composeBy = field
	m.d.Board.Recompose(views.Compose(m.rows, field))
	return nil
}

// Region names the base geometry region containing a coordinate.
func (m *Machine) Region(lat, lng float64) (string, bool) {
	r, ok := m.d.Surface.Base().Locate(lat, lng)
	return r.Name, ok
}
