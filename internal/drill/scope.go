package drill

import (
	"errors"
	"fmt"

	"rental-atlas/internal/geometry"
)

// Scope is Root or City(name). The zero value is Root.
type Scope struct {
	city string
}

func Root() Scope { return Scope{} }

func City(name string) Scope { return Scope{city: name} }

func (s Scope) IsRoot() bool { return s.city == "" }

// Name returns the city of a City scope, "" at Root.
func (s Scope) Name() string { return s.city }

func (s Scope) String() string {
	if s.IsRoot() {
		return "root"
	}
	return "city(" + s.city + ")"
}

var (
	ErrMissingGeometry = errors.New("drill: no geometry for city")
	ErrEmptyScope      = errors.New("drill: no rows in scope")
	ErrBusy            = errors.New("drill: a transition is already loading")
	ErrStale           = errors.New("drill: stale geometry response")
	ErrNotAtRoot       = errors.New("drill: drill is only possible at root")
	ErrNotInCity       = errors.New("drill: back is only possible in a city")
	ErrBadCompose      = errors.New("drill: unsupported composition key")
)

// FetchError is a failed geometry load. The transition it belonged to was
// abandoned and the previous scope is still active.
type FetchError struct {
	Resource geometry.Resource
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("drill: load %s: %v", e.Resource.File(), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NoticeKind classifies the one-line message shown to the user.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeMissingGeometry
	NoticeEmpty
	NoticeFetchFailed
	NoticeBusy
)

// Notice is the user-facing outcome of a guard.
type Notice struct {
	Kind NoticeKind
	Text string
}
