// Package filter implements the dashboard's filter form: seven independent
// predicates over a listing, combined with AND. An unset predicate matches all.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rental-atlas/internal/listing"
)

// All is the form value meaning "no constraint".
const All = "all"

// DefaultPrice is the price option the form resets to.
const DefaultPrice = "0-20000"

var ErrBadOption = errors.New("filter: bad option")

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r Range) String() string {
	return strconv.FormatFloat(r.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(r.Max, 'f', -1, 64)
}

// Filter is the value of the filter form. Nil pointers and empty strings mean All.
type Filter struct {
	Price     *Range
	DayStatus string
	Capacity  *int
	Business  *bool
	Bedrooms  *int
	RoomType  string
	Superhost *bool
}

// IsZero reports whether the filter accepts every row.
func (f Filter) IsZero() bool {
	return f.Price == nil && f.DayStatus == "" && f.Capacity == nil && f.Business == nil &&
		f.Bedrooms == nil && f.RoomType == "" && f.Superhost == nil
}

// Match applies every set predicate. Rows with a NaN in a constrained numeric
// column never match that constraint.
func (f Filter) Match(l listing.Listing) bool {
	if f.Price != nil && !f.Price.contains(l.Price) {
		return false
	}
	if f.DayStatus != "" && l.DayStatus != f.DayStatus {
		return false
	}
	if f.Capacity != nil && l.PersonCapacity != float64(*f.Capacity) {
		return false
	}
	if f.Business != nil && l.Biz != *f.Business {
		return false
	}
	if f.Bedrooms != nil && l.Bedrooms != float64(*f.Bedrooms) {
		return false
	}
	if f.RoomType != "" && l.RoomType != f.RoomType {
		return false
	}
	if f.Superhost != nil && l.HostIsSuperhost != *f.Superhost {
		return false
	}
	return true
}

// Apply returns the matching rows in input order.
func (f Filter) Apply(rows []listing.Listing) []listing.Listing {
	if f.IsZero() {
		return rows
	}
	out := make([]listing.Listing, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Form option names, matching the original filter form.
const (
	OptPrice     = "price"
	OptDayStatus = "day_status"
	OptCapacity  = "person_capacity"
	OptBusiness  = "biz"
	OptBedrooms  = "bedrooms"
	OptRoomType  = "room_type"
	OptSuperhost = "host_is_superhost"
)

// Parse builds a Filter from form values. Missing keys and "all" leave the
// predicate unset. Price is "min-max"; booleans accept true/false/1/0.
func Parse(opts map[string]string) (Filter, error) {
	var f Filter
	for k, raw := range opts {
		v := strings.TrimSpace(raw)
		if v == "" || strings.EqualFold(v, All) {
			continue
		}
		switch k {
		case OptPrice:
			r, err := ParseRange(v)
			if err != nil {
				return Filter{}, err
			}
			f.Price = &r
		case OptDayStatus:
			f.DayStatus = v
		case OptRoomType:
			f.RoomType = v
		case OptCapacity, OptBedrooms:
			n, err := strconv.Atoi(v)
			if err != nil {
				return Filter{}, fmt.Errorf("%w: %s=%q", ErrBadOption, k, v)
			}
			if k == OptCapacity {
				f.Capacity = &n
			} else {
				f.Bedrooms = &n
			}
		case OptBusiness, OptSuperhost:
			b, err := parseBool(v)
			if err != nil {
				return Filter{}, fmt.Errorf("%w: %s=%q", ErrBadOption, k, v)
			}
			if k == OptBusiness {
				f.Business = &b
			} else {
				f.Superhost = &b
			}
		default:
			return Filter{}, fmt.Errorf("%w: unknown option %q", ErrBadOption, k)
		}
	}
	return f, nil
}

// ParseRange parses "min-max" into an inclusive Range.
func ParseRange(v string) (Range, error) {
	lo, hi, ok := strings.Cut(v, "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: price %q", ErrBadOption, v)
	}
	low, err1 := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	high, err2 := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err1 != nil || err2 != nil || low > high {
		return Range{}, fmt.Errorf("%w: price %q", ErrBadOption, v)
	}
	return Range{Min: low, Max: high}, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, ErrBadOption
}

// Options renders the filter back to form values, "all" for unset predicates.
func (f Filter) Options() map[string]string {
	out := map[string]string{
		OptPrice: All, OptDayStatus: All, OptCapacity: All, OptBusiness: All,
		OptBedrooms: All, OptRoomType: All, OptSuperhost: All,
	}
	if f.Price != nil {
		out[OptPrice] = f.Price.String()
	}
	if f.DayStatus != "" {
		out[OptDayStatus] = f.DayStatus
	}
	if f.Capacity != nil {
		out[OptCapacity] = strconv.Itoa(*f.Capacity)
	}
	if f.Business != nil {
		out[OptBusiness] = strconv.FormatBool(*f.Business)
	}
	if f.Bedrooms != nil {
		out[OptBedrooms] = strconv.Itoa(*f.Bedrooms)
	}
	if f.RoomType != "" {
		out[OptRoomType] = f.RoomType
	}
	if f.Superhost != nil {
		out[OptSuperhost] = strconv.FormatBool(*f.Superhost)
	}
	return out
}

// Cleared is the form state after "clear filters": every predicate All and the
// default price range.
func Cleared() Filter {
	r, _ := ParseRange(DefaultPrice)
	return Filter{Price: &r}
}
