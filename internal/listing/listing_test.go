package listing

import (
	"math"
	"sort"
	"testing"
)

func TestHumanize(t *testing.T) {
	cases := []struct {
		in   Field
		want string
	}{
		{GuestSatisfaction, "Guest Satisfaction Overall"},
		{Price, "RealSum"},
		{MetroDist, "Metro Dist"},
		{Dist, "Dist"},
	}
	for _, c := range cases {
		if got := c.in.Humanize(); got != c.want {
			t.Errorf("Humanize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValueOrder(t *testing.T) {
	vals := []Value{
		String("b"), Number(math.NaN()), Number(2), Bool(true), String("a"), Number(-1), Bool(false),
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].Less(vals[j]) })
	want := []string{"false", "true", "-1", "2", "NaN", "a", "b"}
	for i, v := range vals {
		if got := v.String(); got != want[i] {
			t.Errorf("sorted[%d] = %q, want %q", i, got, want[i])
		}
	}
	if !Number(math.NaN()).Equal(Number(math.NaN())) {
		t.Errorf("NaN should equal NaN for grouping")
	}
}

func TestAttrSkipsNaN(t *testing.T) {
	l := Listing{ID: "listing-1", City: "Paris", Price: math.NaN(), Bedrooms: 2, HostIsSuperhost: true}
	if _, ok := l.Attr(Price); ok {
		t.Errorf("Attr(realSum) on NaN should be absent")
	}
	if v, ok := l.Attr(Bedrooms); !ok || v.N != 2 {
		t.Errorf("Attr(bedrooms) = %v,%v, want 2,true", v, ok)
	}
	if v, _ := l.Attr(HostIsSuperhost); v.Format() != "true" {
		t.Errorf("Attr(host_is_superhost).Format() = %q, want true", v.Format())
	}
	if n, _ := l.Number(HostIsSuperhost); n != 1 {
		t.Errorf("Number(host_is_superhost) = %v, want 1", n)
	}
	if v, _ := l.Attr(Bedrooms); v.Format() != "2.00" {
		t.Errorf("Format = %q, want 2.00", v.Format())
	}
}

func TestCitiesAndInCity(t *testing.T) {
	rows := []Listing{{City: "Rome"}, {City: "Paris"}, {City: "Rome"}}
	got := Cities(rows)
	if len(got) != 2 || got[0] != "Rome" || got[1] != "Paris" {
		t.Errorf("Cities = %v", got)
	}
	if n := len(InCity(rows, "Rome")); n != 2 {
		t.Errorf("InCity(Rome) = %d rows, want 2", n)
	}
}

func TestHashSignedZero(t *testing.T) {
	neg := Number(math.Copysign(0, -1))
	if !neg.Equal(Number(0)) || neg.Hash() != Number(0).Hash() {
		t.Errorf("Hash(-0) = %q, Hash(0) = %q", neg.Hash(), Number(0).Hash())
	}
}
