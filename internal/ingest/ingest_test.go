package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `city,realSum,room_type,room_shared,room_private,host_is_superhost,person_capacity,multi,biz,cleanliness_rating,guest_satisfaction_overall,bedrooms,dist,metro_dist,attr_index,rest_index,lat,lng,day_status,attr_index_norm,rest_index_norm
Amsterdam,194.03,Private room,False,True,False,2,1,0,10,93,1,5.02,2.54,78.69,98.25,52.41772,4.90569,weekdays,4.17,6.85
Amsterdam,344.25,Private room,False,True,True,4,0,0,8,85,1,0.49,0.24,631.18,837.28,52.37432,4.90005,weekends,33.42,58.34
Paris,n/a,Entire home/apt,False,False,False,2,0,1,9,,1,1.2,0.3,100,200,48.85,2.35,weekdays,5.1,10.2
`

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	a := rows[0]
	if a.ID != "listing-0" || a.City != "Amsterdam" || a.Price != 194.03 || a.RoomType != "Private room" {
		t.Errorf("row 0 = %+v", a)
	}
	if a.RoomShared || !a.RoomPrivate || a.HostIsSuperhost || !a.Multi || a.Biz {
		t.Errorf("row 0 flags = %+v", a)
	}
	if a.Lat != 52.41772 || a.Lng != 4.90569 || a.DayStatus != "weekdays" || a.AttrIndexNorm != 4.17 {
		t.Errorf("row 0 numbers = %+v", a)
	}
	if !rows[1].HostIsSuperhost || rows[1].Multi {
		t.Errorf("row 1 flags = %+v", rows[1])
	}
	p := rows[2]
	if !math.IsNaN(p.Price) || !math.IsNaN(p.GuestSatisfaction) || !p.Biz || p.ID != "listing-2" {
		t.Errorf("row 2 coercion = %+v", p)
	}
}

func TestReadOptionalAndMissingColumns(t *testing.T) {
	rows, err := Read(strings.NewReader("city,realSum,lat,lng\nRome,120,41.9,12.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !math.IsNaN(rows[0].Bedrooms) || rows[0].RoomType != "" || rows[0].Multi {
		t.Errorf("row = %+v", rows[0])
	}
	_, err = Read(strings.NewReader("city,realSum,lat\nRome,120,41.9\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := Load(context.Background(), path, nil)
	if err != nil || len(rows) != 3 {
		t.Fatalf("file load = %d, %v", len(rows), err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listings.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, sample)
	}))
	defer srv.Close()
	rows, err = Load(context.Background(), srv.URL+"/listings.csv", srv.Client())
	if err != nil || len(rows) != 3 {
		t.Fatalf("http load = %d, %v", len(rows), err)
	}
	if _, err := Load(context.Background(), srv.URL+"/missing.csv", srv.Client()); err == nil {
		t.Errorf("404 should fail")
	}
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.csv"), nil); err == nil {
		t.Errorf("missing file should fail")
	}
}
