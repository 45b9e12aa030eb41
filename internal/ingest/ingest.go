// Package ingest reads the listings CSV into typed rows. Numeric cells that
// fail to parse become NaN; booleans are "True" literals except multi and
// biz, which are 1/0 flags.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"rental-atlas/internal/listing"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/metrics"
)

var ErrMissingColumn = errors.New("ingest: missing required column")

// required columns; every other column is optional and reads as NaN/false/"" when absent.
var required = []listing.Field{listing.City, listing.Price, listing.Lat, listing.Lng}

var numeric = []listing.Field{
	listing.Price, listing.PersonCapacity, listing.Multi, listing.Biz,
	listing.CleanlinessRating, listing.GuestSatisfaction, listing.Bedrooms,
	listing.Dist, listing.MetroDist, listing.AttrIndex, listing.RestIndex,
	listing.AttrIndexNorm, listing.RestIndexNorm, listing.Lat, listing.Lng,
}

// Read parses a CSV with a header row. Rows get ids listing-<n> in file order.
func Read(r io.Reader) ([]listing.Listing, error) {
	types := make(map[string]series.Type, len(numeric))
	for _, f := range numeric {
		types[string(f)] = series.Float
	}
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("ingest: read csv: %w", df.Err)
	}
	have := map[string]bool{}
	for _, n := range df.Names() {
		have[n] = true
	}
	for _, f := range required {
		if !have[string(f)] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, f)
		}
	}

	n := df.Nrow()
	floats := func(f listing.Field) []float64 {
		if !have[string(f)] {
			return nanColumn(n)
		}
		return df.Col(string(f)).Float()
	}
	strs := func(f listing.Field) []string {
		if !have[string(f)] {
			return make([]string, n)
		}
		return df.Col(string(f)).Records()
	}

	city, roomType, day := strs(listing.City), strs(listing.RoomType), strs(listing.DayStatus)
	shared, private, super := strs(listing.RoomShared), strs(listing.RoomPrivate), strs(listing.HostIsSuperhost)
	price, capacity := floats(listing.Price), floats(listing.PersonCapacity)
	multi, biz := floats(listing.Multi), floats(listing.Biz)
	clean, sat, beds := floats(listing.CleanlinessRating), floats(listing.GuestSatisfaction), floats(listing.Bedrooms)
	dist, metro := floats(listing.Dist), floats(listing.MetroDist)
	attr, rest := floats(listing.AttrIndex), floats(listing.RestIndex)
	attrN, restN := floats(listing.AttrIndexNorm), floats(listing.RestIndexNorm)
	lat, lng := floats(listing.Lat), floats(listing.Lng)

	out := make([]listing.Listing, n)
	for i := 0; i < n; i++ {
		out[i] = listing.Listing{
			ID:                fmt.Sprintf("listing-%d", i),
			City:              city[i],
			Price:             price[i],
			RoomType:          roomType[i],
			RoomShared:        shared[i] == "True",
			RoomPrivate:       private[i] == "True",
			HostIsSuperhost:   super[i] == "True",
			PersonCapacity:    capacity[i],
			Multi:             multi[i] == 1,
			Biz:               biz[i] == 1,
			CleanlinessRating: clean[i],
			GuestSatisfaction: sat[i],
			Bedrooms:          beds[i],
			Dist:              dist[i],
			MetroDist:         metro[i],
			AttrIndex:         attr[i],
			RestIndex:         rest[i],
			AttrIndexNorm:     attrN[i],
			RestIndexNorm:     restN[i],
			Lat:               lat[i],
			Lng:               lng[i],
			DayStatus:         day[i],
		}
	}
	return out, nil
}

// Load reads src, a local path or an http(s) URL.
func Load(ctx context.Context, src string, client *http.Client) ([]listing.Listing, error) {
	start := time.Now()
	l := logger.L()
	l.Info("dataset_load_begin", "src", src)
	var rc io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("ingest: fetch %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("ingest: fetch %s: bad status %d", src, resp.StatusCode)
		}
		rc = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("ingest: %w", err)
		}
		rc = f
	}
	defer rc.Close()
	rows, err := Read(rc)
	if err != nil {
		l.Error("dataset_load_error", "src", src, "err", err)
		return nil, err
	}
	metrics.DatasetRowsLoaded.Set(float64(len(rows)))
	l.Info("dataset_loaded", "src", src, "rows", len(rows), "ms", time.Since(start).Milliseconds())
	return rows, nil
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
