package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler, opts ClientOptions) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL
	if opts.MaxTries == 0 {
		opts.MaxTries = 1
	}
	return NewClient(zap.NewNop(), opts), server
}

func TestPositionsDecodesResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/positions", r.URL.Path)
		assert.Equal(t, "0xabc", r.URL.Query().Get("user"))
		assert.Equal(t, "0", r.URL.Query().Get("sizeThreshold"))

		_ = json.NewEncoder(w).Encode([]Position{
			{Asset: "asset-a", Size: floatPtr(10), CurPrice: floatPtr(0.5)},
		})
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	positions, err := client.Positions(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "asset-a", positions[0].Asset)
	assert.Equal(t, 10.0, Float(positions[0].Size))
}

func TestPositionsOmittedNumericsDecodeAsNil(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"asset":"asset-a","title":"Some market"}]`)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	positions, err := client.Positions(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Nil(t, positions[0].Size)
	assert.Zero(t, Float(positions[0].Size))
}

func TestClosedPositionsPassesLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/closed-positions", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[]`)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	closed, err := client.ClosedPositions(context.Background(), "0xabc", 25)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestActivityPaginatesUntilShortPage(t *testing.T) {
	pageSize := 3
	var offsets []int

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activity", r.URL.Path)
		assert.Equal(t, "TIMESTAMP", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "DESC", r.URL.Query().Get("sortDirection"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		// Two full pages then a short one
		count := pageSize
		if offset >= 2*pageSize {
			count = 1
		}
		entries := make([]ActivityEntry, count)
		for i := range entries {
			entries[i] = ActivityEntry{
				Timestamp: int64(1000 - offset - i),
				Type:      ActivityTrade,
				Asset:     "asset-a",
			}
		}
		_ = json.NewEncoder(w).Encode(entries)
	})

	client, _ := newTestClient(t, handler, ClientOptions{PageSize: pageSize})

	entries, err := client.Activity(context.Background(), "0xabc", time.Unix(2000, 0), time.Time{})
	require.NoError(t, err)
	assert.Len(t, entries, 2*pageSize+1)
	assert.Equal(t, []int{0, 3, 6}, offsets)
}

func TestActivityStopsOnEmptyPage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	entries, err := client.Activity(context.Background(), "0xabc", time.Unix(2000, 0), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActivityRespectsPageCeiling(t *testing.T) {
	pageSize := 2
	requests := 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Always a full page; only the ceiling can stop the walk
		_ = json.NewEncoder(w).Encode([]ActivityEntry{
			{Timestamp: 100, Type: ActivityTrade, Asset: "asset-a"},
			{Timestamp: 99, Type: ActivityTrade, Asset: "asset-a"},
		})
	})

	client, _ := newTestClient(t, handler, ClientOptions{PageSize: pageSize, MaxPages: 5})

	entries, err := client.Activity(context.Background(), "0xabc", time.Unix(2000, 0), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 5, requests)
	assert.Len(t, entries, 5*pageSize)
}

func TestActivityFiltersEntriesBeforeStart(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]ActivityEntry{
			{Timestamp: 300, Type: ActivityTrade, Asset: "asset-a"},
			{Timestamp: 200, Type: ActivityTrade, Asset: "asset-a"},
			{Timestamp: 100, Type: ActivityTrade, Asset: "asset-a"},
		})
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	entries, err := client.Activity(context.Background(), "0xabc", time.Unix(2000, 0), time.Unix(200, 0))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(300), entries[0].Timestamp)
	assert.Equal(t, int64(200), entries[1].Timestamp)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	})

	client, _ := newTestClient(t, handler, ClientOptions{MaxTries: 3})

	_, err := client.Positions(context.Background(), "0xabc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, requests)
}

func TestServerErrorIsRetried(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	client, _ := newTestClient(t, handler, ClientOptions{MaxTries: 3})

	positions, err := client.Positions(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.Equal(t, 2, requests)
}

func TestMalformedBodyWrapsUpstreamError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"`)
	})

	client, _ := newTestClient(t, handler, ClientOptions{})

	_, err := client.Positions(context.Background(), "0xabc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}
