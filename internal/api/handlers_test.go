package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/logger"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/portfolio"
)

const testWallet = "0x56687bf447db6ffa42ffe2204a05edaa20f55839"

type stubService struct {
	snapshot *portfolio.WalletSnapshot
	err      error

	gotUser     string
	gotHorizons []int
}

func (s *stubService) WalletSnapshot(ctx context.Context, user string, horizons []int, asOf time.Time) (*portfolio.WalletSnapshot, error) {
	s.gotUser = user
	s.gotHorizons = horizons
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func newTestServer(service SnapshotService) *Server {
	return NewServer(service, ServerConfig{
		ListenAddr:      ":0",
		DefaultWallet:   testWallet,
		DefaultHorizons: []int{1, 7, 30},
	}, logger.NewNop())
}

func doRequest(server *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.NewRouter().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(&stubService{})

	rec := doRequest(server, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleWalletReturnsSnapshot(t *testing.T) {
	service := &stubService{
		snapshot: &portfolio.WalletSnapshot{
			User:    testWallet,
			History: map[string][]portfolio.TimelinePoint{"7": {}},
		},
	}
	server := newTestServer(service)

	rec := doRequest(server, fmt.Sprintf("/api/wallet?user=%s&horizons=7", testWallet))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snapshot portfolio.WalletSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, testWallet, snapshot.User)
	assert.Equal(t, []int{7}, service.gotHorizons)
}

func TestHandleWalletDefaultsFromConfig(t *testing.T) {
	service := &stubService{snapshot: &portfolio.WalletSnapshot{}}
	server := newTestServer(service)

	rec := doRequest(server, "/api/wallet")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testWallet, service.gotUser)
	assert.Equal(t, []int{1, 7, 30}, service.gotHorizons)
}

func TestHandleWalletRejectsBadAddress(t *testing.T) {
	cases := []string{
		"not-an-address",
		"0x123",
		"0x5668...f55839",
		"56687bf447db6ffa42ffe2204a05edaa20f55839",
	}

	for _, wallet := range cases {
		t.Run(wallet, func(t *testing.T) {
			server := newTestServer(&stubService{})
			rec := doRequest(server, "/api/wallet?user="+wallet)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleWalletRejectsBadHorizons(t *testing.T) {
	cases := []string{"abc", "0", "-7", "1,abc"}

	for _, horizons := range cases {
		t.Run(horizons, func(t *testing.T) {
			server := newTestServer(&stubService{})
			rec := doRequest(server, fmt.Sprintf("/api/wallet?user=%s&horizons=%s", testWallet, horizons))

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, "horizons")
		})
	}
}

func TestHandleWalletSkipsBlankHorizonSegments(t *testing.T) {
	cases := []struct {
		raw  string
		want []int
	}{
		{"1,,7", []int{1, 7}},
		{"7,", []int{7}},
		{" 1 , 7 ", []int{1, 7}},
		{",", []int{1, 7, 30}}, // nothing left, fall back to defaults
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			service := &stubService{snapshot: &portfolio.WalletSnapshot{}}
			server := newTestServer(service)

			rec := doRequest(server, fmt.Sprintf("/api/wallet?user=%s&horizons=%s", testWallet, url.QueryEscape(tc.raw)))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, service.gotHorizons)
		})
	}
}

func TestHandleWalletUpstreamFailureIs502(t *testing.T) {
	service := &stubService{
		err: fmt.Errorf("fetch wallet data: %w", polymarket.ErrUpstream),
	}
	server := newTestServer(service)

	rec := doRequest(server, "/api/wallet?user="+testWallet)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleWalletInternalFailureIs500(t *testing.T) {
	service := &stubService{err: errors.New("boom")}
	server := newTestServer(service)

	rec := doRequest(server, "/api/wallet?user="+testWallet)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWithCORSPreflight(t *testing.T) {
	wrapped := WithCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/wallet", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
