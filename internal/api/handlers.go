package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

var walletAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

type errorResponse struct {
	Error string `json:"error"`
}

// HandleHealth reports service liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleWallet builds and returns a wallet snapshot.
//
// Query parameters:
//
//	user     - wallet address (0x + 40 hex chars); falls back to the configured default
//	horizons - comma separated day counts, e.g. "1,7,30"
func (s *Server) HandleWallet(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		user = s.defaultWallet
	}
	if !walletAddressRe.MatchString(user) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid wallet address: %q", user))
		return
	}

	horizons, err := s.parseHorizons(r.URL.Query().Get("horizons"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Every snapshot request gets its own correlation id
	reqLog := s.logger.WithWallet(user).WithOperation("wallet_snapshot")

	snapshot, err := s.service.WalletSnapshot(r.Context(), user, horizons, time.Now().UTC())
	if err != nil {
		reqLog.LogError("wallet snapshot failed", err, zap.Ints("horizons", horizons))
		if errors.Is(err, polymarket.ErrUpstream) {
			s.writeError(w, http.StatusBadGateway, "upstream data source unavailable")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) parseHorizons(raw string) ([]int, error) {
	if raw == "" {
		return s.defaultHorizons, nil
	}

	parts := strings.Split(raw, ",")
	horizons := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		// Blank segments (trailing or doubled commas) are not an error
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid horizons parameter: %q", raw)
		}
		horizons = append(horizons, n)
	}
	if len(horizons) == 0 {
		return s.defaultHorizons, nil
	}
	return horizons, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
