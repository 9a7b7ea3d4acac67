package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/networth", handler.GetNetWorth)
	mux.HandleFunc("GET /api/v1/networth/series", handler.GetNetWorthSeries)
	mux.HandleFunc("GET /api/v1/networth/accrual", handler.GetNetWorthAccrual)
	mux.HandleFunc("GET /api/v1/networth/chart.png", handler.GetNetWorthChart)
	mux.HandleFunc("GET /api/v1/fi", handler.GetFI)
	mux.HandleFunc("GET /api/v1/fi/countdown", handler.GetCountdown)
	mux.HandleFunc("GET /api/v1/portfolio", handler.GetPortfolio)
	mux.HandleFunc("GET /api/v1/portfolio/rebalance", handler.GetRebalance)
	mux.HandleFunc("GET /api/v1/breakdown/currency", handler.GetCurrencyBreakdown)
	mux.HandleFunc("GET /api/v1/breakdown/class", handler.GetClassBreakdown)
	mux.HandleFunc("GET /api/v1/assets/{id}/value", handler.GetAssetValue)
	mux.HandleFunc("GET /api/v1/objectives", handler.GetObjectives)

	protect := func(h http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return h
		}
		return requireAuth(adminAPIKey, h)
	}
	mux.Handle("POST /api/v1/asset-values", protect(handler.CreateAssetValue))
	mux.Handle("POST /api/v1/asset-shares", protect(handler.CreateAssetShare))

	if handler.snapshots != nil {
		mux.HandleFunc("GET /api/v1/snapshots/latest", handler.GetLatestSnapshot)
		mux.HandleFunc("GET /api/v1/snapshots/{date}", handler.GetSnapshotByDate)
		mux.HandleFunc("GET /api/v1/snapshots", handler.ListSnapshots)
		mux.Handle("POST /api/v1/snapshots/generate", protect(handler.GenerateSnapshot))
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
