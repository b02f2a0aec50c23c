package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/planetmint/planetmint-driver-go/internal/api"
	"github.com/planetmint/planetmint-driver-go/internal/logger"
)

func TestRequestSizeLimit(t *testing.T) {
	const maxRequestSize = 64

	router := chi.NewRouter()
	router.Use(RequestSizeLimit(maxRequestSize))
	router.Post("/api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name          string
		bodySize      int
		contentLength int64
		wantCode      int
	}{
		{"within limit", maxRequestSize, maxRequestSize, http.StatusOK},
		{"announced too large", 2 * maxRequestSize, 2 * maxRequestSize, http.StatusRequestEntityTooLarge},
		{"unannounced too large", 2 * maxRequestSize, -1, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(strings.Repeat("x", tt.bodySize)))
			req.ContentLength = tt.contentLength

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantCode)
			}
			if rr.Header().Get("X-Max-Request-Size") != "64" {
				t.Errorf("X-Max-Request-Size = %q", rr.Header().Get("X-Max-Request-Size"))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		rps           int32
		expectLimited bool
	}{
		{"enabled", 10, true},
		{"disabled with 0", 0, false},
		{"disabled with negative", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Use(RateLimit(tt.rps, 1))
			router.Get("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			codes := make([]int, 2)
			for i := range codes {
				rr := httptest.NewRecorder()
				router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
				codes[i] = rr.Code
			}

			if codes[0] != http.StatusOK {
				t.Errorf("first request status = %d, want 200", codes[0])
			}
			want := http.StatusOK
			if tt.expectLimited {
				want = http.StatusTooManyRequests
			}
			if codes[1] != want {
				t.Errorf("second request status = %d, want %d", codes[1], want)
			}
		})
	}
}

func TestRateLimitErrorBody(t *testing.T) {
	router := chi.NewRouter()
	router.Use(RateLimit(1, 1))
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var body api.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Status != http.StatusTooManyRequests || body.Errors[0].ErrorCode != api.ErrCodeRateLimitExceeded {
		t.Errorf("body = %+v", body)
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(RequestLogging(base))
	router.Get("/api/v1/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		logger.ContextWithLogAttrs(r.Context(), slog.String("tx_id", chi.URLParam(r, "id")))
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/transactions/abc", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if line["status"] != float64(http.StatusNotFound) || line["tx_id"] != "abc" || line["request_id"] == "" {
		t.Errorf("log line = %v", line)
	}
}
