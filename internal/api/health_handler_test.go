package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		expectedStatus int
		expectedBody   string
	}{
		{name: "no database", db: nil, expectedStatus: http.StatusOK, expectedBody: `{"status":"ok","database":"unknown"}`},
		{name: "healthy", db: stubPinger{}, expectedStatus: http.StatusOK, expectedBody: `{"status":"ok","database":"ok"}`},
		{
			name:           "unreachable",
			db:             stubPinger{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"degraded","database":"unreachable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, nil)
			rr := httptest.NewRecorder()

			h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}
