package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantHealth HealthStatus
	}{
		{name: "database reachable", wantStatus: http.StatusOK, wantHealth: HealthHealthy},
		{name: "database down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantHealth: HealthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()

			ping := mock.ExpectPing()
			if tt.pingErr != nil {
				ping.WillReturnError(tt.pingErr)
			}

			rec := httptest.NewRecorder()
			NewHealthHandler(db, "test").healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantHealth, resp.Status)
			assert.Equal(t, tt.wantHealth, resp.Components["postgres"].Status)
			assert.Equal(t, "test", resp.Version)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPingHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, "").pingHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}
