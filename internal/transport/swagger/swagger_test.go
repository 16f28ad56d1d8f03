package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/beacon/internal/transport/swagger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerPointsAtSpec(t *testing.T) {
	h := swagger.Handler("/openapi.yml")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/openapi.yml")
}
