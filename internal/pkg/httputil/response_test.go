package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/leadroom/internal/domain"
)

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: bad input", domain.ErrValidation), http.StatusBadRequest, "validation"},
		{fmt.Errorf("%w: no such client", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: stale", domain.ErrVersionConflict), http.StatusConflict, "version_conflict"},
		{fmt.Errorf("%w: daily cap", domain.ErrRateLimited), http.StatusTooManyRequests, "rate_limited"},
		{fmt.Errorf("%w: model down", domain.ErrGenerationFailed), http.StatusBadGateway, "generation_failed"},
		{fmt.Errorf("%w: io", domain.ErrStorage), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DomainError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body.Code)
			}
		})
	}
}

func TestJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestDecodeRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	var dst struct{}
	ok := Decode(rec, req, &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
