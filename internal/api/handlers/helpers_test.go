package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/ports"
	"eco-route-service/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFailureStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"session", fmt.Errorf("x: %w", services.ErrSessionNotFound), http.StatusNotFound, ""},
		{"report", fmt.Errorf("x: %w", ports.ErrReportNotFound), http.StatusNotFound, ""},
		{"no result", services.ErrNoResult, http.StatusConflict, ""},
		{"edited in flight", fmt.Errorf("optimize: %w", services.ErrStaleResult), http.StatusConflict, ""},
		{"validation", fmt.Errorf("x: %w", domain.ErrValidation), http.StatusUnprocessableEntity, "ValidationError"},
		{"busy", domain.ErrAlreadySubmitting, http.StatusConflict, "AlreadySubmitting"},
		{"network", domain.ErrNetwork, http.StatusBadGateway, "NetworkError"},
		{"schema", domain.ErrSchemaViolation, http.StatusBadGateway, "SchemaViolation"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/sessions/x/optimize", nil)

			writeFailure(rec, req, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body dto.KindError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tc.kind, body.Kind)
		})
	}
}
