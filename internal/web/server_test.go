package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/engine"
	"github.com/x-liquidity/engine/internal/state"
)

func TestWriteEngineErrorStatusCodes(t *testing.T) {
	ws := &WebServer{}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("position: %w", state.ErrNotFound), http.StatusNotFound},
		{"validation", engine.ErrInvalidPriceRange, http.StatusBadRequest},
		{"policy", engine.ErrUnauthorized, http.StatusForbidden},
		{"stale decision", engine.ErrStaleDecision, http.StatusConflict},
		{"stale write", fmt.Errorf("position pos-1 changed since validation: %w", state.ErrStaleState), http.StatusConflict},
		{"duplicate payment", fmt.Errorf("payment pay-1: %w", state.ErrDuplicate), http.StatusConflict},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ws.writeEngineError(rec, tc.err)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
