package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/auralink/auralink-server/internal/participation"
)

// The frontend keys off both the HTTP status and the error body, so the
// mapping from domain errors to responses is load-bearing.
func TestLifecycleErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", participation.ErrNotFound, http.StatusNotFound},
		{"forbidden", participation.ErrForbidden, http.StatusForbidden},
		{"capacity exceeded", participation.ErrCapacityExceeded, http.StatusConflict},
		{"duplicate request", participation.ErrDuplicateRequest, http.StatusConflict},
		{"invalid state", participation.ErrInvalidState, http.StatusConflict},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(resp)

			respondLifecycleError(c, tc.err, "Something went wrong.")

			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body["error"] == "" {
				t.Fatal("error body missing")
			}
			if tc.name == "unknown" && body["error"] != "Something went wrong." {
				t.Fatalf("driver error leaked to client: %q", body["error"])
			}
		})
	}
}
