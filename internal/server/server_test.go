package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auralink/auralink-server/internal/cache"
)

// Every protected route must exist and sit behind the JWT middleware: a
// request without a token gets 401, never 404 (unregistered) or a handler
// response (unguarded).
func TestProtectedRoutesAreRegisteredAndAuthGated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupRoutes(r, nil, cache.New(nil))

	id := uuid.New().String()
	requestID := uuid.New().String()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/events"},
		{http.MethodPut, "/api/events/" + id},
		{http.MethodDelete, "/api/events/" + id},
		{http.MethodPost, "/api/events/" + id + "/invite"},
		{http.MethodPost, "/api/events/" + id + "/join"},
		{http.MethodPost, "/api/events/" + id + "/leave"},
		{http.MethodPost, "/api/events/" + id + "/approve-request/" + requestID},
		{http.MethodPost, "/api/events/" + id + "/reject-request/" + requestID},
		{http.MethodGet, "/api/events/my-events-requests"},
		{http.MethodPost, "/api/events/checkin"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodGet, "/api/bookings/" + id + "/qr"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/users/all"},
		{http.MethodGet, "/api/users/" + id},
		{http.MethodGet, "/api/users/" + id + "/following"},
		{http.MethodGet, "/api/users/" + id + "/followers"},
		{http.MethodPost, "/api/users/" + id + "/follow"},
		{http.MethodPost, "/api/users/" + id + "/unfollow"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", route.method, route.path, resp.Code)
		}
	}
}
