package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soladu1/Q-A-By-SOL/internal/auth"
	"github.com/soladu1/Q-A-By-SOL/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager(t *testing.T) *auth.Manager {
	t.Helper()

	m, err := auth.NewManager("middleware-test-secret", time.Hour, time.Hour)

	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	return m
}

func protectedRouter(m *auth.Manager) *gin.Engine {
	r := gin.New()

	r.GET("/protected", middlewares.NewAuthMiddleware(m).RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		name, _ := middlewares.UsernameFromContext(c)

		c.JSON(http.StatusOK, gin.H{"userid": id, "username": name})
	})

	return r
}

func TestRequireAuthRejections(t *testing.T) {
	m := newManager(t)
	r := protectedRouter(m)

	expired, err := m.Issue("sol", "user-1", -1*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired token", header: "Bearer " + expired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	m := newManager(t)
	r := protectedRouter(m)

	token, err := m.Issue("sol", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	body := w.Body.String()

	if body != `{"userid":"user-1","username":"sol"}` {
		t.Fatalf("unexpected identity payload: %s", body)
	}
}
