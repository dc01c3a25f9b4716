package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roberto3101/sistema-control/internal/model"
)

func mustIssue(t *testing.T, m *AuthMiddleware, userID int64, role model.Role) string {
	t.Helper()

	token, err := m.IssueToken(userID, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthMiddleware_WithValidCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		p, ok := GetPrincipal(r.Context())
		if !ok {
			t.Fatalf("principal not in context")
		}
		if p.UserID != 42 || p.Role != model.RoleSeller {
			t.Fatalf("principal from context = %+v, want 42/vendedor", p)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)

	m.SetAuthCookie(w, mustIssue(t, m, 42, model.RoleSeller))
	res := w.Result()
	resCookies := res.Cookies()
	if len(resCookies) == 0 {
		t.Fatalf("no cookies set by SetAuthCookie")
	}

	r.AddCookie(resCookies[0])

	handler := m.Middleware(next)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_WithBearerToken(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id, ok := GetUserIDFromContext(r.Context())
		if !ok || id != 7 {
			t.Fatalf("user id from context = %d, want 7", id)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+mustIssue(t, m, 7, model.RoleAdmin))

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	m := NewAuthMiddleware("test-secret")
	other := NewAuthMiddleware("other-secret")

	expired := NewAuthMiddleware("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * TokenTTL) }

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage", token: "abc"},
		{name: "foreign signature", token: mustIssue(t, other, 1, model.RoleAdmin)},
		{name: "expired", token: mustIssue(t, expired, 1, model.RoleAdmin)},
		{
			name: "unsigned",
			token: signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &sessionClaims{
				UserID:           1,
				Role:             model.RoleAdmin,
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			}),
		},
		{
			name: "other hmac method",
			token: signClaims(t, jwt.SigningMethodHS512, []byte("test-secret"), &sessionClaims{
				UserID:           1,
				Role:             model.RoleAdmin,
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			}),
		},
		{
			name: "unknown role",
			token: signClaims(t, jwt.SigningMethodHS256, []byte("test-secret"), &sessionClaims{
				UserID:           1,
				Role:             model.Role("superusuario"),
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			}),
		},
		{
			name: "no expiry",
			token: signClaims(t, jwt.SigningMethodHS256, []byte("test-secret"), &sessionClaims{
				UserID: 1,
				Role:   model.RoleAdmin,
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}

			m.Middleware(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		role   model.Role
		status int
	}{
		{name: "allowed", role: model.RoleAdmin, status: http.StatusOK},
		{name: "forbidden", role: model.RoleSeller, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/admin", nil)
			r = r.WithContext(WithPrincipal(r.Context(), Principal{UserID: 1, Role: tt.role}))

			RequireRole(model.RoleAdmin, model.RoleAssistant)(next).ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}

	w := httptest.NewRecorder()
	RequireRole(model.RoleAdmin)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without principal = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
