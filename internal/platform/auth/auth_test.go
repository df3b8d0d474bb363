package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, key []byte, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	key := []byte("test-signing-key")
	tokenStr := signToken(t, key, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:  "Lab Tech",
		Roles: []string{"lab_tech"},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(JWTConfig{SigningKey: key})
	err := mw(func(c echo.Context) error {
		ctx := c.Request().Context()
		if got := OperatorIDFromContext(ctx); got != "op-1" {
			t.Errorf("operator id = %s, want op-1", got)
		}
		if got := OperatorNameFromContext(ctx); got != "Lab Tech" {
			t.Errorf("operator name = %s, want Lab Tech", got)
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("k")})
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	tokenStr := signToken(t, []byte("other-key"), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("test-signing-key")})
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestDevAuthMiddleware_GrantsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := DevAuthMiddleware()(func(c echo.Context) error {
		roles := RolesFromContext(c.Request().Context())
		if len(roles) != 1 || roles[0] != "admin" {
			t.Errorf("roles = %v, want [admin]", roles)
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		has      []string
		required []string
		allow    bool
	}{
		{"exact match", []string{"lab_tech"}, []string{"lab_tech"}, true},
		{"admin passes", []string{"admin"}, []string{"lab_tech"}, true},
		{"one of many", []string{"reception"}, []string{"lab_tech", "reception"}, true},
		{"no match", []string{"reception"}, []string{"lab_tech"}, false},
		{"no roles", nil, []string{"lab_tech"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if tt.has != nil {
				ctx := context.WithValue(c.Request().Context(), RolesKey, tt.has)
				c.SetRequest(c.Request().WithContext(ctx))
			}

			err := RequireRole(tt.required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)

			if tt.allow && err != nil {
				t.Errorf("expected pass, got %v", err)
			}
			if !tt.allow {
				he, ok := err.(*echo.HTTPError)
				if !ok || he.Code != http.StatusForbidden {
					t.Errorf("err = %v, want 403", err)
				}
			}
		})
	}
}
