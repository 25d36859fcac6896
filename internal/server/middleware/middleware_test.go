package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func serve(app *App, header string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(AppContextMiddleware(app))
	e.POST("/plays", func(c echo.Context) error {
		return c.String(http.StatusOK, c.(*AppContext).User.Role)
	}, AuthMiddleware, RequirePermission("play.create"))

	req := httptest.NewRequest(http.MethodPost, "/plays", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMasterKey(t *testing.T) {
	app := &App{MasterAPIKey: "secret", MasterUserID: 1, MasterUserRole: "admin"}

	if rec := serve(app, "Bearer secret"); rec.Code != http.StatusOK || rec.Body.String() != "admin" {
		t.Fatalf("expected master key to pass, got %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(app, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rec.Code)
	}
	if rec := serve(app, "Bearer wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token without jwks, got %d", rec.Code)
	}
	if rec := serve(app, "Basic secret"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non bearer auth, got %d", rec.Code)
	}
}

func TestUserFromClaims(t *testing.T) {
	user, err := userFromClaims(jwt.MapClaims{"id": "42", "role": "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserID != 42 || !HasPermission(user, "play.delete") {
		t.Fatalf("expected admin with all permissions, got %+v", user)
	}

	user, err = userFromClaims(jwt.MapClaims{"id": float64(7), "permissions": []any{"play.create"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != "user" || !HasPermission(user, "play.create") || HasPermission(user, "play.delete") {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := userFromClaims(jwt.MapClaims{"id": true}); err == nil {
		t.Fatal("expected error for invalid id claim")
	}
}

func TestRequirePermissionForbidden(t *testing.T) {
	e := echo.New()
	e.Use(AppContextMiddleware(&App{}))
	e.DELETE("/plays/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.(*AppContext).User = &AppUser{UserID: 3, Role: "user"}
			return next(c)
		}
	}, RequirePermission("play.delete"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/plays/x", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
