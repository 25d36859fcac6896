package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var allPermissions = []string{
	"play.create",
	"play.delete",
}

func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		ac := c.(*AppContext)
		app := ac.App

		// Master API Key bypass
		if app.MasterAPIKey != "" && app.MasterUserID != 0 && app.MasterUserRole != "" && token == app.MasterAPIKey {
			ac.User = &AppUser{
				UserID:      app.MasterUserID,
				Role:        app.MasterUserRole,
				Permissions: allPermissions,
			}
			return next(c)
		}

		if app.Key == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		parsed, err := jwt.Parse(token, app.Key.Keyfunc)
		if err != nil || !parsed.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		user, err := userFromClaims(claims)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user ID"})
		}
		ac.User = user

		return next(c)
	}
}

func userFromClaims(claims jwt.MapClaims) (*AppUser, error) {
	var userID int64
	switch id := claims["id"].(type) {
	case string:
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, err
		}
		userID = parsed
	case float64:
		userID = int64(id)
	default:
		return nil, jwt.ErrTokenInvalidClaims
	}

	role := "user"
	if roleClaim, ok := claims["role"].(string); ok {
		role = roleClaim
	}

	var permissions []string
	if permsClaim, ok := claims["permissions"].([]any); ok {
		for _, p := range permsClaim {
			if pStr, ok := p.(string); ok {
				permissions = append(permissions, pStr)
			}
		}
	}

	if role == "admin" && len(permissions) == 0 {
		permissions = allPermissions
	}

	return &AppUser{
		UserID:      userID,
		Role:        role,
		Permissions: permissions,
	}, nil
}
