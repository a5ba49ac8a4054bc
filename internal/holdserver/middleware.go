package holdserver

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-booking/internal/auth"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores its subject in the request context under "user_id".  The
// secret must match the one used by the auth service to sign tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            hdr := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(hdr, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            sub, err := auth.VerifyAccessToken(secret, strings.TrimPrefix(hdr, "Bearer "))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set("user_id", sub)
            return next(c)
        }
    }
}

// getUserID extracts the user id stored by JWTAuth.
func getUserID(c echo.Context) (string, bool) {
    id, ok := c.Get("user_id").(string)
    return id, ok && id != ""
}
