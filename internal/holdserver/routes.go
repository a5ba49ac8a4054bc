package holdserver

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the seat-hold API on e.  Show and availability
// reads are public so guests can watch the seat map; hold, release,
// confirm and booking lookups require a valid JWT.  Extra middleware,
// such as UserRateLimit, runs on the authenticated routes after the JWT
// check.
func RegisterRoutes(e *echo.Echo, h *Handler, jwtSecret string, mw ...echo.MiddlewareFunc) {
    e.GET("/healthz", Health)

    e.GET("/v1/shows/:id", h.GetShow)
    e.GET("/v1/shows/:id/availability", h.GetAvailability)

    g := e.Group("/v1", append([]echo.MiddlewareFunc{JWTAuth(jwtSecret)}, mw...)...)
    g.POST("/shows/:id/hold", h.HoldSeats)
    g.DELETE("/shows/:id/hold", h.ReleaseHolds)
    g.POST("/shows/:id/confirm", h.ConfirmSeats)
    g.GET("/bookings/:id", h.GetBooking)
}

// NewServer returns an Echo instance with the API registered and the
// startup banner hidden.
func NewServer(h *Handler, jwtSecret string, mw ...echo.MiddlewareFunc) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    RegisterRoutes(e, h, jwtSecret, mw...)
    return e
}
