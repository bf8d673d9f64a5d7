// Package api is the gateway's HTTP surface. Requests are validated here,
// forwarded to the auth service and the results translated back to HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	CORSOrigins []string
	Limiter     RateLimiter
}

// NewRouter wires middleware and the /auth routes. Login and register are
// rate limited when cfg.Limiter is set.
func NewRouter(h *Handler, l logging.Logger, cfg RouterConfig) (*gin.Engine, error) {
	if err := validation.Init(); err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(RequestID(), AccessLog(l), Recovery(l), cors.New(corsConfig(cfg.CORSOrigins)))

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
	})

	r.GET("/healthz", h.Health)

	limited := RateLimit(cfg.Limiter, l)

	auth := r.Group("/auth")
	auth.POST("/register", limited, h.Register)
	auth.POST("/login", limited, h.Login)
	auth.GET("/users", h.GetUsers)
	auth.PUT("/users/:id/password", h.ChangePassword)
	auth.GET("/users/:id/profile", h.GetProfile)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
