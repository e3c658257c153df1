package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/core/domain"
)

// Limiter counts one hit for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Throttle limits requests per client IP under scope. Limiter failures are
// logged and the request goes through.
func Throttle(limiter Limiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retry, err := limiter.Allow(c.Request().Context(), scope+":"+c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
				metrics.AuthAttemptsTotal.WithLabelValues(scope, "throttled").Inc()
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
