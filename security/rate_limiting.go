package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit caps requests per identity per window. Identity is the session
// cookie when present, the client IP otherwise. Redis failures fail
// open; rate limiting never takes the portal down.
func (r *RateLimiter) Limit(name string, max int64, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := c.RealIP()
			if cookie, err := c.Cookie("portal_session"); err == nil && cookie.Value != "" {
				identity = cookie.Value
			}

			key := fmt.Sprintf("ratelimit:%s:%s", name, identity)
			ctx := c.Request().Context()

			count, err := r.redis.Incr(ctx, key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(ctx, key, window)
				}
				if count > max {
					return c.JSON(http.StatusTooManyRequests, map[string]string{
						"error": "Too many requests. Please try again later.",
					})
				}
			}

			return next(c)
		}
	}
}

// AuthRateLimit throttles credential endpoints.
func (r *RateLimiter) AuthRateLimit() echo.MiddlewareFunc {
	return r.Limit("auth", 10, time.Minute)
}

// PaymentRateLimit throttles payment initiation.
func (r *RateLimiter) PaymentRateLimit() echo.MiddlewareFunc {
	return r.Limit("payment", 5, time.Minute)
}
