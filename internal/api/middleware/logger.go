package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger attaches a request scoped zerolog logger to the request context and
// logs every finished request.
func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			l := log.With().
				Str("id", reqID).
				Str("method", req.Method).
				Str("path", c.Path()).
				Logger()

			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			level := zerolog.InfoLevel
			if c.Response().Status >= 500 {
				level = zerolog.ErrorLevel
			}

			l.WithLevel(level).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("duration", time.Since(start)).
				Msg("Request")

			return nil
		}
	}
}
