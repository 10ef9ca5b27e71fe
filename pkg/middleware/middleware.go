package middleware

import (
	"net/http"
	"strings"

	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	authorization := c.Request().Header.Get(AuthorizationHeader)
	if authorization == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "No Authorization Header")
	}
	if !strings.HasPrefix(authorization, bearer) {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization Header")
	}
	return strings.TrimPrefix(authorization, bearer), nil
}

// JwtAuthentication accepts access tokens only and stores the principal in the request context.
func JwtAuthentication(tm *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := BearerToken(c)
			if err != nil {
				return err
			}
			claims, err := tm.Parse(tokenStr, auth.TokenAccess)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			req := c.Request()
			ctx := auth.SetAuthContext(req.Context(), auth.Principal{
				UserID:   claims.UserID,
				Username: claims.Subject,
				Role:     claims.Role,
			})
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

func RequireRoles(roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !auth.HasAnyRole(c.Request().Context(), roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}

// ClientInfo records the caller's address and user agent for the activity log.
func ClientInfo(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := auth.SetClientContext(req.Context(), auth.Client{
			IP:        c.RealIP(),
			UserAgent: req.UserAgent(),
		})
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) echomw.RequestLoggerConfig {
	log = log.Named("echo")
	return echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
				if v.Status < http.StatusInternalServerError {
					level = zapcore.WarnLevel
				}
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}
}
