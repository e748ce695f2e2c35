package router

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/custody-signer/internal/api"
	"github/chapool/custody-signer/internal/api/handlers"
	"github/chapool/custody-signer/internal/api/httperrors"
	"github/chapool/custody-signer/internal/api/middleware"
	"github/chapool/custody-signer/internal/config"
)

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandler

	s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())

	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(echoMiddleware.RequestID())
	s.Echo.Use(middleware.Logger())
	s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "custody_signer",
		Subsystem:  "http",
		Registerer: s.Metrics.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	s.Router = &api.Router{
		Routes:      nil,
		Root:        s.Echo.Group(""),
		Management:  s.Echo.Group("/-"),
		APIV1Signer: s.Echo.Group("/api/v1"),
	}

	handlers.AttachAllRoutes(s)

	log.Debug().Str("module", config.ModuleName).Int("routes", len(s.Router.Routes)).Msg("Router initialized")
}
