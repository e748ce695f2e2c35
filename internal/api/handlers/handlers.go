package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/custody-signer/internal/api"
	"github/chapool/custody-signer/internal/api/handlers/common"
	"github/chapool/custody-signer/internal/api/handlers/signer"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		signer.GetConfigRoute(s),
		signer.PostSignRoute(s),
	}
}
