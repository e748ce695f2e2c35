package signer

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/custody-signer/internal/api"
	"github/chapool/custody-signer/internal/api/httperrors"
	"github/chapool/custody-signer/internal/types"
	"github/chapool/custody-signer/internal/util"
)

func GetConfigRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signer.GET("/config", getConfigHandler(s))
}

// getConfigHandler only exposes the backend name; credentials never leave the process.
func getConfigHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg := s.Wallet.GetConfig()
		if cfg == nil {
			return httperrors.ErrServiceClosed
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.GetConfigResponse{
			Backend: swag.String(cfg.Backend().String()),
		})
	}
}
