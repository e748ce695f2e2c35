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

func PostSignRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signer.POST("/sign", postSignHandler(s))
}

func postSignHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSignPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		// backend reported is the one active when the request started
		cfg := s.Wallet.GetConfig()

		sig, err := s.Wallet.Sign(ctx, body.MessageBytes())
		if err != nil {
			log.Debug().Err(err).Msg("Failed to sign message")
			return httperrors.FromSigningError(err)
		}

		response := &types.SignResponse{
			Signature: swag.String("0x" + util.BytesToHex(sig)),
			Backend:   swag.String(cfg.Backend().String()),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
