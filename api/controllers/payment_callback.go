package controllers

import (
	"net/http"

	"github.com/cia-labs/nischte-app/api/middleware"
	"github.com/cia-labs/nischte-app/api/responses"
	"github.com/cia-labs/nischte-app/internal/reconcile"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/logger"
)

// PaymentCallback settles the gateway redirect against the parked checkout.
// Settlement failures still answer 200 with the failure route so the
// returning client always has somewhere to land.
func PaymentCallback(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reconcile(r.Context(), middleware.AuthTokenFromContext(r.Context()), userID)
		if err != nil {
			writeCallbackFailure(w, r, logg, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type callbackFailureResponse struct {
	RedirectPath string `json:"redirectPath"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

func writeCallbackFailure(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	if logg != nil {
		logg.Error(r.Context(), "payment.callback_failed", err)
	}

	responses.WriteSuccess(w, callbackFailureResponse{
		RedirectPath: reconcile.FailureRedirectPath,
		Code:         string(typed.Code()),
		Message:      typed.Message(),
	})
}
