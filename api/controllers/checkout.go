package controllers

import (
	"net/http"

	"github.com/cia-labs/nischte-app/api/middleware"
	"github.com/cia-labs/nischte-app/api/responses"
	checkoutsvc "github.com/cia-labs/nischte-app/internal/checkout"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/logger"
)

// Checkout prices the session cart, opens a payment session and hands the
// gateway redirect back to the client.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), middleware.AuthTokenFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
