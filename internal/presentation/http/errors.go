package httppresentation

import (
	"context"
	"errors"
	"net/http"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	appcart "github.com/Zhima-Mochi/minishop-storefront/internal/application/cart"
	apporder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domreview "github.com/Zhima-Mochi/minishop-storefront/internal/domain/review"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"
)

const (
	msgInternal          = "internal server error"
	systemErrorUnhandled = "unhandled_error"
)

// statusFor maps use-case errors onto HTTP status codes; zero means unexpected.
func statusFor(err error) int {
	var (
		verr     *application.ValidationError
		stockErr *domcatalog.InsufficientStockError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &stockErr):
		return http.StatusBadRequest
	case errors.Is(err, apporder.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, domuser.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domuser.ErrConflict),
		errors.Is(err, domorder.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domreview.ErrInvalidRating),
		errors.Is(err, domcatalog.ErrInvalidQuantity),
		errors.Is(err, appcart.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, domuser.ErrNotFound),
		errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this status.
		return 499
	}
	return 0
}

// writeDomainError writes the mapped status with the error text. Anything unmapped is a
// 500 with a generic body and raises a system-error alert.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if status := statusFor(err); status != 0 {
		writeError(w, status, err)
		return
	}
	logctx.FromOr(r.Context(), h.log).Error("http_unhandled_error", observability.F("error", err))
	h.reportSystemError(r, systemErrorUnhandled, err.Error(), "")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgInternal})
}
