package order

import (
	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domainPayment "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
)

type IDGenerator interface {
	NewID() string
}

// NumberGenerator issues customer-facing order numbers.
type NumberGenerator interface {
	NewNumber() string
}

// PaymentPort charges the order total; declines come back as Result.Success == false.
type PaymentPort = application.UseCase[domainPayment.ChargeRequest, domainPayment.Result]
