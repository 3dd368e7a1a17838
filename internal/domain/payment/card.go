package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownMethod     = errors.New("payment: unknown payment method")
	ErrCardRequired      = errors.New("payment: card details are required")
	ErrInvalidCardNumber = errors.New("payment: invalid card number")
	ErrInvalidExpiry     = errors.New("payment: invalid expiry date")
	ErrInvalidCVV        = errors.New("payment: invalid cvv")
)

type Method string

const (
	MethodVisa       Method = "visa"
	MethodMastercard Method = "mastercard"
	MethodMada       Method = "mada"
	MethodApplePay   Method = "applepay"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodVisa, MethodMastercard, MethodMada, MethodApplePay:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// RequiresCard reports whether the method is charged against card details.
func (m Method) RequiresCard() bool {
	return m != MethodApplePay
}

type Card struct {
	Number string
	Holder string
	Expiry string
	CVV    string
}

var (
	cardNumberPattern = regexp.MustCompile(`^\d{4}\s\d{4}\s\d{4}\s\d{4}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
	expiryPattern     = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
)

// Validate checks the formats accepted by the checkout form; expiry is MM/YY and must
// not be earlier than the month of now.
func (c Card) Validate(now time.Time) error {
	if !cardNumberPattern.MatchString(c.Number) {
		return ErrInvalidCardNumber
	}
	m := expiryPattern.FindStringSubmatch(c.Expiry)
	if m == nil {
		return ErrInvalidExpiry
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	curYear, curMonth := now.Year()%100, int(now.Month())
	if month < 1 || month > 12 || year < curYear || (year == curYear && month < curMonth) {
		return ErrInvalidExpiry
	}
	if !cvvPattern.MatchString(c.CVV) {
		return ErrInvalidCVV
	}
	return nil
}

// Masked returns the card number with all but the last four digits hidden.
func (c Card) Masked() string {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + digits[len(digits)-4:]
}
