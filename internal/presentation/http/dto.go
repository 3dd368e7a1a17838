package httppresentation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	appcart "github.com/Zhima-Mochi/minishop-storefront/internal/application/cart"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	domreport "github.com/Zhima-Mochi/minishop-storefront/internal/domain/report"
	domreview "github.com/Zhima-Mochi/minishop-storefront/internal/domain/review"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/go-playground/validator/v10"
)

// Request bodies. Business rules live in the use cases; tags only reject malformed shapes.

type registerRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Password  string `json:"password" validate:"required"`
	DiscordID string `json:"discordId"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type stockRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type cardRequest struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

func (c *cardRequest) toDomain() *dompayment.Card {
	if c == nil {
		return nil
	}
	return &dompayment.Card{Number: c.Number, Holder: c.Name, Expiry: c.Expiry, CVV: c.CVV}
}

type orderItemRequest struct {
	ID       int64 `json:"id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	UserID        string             `json:"userId" validate:"required"`
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	CardDetails   *cardRequest       `json:"cardDetails"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type supportRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Type    string `json:"type" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type reviewRequest struct {
	CustomerName string `json:"customerName" validate:"required"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment"`
}

type cartItemRequest struct {
	ProductID int64 `json:"id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type cartQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type checkoutRequest struct {
	PaymentMethod string       `json:"paymentMethod" validate:"required"`
	CardDetails   *cardRequest `json:"cardDetails"`
}

// Response bodies.

type errorBody struct {
	Error string `json:"error"`
}

type productResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func toProduct(p *domcatalog.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Price: p.UnitPrice.InexactFloat64(), Stock: p.Stock}
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	DiscordID string `json:"discordId,omitempty"`
}

func toUser(u *domuser.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, DiscordID: u.DiscordID}
}

type orderLineResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type orderResponse struct {
	OrderNumber   string              `json:"orderNumber"`
	UserID        string              `json:"userId"`
	Items         []orderLineResponse `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	ShippingCost  float64             `json:"shippingCost"`
	Total         float64             `json:"total"`
	PaymentMethod string              `json:"paymentMethod"`
	TransactionID string              `json:"transactionId"`
	Status        domorder.Status     `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func toOrder(o *domorder.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderLineResponse{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    l.UnitPrice.InexactFloat64(),
			Quantity: l.Quantity,
			Total:    l.Total().InexactFloat64(),
		})
	}
	return orderResponse{
		OrderNumber:   o.Number,
		UserID:        o.UserID,
		Items:         items,
		Subtotal:      o.Subtotal.InexactFloat64(),
		ShippingCost:  o.ShippingCost.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type orderSummaryResponse struct {
	OrderNumber string          `json:"orderNumber"`
	Total       float64         `json:"total"`
	Status      domorder.Status `json:"status"`
}

func toOrderSummary(o *domorder.Order) orderSummaryResponse {
	return orderSummaryResponse{OrderNumber: o.Number, Total: o.Total.InexactFloat64(), Status: o.Status}
}

type reviewResponse struct {
	ID           string    `json:"id"`
	ProductID    int64     `json:"productId"`
	CustomerName string    `json:"customerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toReview(r *domreview.Review) reviewResponse {
	return reviewResponse{
		ID:           r.ID,
		ProductID:    r.ProductID,
		CustomerName: r.CustomerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}

type cartLineResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
	Stock    int     `json:"stock"`
}

type cartResponse struct {
	UserID    string             `json:"userId"`
	Items     []cartLineResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Subtotal  float64            `json:"subtotal"`
	Shipping  float64            `json:"shipping"`
	Total     float64            `json:"total"`
}

func toCart(v *appcart.View) cartResponse {
	items := make([]cartLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, cartLineResponse{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    l.UnitPrice.InexactFloat64(),
			Quantity: l.Quantity,
			Total:    l.Total.InexactFloat64(),
			Stock:    l.InStock,
		})
	}
	return cartResponse{
		UserID:    v.UserID,
		Items:     items,
		ItemCount: v.ItemCount,
		Subtotal:  v.Subtotal.InexactFloat64(),
		Shipping:  v.Shipping.InexactFloat64(),
		Total:     v.Total.InexactFloat64(),
	}
}

type reportResponse struct {
	Date            string  `json:"date"`
	TotalOrders     int     `json:"totalOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	NewCustomers    int     `json:"newCustomers"`
	CompletedOrders int     `json:"completedOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
}

func toReport(d domreport.Daily) reportResponse {
	return reportResponse{
		Date:            d.Date.Format("2006-01-02"),
		TotalOrders:     d.TotalOrders,
		TotalRevenue:    d.TotalRevenue.InexactFloat64(),
		NewCustomers:    d.NewCustomers,
		CompletedOrders: d.CompletedOrders,
		PendingOrders:   d.PendingOrders,
		CancelledOrders: d.CancelledOrders,
	}
}

// newValidator reports json field names rather than Go field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describeValidation flattens validator errors into one human-readable message.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" is not a valid address")
		case "gt", "gte", "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return "validation: " + strings.Join(msgs, "; ")
}
