package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/apptest"
	appcart "github.com/Zhima-Mochi/minishop-storefront/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	apppayment "github.com/Zhima-Mochi/minishop-storefront/internal/application/payment"
	appreport "github.com/Zhima-Mochi/minishop-storefront/internal/application/report"
	appreview "github.com/Zhima-Mochi/minishop-storefront/internal/application/review"
	appsupport "github.com/Zhima-Mochi/minishop-storefront/internal/application/support"
	appuser "github.com/Zhima-Mochi/minishop-storefront/internal/application/user"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/notification"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/security"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	server    http.Handler
	products  *memory.ProductRepository
	publisher *apptest.Recorder
	gateway   *apptest.Gateway
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	products := memory.NewProductRepository(domcatalog.Seed())
	users := memory.NewUserRepository()
	orders := memory.NewOrderRepository()
	publisher := &apptest.Recorder{}
	gateway := &apptest.Gateway{}
	shipping := decimal.NewFromInt(50)

	catalogSvc := appcatalog.NewService(products, publisher, nil)
	createOrder := apporder.NewCreateOrderUseCase(apporder.Deps{
		Orders:    orders,
		Products:  products,
		Users:     users,
		Payments:  apppayment.NewChargeUseCase(gateway, nil),
		IDs:       id.UUIDGenerator{},
		Numbers:   id.NewOrderNumbers(),
		Publisher: publisher,
	}, shipping, nil)

	h := NewHandler(Services{
		Catalog:     catalogSvc,
		AdjustStock: appcatalog.NewAdjustStockUseCase(catalogSvc),
		Users:       appuser.NewService(users, security.NewBcryptHasher(bcrypt.MinCost), id.UUIDGenerator{}, publisher, nil),
		CreateOrder: createOrder,
		Orders:      apporder.NewService(orders, users, publisher, nil),
		Carts:       appcart.NewService(memory.NewCartStore(), products, users, createOrder, shipping, nil),
		Reviews:     appreview.NewService(memory.NewReviewRepository(), products, id.UUIDGenerator{}, publisher, nil),
		Support:     appsupport.NewSubmitUseCase(publisher, nil),
		DailyReport: appreport.NewDailyUseCase(orders, users, publisher, nil, nil),
		Publisher:   publisher,
	}, opts, nil)

	return &fixture{server: h.Router(), products: products, publisher: publisher, gateway: gateway}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	rec, body := f.do(t, http.MethodPost, "/api/users/register", map[string]any{
		"name": "Sara", "email": email, "phone": "0501234567", "password": "secret1", "discordId": "42",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return body["user"].(map[string]any)["id"].(string)
}

var visa = map[string]any{"number": "4111 1111 1111 1111", "name": "SARA", "expiry": "12/99", "cvv": "123"}

func (f *fixture) order(t *testing.T, userID string, productID int64, qty int) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/orders", map[string]any{
		"userId":        userID,
		"items":         []map[string]any{{"id": productID, "quantity": qty}},
		"paymentMethod": "visa",
		"cardDetails":   visa,
	})
}

func stockOf(t *testing.T, f *fixture, id int64) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestHealth(t *testing.T) {
	f := newFixture(t, Options{})
	rec, body := f.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, Options{})
	f.register(t, "sara@x.com")

	rec, body := f.do(t, http.MethodPost, "/api/users/login", map[string]any{"email": "sara@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sara", body["user"].(map[string]any)["name"])

	rec, body = f.do(t, http.MethodPost, "/api/users/login", map[string]any{"email": "sara@x.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t, Options{})
	f.register(t, "sara@x.com")

	rec, _ := f.do(t, http.MethodPost, "/api/users/register", map[string]any{
		"name": "Other", "email": "sara@x.com", "phone": "0509999999", "password": "secret2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	f := newFixture(t, Options{})
	rec, body := f.do(t, http.MethodPost, "/api/users/register", map[string]any{"name": "Sara"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "email is required")
}

func TestCreateOrderEndToEnd(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	require.Equal(t, 10, stockOf(t, f, 1))

	rec, body := f.order(t, userID, 1, 3)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	order := body["order"].(map[string]any)
	assert.Equal(t, "processing", order["status"])
	assert.Regexp(t, regexp.MustCompile(`^DX[0-9A-Z]+$`), order["orderNumber"])
	assert.InDelta(t, 3*4999+50, order["total"], 0.001)
	assert.Equal(t, 7, stockOf(t, f, 1))

	rec, body = f.do(t, http.MethodGet, "/api/orders/"+order["orderNumber"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	full := body["order"].(map[string]any)
	assert.InDelta(t, 3*4999, full["subtotal"], 0.001)
	assert.InDelta(t, 50, full["shippingCost"], 0.001)

	names := f.publisher.Names()
	assert.Contains(t, names, domorder.OrderCreatedEvent{}.EventName())
	assert.Contains(t, names, domorder.PaymentSucceededEvent{}.EventName())
}

func TestSequentialOrdersNeverOversell(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	_, _ = f.do(t, http.MethodPatch, "/api/products/9/stock", map[string]any{"quantity": -4})
	require.Equal(t, 2, stockOf(t, f, 9))

	rec, _ := f.order(t, userID, 9, 2)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := f.order(t, userID, 9, 2)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "in stock")
	assert.Equal(t, 0, stockOf(t, f, 9))
}

func TestCreateOrderUnknownUser(t *testing.T) {
	f := newFixture(t, Options{})
	rec, _ := f.order(t, "nobody", 1, 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderPaymentDeclined(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	f.gateway.Decline = "card declined"

	rec, body := f.order(t, userID, 1, 1)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, body["error"], "card declined")
	assert.Equal(t, 10, stockOf(t, f, 1))
	assert.Contains(t, f.publisher.Names(), domorder.PaymentFailedEvent{}.EventName())
}

func TestCreateOrderInvalidCard(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")

	rec, _ := f.do(t, http.MethodPost, "/api/orders", map[string]any{
		"userId":        userID,
		"items":         []map[string]any{{"id": 1, "quantity": 1}},
		"paymentMethod": "visa",
		"cardDetails":   map[string]any{"number": "4111", "expiry": "12/99", "cvv": "123"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.gateway.Calls())
}

func TestPublishFailureDoesNotChangeResponse(t *testing.T) {
	ok := newFixture(t, Options{})
	failing := newFixture(t, Options{})
	failing.publisher.Err = errors.New("bus unavailable")

	okUser := ok.register(t, "sara@x.com")
	failUser := failing.register(t, "sara@x.com")

	okRec, okBody := ok.order(t, okUser, 2, 1)
	failRec, failBody := failing.order(t, failUser, 2, 1)

	assert.Equal(t, okRec.Code, failRec.Code)
	assert.Equal(t, okBody["order"].(map[string]any)["total"], failBody["order"].(map[string]any)["total"])
	assert.Equal(t, okBody["order"].(map[string]any)["status"], failBody["order"].(map[string]any)["status"])
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	_, body := f.order(t, userID, 1, 1)
	number := body["order"].(map[string]any)["orderNumber"].(string)

	rec, body := f.do(t, http.MethodPatch, "/api/orders/"+number+"/status", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", body["order"].(map[string]any)["status"])

	rec, _ = f.do(t, http.MethodPatch, "/api/orders/"+number+"/status", map[string]any{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/orders/"+number+"/status", map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/orders/DXNOPE/status", map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUserOrders(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	f.order(t, userID, 1, 1)
	f.order(t, userID, 2, 1)

	rec, body := f.do(t, http.MethodGet, "/api/users/"+userID+"/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["orders"], 2)

	rec, body = f.do(t, http.MethodGet, "/api/users/nobody/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["orders"])
}

func TestProducts(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["products"], 9)

	rec, _ = f.do(t, http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodPatch, "/api/products/9/stock", map[string]any{"quantity": -6})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["product"].(map[string]any)["stock"])
	assert.Contains(t, f.publisher.Names(), domcatalog.ProductOutOfStockEvent{}.EventName())

	rec, _ = f.do(t, http.MethodPatch, "/api/products/9/stock", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviews(t *testing.T) {
	f := newFixture(t, Options{})

	rec, _ := f.do(t, http.MethodPost, "/api/products/3/reviews", map[string]any{
		"customerName": "Sara", "rating": 5, "comment": "great",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = f.do(t, http.MethodPost, "/api/products/3/reviews", map[string]any{
		"customerName": "Sara", "rating": 6,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/products/404/reviews", map[string]any{
		"customerName": "Sara", "rating": 4,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/products/3/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["reviews"], 1)
}

func TestCartCheckout(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	base := "/api/users/" + userID + "/cart"

	rec, body := f.do(t, http.MethodPost, base+"/items", map[string]any{"id": 2, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 2*799+50, body["cart"].(map[string]any)["total"], 0.001)

	rec, body = f.do(t, http.MethodPatch, base+"/items/2", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["cart"].(map[string]any)["itemCount"])

	rec, _ = f.do(t, http.MethodPost, base+"/checkout", map[string]any{"paymentMethod": "visa", "cardDetails": visa})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 22, stockOf(t, f, 2))

	rec, body = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["cart"].(map[string]any)["items"])

	rec, _ = f.do(t, http.MethodPost, base+"/checkout", map[string]any{"paymentMethod": "visa", "cardDetails": visa})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemoveAndClear(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	base := "/api/users/" + userID + "/cart"

	f.do(t, http.MethodPost, base+"/items", map[string]any{"id": 1, "quantity": 1})
	f.do(t, http.MethodPost, base+"/items", map[string]any{"id": 2, "quantity": 1})

	rec, body := f.do(t, http.MethodDelete, base+"/items/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["cart"].(map[string]any)["items"], 1)

	rec, _ = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSupport(t *testing.T) {
	f := newFixture(t, Options{})

	rec, _ := f.do(t, http.MethodPost, "/api/support", map[string]any{
		"name": "Sara", "email": "sara@x.com", "type": "payment", "message": "charged twice",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/support", map[string]any{"name": "Sara"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyReport(t *testing.T) {
	f := newFixture(t, Options{})
	userID := f.register(t, "sara@x.com")
	f.order(t, userID, 1, 2)

	rec, body := f.do(t, http.MethodGet, "/api/reports/daily", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := body["report"].(map[string]any)
	assert.EqualValues(t, 1, report["totalOrders"])
	assert.EqualValues(t, 1, report["newCustomers"])
	assert.EqualValues(t, 1, report["pendingOrders"])
	assert.InDelta(t, 2*4999+50, report["totalRevenue"], 0.001)

	rec, _ = f.do(t, http.MethodGet, "/api/reports/daily?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	f := newFixture(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, Options{RateLimit: 0.001, Burst: 2})
	for i := 0; i < 2; i++ {
		rec, _ := f.do(t, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ := f.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPanicBecomesSystemError(t *testing.T) {
	publisher := &apptest.Recorder{}
	h := NewHandler(Services{Publisher: publisher}, Options{}, nil)
	mux := http.NewServeMux()
	h.muxHandle(mux, "GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	got := apptest.Of[notification.SystemErrorEvent](publisher)
	require.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Message)
	assert.Equal(t, "GET /boom", got[0].Location)
	assert.NotEmpty(t, got[0].Stack)
}

func TestUnexpectedErrorIsReported(t *testing.T) {
	publisher := &apptest.Recorder{}
	h := NewHandler(Services{Publisher: publisher}, Options{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	h.writeDomainError(rec, req, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, apptest.Of[notification.SystemErrorEvent](publisher), 1)
}

var _ domoutbox.Publisher = (*apptest.Recorder)(nil)
