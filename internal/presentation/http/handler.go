package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	appcart "github.com/Zhima-Mochi/minishop-storefront/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	appreport "github.com/Zhima-Mochi/minishop-storefront/internal/application/report"
	appreview "github.com/Zhima-Mochi/minishop-storefront/internal/application/review"
	appuser "github.com/Zhima-Mochi/minishop-storefront/internal/application/user"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domreport "github.com/Zhima-Mochi/minishop-storefront/internal/domain/report"
	domsupport "github.com/Zhima-Mochi/minishop-storefront/internal/domain/support"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"
	"github.com/go-playground/validator/v10"
)

const (
	componentHTTPHandler = "http_server"
	serverName           = "DEVIX Store API v1.0"
	maxBodyBytes         = 1 << 20
)

// Services are the use cases reachable over HTTP.
type Services struct {
	Catalog     *appcatalog.Service
	AdjustStock application.UseCase[appcatalog.AdjustStockInput, *domcatalog.Product]
	Users       *appuser.Service
	CreateOrder application.UseCase[apporder.CreateOrderInput, *apporder.CreateOrderResult]
	Orders      *apporder.Service
	Carts       *appcart.Service
	Reviews     *appreview.Service
	Support     application.UseCase[domsupport.Message, struct{}]
	DailyReport application.UseCase[appreport.DailyInput, domreport.Daily]

	// Publisher receives system-error events for panics and unexpected failures.
	Publisher domoutbox.Publisher
}

type Options struct {
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64
	Burst     int
	// Location resolves the ?date= query of the daily report; nil means UTC.
	Location *time.Location
	// Metrics, when set, is served on GET /metrics outside the middleware chain.
	Metrics http.Handler
}

type Handler struct {
	svc       Services
	publisher domoutbox.Publisher
	limiter   *ClientLimiter
	metrics   http.Handler
	validate  *validator.Validate
	loc       *time.Location
	now       func() time.Time

	log          observability.Logger
	tracer       observability.Tracer
	httpRequests observability.Counter   // http_requests_total{method,route,status}
	httpDuration observability.Histogram // http_request_duration_seconds{method,route,status}
}

func NewHandler(svc Services, opts Options, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	h := &Handler{
		svc:          svc,
		publisher:    svc.Publisher,
		metrics:      opts.Metrics,
		validate:     newValidator(),
		loc:          opts.Location,
		now:          time.Now,
		log:          tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tracer:       tel.Tracer(),
		httpRequests: tel.Metrics().Counter(observability.MHTTPRequests),
		httpDuration: tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if opts.RateLimit > 0 {
		h.limiter = NewClientLimiter(opts.RateLimit, opts.Burst)
	}
	return h
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, "GET /api/health", h.handleHealth)

	h.muxHandle(mux, "GET /api/products", h.handleListProducts)
	h.muxHandle(mux, "GET /api/products/{id}", h.handleGetProduct)
	h.muxHandle(mux, "PATCH /api/products/{id}/stock", h.handleAdjustStock)
	h.muxHandle(mux, "GET /api/products/{id}/reviews", h.handleListReviews)
	h.muxHandle(mux, "POST /api/products/{id}/reviews", h.handleSubmitReview)

	h.muxHandle(mux, "POST /api/users/register", h.handleRegister)
	h.muxHandle(mux, "POST /api/users/login", h.handleLogin)
	h.muxHandle(mux, "GET /api/users/{userId}/orders", h.handleListUserOrders)

	h.muxHandle(mux, "GET /api/users/{userId}/cart", h.handleViewCart)
	h.muxHandle(mux, "DELETE /api/users/{userId}/cart", h.handleClearCart)
	h.muxHandle(mux, "POST /api/users/{userId}/cart/items", h.handleAddCartItem)
	h.muxHandle(mux, "PATCH /api/users/{userId}/cart/items/{productId}", h.handleSetCartItem)
	h.muxHandle(mux, "DELETE /api/users/{userId}/cart/items/{productId}", h.handleRemoveCartItem)
	h.muxHandle(mux, "POST /api/users/{userId}/cart/checkout", h.handleCheckout)

	h.muxHandle(mux, "POST /api/orders", h.handleCreateOrder)
	h.muxHandle(mux, "GET /api/orders/{orderNumber}", h.handleGetOrder)
	h.muxHandle(mux, "PATCH /api/orders/{orderNumber}/status", h.handleUpdateOrderStatus)

	h.muxHandle(mux, "POST /api/support", h.handleSupport)
	h.muxHandle(mux, "GET /api/reports/daily", h.handleDailyReport)

	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

// muxHandle wires a route through Trace → Request Logger → Metrics → Access Log →
// Recover → Rate Limit → Handler.
func (h *Handler) muxHandle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	chain := h.withTrace(
		ObservabilityMiddleware(h.log, func(r *http.Request) string {
			return r.Header.Get(headerRequestID)
		})(
			h.withHTTPMetrics(
				h.withAccessLog(
					h.withRecover(
						h.withRateLimit(handler),
					),
				),
			),
		),
	)
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		chain.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), pattern)))
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Server    string    `json:"server"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: h.now().UTC(), Server: serverName})
}

// Catalog

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "products": out})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Catalog.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "product": toProduct(p)})
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r, "id")
	if !ok {
		return
	}
	var req stockRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.AdjustStock.Execute(r.Context(), appcatalog.AdjustStockInput{ProductID: id, Delta: *req.Quantity})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "product": toProduct(p)})
}

// Reviews

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r, "id")
	if !ok {
		return
	}
	reviews, err := h.svc.Reviews.List(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReview(rv))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reviews": out})
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	rv, err := h.svc.Reviews.Submit(r.Context(), appreview.SubmitInput{
		ProductID:    id,
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "review": toReview(rv)})
}

// Users

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Users.Register(r.Context(), appuser.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		DiscordID: req.DiscordID,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "account created",
		"user":    toUser(u),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Users.Authenticate(r.Context(), appuser.AuthenticateInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUser(u)})
}

// Orders

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	lines := make([]apporder.LineInput, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, apporder.LineInput{ProductID: it.ID, Quantity: it.Quantity})
	}
	res, err := h.svc.CreateOrder.Execute(r.Context(), apporder.CreateOrderInput{
		UserID:        req.UserID,
		Lines:         lines,
		PaymentMethod: req.PaymentMethod,
		Card:          req.CardDetails.toDomain(),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "order created",
		"order":   toOrderSummary(res.Order),
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Orders.Get(r.Context(), r.PathValue("orderNumber"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": toOrder(o)})
}

func (h *Handler) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": out})
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, err := h.svc.Orders.UpdateStatus(r.Context(), apporder.UpdateStatusInput{
		OrderNumber: r.PathValue("orderNumber"),
		Status:      req.Status,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": toOrder(o)})
}

// Cart

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Carts.View(r.Context(), r.PathValue("userId"))
	h.writeCart(w, r, v, err)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Carts.Clear(r.Context(), r.PathValue("userId")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.svc.Carts.AddItem(r.Context(), r.PathValue("userId"), req.ProductID, req.Quantity)
	h.writeCart(w, r, v, err)
}

func (h *Handler) handleSetCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r, "productId")
	if !ok {
		return
	}
	var req cartQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.svc.Carts.SetQuantity(r.Context(), r.PathValue("userId"), id, *req.Quantity)
	h.writeCart(w, r, v, err)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r, "productId")
	if !ok {
		return
	}
	v, err := h.svc.Carts.RemoveItem(r.Context(), r.PathValue("userId"), id)
	h.writeCart(w, r, v, err)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.Carts.Checkout(r.Context(), appcart.CheckoutInput{
		UserID:        r.PathValue("userId"),
		PaymentMethod: req.PaymentMethod,
		Card:          req.CardDetails.toDomain(),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "order created",
		"order":   toOrderSummary(res.Order),
	})
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, v *appcart.View, err error) {
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cart": toCart(v)})
}

// Support & reports

func (h *Handler) handleSupport(w http.ResponseWriter, r *http.Request) {
	var req supportRequest
	if !h.decode(w, r, &req) {
		return
	}
	_, err := h.svc.Support.Execute(r.Context(), domsupport.Message{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Type:    req.Type,
		Message: req.Message,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "message sent"})
}

func (h *Handler) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("validation: date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}
	rep, err := h.svc.DailyReport.Execute(r.Context(), appreport.DailyInput{Day: day})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": toReport(rep)})
}

// Helpers

func (h *Handler) productID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("validation: %s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into dst and runs its validation tags; it writes the 400
// itself and reports false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		logctx.FromOr(r.Context(), h.log).Debug("http_decode_failed", observability.F("error", err))
		writeError(w, http.StatusBadRequest, errors.New(msg))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(describeValidation(err)))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
