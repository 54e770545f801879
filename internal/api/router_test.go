package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/restaurant/internal/api/handlers"
	"github.com/jafarshop/restaurant/internal/api/middleware"
	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/config"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/internal/repository/memory"
	"github.com/jafarshop/restaurant/internal/service"
)

const adminToken = "back-office-key"

type testServer struct {
	router   *gin.Engine
	repos    *repository.Repositories
	registry *cart.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: "test",
		Cart: config.CartConfig{
			DeliveryFee:           5000,
			PackagingFee:          1500,
			TaxRate:               13,
			DefaultDeliveryMethod: domain.DeliveryMethodPickup,
			CurrencySymbol:        "Rs.",
		},
		Admin: config.AdminConfig{APIKeyHash: string(hash)},
	}

	logger := zap.NewNop()
	repos := memory.NewRepositories()
	require.NoError(t, service.NewCouponService(repos, logger).EnsureSeed(context.Background()))

	registry := cart.NewRegistry(cart.Settings{
		DeliveryFee:    cfg.Cart.DeliveryFee,
		PackagingFee:   cfg.Cart.PackagingFee,
		ServiceFee:     cfg.Cart.ServiceFee,
		TaxRate:        cfg.Cart.TaxRate,
		DeliveryMethod: cfg.Cart.DefaultDeliveryMethod,
	}, cart.Limits{}, logger)

	return &testServer{
		router:   NewRouter(cfg, repos, registry, logger),
		repos:    repos,
		registry: registry,
	}
}

type request struct {
	method  string
	path    string
	session string
	token   string
	body    interface{}
}

func (s *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.session != "" {
		req.Header.Set(middleware.SessionHeader, r.session)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func cartOf(t *testing.T, w *httptest.ResponseRecorder) handlers.CartResponse {
	t.Helper()
	var resp handlers.CartResponse
	decode(t, w, &resp)
	return resp
}

func platter() gin.H {
	return gin.H{"item_id": "platter", "name": "Mixed Platter", "base_price": 10000}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodGet, path: "/health"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetCart_StartsSession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodGet, path: "/v1/cart"})

	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, session)

	resp := cartOf(t, w)
	assert.Equal(t, session, resp.SessionID)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, domain.DeliveryMethodPickup, resp.DeliveryMethod)
	assert.Equal(t, domain.Totals{Fees: 1500, GrandTotal: 1500}, resp.Totals)
	assert.Equal(t, "Rs. 15.00", resp.Display.GrandTotal)
}

func TestCartFlow_WorkedExample(t *testing.T) {
	s := newTestServer(t)
	session := s.do(t, request{method: http.MethodGet, path: "/v1/cart"}).Header().Get(middleware.SessionHeader)

	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", session: session, body: platter()})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, request{method: http.MethodPut, path: "/v1/cart/delivery-method", session: session,
		body: gin.H{"method": "delivery"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5000), cartOf(t, w).Fees.Delivery)

	w = s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon", session: session,
		body: gin.H{"code": "welcome15"}})
	require.Equal(t, http.StatusOK, w.Code)

	resp := cartOf(t, w)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, "WELCOME15", resp.Coupon.Code)
	assert.Equal(t, domain.Totals{
		Subtotal:   10000,
		Discount:   1500,
		Tax:        1105,
		Fees:       6500,
		GrandTotal: 16105,
	}, resp.Totals)
	assert.Equal(t, "-Rs. 15.00", resp.Display.Discount)
	assert.Equal(t, "Rs. 161.05", resp.Display.GrandTotal)
}

func TestAddLine_ReturnsLineAndCart(t *testing.T) {
	s := newTestServer(t)

	body := gin.H{
		"item_id":    "burger",
		"name":       "Burger",
		"base_price": 1000,
		"variant":    gin.H{"id": "double", "name": "Double", "price_diff": 400},
		"modifiers":  []gin.H{{"id": "cheese", "name": "Cheese", "price_diff": 150}},
		"qty":        2,
	}
	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: body})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Line domain.CartLine       `json:"line"`
		Cart handlers.CartResponse `json:"cart"`
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Line.ID)
	assert.Equal(t, int64(3100), resp.Line.LineTotal)
	assert.Equal(t, int64(3100), resp.Cart.Totals.Subtotal)
}

func TestAddLine_RejectsMissingItem(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: gin.H{"name": "x"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	a := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()}).Header().Get(middleware.SessionHeader)
	b := s.do(t, request{method: http.MethodGet, path: "/v1/cart"}).Header().Get(middleware.SessionHeader)

	require.NotEqual(t, a, b)
	assert.Len(t, cartOf(t, s.do(t, request{method: http.MethodGet, path: "/v1/cart", session: a})).Lines, 1)
	assert.Empty(t, cartOf(t, s.do(t, request{method: http.MethodGet, path: "/v1/cart", session: b})).Lines)
	assert.Equal(t, 1, s.registry.Len(), "only the session that added a line holds a cart")
}

func TestReadsDoNotRegisterCarts(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 200; i++ {
		w := s.do(t, request{method: http.MethodGet, path: "/v1/cart"})
		require.Equal(t, http.StatusOK, w.Code)
		w = s.do(t, request{method: http.MethodGet, path: "/v1/cart", session: uuid.NewString()})
		require.Equal(t, http.StatusOK, w.Code)
	}
	s.do(t, request{method: http.MethodDelete, path: "/v1/cart"})
	s.do(t, request{method: http.MethodDelete, path: "/v1/cart/coupon"})
	s.do(t, request{method: http.MethodDelete, path: "/v1/cart/lines/missing"})
	s.do(t, request{method: http.MethodPatch, path: "/v1/cart/lines/missing", body: gin.H{"qty": 2}})
	s.do(t, request{method: http.MethodPost, path: "/v1/checkout", body: gin.H{"customer": gin.H{"name": "Asha"}}})

	assert.Equal(t, 0, s.registry.Len())
}

func TestRejectedMutationsDoNotRegisterCarts(t *testing.T) {
	s := newTestServer(t)

	s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: gin.H{"name": "x"}})
	s.do(t, request{method: http.MethodPut, path: "/v1/cart/delivery-method", body: gin.H{"method": "drone"}})
	s.do(t, request{method: http.MethodPut, path: "/v1/cart/tip", body: gin.H{}})
	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon", body: gin.H{"code": "NOPE"}})
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 0, s.registry.Len())
}

func TestSetQty(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()})
	session := w.Header().Get(middleware.SessionHeader)
	var added struct {
		Line domain.CartLine `json:"line"`
	}
	decode(t, w, &added)

	w = s.do(t, request{method: http.MethodPatch, path: "/v1/cart/lines/" + added.Line.ID, session: session,
		body: gin.H{"qty": 3}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(30000), cartOf(t, w).Totals.Subtotal)

	w = s.do(t, request{method: http.MethodPatch, path: "/v1/cart/lines/" + added.Line.ID, session: session,
		body: gin.H{"qty": 0}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := cartOf(t, w)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(1), resp.Lines[0].Qty)

	w = s.do(t, request{method: http.MethodPatch, path: "/v1/cart/lines/missing", session: session,
		body: gin.H{"qty": 2}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveLine(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()})
	session := w.Header().Get(middleware.SessionHeader)
	var added struct {
		Line domain.CartLine `json:"line"`
	}
	decode(t, w, &added)

	w = s.do(t, request{method: http.MethodDelete, path: "/v1/cart/lines/missing", session: session})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, cartOf(t, w).Lines, 1)

	w = s.do(t, request{method: http.MethodDelete, path: "/v1/cart/lines/" + added.Line.ID, session: session})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartOf(t, w).Lines)
}

func TestSetTip_ClampsNegative(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodPut, path: "/v1/cart/tip", body: gin.H{"amount": -500}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), cartOf(t, w).Tip)
}

func TestSetDeliveryMethod_RejectsUnknown(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodPut, path: "/v1/cart/delivery-method", body: gin.H{"method": "drone"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestApplyCoupon_UnknownCodeKeepsCart(t *testing.T) {
	s := newTestServer(t)
	session := s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon",
		body: gin.H{"code": "WELCOME15"}}).Header().Get(middleware.SessionHeader)

	w := s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon", session: session,
		body: gin.H{"code": "NOPE"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := cartOf(t, s.do(t, request{method: http.MethodGet, path: "/v1/cart", session: session}))
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, "WELCOME15", resp.Coupon.Code)

	w = s.do(t, request{method: http.MethodDelete, path: "/v1/cart/coupon", session: session})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, cartOf(t, w).Coupon)
}

func TestClearCart(t *testing.T) {
	s := newTestServer(t)
	session := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()}).Header().Get(middleware.SessionHeader)
	s.do(t, request{method: http.MethodPut, path: "/v1/cart/delivery-method", session: session, body: gin.H{"method": "delivery"}})
	s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon", session: session, body: gin.H{"code": "WELCOME15"}})

	w := s.do(t, request{method: http.MethodDelete, path: "/v1/cart", session: session})

	require.Equal(t, http.StatusOK, w.Code)
	resp := cartOf(t, w)
	assert.Empty(t, resp.Lines)
	assert.Nil(t, resp.Coupon)
	assert.Equal(t, domain.DeliveryMethodDelivery, resp.DeliveryMethod)
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t)
	session := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()}).Header().Get(middleware.SessionHeader)

	w := s.do(t, request{method: http.MethodPost, path: "/v1/checkout", session: session,
		body: gin.H{"customer": gin.H{"name": "Asha"}}})
	require.Equal(t, http.StatusCreated, w.Code)

	var order handlers.OrderResponse
	decode(t, w, &order)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(10000), order.Totals.Subtotal)
	assert.Equal(t, int64(10000+1300+1500), order.Totals.GrandTotal)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "platter", order.Lines[0].ItemID)

	assert.Empty(t, cartOf(t, s.do(t, request{method: http.MethodGet, path: "/v1/cart", session: session})).Lines)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/orders/" + order.ID, session: session})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/orders/" + order.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	s := newTestServer(t)
	session := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()}).Header().Get(middleware.SessionHeader)
	s.do(t, request{method: http.MethodPut, path: "/v1/cart/delivery-method", session: session, body: gin.H{"method": "delivery"}})

	w := s.do(t, request{method: http.MethodPost, path: "/v1/checkout", session: session,
		body: gin.H{"customer": gin.H{"name": "Asha"}}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Len(t, cartOf(t, s.do(t, request{method: http.MethodGet, path: "/v1/cart", session: session})).Lines, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodPost, path: "/v1/checkout", body: gin.H{"customer": gin.H{"name": "Asha"}}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodGet, path: "/v1/admin/coupons"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/admin/coupons", token: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/admin/coupons", token: adminToken})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_CouponLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodPost, path: "/v1/admin/coupons", token: adminToken,
		body: gin.H{"code": "flat200", "type": "fixed", "value": 20000}})
	require.Equal(t, http.StatusCreated, w.Code)
	var created handlers.CouponResponse
	decode(t, w, &created)
	assert.Equal(t, "FLAT200", created.Code)
	assert.Equal(t, "Rs. 200.00", created.Display)

	w = s.do(t, request{method: http.MethodPost, path: "/v1/admin/coupons", token: adminToken,
		body: gin.H{"code": "BIG", "type": "percent", "value": 150}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/admin/coupons", token: adminToken})
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Coupons []handlers.CouponResponse `json:"coupons"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Coupons, 2)

	w = s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon", body: gin.H{"code": "flat200"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, request{method: http.MethodDelete, path: "/v1/admin/coupons/flat200", token: adminToken})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/v1/cart/coupon", body: gin.H{"code": "FLAT200"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_OrderStatus(t *testing.T) {
	s := newTestServer(t)
	session := s.do(t, request{method: http.MethodPost, path: "/v1/cart/lines", body: platter()}).Header().Get(middleware.SessionHeader)
	w := s.do(t, request{method: http.MethodPost, path: "/v1/checkout", session: session,
		body: gin.H{"customer": gin.H{"name": "Asha"}}})
	require.Equal(t, http.StatusCreated, w.Code)
	var order handlers.OrderResponse
	decode(t, w, &order)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/admin/orders?status=PENDING", token: adminToken})
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Orders []handlers.OrderResponse `json:"orders"`
		Limit  int                      `json:"limit"`
	}
	decode(t, w, &list)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, order.ID, list.Orders[0].ID)
	assert.Equal(t, 50, list.Limit)

	path := "/v1/admin/orders/" + order.ID + "/status"
	w = s.do(t, request{method: http.MethodPost, path: path, token: adminToken, body: gin.H{"status": "PREPARING"}})
	require.Equal(t, http.StatusOK, w.Code)
	var updated handlers.OrderResponse
	decode(t, w, &updated)
	assert.Equal(t, domain.OrderStatusPreparing, updated.Status)

	events, err := s.repos.OrderEvent.GetByOrderID(context.Background(), uuid.MustParse(order.ID))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "status_change", events[1].EventType)
	assert.Equal(t, "static", events[1].EventData["actor"])

	w = s.do(t, request{method: http.MethodPost, path: path, token: adminToken, body: gin.H{"status": "PENDING"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: path, token: adminToken, body: gin.H{"status": "LOST"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/v1/admin/orders?status=LOST", token: adminToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
