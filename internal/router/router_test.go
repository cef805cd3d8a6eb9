package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type testShop struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestShop(t *testing.T) *testShop {
	t.Helper()
	gin.SetMode(gin.TestMode)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:router_"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	products := []models.Product{
		{ID: "A", Name: "Jacket", Price: models.MustMoney("100"), Discount: decimal.NewFromInt(10), Category: "Clothing", Stock: 5, IsActive: true},
		{ID: "B", Name: "Mug", Price: models.MustMoney("50"), Category: "Home", Stock: 3, IsActive: true},
	}
	if err := db.Create(&products).Error; err != nil {
		t.Fatalf("seed products failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Cart: config.CartConfig{
			Store:                 constants.CartStoreMemory,
			FreeShippingThreshold: "100",
			ShippingFee:           "10",
			TaxRate:               "0.08",
			SessionCacheSize:      16,
		},
		Session: config.SessionConfig{Secret: "router-test"},
		Admin:   config.AdminConfig{APIKey: "admin-secret"},
	}
	container, err := provider.Build(cfg, db, nil)
	if err != nil {
		t.Fatalf("build container failed: %v", err)
	}
	return &testShop{t: t, engine: SetupRouter(cfg, container)}
}

func (s *testShop) do(method, path string, body interface{}, headers map[string]string) apiResponse {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set(constants.HeaderCartSession, s.token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if token := w.Header().Get(constants.HeaderCartSession); token != "" {
		s.token = token
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		s.t.Fatalf("unmarshal %s %s response failed: %v (%s)", method, path, err, w.Body.String())
	}
	return resp
}

type cartPayload struct {
	Items   []map[string]interface{} `json:"items"`
	Summary struct {
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"summary"`
	ItemCount int    `json:"item_count"`
	Warning   string `json:"warning"`
}

func decodeCart(t *testing.T, resp apiResponse) cartPayload {
	t.Helper()
	if resp.StatusCode != 0 {
		t.Fatalf("cart request failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var payload cartPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	return payload
}

func TestCartFlowOverHTTP(t *testing.T) {
	shop := newTestShop(t)

	added := decodeCart(t, shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "A", "quantity": 1}, nil))
	if shop.token == "" {
		t.Fatalf("first cart call should issue a session token")
	}
	if added.ItemCount != 1 || added.Summary.Subtotal != "90.00" || added.Summary.Shipping != "10.00" {
		t.Fatalf("unexpected cart after add: %+v", added)
	}

	decodeCart(t, shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "B"}, nil))
	incremented := decodeCart(t, shop.do(http.MethodPost, "/api/v1/cart/items/B/increment", nil, nil))
	if incremented.Summary.Subtotal != "190.00" || incremented.Summary.Shipping != "0.00" {
		t.Fatalf("unexpected totals after increment: %+v", incremented.Summary)
	}
	if incremented.Summary.Tax != "15.20" || incremented.Summary.Total != "205.20" {
		t.Fatalf("unexpected tax/total: %+v", incremented.Summary)
	}

	decremented := decodeCart(t, shop.do(http.MethodPost, "/api/v1/cart/items/A/decrement", nil, nil))
	if decremented.ItemCount != 3 {
		t.Fatalf("decrement at 1 should keep quantity, count want 3 got %d", decremented.ItemCount)
	}

	count := shop.do(http.MethodGet, "/api/v1/cart/count", nil, nil)
	var countData map[string]int
	_ = json.Unmarshal(count.Data, &countData)
	if countData["item_count"] != 3 {
		t.Fatalf("count want 3 got %d", countData["item_count"])
	}

	removed := decodeCart(t, shop.do(http.MethodDelete, "/api/v1/cart/items/B", nil, nil))
	if removed.ItemCount != 1 || len(removed.Items) != 1 {
		t.Fatalf("remove should leave one line: %+v", removed)
	}
	cleared := decodeCart(t, shop.do(http.MethodDelete, "/api/v1/cart", nil, nil))
	if cleared.ItemCount != 0 || cleared.Summary.Total != "0.00" {
		t.Fatalf("clear should empty cart: %+v", cleared)
	}
}

func TestCartErrorsOverHTTP(t *testing.T) {
	shop := newTestShop(t)

	if resp := shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "missing"}, nil); resp.StatusCode != 404 {
		t.Fatalf("unknown product want 404 got %d", resp.StatusCode)
	}
	if resp := shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "A", "quantity": -2}, nil); resp.StatusCode != 400 {
		t.Fatalf("negative quantity want 400 got %d", resp.StatusCode)
	}
	if resp := shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{}, nil); resp.StatusCode != 400 {
		t.Fatalf("missing product_id want 400 got %d", resp.StatusCode)
	}
	if resp := shop.do(http.MethodPost, "/api/v1/checkout", gin.H{
		"email":          "buyer@example.com",
		"payment_method": "paypal",
	}, nil); resp.StatusCode != 400 {
		t.Fatalf("empty cart checkout want 400 got %d", resp.StatusCode)
	}
}

func TestCheckoutAndTrackOverHTTP(t *testing.T) {
	shop := newTestShop(t)
	decodeCart(t, shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "A", "quantity": 2}, nil))

	resp := shop.do(http.MethodPost, "/api/v1/checkout", gin.H{
		"email":          "Buyer@Example.com",
		"payment_method": "credit_card",
		"shipping_address": gin.H{
			"full_name": "Ada Lovelace",
			"street":    "1 Main St",
			"city":      "London",
			"state":     "LDN",
			"zip_code":  "N1",
			"country":   "UK",
			"phone":     "123456",
		},
	}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("checkout failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var result struct {
		Order struct {
			ID      uint   `json:"id"`
			OrderNo string `json:"order_no"`
			Status  string `json:"status"`
			Total   string `json:"total"`
		} `json:"order"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("decode checkout failed: %v", err)
	}
	if result.Order.Total != "194.40" {
		t.Fatalf("order total want 194.40 got %s", result.Order.Total)
	}

	cart := decodeCart(t, shop.do(http.MethodGet, "/api/v1/cart", nil, nil))
	if cart.ItemCount != 0 {
		t.Fatalf("cart should be cleared after checkout")
	}

	query := url.Values{"order_no": {result.Order.OrderNo}, "email": {"buyer@example.com"}}
	if tracked := shop.do(http.MethodGet, "/api/v1/public/orders/track?"+query.Encode(), nil, nil); tracked.StatusCode != 0 {
		t.Fatalf("track failed: %d %s", tracked.StatusCode, tracked.Msg)
	}
	wrong := url.Values{"order_no": {result.Order.OrderNo}, "email": {"other@example.com"}}
	if tracked := shop.do(http.MethodGet, "/api/v1/public/orders/track?"+wrong.Encode(), nil, nil); tracked.StatusCode != 404 {
		t.Fatalf("track with wrong email want 404 got %d", tracked.StatusCode)
	}

	if orders := shop.do(http.MethodGet, "/api/v1/orders", nil, nil); orders.StatusCode != 0 || !strings.Contains(string(orders.Data), result.Order.OrderNo) {
		t.Fatalf("session orders should include the new order: %s", string(orders.Data))
	}

	adminHeaders := map[string]string{constants.HeaderAdminKey: "admin-secret"}
	path := "/api/v1/admin/orders/" + strconv.FormatUint(uint64(result.Order.ID), 10) + "/status"
	if denied := shop.do(http.MethodPatch, path, gin.H{"status": "shipped"}, nil); denied.StatusCode != 401 {
		t.Fatalf("admin without key want 401 got %d", denied.StatusCode)
	}
	if shipped := shop.do(http.MethodPatch, path, gin.H{"status": "shipped", "tracking_number": "TRK1"}, adminHeaders); shipped.StatusCode != 0 {
		t.Fatalf("ship failed: %d %s", shipped.StatusCode, shipped.Msg)
	}
	if invalid := shop.do(http.MethodPatch, path, gin.H{"status": "pending"}, adminHeaders); invalid.StatusCode != 400 {
		t.Fatalf("invalid transition want 400 got %d", invalid.StatusCode)
	}
}

func TestProductEndpointsOverHTTP(t *testing.T) {
	shop := newTestShop(t)
	adminHeaders := map[string]string{constants.HeaderAdminKey: "admin-secret"}

	list := shop.do(http.MethodGet, "/api/v1/public/products?category=Clothing", nil, nil)
	if list.StatusCode != 0 || !strings.Contains(string(list.Data), `"effective_price":"90.00"`) {
		t.Fatalf("product list should expose effective price: %s", string(list.Data))
	}

	created := shop.do(http.MethodPost, "/api/v1/admin/products", gin.H{
		"id":    "C",
		"name":  "Lamp",
		"price": "25.50",
		"stock": 4,
	}, adminHeaders)
	if created.StatusCode != 0 {
		t.Fatalf("create product failed: %d %s", created.StatusCode, created.Msg)
	}
	if dup := shop.do(http.MethodPost, "/api/v1/admin/products", gin.H{"id": "C", "name": "Lamp", "price": "1"}, adminHeaders); dup.StatusCode != 409 {
		t.Fatalf("duplicate id want 409 got %d", dup.StatusCode)
	}
	if got := shop.do(http.MethodGet, "/api/v1/public/products/C", nil, nil); got.StatusCode != 0 {
		t.Fatalf("get created product failed: %d", got.StatusCode)
	}
	if deleted := shop.do(http.MethodDelete, "/api/v1/admin/products/C", nil, adminHeaders); deleted.StatusCode != 0 {
		t.Fatalf("delete product failed: %d %s", deleted.StatusCode, deleted.Msg)
	}
	if got := shop.do(http.MethodGet, "/api/v1/public/products/C", nil, nil); got.StatusCode != 404 {
		t.Fatalf("deleted product want 404 got %d", got.StatusCode)
	}
}

func TestHealthReportsCartState(t *testing.T) {
	shop := newTestShop(t)
	decodeCart(t, shop.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "A"}, nil))

	resp := shop.do(http.MethodGet, "/health", nil, nil)
	var health struct {
		Status       string `json:"status"`
		CartStore    string `json:"cart_store"`
		CartSessions int    `json:"cart_sessions"`
		Redis        bool   `json:"redis"`
	}
	if err := json.Unmarshal(resp.Data, &health); err != nil {
		t.Fatalf("decode health failed: %v", err)
	}
	if health.Status != "ok" || health.CartStore != constants.CartStoreMemory || health.CartSessions != 1 || health.Redis {
		t.Fatalf("unexpected health payload: %+v", health)
	}
}
