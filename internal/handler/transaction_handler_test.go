package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/dal"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/event"
	"launcx-order-api/internal/idgen"
	"launcx-order-api/internal/middleware"
	mainmodel "launcx-order-api/internal/model/main"
	ordermodel "launcx-order-api/internal/model/order"
	"launcx-order-api/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&mainmodel.PartnerClient{}, &mainmodel.Merchant{}, &mainmodel.SubMerchant{},
		&ordermodel.Order{}, &ordermodel.TransactionRequest{}, &ordermodel.TransactionCallback{},
		&ordermodel.CallbackJob{}, &ordermodel.CallbackJobDeadLetter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dal.DB = db
	return db
}

// Orders holding a provider-signed URL serve its content through the
// same-origin endpoint; the signed URL itself never reaches the client.
func TestQRProxyServesProviderContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	config.C.Providers.TimeoutSec = 5

	providerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "QR-IMAGE-BYTES")
	}))
	defer providerSrv.Close()

	signed := providerSrv.URL + "/qr/signed?token=abc"
	order := &ordermodel.Order{
		ID: 7001, PartnerClientID: 1, MerchantID: 1, SubMerchantID: 1,
		Channel: "oy", Amount: decimal.NewFromInt(10000), Status: "PENDING",
		CheckoutURL:         "https://api.test/api/v1/payment/7001/qr",
		ProviderCheckoutURL: &signed,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	inline := "00020101021226QR"
	plain := &ordermodel.Order{
		ID: 7002, PartnerClientID: 1, MerchantID: 1, SubMerchantID: 1,
		Channel: "hilogate", Amount: decimal.NewFromInt(10000), Status: "PENDING",
		CheckoutURL: "https://pay.test/payment/7002", QRPayload: &inline,
	}
	if err := db.Create(plain).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	r := gin.New()
	r.GET("/api/v1/payment/:id/qr", NewTransactionHandler(event.Nop{}).QR)

	get := func(id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payment/"+id+"/qr", nil))
		return w
	}

	w := get("7001")
	if w.Code != http.StatusOK {
		t.Fatalf("proxied qr status = %d", w.Code)
	}
	if w.Body.String() != "QR-IMAGE-BYTES" {
		t.Errorf("proxied body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if strings.Contains(w.Body.String(), "token=abc") {
		t.Error("signed provider URL leaked to the client")
	}

	w = get("7002")
	if w.Code != http.StatusOK || w.Body.String() != inline {
		t.Errorf("inline qr: status %d body %q", w.Code, w.Body.String())
	}

	if w := get("9999"); w.Code != http.StatusNotFound {
		t.Errorf("unknown order status = %d, want 404", w.Code)
	}
}

// Full Hilogate flow: create answers 201 with a QR payload, the success
// webhook flips the order PAID with the platform fee applied and enqueues
// exactly one partner job, replays change nothing, and a settled order is
// terminal.
func TestHilogateCreateAndCallbackFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	idgen.InitFromEnv()

	config.C.Checkout.Hosts = []string{"https://pay.test"}
	config.C.Providers.TimeoutSec = 5

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"qr_string":"QR-TEST-123","trx_id":"HG-1"}}`)
	}))
	defer gateway.Close()
	config.C.Providers.Hilogate.BaseURL = gateway.URL

	secret := "sk-test"
	partner := &mainmodel.PartnerClient{
		ID: 1, Name: "acme", ApiKey: "key-1", ApiSecret: "shh", Status: 1,
		FeePercent:     decimal.NewFromInt(2),
		WeekendFeePct:  decimal.NewFromInt(2),
		CallbackURL:    "https://partner.test/cb",
		CallbackSecret: "cb-secret",
	}
	if err := db.Create(partner).Error; err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	if err := db.Create(&mainmodel.Merchant{ID: 1, Name: "hilogate", Status: 1}).Error; err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	sub := &mainmodel.SubMerchant{
		ID: 1, MerchantID: 1, Provider: "hilogate",
		Credentials: mainmodel.Credentials{"merchantId": "HM-1", "secretKey": secret},
		Schedule:    mainmodel.Schedule{Weekday: true, Weekend: true},
		Status:      1,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed sub-merchant: %v", err)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.PartnerKey, partner) })
	txn := NewTransactionHandler(event.Nop{})
	cb := NewCallbackHandler(event.Nop{})
	r.POST("/api/v1/transactions", txn.Create)
	r.POST("/api/v1/transactions/callback", cb.Hilogate)

	// Create with flow=embed.
	body := `{"merchantName":"hilogate","price":50000,"buyer":"tester","flow":"embed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201, body %s", w.Code, w.Body)
	}
	var env struct {
		Code int                       `json:"code"`
		Data dto.CreateTransactionResp `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if env.Data.QRPayload != "QR-TEST-123" {
		t.Errorf("qrPayload = %q", env.Data.QRPayload)
	}
	if !env.Data.TotalAmount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("totalAmount = %s", env.Data.TotalAmount)
	}
	orderID, err := strconv.ParseUint(env.Data.OrderID, 10, 64)
	if err != nil {
		t.Fatalf("orderId %q: %v", env.Data.OrderID, err)
	}

	// Success webhook with a correctly computed signature.
	cbPath := "/api/v1/transactions/callback"
	cbBody := fmt.Sprintf(`{"ref_id":%q,"amount":50000,"method":"qris","status":"SUCCESS","net_amount":49000,"total_fee":1000,"settlement_status":"PENDING"}`, env.Data.OrderID)
	minimal := fmt.Sprintf(`{"ref_id":%q,"amount":50000,"method":"qris"}`, env.Data.OrderID)
	sig := utils.HilogateSignature(cbPath, []byte(minimal), secret)

	postCallback := func() int {
		req := httptest.NewRequest(http.MethodPost, cbPath, strings.NewReader(cbBody))
		req.Header.Set("X-Signature", sig)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	if code := postCallback(); code != http.StatusOK {
		t.Fatalf("callback status = %d", code)
	}

	var order ordermodel.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != "PAID" {
		t.Fatalf("order status = %q, want PAID", order.Status)
	}
	// fee = 50000 * 2% = 1000; pending = gross - fee.
	if order.FeeLauncx == nil || !order.FeeLauncx.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("feeLauncx = %v, want 1000", order.FeeLauncx)
	}
	if order.PendingAmount == nil || !order.PendingAmount.Equal(decimal.NewFromInt(49000)) {
		t.Errorf("pendingAmount = %v, want 49000", order.PendingAmount)
	}

	countRows := func(model interface{}) int64 {
		var n int64
		db.Model(model).Count(&n)
		return n
	}
	if n := countRows(&ordermodel.CallbackJob{}); n != 1 {
		t.Errorf("callback jobs = %d, want 1", n)
	}
	if n := countRows(&ordermodel.TransactionCallback{}); n != 1 {
		t.Errorf("audit rows = %d, want 1", n)
	}

	// Replaying the identical webhook is acknowledged but changes nothing.
	if code := postCallback(); code != http.StatusOK {
		t.Fatalf("replay status = %d", code)
	}
	if n := countRows(&ordermodel.CallbackJob{}); n != 1 {
		t.Errorf("callback jobs after replay = %d, want 1", n)
	}
	if n := countRows(&ordermodel.TransactionCallback{}); n != 1 {
		t.Errorf("audit rows after replay = %d, want 1", n)
	}
	var replayed ordermodel.Order
	db.First(&replayed, "id = ?", orderID)
	if replayed.Status != "PAID" || !replayed.FeeLauncx.Equal(*order.FeeLauncx) {
		t.Errorf("replay mutated the order: status %q fee %v", replayed.Status, replayed.FeeLauncx)
	}

	// Once settled, no webhook may touch the order again.
	db.Model(&ordermodel.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"status":            "SETTLED",
		"settlement_amount": decimal.NewFromInt(49000),
		"pending_amount":    nil,
	})
	if code := postCallback(); code != http.StatusOK {
		t.Fatalf("post-settlement replay status = %d", code)
	}
	var settled ordermodel.Order
	db.First(&settled, "id = ?", orderID)
	if settled.Status != "SETTLED" {
		t.Errorf("settled order status changed to %q", settled.Status)
	}
	if settled.SettlementAmount == nil || !settled.SettlementAmount.Equal(decimal.NewFromInt(49000)) {
		t.Errorf("settlementAmount changed: %v", settled.SettlementAmount)
	}
	if n := countRows(&ordermodel.CallbackJob{}); n != 1 {
		t.Errorf("callback jobs after settlement replay = %d, want 1", n)
	}
}
