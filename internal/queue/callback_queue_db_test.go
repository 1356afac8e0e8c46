package queue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/dal"
	"launcx-order-api/internal/dao"
	ordermodel "launcx-order-api/internal/model/order"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&ordermodel.CallbackJob{}, &ordermodel.CallbackJobDeadLetter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dal.DB = db
	return db
}

func setRetryBudget(t *testing.T, tries int, gap time.Duration) {
	t.Helper()
	savedTries, savedGap := deliverTries, deliverRetryGap
	deliverTries, deliverRetryGap = tries, gap
	t.Cleanup(func() { deliverTries, deliverRetryGap = savedTries, savedGap })
}

// A job whose partner keeps answering 5xx must end up in the dead-letter
// table once the attempt budget is spent, carrying the full attempt count
// including the delivery that sealed its fate.
func TestDrainEscalatesToDeadLetter(t *testing.T) {
	db := newTestDB(t)
	setRetryBudget(t, 1, time.Millisecond)
	config.C.CallbackQueue.MaxAttempts = 3
	config.C.CallbackQueue.TimeoutSec = 5
	config.C.CallbackQueue.BatchSize = 10

	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer partner.Close()

	orderDao := dao.NewOrderDao()
	job := &ordermodel.CallbackJob{
		URL:       partner.URL,
		Payload:   ordermodel.RawJSON(`{"orderId":"1","status":"PAID"}`),
		Signature: "sig",
	}
	if err := orderDao.InsertCallbackJob(job); err != nil {
		t.Fatalf("insert job: %v", err)
	}

	d := &Drainer{OrderDao: orderDao, Log: logrus.New()}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d.DrainOnce(ctx)
	}

	var live int64
	db.Model(&ordermodel.CallbackJob{}).Count(&live)
	if live != 0 {
		t.Errorf("live jobs = %d, want 0 after escalation", live)
	}

	var dl ordermodel.CallbackJobDeadLetter
	if err := db.First(&dl).Error; err != nil {
		t.Fatalf("load dead letter: %v", err)
	}
	if dl.JobID != job.ID {
		t.Errorf("dead letter jobId = %d, want %d", dl.JobID, job.ID)
	}
	if dl.Attempts != 3 {
		t.Errorf("dead letter attempts = %d, want 3", dl.Attempts)
	}
	if dl.StatusCode == nil || *dl.StatusCode != http.StatusInternalServerError {
		t.Errorf("dead letter statusCode = %v, want 500", dl.StatusCode)
	}
	if string(dl.Payload) != `{"orderId":"1","status":"PAID"}` {
		t.Errorf("dead letter payload mutated: %s", dl.Payload)
	}
}

// A 5xx inside one drain cycle is retried inline and the cycle still counts
// as a single attempt.
func TestDeliverRetriesTransientFailures(t *testing.T) {
	setRetryBudget(t, 3, time.Millisecond)
	config.C.CallbackQueue.TimeoutSec = 5

	var hits atomic.Int32
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "hiccup", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer partner.Close()

	d := &Drainer{Log: logrus.New()}
	status, err := d.deliver(context.Background(), ordermodel.CallbackJob{
		URL:       partner.URL,
		Payload:   ordermodel.RawJSON(`{}`),
		Signature: "sig",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("partner hits = %d, want 3", n)
	}
}

// A 4xx means the partner rejected the payload; the inline budget must not
// hammer them with identical retries.
func TestDeliverDoesNotRetryClientError(t *testing.T) {
	setRetryBudget(t, 3, time.Millisecond)
	config.C.CallbackQueue.TimeoutSec = 5

	var hits atomic.Int32
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer partner.Close()

	d := &Drainer{Log: logrus.New()}
	status, err := d.deliver(context.Background(), ordermodel.CallbackJob{
		URL:       partner.URL,
		Payload:   ordermodel.RawJSON(`{}`),
		Signature: "sig",
	})
	if err == nil {
		t.Fatal("expected a delivery error on 400")
	}
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("partner hits = %d, want 1", n)
	}
}
