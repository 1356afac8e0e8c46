package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/config"
)

func TestGatewayCallHonorsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never answer; only the caller's deadline ends this request. Drain
		// the body first so the server's background read can observe the
		// client disconnect and cancel r.Context(), letting srv.Close return.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	old := config.C.Providers.TimeoutSec
	config.C.Providers.TimeoutSec = 1
	defer func() { config.C.Providers.TimeoutSec = old }()

	h := &Hilogate{Cfg: HilogateConfig{MerchantID: "m", SecretKey: "s"}, BaseURL: srv.URL}
	start := time.Now()
	_, err := h.CreateTransaction(context.Background(), "1001", decimal.NewFromInt(50000), "buyer")
	elapsed := time.Since(start)
	if err == nil {
		t.Fatal("expected a deadline error from a hung gateway")
	}
	if elapsed > 3*time.Second {
		t.Errorf("call blocked %s, per-call deadline not applied", elapsed)
	}
}

func TestProviderTimeoutDefault(t *testing.T) {
	old := config.C.Providers.TimeoutSec
	defer func() { config.C.Providers.TimeoutSec = old }()

	config.C.Providers.TimeoutSec = 0
	if got := config.ProviderTimeout(); got != 15*time.Second {
		t.Errorf("unset timeout = %s, want 15s", got)
	}
	config.C.Providers.TimeoutSec = 7
	if got := config.ProviderTimeout(); got != 7*time.Second {
		t.Errorf("timeout = %s, want 7s", got)
	}
}
