package service

import (
	"testing"
	"time"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/dto"
)

func TestQRProxyURL(t *testing.T) {
	savedPublic := config.C.Server.PublicURL
	savedHosts := config.C.Checkout.Hosts
	defer func() {
		config.C.Server.PublicURL = savedPublic
		config.C.Checkout.Hosts = savedHosts
	}()

	config.C.Server.PublicURL = "https://api.launcx.com/"
	if got := qrProxyURL("123"); got != "https://api.launcx.com/api/v1/payment/123/qr" {
		t.Errorf("qrProxyURL with publicUrl = %q", got)
	}

	config.C.Server.PublicURL = ""
	config.C.Checkout.Hosts = []string{"https://pay.test"}
	if got := qrProxyURL("123"); got != "https://pay.test/api/v1/payment/123/qr" {
		t.Errorf("qrProxyURL falling back to checkout host = %q", got)
	}
}

type capturePublisher struct {
	key string
	msg any
}

func (p *capturePublisher) Publish(key string, msg any) error {
	p.key = key
	p.msg = msg
	return nil
}

func TestEventResendSchedulerPublishesRecheck(t *testing.T) {
	pub := &capturePublisher{}
	due := time.Now().Add(5 * time.Minute)

	EventResendScheduler{Events: pub}.Schedule(42, due)

	if pub.key != "order.resend" {
		t.Fatalf("routing key = %q", pub.key)
	}
	ev, ok := pub.msg.(dto.ResendCheckEvent)
	if !ok {
		t.Fatalf("message type = %T", pub.msg)
	}
	if ev.OrderID != "42" {
		t.Errorf("orderId = %q", ev.OrderID)
	}
	if ev.Due != due.UnixMilli() {
		t.Errorf("due = %d, want %d", ev.Due, due.UnixMilli())
	}
}
