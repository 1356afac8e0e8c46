package callback

import (
	"testing"

	"launcx-order-api/internal/constant"
)

func TestMapProviderStatus(t *testing.T) {
	cases := []struct{ in, want string }{
		{"SUCCESS", "PAID"},
		{"success", "PAID"},
		{"Done", "PAID"},
		{"COMPLETE", "PAID"},
		{"PAID", "PAID"},
		{"EXPIRE", "EXPIRED"},
		{"expired", "EXPIRED"},
		{"FAIL", "FAILED"},
		{"DECLINED", "FAILED"},
		{"CANCELLED", "FAILED"},
		// unknown statuses pass through uppercased, never as success
		{"on_hold", "ON_HOLD"},
		{" pending ", "PENDING"},
	}
	for _, c := range cases {
		if got := MapProviderStatus(c.in); got != c.want {
			t.Errorf("MapProviderStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWithdrawalOutcome(t *testing.T) {
	cases := []struct {
		status string
		isOY   bool
		want   string
	}{
		// OY shape: code "000" is the only success, "300" the only failure
		{"000", true, constant.WithdrawCompleted},
		{"300", true, constant.WithdrawFailed},
		{"101", true, constant.WithdrawPending},
		{"102", true, constant.WithdrawPending},
		{"999", true, constant.WithdrawPending},
		// Hilogate shape: plain status strings
		{"SUCCESS", false, constant.WithdrawCompleted},
		{"success", false, constant.WithdrawCompleted},
		{"COMPLETED", false, constant.WithdrawCompleted},
		{"DONE", false, constant.WithdrawCompleted},
		{"FAILED", false, constant.WithdrawFailed},
		{"REJECTED", false, constant.WithdrawFailed},
		{"CANCELLED", false, constant.WithdrawFailed},
		// In-flight and unknown strings never refund
		{"PENDING", false, constant.WithdrawPending},
		{"PROCESS", false, constant.WithdrawPending},
		{"REFUNDED", false, constant.WithdrawPending},
		{"", false, constant.WithdrawPending},
		// "000" as a Hilogate string status is not a success keyword
		{"000", false, constant.WithdrawPending},
	}
	for _, c := range cases {
		if got := withdrawalOutcome(c.status, c.isOY); got != c.want {
			t.Errorf("withdrawalOutcome(%q, %v) = %q, want %q", c.status, c.isOY, got, c.want)
		}
	}
}
