package queue

import "testing"

func TestShouldDeadLetter(t *testing.T) {
	max := 5
	cases := []struct {
		status, attempts int
		want             bool
	}{
		// 4xx is unretryable regardless of attempt count
		{400, 1, true},
		{404, 1, true},
		{422, 1, true},
		{499, 1, true},
		// 5xx and no-response keep retrying until the budget runs out
		{500, 1, false},
		{503, 4, false},
		{0, 1, false},
		// budget exhausted
		{500, 5, true},
		{0, 5, true},
		{503, 6, true},
		// 2xx never reaches this decision in practice, but the attempt cap
		// still holds
		{200, 5, true},
	}
	for _, c := range cases {
		if got := shouldDeadLetter(c.status, c.attempts, max); got != c.want {
			t.Errorf("shouldDeadLetter(%d, %d, %d) = %v, want %v", c.status, c.attempts, max, got, c.want)
		}
	}
}
