package idgen

import "testing"

func TestInitFromEnvRegistersAllNodes(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE_ID", "3")
	InitFromEnv()

	if New() == 0 {
		t.Error("default node returned zero id")
	}
	// The order node must be usable right after boot; ids are unique.
	a, b := NewFrom("order"), NewFrom("order")
	if a == 0 || b == 0 {
		t.Fatalf("order node returned zero id: %d, %d", a, b)
	}
	if a == b {
		t.Errorf("order node returned duplicate id %d", a)
	}
}

func TestInitFromEnvBadValueFallsBack(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE_ID", "not-a-number")
	InitFromEnv()
	if NewFrom("order") == 0 {
		t.Error("order node unusable after fallback init")
	}
}
