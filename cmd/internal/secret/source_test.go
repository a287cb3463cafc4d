package secret

import "testing"

func TestSourcePrefersEnvironment(t *testing.T) {
	src := NewSource("SEEDSWAP_TEST_SECRET", "rpc secret")
	src.lookup = func(key string) (string, bool) {
		if key != "SEEDSWAP_TEST_SECRET" {
			t.Fatalf("unexpected lookup %q", key)
		}
		return "hunter2", true
	}
	value, err := src.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "hunter2" {
		t.Fatalf("expected env value, got %q", value)
	}
	// cached
	src.lookup = func(string) (string, bool) { return "other", true }
	if again, _ := src.Get(); again != "hunter2" {
		t.Fatalf("expected cached value, got %q", again)
	}
}

func TestSourceRejectsBlankEnvironment(t *testing.T) {
	src := NewSource("SEEDSWAP_TEST_SECRET", "")
	src.lookup = func(string) (string, bool) { return "   ", true }
	if _, err := src.Get(); err == nil {
		t.Fatalf("expected blank value to be rejected")
	}
}
