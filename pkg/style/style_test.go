package style

import "testing"

func TestPlacesNoColor(t *testing.T) {
	NoColor = true
	t.Cleanup(func() { NoColor = false })

	got := Places([]string{"start", "ready", "end"}, false)
	if got != "start → ready → end" {
		t.Errorf("Places() = %q", got)
	}
}

func TestColorWrapping(t *testing.T) {
	NoColor = false

	if got := C(Red, "x"); got != Red+"x"+Reset {
		t.Errorf("C() = %q", got)
	}
	if got := Places([]string{"ready"}, true); got != Red+"ready"+Reset {
		t.Errorf("failed place should be red, got %q", got)
	}

	NoColor = true
	t.Cleanup(func() { NoColor = false })
	if got := Success("Wrote"); got != "Wrote: " {
		t.Errorf("Success() = %q", got)
	}
}
