package alarm

import "testing"

func TestSignalNamedByName(t *testing.T) {
	sig, err := SignalNamed(123, "SIGTERM")
	if err != nil {
		t.Fatalf("SignalNamed: %v", err)
	}
	if sig.Pid != 123 {
		t.Fatalf("Pid = %d, want 123", sig.Pid)
	}
	if sig.Signum == 0 {
		t.Fatal("Signum should resolve to a non-zero value for SIGTERM")
	}
}

func TestSignalNamedByNumber(t *testing.T) {
	sig, err := SignalNamed(1, "9")
	if err != nil {
		t.Fatalf("SignalNamed: %v", err)
	}
	if sig.Signum != 9 {
		t.Fatalf("Signum = %d, want 9", sig.Signum)
	}
}

func TestSignalNamedUnknown(t *testing.T) {
	if _, err := SignalNamed(1, "SIGNOTAREAL"); err == nil {
		t.Fatal("expected an error for an unrecognised signal name")
	}
}
