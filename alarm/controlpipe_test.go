//go:build linux || darwin

package alarm

import "testing"

func TestControlPipeNotifyAndReadOpcodeRoundTrip(t *testing.T) {
	p, err := newControlPipe()
	if err != nil {
		t.Fatalf("newControlPipe: %v", err)
	}
	defer p.close()

	if err := p.notify(opRewatch); err != nil {
		t.Fatalf("notify(opRewatch): %v", err)
	}
	op, err := p.readOpcode()
	if err != nil {
		t.Fatalf("readOpcode: %v", err)
	}
	if op != opRewatch {
		t.Fatalf("op = %v, want opRewatch", op)
	}

	if err := p.notify(opTerminate); err != nil {
		t.Fatalf("notify(opTerminate): %v", err)
	}
	op, err = p.readOpcode()
	if err != nil {
		t.Fatalf("readOpcode: %v", err)
	}
	if op != opTerminate {
		t.Fatalf("op = %v, want opTerminate", op)
	}
}

func TestControlPipeNotifyCoalescesWithoutError(t *testing.T) {
	p, err := newControlPipe()
	if err != nil {
		t.Fatalf("newControlPipe: %v", err)
	}
	defer p.close()

	// A pipe's buffer is large (typically 64KiB); a handful of single-byte
	// writes must never themselves fail, whether or not they coalesce.
	for i := 0; i < 8; i++ {
		if err := p.notify(opRewatch); err != nil {
			t.Fatalf("notify #%d: %v", i, err)
		}
	}
}

func TestControlPipeClose(t *testing.T) {
	p, err := newControlPipe()
	if err != nil {
		t.Fatalf("newControlPipe: %v", err)
	}
	if err := p.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
