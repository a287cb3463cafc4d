package access

import (
	"errors"
	"testing"

	"seedswap/core/events"
	"seedswap/core/state"
	"seedswap/storage"
)

func addr(b byte) [20]byte {
	var out [20]byte
	out[0] = b
	return out
}

func newTestGate(t *testing.T) (*Gate, *events.Buffer) {
	t.Helper()
	gate := NewGate(state.NewManager(storage.NewMemDB()))
	buf := &events.Buffer{}
	gate.SetEmitter(buf)
	if err := gate.Init(addr(1), addr(1), addr(2)); err != nil {
		t.Fatalf("init: %v", err)
	}
	return gate, buf
}

func TestGateInitGrantsOwnerAndDeployerAdmin(t *testing.T) {
	gate, _ := newTestGate(t)
	for _, a := range [][20]byte{addr(1), addr(2)} {
		ok, err := gate.IsAdmin(a)
		if err != nil || !ok {
			t.Fatalf("expected %x to be admin (err=%v)", a, err)
		}
	}
	if ok, _ := gate.IsOwner(addr(2)); ok {
		t.Fatalf("deployer must not be owner")
	}
	if err := gate.Init(addr(3)); !errors.Is(err, ErrAlreadyInitialised) {
		t.Fatalf("expected re-init rejection, got %v", err)
	}
}

func TestGateRoleUpdatesAreGatedAndIdempotent(t *testing.T) {
	gate, buf := newTestGate(t)
	buf.Reset()

	if err := gate.UpdateWhitelistedAdmins(addr(2), [][20]byte{addr(3)}, true); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner gate, got %v", err)
	}
	if err := gate.UpdateWhitelistedUsers(addr(9), [][20]byte{addr(4)}, true); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected admin gate, got %v", err)
	}
	users := [][20]byte{addr(4), addr(5)}
	if err := gate.UpdateWhitelistedUsers(addr(2), users, true); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if err := gate.UpdateWhitelistedUsers(addr(2), users, true); err != nil {
		t.Fatalf("whitelist again: %v", err)
	}
	if got := buf.Len(); got != 2 {
		t.Fatalf("expected 2 role events, got %d", got)
	}
	if err := gate.UpdateWhitelistedUsers(addr(1), [][20]byte{addr(4)}, false); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := gate.IsWhitelisted(addr(4)); ok {
		t.Fatalf("expected addr 4 removed")
	}
	if ok, _ := gate.IsWhitelisted(addr(5)); !ok {
		t.Fatalf("expected addr 5 whitelisted")
	}
}

func TestGatePauseCycle(t *testing.T) {
	gate, _ := newTestGate(t)
	if err := gate.Pause(addr(7)); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected admin gate, got %v", err)
	}
	if err := gate.Unpause(addr(1)); !errors.Is(err, ErrNotPaused) {
		t.Fatalf("expected not paused, got %v", err)
	}
	if err := gate.Pause(addr(2)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := gate.Pause(addr(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	if paused, _ := gate.IsPaused(); !paused {
		t.Fatalf("expected paused flag")
	}
	if err := gate.Unpause(addr(1)); err != nil {
		t.Fatalf("unpause: %v", err)
	}
}

func TestGateTransferOwnership(t *testing.T) {
	gate, _ := newTestGate(t)
	if err := gate.TransferOwnership(addr(2), addr(3)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner gate, got %v", err)
	}
	if err := gate.TransferOwnership(addr(1), [20]byte{}); !errors.Is(err, ErrZeroOwner) {
		t.Fatalf("expected zero owner rejection, got %v", err)
	}
	if err := gate.TransferOwnership(addr(1), addr(3)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if ok, _ := gate.IsOwner(addr(3)); !ok {
		t.Fatalf("expected new owner")
	}
}
