package seedswap

import (
	"errors"
	"math/big"
	"testing"
)

func TestEmergencyUserWithdrawOpensAfterDeadline(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	rec := h.swap(h.alice, 150)
	if rec.TokenAmount.Int64() != 300 {
		t.Fatalf("expected 300 tokens, got %s", rec.TokenAmount)
	}

	// end 2000 + deadline 500; the window opens strictly after 2500
	h.now = 2_500
	if _, err := h.engine.EmergencyUserWithdrawToken(h.alice); !errors.Is(err, ErrEmergencyNotOpen) {
		t.Fatalf("expected not open, got %v", err)
	}
	h.now = 2_501
	amount, err := h.engine.EmergencyUserWithdrawToken(h.alice)
	if err != nil {
		t.Fatalf("emergency withdraw: %v", err)
	}
	if amount.Int64() != 300 {
		t.Fatalf("expected 300 released, got %s", amount)
	}
	got, _ := h.engine.Record(rec.ID)
	if got.DistributedAmount.Cmp(got.TokenAmount) != 0 {
		t.Fatalf("record not fully released: %s/%s", got.DistributedAmount, got.TokenAmount)
	}
	if bal := h.balance("TEA", h.alice); bal.Int64() != 300 {
		t.Fatalf("expected alice to hold 300, got %s", bal)
	}
	if _, err := h.engine.EmergencyUserWithdrawToken(h.alice); !errors.Is(err, ErrEmergencyClaimedAll) {
		t.Fatalf("expected claimed all, got %v", err)
	}
	if _, err := h.engine.EmergencyUserWithdrawToken(h.outside); !errors.Is(err, ErrEmergencyClaimedAll) {
		t.Fatalf("expected claimed all for non participant, got %v", err)
	}
	h.checkInvariants()
}

func TestEmergencyUserWithdrawAfterPartialRelease(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.bob, 100)
	h.swap(h.bob, 20)
	h.now = 2_000
	if _, err := h.engine.DistributeBatch(h.admin, 50, []uint64{0}); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	h.now = 3_000
	amount, err := h.engine.EmergencyUserWithdrawToken(h.bob)
	if err != nil {
		t.Fatalf("emergency withdraw: %v", err)
	}
	// 200 - 100 already released, plus the untouched 40
	if amount.Int64() != 140 {
		t.Fatalf("expected 140, got %s", amount)
	}
	data, _ := h.engine.UserSwapData(h.bob)
	if data.TotalRemainingAmount.Sign() != 0 {
		t.Fatalf("expected nothing remaining, got %s", data.TotalRemainingAmount)
	}
	if cursor, _ := h.engine.Ledger().Cursor(); cursor != 2 {
		t.Fatalf("expected cursor past released records, got %d", cursor)
	}
	h.checkInvariants()
}

func TestEmergencyUserWithdrawNeedsVaultBalance(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 100)
	vault := h.engine.Vault()
	if err := h.bank.Burn("TEA", vault, new(big.Int).Sub(h.balance("TEA", vault), big.NewInt(199))); err != nil {
		t.Fatalf("burn: %v", err)
	}
	h.now = 5_000
	if _, err := h.engine.EmergencyUserWithdrawToken(h.alice); !errors.Is(err, ErrEmergencyNotEnoughToken) {
		t.Fatalf("expected insufficient vault, got %v", err)
	}
	h.checkInvariants()
}

func TestEmergencyOwnerWithdraw(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.engine.EmergencyOwnerWithdraw(h.admin, "TEA", big.NewInt(1)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner gate, got %v", err)
	}
	if err := h.engine.EmergencyOwnerWithdraw(h.owner, "tea", big.NewInt(1_000)); err != nil {
		t.Fatalf("sweep tea: %v", err)
	}
	if bal := h.balance("TEA", h.owner); bal.Int64() != 1_000 {
		t.Fatalf("expected owner to receive 1000 TEA, got %s", bal)
	}
	h.mint("ETH", h.engine.Vault(), 50)
	if err := h.engine.EmergencyOwnerWithdraw(h.owner, "ETH", big.NewInt(50)); err != nil {
		t.Fatalf("sweep eth: %v", err)
	}
	if bal := h.balance("ETH", h.engine.Vault()); bal.Sign() != 0 {
		t.Fatalf("expected empty eth vault, got %s", bal)
	}
}
