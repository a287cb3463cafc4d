package bank

import (
	"errors"
	"math/big"
	"testing"

	"seedswap/core/state"
	"seedswap/storage"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger := NewLedger(state.NewManager(storage.NewMemDB()))
	if err := ledger.RegisterToken(TokenMetadata{Symbol: "tea", Name: "TEA Token", Decimals: 18}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return ledger
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func TestLedgerMintTransferBurn(t *testing.T) {
	ledger := newTestLedger(t)
	alice, bob := addr(1), addr(2)

	if err := ledger.Mint("TEA", alice, big.NewInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Transfer("TEA", alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := ledger.Transfer("TEA", alice, bob, big.NewInt(601)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := ledger.Burn("TEA", bob, big.NewInt(100)); err != nil {
		t.Fatalf("burn: %v", err)
	}

	aliceBal, _ := ledger.BalanceOf("TEA", alice)
	bobBal, _ := ledger.BalanceOf("TEA", bob)
	if aliceBal.Int64() != 600 || bobBal.Int64() != 300 {
		t.Fatalf("unexpected balances alice=%s bob=%s", aliceBal, bobBal)
	}
	supply, err := ledger.TotalSupply("TEA")
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Int64() != 900 {
		t.Fatalf("unexpected supply %s", supply)
	}
	decimals, err := ledger.Decimals("tea")
	if err != nil || decimals != 18 {
		t.Fatalf("unexpected decimals %d (%v)", decimals, err)
	}
}

func TestLedgerAllowances(t *testing.T) {
	ledger := newTestLedger(t)
	owner, spender := addr(1), addr(2)
	if err := ledger.Mint("TEA", owner, big.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.BurnFrom("TEA", spender, owner, big.NewInt(1)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected allowance error, got %v", err)
	}
	if err := ledger.Approve("TEA", owner, spender, big.NewInt(200)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.BurnFrom("TEA", spender, owner, big.NewInt(150)); err != nil {
		t.Fatalf("burnFrom: %v", err)
	}
	left, _ := ledger.Allowance("TEA", owner, spender)
	if left.Int64() != 50 {
		t.Fatalf("expected allowance 50, got %s", left)
	}
	bal, _ := ledger.BalanceOf("TEA", owner)
	if bal.Int64() != 350 {
		t.Fatalf("expected balance 350, got %s", bal)
	}
}

func TestLedgerRejectsUnknownAndDuplicateTokens(t *testing.T) {
	ledger := newTestLedger(t)
	if _, err := ledger.BalanceOf("DAI", addr(1)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token, got %v", err)
	}
	if err := ledger.RegisterToken(TokenMetadata{Symbol: "TEA"}); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := ledger.Transfer("TEA", addr(1), addr(2), big.NewInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected negative amount error, got %v", err)
	}
}
