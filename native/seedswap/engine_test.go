package seedswap

import (
	"errors"
	"math/big"
	"testing"

	"seedswap/core/events"
	"seedswap/core/state"
	"seedswap/native/access"
	"seedswap/native/bank"
	"seedswap/storage"
)

type harness struct {
	t       *testing.T
	engine  *Engine
	bank    *bank.Ledger
	gate    *access.Gate
	events  *events.Buffer
	now     int64
	owner   [20]byte
	admin   [20]byte
	alice   [20]byte
	bob     [20]byte
	carol   [20]byte
	outside [20]byte
}

func testAddr(b byte) [20]byte {
	var out [20]byte
	out[0] = 0xaa
	out[19] = b
	return out
}

func testParams() Params {
	return Params{
		BaseAsset:            "ETH",
		SaleAsset:            "TEA",
		HardCap:              big.NewInt(10_000),
		MinIndividualCap:     big.NewInt(10),
		MaxIndividualCap:     big.NewInt(1_000),
		SaleRate:             big.NewInt(2),
		SaleStart:            1_000,
		SaleEnd:              2_000,
		DistributePeriodUnit: 100,
		WithdrawalDeadline:   500,
		SafeDistributeNumber: 2,
	}
}

func newHarness(t *testing.T, mutate func(*Params)) *harness {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	h := &harness{
		t:       t,
		bank:    bank.NewLedger(mgr),
		gate:    access.NewGate(mgr),
		events:  &events.Buffer{},
		now:     900,
		owner:   testAddr(1),
		admin:   testAddr(2),
		alice:   testAddr(3),
		bob:     testAddr(4),
		carol:   testAddr(5),
		outside: testAddr(6),
	}
	for _, meta := range []bank.TokenMetadata{
		{Symbol: "ETH", Name: "Ether", Decimals: 18},
		{Symbol: "TEA", Name: "TEA Token", Decimals: 18},
	} {
		if err := h.bank.RegisterToken(meta); err != nil {
			t.Fatalf("register %s: %v", meta.Symbol, err)
		}
	}
	if err := h.gate.Init(h.owner, h.owner, h.admin); err != nil {
		t.Fatalf("gate init: %v", err)
	}
	h.engine = NewEngine()
	h.engine.SetState(mgr)
	h.engine.SetGateway(h.bank)
	h.engine.SetAccess(h.gate)
	h.engine.SetEmitter(h.events)
	h.engine.SetNowFunc(func() int64 { return h.now })

	params := testParams()
	if mutate != nil {
		mutate(&params)
	}
	if err := h.engine.Init(h.owner, params); err != nil {
		t.Fatalf("engine init: %v", err)
	}
	h.mint("TEA", h.engine.Vault(), 1_000_000)
	for _, user := range [][20]byte{h.alice, h.bob, h.carol, h.outside} {
		h.mint("ETH", user, 1_000_000_000_000_000_000)
	}
	if err := h.gate.UpdateWhitelistedUsers(h.admin, [][20]byte{h.alice, h.bob, h.carol}, true); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	return h
}

func (h *harness) mint(asset string, to [20]byte, amount int64) {
	h.t.Helper()
	if err := h.bank.Mint(asset, to, big.NewInt(amount)); err != nil {
		h.t.Fatalf("mint %s: %v", asset, err)
	}
}

func (h *harness) balance(asset string, holder [20]byte) *big.Int {
	h.t.Helper()
	bal, err := h.bank.BalanceOf(asset, holder)
	if err != nil {
		h.t.Fatalf("balance: %v", err)
	}
	return bal
}

func (h *harness) swap(user [20]byte, eth int64) *SwapRecord {
	h.t.Helper()
	rec, err := h.engine.SwapEthToToken(user, big.NewInt(eth))
	if err != nil {
		h.t.Fatalf("swap %d: %v", eth, err)
	}
	return rec
}

// checkInvariants asserts that the running totals match the record log and
// that no record was over-released.
func (h *harness) checkInvariants() {
	h.t.Helper()
	records, err := h.engine.Records(0, 0)
	if err != nil {
		h.t.Fatalf("records: %v", err)
	}
	eth, token, distributed := big.NewInt(0), big.NewInt(0), big.NewInt(0)
	for _, rec := range records {
		if rec.DistributedAmount.Sign() < 0 || rec.DistributedAmount.Cmp(rec.TokenAmount) > 0 {
			h.t.Fatalf("record %d out of bounds: distributed=%s token=%s", rec.ID, rec.DistributedAmount, rec.TokenAmount)
		}
		eth.Add(eth, rec.EthAmount)
		token.Add(token, rec.TokenAmount)
		distributed.Add(distributed, rec.DistributedAmount)
	}
	totals, err := h.engine.Totals()
	if err != nil {
		h.t.Fatalf("totals: %v", err)
	}
	if totals.SwappedEth.Cmp(eth) != 0 || totals.SwappedToken.Cmp(token) != 0 || totals.DistributedToken.Cmp(distributed) != 0 {
		h.t.Fatalf("totals mismatch: got eth=%s token=%s distributed=%s want %s/%s/%s",
			totals.SwappedEth, totals.SwappedToken, totals.DistributedToken, eth, token, distributed)
	}
	if totals.DistributedToken.Cmp(totals.SwappedToken) > 0 {
		h.t.Fatalf("distributed %s exceeds swapped %s", totals.DistributedToken, totals.SwappedToken)
	}
}

func TestInitRejectsUnknownTokenAndReinit(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.engine.Init(h.owner, testParams()); !errors.Is(err, ErrAlreadyInitialised) {
		t.Fatalf("expected re-init rejection, got %v", err)
	}

	mgr := state.NewManager(storage.NewMemDB())
	engine := NewEngine()
	engine.SetState(mgr)
	engine.SetGateway(bank.NewLedger(mgr))
	engine.SetAccess(access.NewGate(mgr))
	if err := engine.Init(h.owner, testParams()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	params, err := h.engine.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if params.EthRecipient != h.owner {
		t.Fatalf("expected owner as eth recipient")
	}
}

func TestSwapAdmissionPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Params)
		prepare func(h *harness)
		sender  func(h *harness) [20]byte
		amount  int64
		want    error
	}{
		{
			name:    "zero amount before start",
			prepare: func(h *harness) { h.now = 10 },
			amount:  0,
			want:    ErrZeroAmount,
		},
		{
			name:    "not started",
			prepare: func(h *harness) { h.now = 999 },
			amount:  100,
			want:    ErrNotStarted,
		},
		{
			name:    "ended",
			prepare: func(h *harness) { h.now = 2_000 },
			amount:  100,
			want:    ErrSaleEnded,
		},
		{
			name:   "hard cap beats individual cap and whitelist",
			sender: func(h *harness) [20]byte { return h.outside },
			amount: 10_001,
			want:   ErrHardCapReached,
		},
		{
			name:   "below min",
			amount: 9,
			want:   ErrOutsideIndividualCap,
		},
		{
			name:   "above max",
			amount: 1_001,
			want:   ErrOutsideIndividualCap,
		},
		{
			name:    "cumulative max",
			prepare: func(h *harness) { h.swap(h.alice, 600) },
			amount:  500,
			want:    ErrMaxIndividualCapReached,
		},
		{
			name:    "not whitelisted beats paused",
			prepare: func(h *harness) { _ = h.gate.Pause(h.admin) },
			sender:  func(h *harness) [20]byte { return h.outside },
			amount:  100,
			want:    ErrNotWhitelisted,
		},
		{
			name:    "paused",
			prepare: func(h *harness) { _ = h.gate.Pause(h.admin) },
			amount:  100,
			want:    ErrPaused,
		},
		{
			name: "vault cannot cover claim",
			prepare: func(h *harness) {
				if err := h.bank.Burn("TEA", h.engine.Vault(), big.NewInt(1_000_000-199)); err != nil {
					h.t.Fatalf("burn: %v", err)
				}
			},
			amount: 100,
			want:   ErrNotEnoughTokenToSwap,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.mutate)
			h.now = 1_000
			if tc.prepare != nil {
				tc.prepare(h)
			}
			sender := h.alice
			if tc.sender != nil {
				sender = tc.sender(h)
			}
			before, _ := h.engine.NumberSwaps()
			_, err := h.engine.SwapEthToToken(sender, big.NewInt(tc.amount))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if err.Error() != tc.want.Error() {
				t.Fatalf("unexpected reason %q", err.Error())
			}
			after, _ := h.engine.NumberSwaps()
			if after != before {
				t.Fatalf("rejected swap appended a record")
			}
			h.checkInvariants()
		})
	}
}

func TestSwapBookkeepingAndForwarding(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	rec := h.swap(h.alice, 100)
	h.now = 1_050
	if _, err := h.engine.ReceiveEth(h.bob, big.NewInt(250)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	h.now = 1_060
	h.swap(h.alice, 40)

	if rec.ID != 0 || rec.TokenAmount.Int64() != 200 || rec.Timestamp != 1_000 {
		t.Fatalf("unexpected first record %+v", rec)
	}
	if got := h.balance("ETH", h.owner); got.Int64() != 390 {
		t.Fatalf("expected recipient to hold 390, got %s", got)
	}
	if got := h.balance("ETH", h.engine.Vault()); got.Sign() != 0 {
		t.Fatalf("vault should forward all eth, holds %s", got)
	}

	data, err := h.engine.UserSwapData(h.alice)
	if err != nil {
		t.Fatalf("user data: %v", err)
	}
	if data.TotalEthAmount.Int64() != 140 || data.TotalTokenAmount.Int64() != 280 || data.TotalRemainingAmount.Int64() != 280 {
		t.Fatalf("unexpected aggregate %+v", data)
	}
	if len(data.IDs) != 2 || data.IDs[0] != 0 || data.IDs[1] != 2 {
		t.Fatalf("unexpected ids %v", data.IDs)
	}
	if n, _ := h.engine.NumberSwaps(); n != 3 {
		t.Fatalf("expected 3 swaps, got %d", n)
	}
	if got := h.events.Len(); got == 0 {
		t.Fatalf("expected events to be emitted")
	}
	h.checkInvariants()
}

func TestSwapIndividualCapBoundaries(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 10)
	h.swap(h.bob, 1_000)
	if _, err := h.engine.SwapEthToToken(h.carol, big.NewInt(9)); !errors.Is(err, ErrOutsideIndividualCap) {
		t.Fatalf("expected individual cap rejection, got %v", err)
	}
	if _, err := h.engine.SwapEthToToken(h.carol, big.NewInt(1_001)); !errors.Is(err, ErrOutsideIndividualCap) {
		t.Fatalf("expected individual cap rejection, got %v", err)
	}
	h.checkInvariants()
}

func TestReceiveEthParity(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 600)
	if _, err := h.engine.ReceiveEth(h.alice, big.NewInt(401)); !errors.Is(err, ErrMaxIndividualCapReached) {
		t.Fatalf("expected cumulative cap rejection on bare transfer, got %v", err)
	}
	rec, err := h.engine.ReceiveEth(h.alice, big.NewInt(400))
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if rec.ID != 1 || rec.TokenAmount.Cmp(big.NewInt(800)) != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, err := h.engine.SwapEthToToken(h.alice, big.NewInt(10)); !errors.Is(err, ErrMaxIndividualCapReached) {
		t.Fatalf("explicit swap must see bare-transfer contributions, got %v", err)
	}
	if _, err := h.engine.ReceiveEth(h.outside, big.NewInt(100)); !errors.Is(err, ErrNotWhitelisted) {
		t.Fatalf("expected whitelist rejection, got %v", err)
	}
	h.checkInvariants()
}

func TestSwapHardCapScenario(t *testing.T) {
	e16 := new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)
	six := new(big.Int).Mul(big.NewInt(6), new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil))
	h := newHarness(t, func(p *Params) {
		p.HardCap = e16
		p.MaxIndividualCap = e16
		p.SaleRate = big.NewInt(1)
	})
	h.now = 1_000
	h.mint("TEA", h.engine.Vault(), 1_000_000_000_000_000_000)
	if _, err := h.engine.SwapEthToToken(h.alice, six); err != nil {
		t.Fatalf("first swap: %v", err)
	}
	if _, err := h.engine.SwapEthToToken(h.bob, six); !errors.Is(err, ErrHardCapReached) {
		t.Fatalf("expected hard cap, got %v", err)
	}
	h.checkInvariants()
}

func TestSwapRequiresSenderFunds(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	poor := testAddr(42)
	if err := h.gate.UpdateWhitelistedUsers(h.admin, [][20]byte{poor}, true); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if _, err := h.engine.SwapEthToToken(poor, big.NewInt(100)); !errors.Is(err, bank.ErrInsufficientBalance) {
		t.Fatalf("expected gateway failure, got %v", err)
	}
	if n, _ := h.engine.NumberSwaps(); n != 0 {
		t.Fatalf("failed pull must not append a record")
	}
}

func TestUpdateSaleTimes(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 500
	if err := h.engine.UpdateSaleTimes(h.admin, 600, 700); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner gate, got %v", err)
	}
	if err := h.engine.UpdateSaleTimes(h.owner, 499, 700); !errors.Is(err, ErrInvalidStartTime) {
		t.Fatalf("expected invalid start, got %v", err)
	}
	if err := h.engine.UpdateSaleTimes(h.owner, 700, 700); !errors.Is(err, ErrInvalidStartAndEndTime) {
		t.Fatalf("expected invalid window, got %v", err)
	}
	if err := h.engine.UpdateSaleTimes(h.owner, 500, 800); err != nil {
		t.Fatalf("update: %v", err)
	}
	params, _ := h.engine.Params()
	if params.SaleStart != 500 || params.SaleEnd != 800 {
		t.Fatalf("unexpected window %d-%d", params.SaleStart, params.SaleEnd)
	}
	if err := h.engine.UpdateSaleTimes(h.owner, 900, 1_000); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected already started, got %v", err)
	}
}

func TestUpdateSaleRateBounds(t *testing.T) {
	h := newHarness(t, func(p *Params) { p.SaleRate = big.NewInt(20_000) })
	h.now = 1_500
	if err := h.engine.UpdateSaleRate(h.alice, big.NewInt(20_000)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner gate, got %v", err)
	}
	if err := h.engine.UpdateSaleRate(h.owner, big.NewInt(9_999)); !errors.Is(err, ErrRateTooLow) {
		t.Fatalf("expected too low, got %v", err)
	}
	if err := h.engine.UpdateSaleRate(h.owner, big.NewInt(30_001)); !errors.Is(err, ErrRateTooHigh) {
		t.Fatalf("expected too high, got %v", err)
	}
	if err := h.engine.UpdateSaleRate(h.owner, big.NewInt(30_000)); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec := h.swap(h.alice, 10)
	if rec.TokenAmount.Int64() != 300_000 {
		t.Fatalf("expected new rate applied, got %s", rec.TokenAmount)
	}
	h.now = 2_000
	if err := h.engine.UpdateSaleRate(h.owner, big.NewInt(30_000)); !errors.Is(err, ErrAlreadyEnded) {
		t.Fatalf("expected already ended, got %v", err)
	}
}

func TestUpdateEthRecipient(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.engine.UpdateEthRecipient(h.owner, [20]byte{}); !errors.Is(err, ErrInvalidRecipient) {
		t.Fatalf("expected invalid recipient, got %v", err)
	}
	if err := h.engine.UpdateEthRecipient(h.bob, h.carol); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner gate, got %v", err)
	}
	if err := h.engine.UpdateEthRecipient(h.owner, h.carol); err != nil {
		t.Fatalf("update: %v", err)
	}
	h.now = 1_000
	before := h.balance("ETH", h.carol)
	h.swap(h.alice, 100)
	after := h.balance("ETH", h.carol)
	if new(big.Int).Sub(after, before).Int64() != 100 {
		t.Fatalf("expected new recipient to receive 100")
	}
}
