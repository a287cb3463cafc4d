package seedswap

import (
	"errors"
	"math/big"
	"reflect"
	"testing"
)

func TestDistributeBatchReleasesHalfOfRemainingEachTime(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	rec := h.swap(h.alice, 500)
	if rec.TokenAmount.Int64() != 1_000 {
		t.Fatalf("expected token amount 1000, got %s", rec.TokenAmount)
	}
	h.now = 2_000

	for i, want := range []int64{500, 750} {
		if _, err := h.engine.DistributeBatch(h.admin, 50, []uint64{rec.ID}); err != nil {
			t.Fatalf("distribute %d: %v", i, err)
		}
		got, err := h.engine.Record(rec.ID)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if got.DistributedAmount.Int64() != want {
			t.Fatalf("round %d: expected distributed %d, got %s", i, want, got.DistributedAmount)
		}
		h.checkInvariants()
	}
	if bal := h.balance("TEA", h.alice); bal.Int64() != 750 {
		t.Fatalf("expected alice to hold 750 TEA, got %s", bal)
	}
}

func TestDistributeBatchValidation(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 100)
	h.swap(h.bob, 100)

	if _, err := h.engine.DistributeBatch(h.alice, 50, []uint64{0}); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected admin gate, got %v", err)
	}
	if _, err := h.engine.DistributeBatch(h.admin, 50, []uint64{0}); !errors.Is(err, ErrNotEnded) {
		t.Fatalf("expected not ended, got %v", err)
	}
	h.now = 2_000
	for _, pct := range []uint64{0, 101} {
		if _, err := h.engine.DistributeBatch(h.admin, pct, []uint64{0}); !errors.Is(err, ErrPercentageRange) {
			t.Fatalf("pct %d: expected range error, got %v", pct, err)
		}
	}
	cases := []struct {
		ids  []uint64
		want error
	}{
		{ids: []uint64{1, 0}, want: ErrIndicesNotInOrder},
		{ids: []uint64{0, 0}, want: ErrIndicesNotInOrder},
		{ids: []uint64{0, 2}, want: ErrInvalidID},
		{ids: []uint64{9}, want: ErrInvalidID},
	}
	for _, tc := range cases {
		if _, err := h.engine.DistributeBatch(h.admin, 50, tc.ids); !errors.Is(err, tc.want) {
			t.Fatalf("ids %v: expected %v, got %v", tc.ids, tc.want, err)
		}
	}

	if err := h.gate.Pause(h.owner); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := h.engine.DistributeBatch(h.admin, 50, []uint64{0}); !errors.Is(err, ErrPaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	if err := h.gate.Unpause(h.owner); err != nil {
		t.Fatalf("unpause: %v", err)
	}

	vault := h.engine.Vault()
	if err := h.bank.Burn("TEA", vault, new(big.Int).Sub(h.balance("TEA", vault), big.NewInt(150))); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if _, err := h.engine.DistributeBatch(h.admin, 100, []uint64{0, 1}); !errors.Is(err, ErrNotEnoughTokenToDistribute) {
		t.Fatalf("expected insufficient vault, got %v", err)
	}
	for _, id := range []uint64{0, 1} {
		rec, _ := h.engine.Record(id)
		if rec.DistributedAmount.Sign() != 0 {
			t.Fatalf("record %d changed by a rejected call", id)
		}
	}
	plan, err := h.engine.DistributeBatch(h.admin, 50, []uint64{0})
	if err != nil {
		t.Fatalf("partial distribution within balance: %v", err)
	}
	if plan.TotalDistributingAmount.Int64() != 100 {
		t.Fatalf("expected 100 released, got %s", plan.TotalDistributingAmount)
	}
	h.checkInvariants()
}

func TestDistributeAllValidation(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 100)
	h.swap(h.bob, 100)
	h.swap(h.carol, 100)

	if _, err := h.engine.DistributeAll(h.alice, 50, 0); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected admin gate, got %v", err)
	}
	if _, err := h.engine.DistributeAll(h.admin, 50, 0); !errors.Is(err, ErrNotEnded) {
		t.Fatalf("expected not ended, got %v", err)
	}
	h.now = 2_000

	cases := []struct {
		name string
		pct  uint64
		want error
	}{
		{name: "zero percent", pct: 0, want: ErrPercentageRange},
		{name: "over a hundred", pct: 101, want: ErrPercentageRange},
	}
	for _, tc := range cases {
		if _, err := h.engine.DistributeAll(h.admin, tc.pct, 0); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := h.gate.Pause(h.owner); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := h.engine.DistributeAll(h.admin, 50, 0); !errors.Is(err, ErrPaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	if err := h.gate.Unpause(h.owner); err != nil {
		t.Fatalf("unpause: %v", err)
	}

	// Release bob's record fully so the window holds a gap at id 1.
	if _, err := h.engine.DistributeBatch(h.admin, 100, []uint64{1}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	vault := h.engine.Vault()
	if err := h.bank.Burn("TEA", vault, new(big.Int).Sub(h.balance("TEA", vault), big.NewInt(300))); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if _, err := h.engine.DistributeAll(h.admin, 100, 0); !errors.Is(err, ErrNotEnoughTokenToDistribute) {
		t.Fatalf("expected insufficient vault, got %v", err)
	}
	for id, want := range []int64{0, 200, 0} {
		rec, err := h.engine.Record(uint64(id))
		if err != nil {
			t.Fatalf("record %d: %v", id, err)
		}
		if rec.DistributedAmount.Int64() != want {
			t.Fatalf("record %d changed by a rejected call: %s", id, rec.DistributedAmount)
		}
	}
	if bal := h.balance("TEA", vault); bal.Int64() != 300 {
		t.Fatalf("vault moved on rejection: %s", bal)
	}
	h.checkInvariants()

	h.mint("TEA", vault, 100)
	estimate, err := h.engine.EstimateDistributeAll(100, 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	applied, err := h.engine.DistributeAll(h.admin, 100, 0)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	for _, plan := range []*DistributionPlan{estimate, applied} {
		if !reflect.DeepEqual(plan.IDs, []uint64{0, 2}) || plan.TotalDistributingAmount.Int64() != 400 {
			t.Fatalf("unexpected plan ids=%v total=%s", plan.IDs, plan.TotalDistributingAmount)
		}
	}
	cursor, err := h.engine.Ledger().Cursor()
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if cursor != 3 {
		t.Fatalf("expected cursor past every released record, got %d", cursor)
	}
	h.checkInvariants()
}

func TestDistributeAllRespectsTimeWindow(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 100)
	h.now = 1_100
	h.swap(h.bob, 100)
	h.now = 1_500
	h.swap(h.carol, 100)
	h.now = 2_000

	// cutoff = 2000 - 6*100 = 1400
	plan, err := h.engine.DistributeAll(h.admin, 100, 6)
	if err != nil {
		t.Fatalf("distribute all: %v", err)
	}
	if !reflect.DeepEqual(plan.IDs, []uint64{0, 1}) {
		t.Fatalf("unexpected selection %v", plan.IDs)
	}
	if !plan.IsSafe || plan.TotalUsers != 2 || plan.TotalDistributingAmount.Int64() != 400 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if cursor, _ := h.engine.Ledger().Cursor(); cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", cursor)
	}
	h.checkInvariants()

	aliceBefore := h.balance("TEA", h.alice)
	again, err := h.engine.DistributeAll(h.admin, 100, 6)
	if err != nil {
		t.Fatalf("repeat distribute: %v", err)
	}
	if again.TotalUsers != 0 || again.TotalDistributingAmount.Sign() != 0 {
		t.Fatalf("repeat call should be a no-op, got %+v", again)
	}
	if h.balance("TEA", h.alice).Cmp(aliceBefore) != 0 {
		t.Fatalf("repeat call moved funds")
	}

	rest, err := h.engine.DistributeAll(h.admin, 100, 0)
	if err != nil {
		t.Fatalf("distribute rest: %v", err)
	}
	if !reflect.DeepEqual(rest.IDs, []uint64{2}) {
		t.Fatalf("expected only carol's record, got %v", rest.IDs)
	}
	if cursor, _ := h.engine.Ledger().Cursor(); cursor != 3 {
		t.Fatalf("expected cursor 3, got %d", cursor)
	}

	none, err := h.engine.DistributeAll(h.admin, 100, 1_000)
	if err != nil {
		t.Fatalf("distribute with window before epoch: %v", err)
	}
	if none.TotalUsers != 0 {
		t.Fatalf("expected empty plan, got %+v", none)
	}
	h.checkInvariants()
}

func TestEstimateMatchesDistribution(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 33)
	h.swap(h.bob, 57)
	h.swap(h.carol, 12)
	h.swap(h.alice, 10)
	h.now = 2_000

	estimate, err := h.engine.EstimateDistributeAll(30, 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if estimate.IsSafe {
		t.Fatalf("four records exceed the safe number of 2")
	}
	before := map[[20]byte]*big.Int{}
	for _, u := range estimate.Users {
		before[u] = h.balance("TEA", u)
	}
	applied, err := h.engine.DistributeAll(h.admin, 30, 0)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if !reflect.DeepEqual(estimate.IDs, applied.IDs) || estimate.TotalDistributingAmount.Cmp(applied.TotalDistributingAmount) != 0 {
		t.Fatalf("estimate %+v differs from applied %+v", estimate, applied)
	}
	received := map[[20]byte]*big.Int{}
	for i, u := range estimate.Users {
		if received[u] == nil {
			received[u] = big.NewInt(0)
		}
		received[u].Add(received[u], estimate.DistributingAmounts[i])
	}
	for u, want := range received {
		got := new(big.Int).Sub(h.balance("TEA", u), before[u])
		if got.Cmp(want) != 0 {
			t.Fatalf("user %x received %s, estimate said %s", u, got, want)
		}
	}
	// 66*30/100 = 19, floor applied per record
	if estimate.DistributingAmounts[0].Int64() != 19 {
		t.Fatalf("expected floor rounding, got %s", estimate.DistributingAmounts[0])
	}

	batchEstimate, err := h.engine.EstimateDistributeBatch(100, []uint64{1, 3})
	if err != nil {
		t.Fatalf("batch estimate: %v", err)
	}
	batchApplied, err := h.engine.DistributeBatch(h.admin, 100, []uint64{1, 3})
	if err != nil {
		t.Fatalf("batch distribute: %v", err)
	}
	if !reflect.DeepEqual(batchEstimate.DistributingAmounts, batchApplied.DistributingAmounts) {
		t.Fatalf("batch estimate %v differs from applied %v", batchEstimate.DistributingAmounts, batchApplied.DistributingAmounts)
	}
	h.checkInvariants()
}

func TestEstimateValidation(t *testing.T) {
	h := newHarness(t, nil)
	h.now = 1_000
	h.swap(h.alice, 100)
	h.swap(h.bob, 100)

	if _, err := h.engine.EstimateDistributeAll(50, 0); !errors.Is(err, ErrNotEnded) {
		t.Fatalf("expected not ended, got %v", err)
	}
	h.now = 2_000
	if _, err := h.engine.EstimateDistributeBatch(0, []uint64{0}); !errors.Is(err, ErrPercentageRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	for _, ids := range [][]uint64{{1, 1}, {1, 0}} {
		if _, err := h.engine.EstimateDistributeBatch(50, ids); !errors.Is(err, ErrEstimateDuplicatedIDs) {
			t.Fatalf("ids %v: expected duplicated ids, got %v", ids, err)
		}
	}
	if _, err := h.engine.EstimateDistributeBatch(50, []uint64{0, 7}); !errors.Is(err, ErrEstimateIDOutOfRange) {
		t.Fatalf("expected id out of range, got %v", err)
	}

	vault := h.engine.Vault()
	if err := h.bank.Burn("TEA", vault, new(big.Int).Sub(h.balance("TEA", vault), big.NewInt(10))); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if _, err := h.engine.EstimateDistributeAll(50, 0); !errors.Is(err, ErrEstimateNotEnoughBalance) {
		t.Fatalf("expected estimate balance error, got %v", err)
	}

	if err := h.gate.Pause(h.admin); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := h.engine.EstimateDistributeAll(50, 0); !errors.Is(err, ErrPaused) {
		t.Fatalf("expected paused, got %v", err)
	}
}
