package seedswap

import "math/big"

type selection struct {
	plan    *DistributionPlan
	records []*SwapRecord
}

func newSelection() *selection {
	return &selection{plan: &DistributionPlan{TotalDistributingAmount: big.NewInt(0)}}
}

func (s *selection) add(rec *SwapRecord, delta *big.Int) {
	s.plan.add(rec, delta)
	s.records = append(s.records, rec)
}

func (s *selection) finish(params *Params) *DistributionPlan {
	s.plan.IsSafe = s.plan.TotalUsers <= params.SafeDistributeNumber
	return s.plan
}

type idErrors struct {
	outOfRange error
	notOrdered error
}

var (
	distributeIDErrors = idErrors{outOfRange: ErrInvalidID, notOrdered: ErrIndicesNotInOrder}
	estimateIDErrors   = idErrors{outOfRange: ErrEstimateIDOutOfRange, notOrdered: ErrEstimateDuplicatedIDs}
)

func checkPercentage(percentage uint64) error {
	if percentage == 0 || percentage > 100 {
		return ErrPercentageRange
	}
	return nil
}

// checkDistributable verifies the shared preconditions: the sale has ended,
// nothing is paused and the percentage is valid.
func (e *Engine) checkDistributable(params *Params, percentage uint64) error {
	if e.now() < params.SaleEnd {
		return ErrNotEnded
	}
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	return checkPercentage(percentage)
}

// selectWindow scans from the cursor and picks every record created at or
// before now - timeUnits*DistributePeriodUnit. The log is ordered by time so
// the scan stops at the first younger record.
func (e *Engine) selectWindow(params *Params, percentage, timeUnits uint64) (*selection, error) {
	sel := newSelection()
	span := new(big.Int).Mul(new(big.Int).SetUint64(timeUnits), new(big.Int).SetUint64(params.DistributePeriodUnit))
	now := new(big.Int).SetUint64(e.now())
	if span.Cmp(now) > 0 {
		return sel, nil
	}
	cutoff := new(big.Int).Sub(now, span).Uint64()

	cursor, err := e.ledger.Cursor()
	if err != nil {
		return nil, err
	}
	count, err := e.ledger.Count()
	if err != nil {
		return nil, err
	}
	for id := cursor; id < count; id++ {
		rec, err := e.ledger.Get(id)
		if err != nil {
			return nil, err
		}
		if rec.Timestamp > cutoff {
			break
		}
		delta, err := releaseDelta(rec, percentage)
		if err != nil {
			return nil, err
		}
		if delta.Sign() == 0 {
			continue
		}
		sel.add(rec, delta)
	}
	return sel, nil
}

// selectIDs picks the listed records. ids must be strictly increasing and in
// range; violations map to the caller's reason set.
func (e *Engine) selectIDs(params *Params, percentage uint64, ids []uint64, reasons idErrors) (*selection, error) {
	sel := newSelection()
	count, err := e.ledger.Count()
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if id >= count {
			return nil, reasons.outOfRange
		}
		if i > 0 && ids[i-1] >= id {
			return nil, reasons.notOrdered
		}
	}
	for _, id := range ids {
		rec, err := e.ledger.Get(id)
		if err != nil {
			return nil, err
		}
		delta, err := releaseDelta(rec, percentage)
		if err != nil {
			return nil, err
		}
		if delta.Sign() == 0 {
			continue
		}
		sel.add(rec, delta)
	}
	return sel, nil
}

func (e *Engine) vaultCovers(params *Params, amount *big.Int) (bool, error) {
	balance, err := e.gateway.BalanceOf(params.SaleAsset, e.vault)
	if err != nil {
		return false, err
	}
	return balance.Cmp(amount) >= 0, nil
}

// DistributeAll releases percentage of the remaining claim of every record
// older than timeUnits distribution periods. Admin only.
func (e *Engine) DistributeAll(caller [20]byte, percentage, timeUnits uint64) (*DistributionPlan, error) {
	params, err := e.distributePreamble(caller, percentage)
	if err != nil {
		return nil, err
	}
	sel, err := e.selectWindow(params, percentage, timeUnits)
	if err != nil {
		return nil, err
	}
	plan, err := e.applySelection(params, sel)
	if err != nil {
		return nil, err
	}
	e.emit(NewDistributionEvent(EventTypeDistributeAll, caller, percentage, plan))
	return plan, nil
}

// DistributeBatch releases percentage of the remaining claim of the listed
// records. Admin only.
func (e *Engine) DistributeBatch(caller [20]byte, percentage uint64, ids []uint64) (*DistributionPlan, error) {
	params, err := e.distributePreamble(caller, percentage)
	if err != nil {
		return nil, err
	}
	sel, err := e.selectIDs(params, percentage, ids, distributeIDErrors)
	if err != nil {
		return nil, err
	}
	plan, err := e.applySelection(params, sel)
	if err != nil {
		return nil, err
	}
	e.emit(NewDistributionEvent(EventTypeDistributeBatch, caller, percentage, plan))
	return plan, nil
}

func (e *Engine) distributePreamble(caller [20]byte, percentage uint64) (*Params, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	params, err := e.Params()
	if err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := e.checkDistributable(params, percentage); err != nil {
		return nil, err
	}
	return params, nil
}

// applySelection checks the vault balance, then updates every record and the
// totals before paying out.
func (e *Engine) applySelection(params *Params, sel *selection) (*DistributionPlan, error) {
	plan := sel.finish(params)
	ok, err := e.vaultCovers(params, plan.TotalDistributingAmount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotEnoughTokenToDistribute
	}
	if plan.TotalUsers == 0 {
		return plan, nil
	}

	totals, err := e.ledger.Totals()
	if err != nil {
		return nil, err
	}
	for i, rec := range sel.records {
		delta := plan.DistributingAmounts[i]
		rec.DistributedAmount = new(big.Int).Add(rec.DistributedAmount, delta)
		if err := e.ledger.Put(rec); err != nil {
			return nil, err
		}
		totals.DistributedToken = new(big.Int).Add(totals.DistributedToken, delta)
	}
	if err := e.ledger.PutTotals(totals); err != nil {
		return nil, err
	}
	if _, err := e.ledger.AdvanceCursor(); err != nil {
		return nil, err
	}
	for i, rec := range sel.records {
		e.emit(NewDistributedEvent(rec, plan.DistributingAmounts[i]))
	}

	for i, rec := range sel.records {
		if err := e.gateway.Transfer(params.SaleAsset, e.vault, rec.User, plan.DistributingAmounts[i]); err != nil {
			return nil, err
		}
	}
	return plan, nil
}
