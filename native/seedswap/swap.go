package seedswap

import "math/big"

// SwapEthToToken records a swap of ethAmount of the base asset from sender.
func (e *Engine) SwapEthToToken(sender [20]byte, ethAmount *big.Int) (*SwapRecord, error) {
	return e.swap(sender, ethAmount)
}

// ReceiveEth handles a bare base-asset transfer to the sale. It is accounted
// exactly like SwapEthToToken.
func (e *Engine) ReceiveEth(sender [20]byte, ethAmount *big.Int) (*SwapRecord, error) {
	return e.swap(sender, ethAmount)
}

func (e *Engine) swap(sender [20]byte, ethAmount *big.Int) (*SwapRecord, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	params, err := e.Params()
	if err != nil {
		return nil, err
	}
	totals, err := e.ledger.Totals()
	if err != nil {
		return nil, err
	}
	now := e.now()
	tokenAmount, err := e.admit(sender, ethAmount, params, totals, now)
	if err != nil {
		return nil, err
	}

	// The base asset arrives with the call, so pull it before bookkeeping.
	if err := e.gateway.Transfer(params.BaseAsset, sender, e.vault, ethAmount); err != nil {
		return nil, err
	}

	timestamp, err := e.nextTimestamp(now)
	if err != nil {
		return nil, err
	}
	rec := &SwapRecord{
		User:              sender,
		EthAmount:         cloneBigInt(ethAmount),
		TokenAmount:       tokenAmount,
		DistributedAmount: big.NewInt(0),
		Timestamp:         timestamp,
	}
	if _, err := e.ledger.Append(rec); err != nil {
		return nil, err
	}
	if totals.SwappedEth, err = addAmount(totals.SwappedEth, ethAmount); err != nil {
		return nil, err
	}
	if totals.SwappedToken, err = addAmount(totals.SwappedToken, tokenAmount); err != nil {
		return nil, err
	}
	if err := e.ledger.PutTotals(totals); err != nil {
		return nil, err
	}
	e.emit(NewSwappedEvent(rec))

	if err := e.gateway.Transfer(params.BaseAsset, e.vault, params.EthRecipient, ethAmount); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// admit runs the admission checks in their fixed order and returns the sale
// asset amount the swap would create.
func (e *Engine) admit(sender [20]byte, ethAmount *big.Int, params *Params, totals *Totals, now uint64) (*big.Int, error) {
	if ethAmount == nil || ethAmount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if now < params.SaleStart {
		return nil, ErrNotStarted
	}
	if now >= params.SaleEnd {
		return nil, ErrSaleEnded
	}
	newTotal, err := addAmount(totals.SwappedEth, ethAmount)
	if err != nil {
		return nil, err
	}
	if newTotal.Cmp(params.HardCap) > 0 {
		return nil, ErrHardCapReached
	}
	if ethAmount.Cmp(params.MinIndividualCap) < 0 || ethAmount.Cmp(params.MaxIndividualCap) > 0 {
		return nil, ErrOutsideIndividualCap
	}
	user, err := e.ledger.UserData(sender)
	if err != nil {
		return nil, err
	}
	userTotal, err := addAmount(user.TotalEthAmount, ethAmount)
	if err != nil {
		return nil, err
	}
	if userTotal.Cmp(params.MaxIndividualCap) > 0 {
		return nil, ErrMaxIndividualCapReached
	}
	whitelisted, err := e.access.IsWhitelisted(sender)
	if err != nil {
		return nil, err
	}
	if !whitelisted {
		return nil, ErrNotWhitelisted
	}
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	tokenAmount, err := mulAmount(ethAmount, params.SaleRate)
	if err != nil {
		return nil, err
	}
	required, err := addAmount(totals.Outstanding(), tokenAmount)
	if err != nil {
		return nil, err
	}
	balance, err := e.gateway.BalanceOf(params.SaleAsset, e.vault)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(required) < 0 {
		return nil, ErrNotEnoughTokenToSwap
	}
	return tokenAmount, nil
}

// nextTimestamp keeps the log ordered by time even if the clock steps back.
func (e *Engine) nextTimestamp(now uint64) (uint64, error) {
	count, err := e.ledger.Count()
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return now, nil
	}
	last, err := e.ledger.Get(count - 1)
	if err != nil {
		return 0, err
	}
	if last.Timestamp > now {
		return last.Timestamp, nil
	}
	return now, nil
}
