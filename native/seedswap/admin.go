package seedswap

import "math/big"

// UpdateSaleTimes moves the admission window. Owner only and only before the
// current window opens.
func (e *Engine) UpdateSaleTimes(caller [20]byte, start, end uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	params, err := e.Params()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	now := e.now()
	if now >= params.SaleStart {
		return ErrAlreadyStarted
	}
	if start < now {
		return ErrInvalidStartTime
	}
	if start >= end {
		return ErrInvalidStartAndEndTime
	}
	params.SaleStart = start
	params.SaleEnd = end
	if err := e.putParams(params); err != nil {
		return err
	}
	e.emit(newUpdateSaleTimesEvent(start, end))
	return nil
}

// UpdateSaleRate changes the rate applied to new swaps. The new rate must lie
// within [rate/2, rate*3/2] of the current one.
func (e *Engine) UpdateSaleRate(caller [20]byte, rate *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	params, err := e.Params()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.now() >= params.SaleEnd {
		return ErrAlreadyEnded
	}
	if rate == nil {
		rate = big.NewInt(0)
	}
	lower := new(big.Int).Quo(params.SaleRate, big.NewInt(2))
	if rate.Cmp(lower) < 0 {
		return ErrRateTooLow
	}
	upper := new(big.Int).Quo(new(big.Int).Mul(params.SaleRate, big.NewInt(3)), big.NewInt(2))
	if rate.Cmp(upper) > 0 {
		return ErrRateTooHigh
	}
	params.SaleRate = new(big.Int).Set(rate)
	if err := e.putParams(params); err != nil {
		return err
	}
	e.emit(newUpdateSaleRateEvent(rate))
	return nil
}

// UpdateEthRecipient changes where swapped base asset is forwarded.
func (e *Engine) UpdateEthRecipient(caller, recipient [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	params, err := e.Params()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if recipient == ([20]byte{}) {
		return ErrInvalidRecipient
	}
	params.EthRecipient = recipient
	if err := e.putParams(params); err != nil {
		return err
	}
	e.emit(newUpdateEthRecipientEvent(recipient))
	return nil
}
