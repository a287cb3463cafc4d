package seedswap

import (
	"math/big"
	"strings"
)

// EmergencyUserWithdrawToken releases everything still owed to caller once the
// withdrawal deadline after the sale end has passed.
func (e *Engine) EmergencyUserWithdrawToken(caller [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	params, err := e.Params()
	if err != nil {
		return nil, err
	}
	opensAfter := new(big.Int).Add(new(big.Int).SetUint64(params.SaleEnd), new(big.Int).SetUint64(params.WithdrawalDeadline))
	if new(big.Int).SetUint64(e.now()).Cmp(opensAfter) <= 0 {
		return nil, ErrEmergencyNotOpen
	}
	records, err := e.ledger.UserRecords(caller)
	if err != nil {
		return nil, err
	}
	remaining := big.NewInt(0)
	for _, rec := range records {
		remaining.Add(remaining, rec.Remaining())
	}
	if remaining.Sign() == 0 {
		return nil, ErrEmergencyClaimedAll
	}
	ok, err := e.vaultCovers(params, remaining)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmergencyNotEnoughToken
	}

	totals, err := e.ledger.Totals()
	if err != nil {
		return nil, err
	}
	released := make([]*big.Int, len(records))
	for i, rec := range records {
		released[i] = rec.Remaining()
		if released[i].Sign() == 0 {
			continue
		}
		rec.DistributedAmount = cloneBigInt(rec.TokenAmount)
		if err := e.ledger.Put(rec); err != nil {
			return nil, err
		}
	}
	totals.DistributedToken = new(big.Int).Add(totals.DistributedToken, remaining)
	if err := e.ledger.PutTotals(totals); err != nil {
		return nil, err
	}
	if _, err := e.ledger.AdvanceCursor(); err != nil {
		return nil, err
	}
	for i, rec := range records {
		if released[i].Sign() > 0 {
			e.emit(NewDistributedEvent(rec, released[i]))
		}
	}
	e.emit(NewEmergencyUserWithdrawEvent(caller, remaining))

	if err := e.gateway.Transfer(params.SaleAsset, e.vault, caller, remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}

// EmergencyOwnerWithdraw sweeps amount of any asset out of the vault to the
// owner. It bypasses the ledger entirely.
func (e *Engine) EmergencyOwnerWithdraw(caller [20]byte, asset string, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if err := e.gateway.Transfer(asset, e.vault, caller, amount); err != nil {
		return err
	}
	e.emit(NewEmergencyOwnerWithdrawEvent(caller, asset, amount))
	return nil
}
