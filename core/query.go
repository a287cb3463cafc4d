package core

import (
	"math/big"

	"seedswap/native/bank"
	"seedswap/native/seedswap"
)

// Read-only views. They share the writer lock so a query never observes a
// call that is half applied.

func (n *Node) Params() (*seedswap.Params, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Params()
}

func (n *Node) Record(id uint64) (*seedswap.SwapRecord, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Record(id)
}

// Records pages through the swap log. A zero limit returns everything from
// offset.
func (n *Node) Records(offset, limit uint64) ([]*seedswap.SwapRecord, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Records(offset, limit)
}

func (n *Node) NumberSwaps() (uint64, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.NumberSwaps()
}

func (n *Node) UserSwapData(user [20]byte) (*seedswap.UserSwapData, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.UserSwapData(user)
}

func (n *Node) Totals() (*seedswap.Totals, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Totals()
}

// DistributionCursor returns the index of the first record that may still
// hold an undistributed amount.
func (n *Node) DistributionCursor() (uint64, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Ledger().Cursor()
}

// EstimateDistributeAll previews DistributeAll without touching state.
func (n *Node) EstimateDistributeAll(percentage, timeUnits uint64) (*seedswap.DistributionPlan, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.EstimateDistributeAll(percentage, timeUnits)
}

// EstimateDistributeBatch previews DistributeBatch without touching state.
func (n *Node) EstimateDistributeBatch(percentage uint64, ids []uint64) (*seedswap.DistributionPlan, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.EstimateDistributeBatch(percentage, ids)
}

func (n *Node) VaultBalance(asset string) (*big.Int, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.VaultBalance(asset)
}

func (n *Node) BalanceOf(asset string, holder [20]byte) (*big.Int, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.bank.BalanceOf(asset, holder)
}

func (n *Node) Allowance(asset string, owner, spender [20]byte) (*big.Int, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.bank.Allowance(asset, owner, spender)
}

func (n *Node) Token(asset string) (*bank.TokenMetadata, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.bank.Token(asset)
}

// Roles describes what addr may do.
type Roles struct {
	Owner       bool
	Admin       bool
	Whitelisted bool
}

func (n *Node) Roles(addr [20]byte) (*Roles, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	var out Roles
	var err error
	if out.Owner, err = n.access.IsOwner(addr); err != nil {
		return nil, err
	}
	if out.Admin, err = n.access.IsAdmin(addr); err != nil {
		return nil, err
	}
	if out.Whitelisted, err = n.access.IsWhitelisted(addr); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *Node) Paused() (bool, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.access.IsPaused()
}

func (n *Node) Owner() ([20]byte, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.access.Owner()
}
