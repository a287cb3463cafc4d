package seedswap

import "math/big"

// SwapRecord is one accepted swap. Identity fields never change after
// creation; DistributedAmount only grows and never exceeds TokenAmount.
type SwapRecord struct {
	ID                uint64
	User              [20]byte
	EthAmount         *big.Int
	TokenAmount       *big.Int
	DistributedAmount *big.Int
	Timestamp         uint64
}

// Clone returns a deep copy of the record so callers can safely mutate the
// copy without affecting the stored instance.
func (r *SwapRecord) Clone() *SwapRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.EthAmount = cloneBigInt(r.EthAmount)
	clone.TokenAmount = cloneBigInt(r.TokenAmount)
	clone.DistributedAmount = cloneBigInt(r.DistributedAmount)
	return &clone
}

// Remaining returns the claim that has not been released yet.
func (r *SwapRecord) Remaining() *big.Int {
	if r == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(cloneBigInt(r.TokenAmount), cloneBigInt(r.DistributedAmount))
}

// FullyDistributed reports whether the whole claim has been released.
func (r *SwapRecord) FullyDistributed() bool {
	return r.Remaining().Sign() <= 0
}

// Totals holds the running sums over every record.
type Totals struct {
	SwappedEth       *big.Int
	SwappedToken     *big.Int
	DistributedToken *big.Int
}

// Clone returns a deep copy of the totals.
func (t *Totals) Clone() *Totals {
	if t == nil {
		return newTotals()
	}
	return &Totals{
		SwappedEth:       cloneBigInt(t.SwappedEth),
		SwappedToken:     cloneBigInt(t.SwappedToken),
		DistributedToken: cloneBigInt(t.DistributedToken),
	}
}

// Outstanding is the sale asset owed to participants but not yet released.
func (t *Totals) Outstanding() *big.Int {
	return new(big.Int).Sub(cloneBigInt(t.SwappedToken), cloneBigInt(t.DistributedToken))
}

func newTotals() *Totals {
	return &Totals{SwappedEth: big.NewInt(0), SwappedToken: big.NewInt(0), DistributedToken: big.NewInt(0)}
}

// UserSwapData is the per-user view assembled from the user's owned records.
// The slices are parallel and ordered by record id.
type UserSwapData struct {
	User                   [20]byte
	TotalEthAmount         *big.Int
	TotalTokenAmount       *big.Int
	TotalDistributedAmount *big.Int
	TotalRemainingAmount   *big.Int
	IDs                    []uint64
	EthAmounts             []*big.Int
	TokenAmounts           []*big.Int
	DistributedAmounts     []*big.Int
	Timestamps             []uint64
}

// DistributionPlan describes the records a distribution call touches and how
// much each receives. Estimators return the plan without applying it; the
// mutating calls return the plan they applied. Records with a zero delta are
// never listed.
type DistributionPlan struct {
	IsSafe                  bool
	TotalUsers              uint64
	TotalDistributingAmount *big.Int
	IDs                     []uint64
	Users                   [][20]byte
	DistributingAmounts     []*big.Int
}

func (p *DistributionPlan) add(rec *SwapRecord, delta *big.Int) {
	p.IDs = append(p.IDs, rec.ID)
	p.Users = append(p.Users, rec.User)
	p.DistributingAmounts = append(p.DistributingAmounts, delta)
	p.TotalDistributingAmount = new(big.Int).Add(p.TotalDistributingAmount, delta)
	p.TotalUsers++
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
