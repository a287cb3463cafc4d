package seedswap

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	DefaultBaseAsset            = "ETH"
	DefaultSaleAsset            = "TEA"
	DefaultSaleRate             = 20000
	DefaultSaleStart            = 1609729200
	DefaultSaleEnd              = 1610384340
	DefaultDistributePeriodUnit = 24 * 60 * 60
	DefaultWithdrawalDeadline   = 180 * 24 * 60 * 60
	DefaultSafeDistributeNumber = 150
)

var ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Params are the sale settings fixed at Init. SaleStart, SaleEnd, SaleRate and
// EthRecipient can later be changed by the owner; the rest are constants.
type Params struct {
	BaseAsset            string
	SaleAsset            string
	HardCap              *big.Int
	MinIndividualCap     *big.Int
	MaxIndividualCap     *big.Int
	SaleRate             *big.Int
	SaleStart            uint64
	SaleEnd              uint64
	DistributePeriodUnit uint64
	WithdrawalDeadline   uint64
	SafeDistributeNumber uint64
	EthRecipient         [20]byte
}

// DefaultParams mirrors the launch configuration of the TEA seed round.
func DefaultParams() Params {
	return Params{
		BaseAsset:            DefaultBaseAsset,
		SaleAsset:            DefaultSaleAsset,
		HardCap:              new(big.Int).Mul(big.NewInt(500), ether),
		MinIndividualCap:     new(big.Int).Div(ether, big.NewInt(10)),
		MaxIndividualCap:     new(big.Int).Mul(big.NewInt(10), ether),
		SaleRate:             big.NewInt(DefaultSaleRate),
		SaleStart:            DefaultSaleStart,
		SaleEnd:              DefaultSaleEnd,
		DistributePeriodUnit: DefaultDistributePeriodUnit,
		WithdrawalDeadline:   DefaultWithdrawalDeadline,
		SafeDistributeNumber: DefaultSafeDistributeNumber,
	}
}

// Clone returns a deep copy of the parameters.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	clone := *p
	clone.HardCap = cloneBigInt(p.HardCap)
	clone.MinIndividualCap = cloneBigInt(p.MinIndividualCap)
	clone.MaxIndividualCap = cloneBigInt(p.MaxIndividualCap)
	clone.SaleRate = cloneBigInt(p.SaleRate)
	return &clone
}

// Validate checks the structural consistency of the parameters. Access and
// token existence are checked by the engine.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("seedswap: params required")
	}
	if strings.TrimSpace(p.BaseAsset) == "" {
		return fmt.Errorf("seedswap: base asset required")
	}
	if strings.EqualFold(strings.TrimSpace(p.BaseAsset), strings.TrimSpace(p.SaleAsset)) {
		return fmt.Errorf("seedswap: base and sale asset must differ")
	}
	amounts := []struct {
		name  string
		value *big.Int
	}{
		{"hard cap", p.HardCap},
		{"min individual cap", p.MinIndividualCap},
		{"max individual cap", p.MaxIndividualCap},
		{"sale rate", p.SaleRate},
	}
	for _, a := range amounts {
		if a.value == nil || a.value.Sign() <= 0 {
			return fmt.Errorf("seedswap: %s must be positive", a.name)
		}
	}
	if p.MinIndividualCap.Cmp(p.MaxIndividualCap) > 0 {
		return fmt.Errorf("seedswap: min individual cap exceeds max individual cap")
	}
	if p.SaleStart >= p.SaleEnd {
		return ErrInvalidStartAndEndTime
	}
	if p.DistributePeriodUnit == 0 {
		return fmt.Errorf("seedswap: distribute period unit must be positive")
	}
	return nil
}
