package seedswap

import (
	"math/big"
	"strconv"
	"strings"

	"seedswap/core/types"
	"seedswap/crypto"
)

const (
	EventTypeInitialised            = "seedswap.initialised"
	EventTypeSwapped                = "seedswap.swapped"
	EventTypeDistributed            = "seedswap.distributed"
	EventTypeDistributeAll          = "seedswap.distribute_all"
	EventTypeDistributeBatch        = "seedswap.distribute_batch"
	EventTypeEmergencyUserWithdraw  = "seedswap.emergency_user_withdraw"
	EventTypeEmergencyOwnerWithdraw = "seedswap.emergency_owner_withdraw"
	EventTypeUpdateSaleTimes        = "seedswap.update_sale_times"
	EventTypeUpdateSaleRate         = "seedswap.update_sale_rate"
	EventTypeUpdateEthRecipient     = "seedswap.update_eth_recipient"
)

type seedswapEvent struct {
	evt *types.Event
}

func (e seedswapEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e seedswapEvent) Event() *types.Event { return e.evt }

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

// NewSwappedEvent returns the payload emitted for an accepted swap.
func NewSwappedEvent(rec *SwapRecord) *types.Event {
	return &types.Event{Type: EventTypeSwapped, Attributes: map[string]string{
		"id":          formatUint(rec.ID),
		"user":        crypto.FormatAddress(rec.User),
		"ethAmount":   formatAmount(rec.EthAmount),
		"tokenAmount": formatAmount(rec.TokenAmount),
		"timestamp":   formatUint(rec.Timestamp),
	}}
}

// NewDistributedEvent returns the payload emitted once per record released by
// a distribution or an emergency withdrawal.
func NewDistributedEvent(rec *SwapRecord, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeDistributed, Attributes: map[string]string{
		"id":                formatUint(rec.ID),
		"user":              crypto.FormatAddress(rec.User),
		"amount":            formatAmount(amount),
		"distributedAmount": formatAmount(rec.DistributedAmount),
		"tokenAmount":       formatAmount(rec.TokenAmount),
	}}
}

// NewDistributionEvent summarises a distribute call.
func NewDistributionEvent(eventType string, caller [20]byte, percentage uint64, plan *DistributionPlan) *types.Event {
	ids := make([]string, 0, len(plan.IDs))
	for _, id := range plan.IDs {
		ids = append(ids, formatUint(id))
	}
	return &types.Event{Type: eventType, Attributes: map[string]string{
		"caller":      crypto.FormatAddress(caller),
		"percentage":  formatUint(percentage),
		"records":     formatUint(plan.TotalUsers),
		"ids":         strings.Join(ids, ","),
		"totalAmount": formatAmount(plan.TotalDistributingAmount),
	}}
}

// NewEmergencyUserWithdrawEvent reports a self-service full release.
func NewEmergencyUserWithdrawEvent(user [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeEmergencyUserWithdraw, Attributes: map[string]string{
		"user":   crypto.FormatAddress(user),
		"amount": formatAmount(amount),
	}}
}

// NewEmergencyOwnerWithdrawEvent reports an owner sweep.
func NewEmergencyOwnerWithdrawEvent(owner [20]byte, asset string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeEmergencyOwnerWithdraw, Attributes: map[string]string{
		"owner":  crypto.FormatAddress(owner),
		"asset":  asset,
		"amount": formatAmount(amount),
	}}
}

func newInitialisedEvent(p *Params) *types.Event {
	return &types.Event{Type: EventTypeInitialised, Attributes: map[string]string{
		"baseAsset":    p.BaseAsset,
		"saleAsset":    p.SaleAsset,
		"saleRate":     formatAmount(p.SaleRate),
		"saleStart":    formatUint(p.SaleStart),
		"saleEnd":      formatUint(p.SaleEnd),
		"hardCap":      formatAmount(p.HardCap),
		"ethRecipient": crypto.FormatAddress(p.EthRecipient),
	}}
}

func newUpdateSaleTimesEvent(start, end uint64) *types.Event {
	return &types.Event{Type: EventTypeUpdateSaleTimes, Attributes: map[string]string{
		"saleStart": formatUint(start),
		"saleEnd":   formatUint(end),
	}}
}

func newUpdateSaleRateEvent(rate *big.Int) *types.Event {
	return &types.Event{Type: EventTypeUpdateSaleRate, Attributes: map[string]string{
		"saleRate": formatAmount(rate),
	}}
}

func newUpdateEthRecipientEvent(recipient [20]byte) *types.Event {
	return &types.Event{Type: EventTypeUpdateEthRecipient, Attributes: map[string]string{
		"ethRecipient": crypto.FormatAddress(recipient),
	}}
}
