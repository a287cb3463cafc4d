package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"seedswap/crypto"
	"seedswap/native/bank"
	"seedswap/native/seedswap"
)

// Amounts cross the wire as base-10 strings.

type SwapRecordResult struct {
	ID                uint64 `json:"id"`
	User              string `json:"user"`
	EthAmount         string `json:"ethAmount"`
	TokenAmount       string `json:"tokenAmount"`
	DistributedAmount string `json:"distributedAmount"`
	Timestamp         uint64 `json:"timestamp"`
}

type UserSwapDataResult struct {
	TotalEthAmount          string   `json:"totalEthAmount"`
	TotalTokenAmount        string   `json:"totalTokenAmount"`
	TotalDistributedAmount  string   `json:"totalDistributedAmount"`
	TotalRemainingAmount    string   `json:"totalRemainingAmount"`
	IDs                     []uint64 `json:"ids"`
	EthAmounts              []string `json:"ethAmounts"`
	TokenAmounts            []string `json:"tokenAmounts"`
	DistributedTokenAmounts []string `json:"distributedTokenAmounts"`
	Timestamps              []uint64 `json:"timestamps"`
}

type DistributionPlanResult struct {
	IsSafe                  bool     `json:"isSafe"`
	TotalUsers              uint64   `json:"totalUsers"`
	TotalDistributingAmount string   `json:"totalDistributingAmount"`
	IDs                     []uint64 `json:"ids"`
	Users                   []string `json:"users"`
	DistributingAmounts     []string `json:"distributingAmounts"`
}

type TotalsResult struct {
	SwappedEth       string `json:"swappedEth"`
	SwappedToken     string `json:"swappedToken"`
	DistributedToken string `json:"distributedToken"`
	Outstanding      string `json:"outstanding"`
	NumberSwaps      uint64 `json:"numberSwaps"`
	Cursor           uint64 `json:"cursor"`
}

type ParamsResult struct {
	BaseAsset            string `json:"baseAsset"`
	SaleAsset            string `json:"saleAsset"`
	HardCap              string `json:"hardCap"`
	MinIndividualCap     string `json:"minIndividualCap"`
	MaxIndividualCap     string `json:"maxIndividualCap"`
	SaleRate             string `json:"saleRate"`
	SaleStart            uint64 `json:"saleStart"`
	SaleEnd              uint64 `json:"saleEnd"`
	DistributePeriodUnit uint64 `json:"distributePeriodUnit"`
	WithdrawalDeadline   uint64 `json:"withdrawalDeadline"`
	SafeDistributeNumber uint64 `json:"safeDistributeNumber"`
	EthRecipient         string `json:"ethRecipient"`
	Vault                string `json:"vault"`
	Paused               bool   `json:"paused"`
}

type TokenResult struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

type RolesResult struct {
	Address     string `json:"address"`
	Owner       bool   `json:"owner"`
	Admin       bool   `json:"admin"`
	Whitelisted bool   `json:"whitelisted"`
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func amountStrings(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = amountString(v)
	}
	return out
}

func recordResult(rec *seedswap.SwapRecord) SwapRecordResult {
	return SwapRecordResult{
		ID:                rec.ID,
		User:              crypto.FormatAddress(rec.User),
		EthAmount:         amountString(rec.EthAmount),
		TokenAmount:       amountString(rec.TokenAmount),
		DistributedAmount: amountString(rec.DistributedAmount),
		Timestamp:         rec.Timestamp,
	}
}

func userDataResult(data *seedswap.UserSwapData) UserSwapDataResult {
	return UserSwapDataResult{
		TotalEthAmount:          amountString(data.TotalEthAmount),
		TotalTokenAmount:        amountString(data.TotalTokenAmount),
		TotalDistributedAmount:  amountString(data.TotalDistributedAmount),
		TotalRemainingAmount:    amountString(data.TotalRemainingAmount),
		IDs:                     append([]uint64{}, data.IDs...),
		EthAmounts:              amountStrings(data.EthAmounts),
		TokenAmounts:            amountStrings(data.TokenAmounts),
		DistributedTokenAmounts: amountStrings(data.DistributedAmounts),
		Timestamps:              append([]uint64{}, data.Timestamps...),
	}
}

func planResult(plan *seedswap.DistributionPlan) DistributionPlanResult {
	return DistributionPlanResult{
		IsSafe:                  plan.IsSafe,
		TotalUsers:              plan.TotalUsers,
		TotalDistributingAmount: amountString(plan.TotalDistributingAmount),
		IDs:                     append([]uint64{}, plan.IDs...),
		Users:                   formatAddresses(plan.Users),
		DistributingAmounts:     amountStrings(plan.DistributingAmounts),
	}
}

func tokenResult(meta *bank.TokenMetadata) TokenResult {
	return TokenResult{
		Symbol:      meta.Symbol,
		Name:        meta.Name,
		Decimals:    meta.Decimals,
		TotalSupply: amountString(meta.Supply),
	}
}

// addressParam decodes a bech32 or 0x address string.
type addressParam [20]byte

func (a *addressParam) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("address must be a string")
	}
	addr, err := crypto.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// amountParam accepts a base-10 string or a JSON integer.
type amountParam struct{ *big.Int }

func (a *amountParam) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", raw)
	}
	a.Int = v
	return nil
}

func (a amountParam) value() *big.Int {
	if a.Int == nil {
		return nil
	}
	return new(big.Int).Set(a.Int)
}

func addresses(in []addressParam) [][20]byte {
	out := make([][20]byte, len(in))
	for i, a := range in {
		out[i] = a
	}
	return out
}
