package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"seedswap/crypto"
)

type methodFunc func(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error)

type method struct {
	// auth marks calls that act on behalf of the token subject.
	auth bool
	fn   methodFunc
}

func (s *Server) registerMethods() map[string]method {
	return map[string]method{
		"seedswap_swap":                    {auth: true, fn: s.handleSwap},
		"seedswap_receive":                 {auth: true, fn: s.handleReceive},
		"seedswap_distributeAll":           {auth: true, fn: s.handleDistributeAll},
		"seedswap_distributeBatch":         {auth: true, fn: s.handleDistributeBatch},
		"seedswap_emergencyUserWithdraw":   {auth: true, fn: s.handleEmergencyUserWithdraw},
		"seedswap_emergencyOwnerWithdraw":  {auth: true, fn: s.handleEmergencyOwnerWithdraw},
		"seedswap_updateSaleTimes":         {auth: true, fn: s.handleUpdateSaleTimes},
		"seedswap_updateSaleRate":          {auth: true, fn: s.handleUpdateSaleRate},
		"seedswap_updateEthRecipient":      {auth: true, fn: s.handleUpdateEthRecipient},
		"seedswap_updateWhitelistedAdmins": {auth: true, fn: s.handleUpdateAdmins},
		"seedswap_updateWhitelistedUsers":  {auth: true, fn: s.handleUpdateUsers},
		"seedswap_pause":                   {auth: true, fn: s.handlePause},
		"seedswap_unpause":                 {auth: true, fn: s.handleUnpause},
		"seedswap_transferOwnership":       {auth: true, fn: s.handleTransferOwnership},

		"seedswap_estimateDistributeAll":   {fn: s.handleEstimateDistributeAll},
		"seedswap_estimateDistributeBatch": {fn: s.handleEstimateDistributeBatch},
		"seedswap_params":                  {fn: s.handleParams},
		"seedswap_record":                  {fn: s.handleRecord},
		"seedswap_records":                 {fn: s.handleRecords},
		"seedswap_numberSwaps":             {fn: s.handleNumberSwaps},
		"seedswap_userSwapData":            {fn: s.handleUserSwapData},
		"seedswap_totals":                  {fn: s.handleTotals},
		"seedswap_roles":                   {fn: s.handleRoles},
		"seedswap_stateRoot":               {fn: s.handleStateRoot},

		"bank_transfer":  {auth: true, fn: s.handleBankTransfer},
		"bank_approve":   {auth: true, fn: s.handleBankApprove},
		"bank_burn":      {auth: true, fn: s.handleBankBurn},
		"bank_burnFrom":  {auth: true, fn: s.handleBankBurnFrom},
		"bank_balance":   {fn: s.handleBankBalance},
		"bank_allowance": {fn: s.handleBankAllowance},
		"bank_token":     {fn: s.handleBankToken},
	}
}

// decodeParams unpacks the single object parameter every method takes. A
// method without inputs accepts an empty params list.
func decodeParams(params []json.RawMessage, dst interface{}) error {
	if len(params) == 0 {
		if dst == nil {
			return nil
		}
		return invalidParams("expected one parameter object", nil)
	}
	if len(params) != 1 {
		return invalidParams("expected one parameter object", nil)
	}
	if dst == nil {
		return invalidParams("no parameters expected", nil)
	}
	dec := json.NewDecoder(bytes.NewReader(params[0]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalidParams("invalid parameters", err.Error())
	}
	return nil
}

func requireAmount(name string, a amountParam) error {
	if a.Int == nil {
		return invalidParams(name+" required", nil)
	}
	return nil
}

func normalizeAsset(asset string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(asset))
	if trimmed == "" {
		return "", invalidParams("asset required", nil)
	}
	return trimmed, nil
}

func formatAddresses(in [][20]byte) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = crypto.FormatAddress(a)
	}
	return out
}
