package rpc

import (
	"context"
	"encoding/json"

	"seedswap/crypto"
)

type swapParams struct {
	Amount amountParam `json:"amount"`
}

func (s *Server) handleSwap(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p swapParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireAmount("amount", p.Amount); err != nil {
		return nil, err
	}
	rec, err := s.node.SwapEthToToken(ctx, caller, p.Amount.value())
	if err != nil {
		return nil, err
	}
	return recordResult(rec), nil
}

func (s *Server) handleReceive(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p swapParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireAmount("amount", p.Amount); err != nil {
		return nil, err
	}
	rec, err := s.node.ReceiveEth(ctx, caller, p.Amount.value())
	if err != nil {
		return nil, err
	}
	return recordResult(rec), nil
}

type distributeAllParams struct {
	Percentage uint64 `json:"percentage"`
	TimeUnits  uint64 `json:"timeUnits"`
}

type distributeBatchParams struct {
	Percentage uint64   `json:"percentage"`
	IDs        []uint64 `json:"ids"`
}

func (s *Server) handleDistributeAll(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p distributeAllParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	plan, err := s.node.DistributeAll(ctx, caller, p.Percentage, p.TimeUnits)
	if err != nil {
		return nil, err
	}
	return planResult(plan), nil
}

func (s *Server) handleDistributeBatch(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p distributeBatchParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	plan, err := s.node.DistributeBatch(ctx, caller, p.Percentage, p.IDs)
	if err != nil {
		return nil, err
	}
	return planResult(plan), nil
}

func (s *Server) handleEstimateDistributeAll(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p distributeAllParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	plan, err := s.node.EstimateDistributeAll(p.Percentage, p.TimeUnits)
	if err != nil {
		return nil, err
	}
	return planResult(plan), nil
}

func (s *Server) handleEstimateDistributeBatch(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p distributeBatchParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	plan, err := s.node.EstimateDistributeBatch(p.Percentage, p.IDs)
	if err != nil {
		return nil, err
	}
	return planResult(plan), nil
}

func (s *Server) handleEmergencyUserWithdraw(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	amount, err := s.node.EmergencyUserWithdrawToken(ctx, caller)
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount": amountString(amount)}, nil
}

type ownerWithdrawParams struct {
	Asset  string      `json:"asset"`
	Amount amountParam `json:"amount"`
}

func (s *Server) handleEmergencyOwnerWithdraw(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p ownerWithdrawParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	asset, err := normalizeAsset(p.Asset)
	if err != nil {
		return nil, err
	}
	if err := requireAmount("amount", p.Amount); err != nil {
		return nil, err
	}
	if err := s.node.EmergencyOwnerWithdraw(ctx, caller, asset, p.Amount.value()); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type saleTimesParams struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

func (s *Server) handleUpdateSaleTimes(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p saleTimesParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := s.node.UpdateSaleTimes(ctx, caller, p.Start, p.End); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type saleRateParams struct {
	Rate amountParam `json:"rate"`
}

func (s *Server) handleUpdateSaleRate(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p saleRateParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireAmount("rate", p.Rate); err != nil {
		return nil, err
	}
	if err := s.node.UpdateSaleRate(ctx, caller, p.Rate.value()); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type addressOnlyParams struct {
	Address addressParam `json:"address"`
}

func (s *Server) handleUpdateEthRecipient(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p addressOnlyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := s.node.UpdateEthRecipient(ctx, caller, p.Address); err != nil {
		return nil, err
	}
	return map[string]string{"ethRecipient": crypto.FormatAddress(p.Address)}, nil
}

type roleUpdateParams struct {
	Addresses []addressParam `json:"addresses"`
	Granted   bool           `json:"granted"`
}

func (s *Server) handleUpdateAdmins(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p roleUpdateParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := s.node.UpdateWhitelistedAdmins(ctx, caller, addresses(p.Addresses), p.Granted); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) handleUpdateUsers(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p roleUpdateParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := s.node.UpdateWhitelistedUsers(ctx, caller, addresses(p.Addresses), p.Granted); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) handlePause(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	if err := s.node.Pause(ctx, caller); err != nil {
		return nil, err
	}
	return map[string]bool{"paused": true}, nil
}

func (s *Server) handleUnpause(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	if err := s.node.Unpause(ctx, caller); err != nil {
		return nil, err
	}
	return map[string]bool{"paused": false}, nil
}

func (s *Server) handleTransferOwnership(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p addressOnlyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := s.node.TransferOwnership(ctx, caller, p.Address); err != nil {
		return nil, err
	}
	return map[string]string{"owner": crypto.FormatAddress(p.Address)}, nil
}
