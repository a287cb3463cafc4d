package rpc

import (
	"context"
	"encoding/json"
)

type transferParams struct {
	Asset  string       `json:"asset"`
	To     addressParam `json:"to"`
	Amount amountParam  `json:"amount"`
}

func (s *Server) handleBankTransfer(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p transferParams
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
	if err := s.node.Transfer(ctx, asset, caller, p.To, p.Amount.value()); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type approveParams struct {
	Asset   string       `json:"asset"`
	Spender addressParam `json:"spender"`
	Amount  amountParam  `json:"amount"`
}

func (s *Server) handleBankApprove(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p approveParams
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
	if err := s.node.Approve(ctx, asset, caller, p.Spender, p.Amount.value()); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type burnParams struct {
	Asset  string       `json:"asset"`
	From   addressParam `json:"from,omitempty"`
	Amount amountParam  `json:"amount"`
}

func (s *Server) handleBankBurn(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p burnParams
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
	if err := s.node.Burn(ctx, asset, caller, p.Amount.value()); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

// handleBankBurnFrom burns from another holder using the caller's allowance.
func (s *Server) handleBankBurnFrom(ctx context.Context, caller [20]byte, params []json.RawMessage) (interface{}, error) {
	var p burnParams
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
	if err := s.node.BurnFrom(ctx, asset, caller, p.From, p.Amount.value()); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type balanceParams struct {
	Asset   string       `json:"asset"`
	Address addressParam `json:"address"`
}

func (s *Server) handleBankBalance(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p balanceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	asset, err := normalizeAsset(p.Asset)
	if err != nil {
		return nil, err
	}
	bal, err := s.node.BalanceOf(asset, p.Address)
	if err != nil {
		return nil, err
	}
	return map[string]string{"asset": asset, "balance": amountString(bal)}, nil
}

type allowanceParams struct {
	Asset   string       `json:"asset"`
	Owner   addressParam `json:"owner"`
	Spender addressParam `json:"spender"`
}

func (s *Server) handleBankAllowance(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p allowanceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	asset, err := normalizeAsset(p.Asset)
	if err != nil {
		return nil, err
	}
	allowance, err := s.node.Allowance(asset, p.Owner, p.Spender)
	if err != nil {
		return nil, err
	}
	return map[string]string{"asset": asset, "allowance": amountString(allowance)}, nil
}

type tokenParams struct {
	Asset string `json:"asset"`
}

func (s *Server) handleBankToken(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p tokenParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	asset, err := normalizeAsset(p.Asset)
	if err != nil {
		return nil, err
	}
	meta, err := s.node.Token(asset)
	if err != nil {
		return nil, err
	}
	return tokenResult(meta), nil
}
