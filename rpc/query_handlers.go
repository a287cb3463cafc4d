package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"seedswap/crypto"
)

func (s *Server) handleParams(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	p, err := s.node.Params()
	if err != nil {
		return nil, err
	}
	paused, err := s.node.Paused()
	if err != nil {
		return nil, err
	}
	return ParamsResult{
		BaseAsset:            p.BaseAsset,
		SaleAsset:            p.SaleAsset,
		HardCap:              amountString(p.HardCap),
		MinIndividualCap:     amountString(p.MinIndividualCap),
		MaxIndividualCap:     amountString(p.MaxIndividualCap),
		SaleRate:             amountString(p.SaleRate),
		SaleStart:            p.SaleStart,
		SaleEnd:              p.SaleEnd,
		DistributePeriodUnit: p.DistributePeriodUnit,
		WithdrawalDeadline:   p.WithdrawalDeadline,
		SafeDistributeNumber: p.SafeDistributeNumber,
		EthRecipient:         crypto.FormatAddress(p.EthRecipient),
		Vault:                crypto.FormatAddress(s.node.Vault()),
		Paused:               paused,
	}, nil
}

type recordParams struct {
	ID uint64 `json:"id"`
}

func (s *Server) handleRecord(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p recordParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	rec, err := s.node.Record(p.ID)
	if err != nil {
		return nil, err
	}
	return recordResult(rec), nil
}

type recordsParams struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

const maxRecordsPage = 500

func (s *Server) handleRecords(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p recordsParams
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
	}
	if p.Limit == 0 || p.Limit > maxRecordsPage {
		p.Limit = maxRecordsPage
	}
	records, err := s.node.Records(p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]SwapRecordResult, len(records))
	for i, rec := range records {
		out[i] = recordResult(rec)
	}
	return out, nil
}

func (s *Server) handleNumberSwaps(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	count, err := s.node.NumberSwaps()
	if err != nil {
		return nil, err
	}
	return count, nil
}

func (s *Server) handleUserSwapData(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p addressOnlyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	data, err := s.node.UserSwapData(p.Address)
	if err != nil {
		return nil, err
	}
	return userDataResult(data), nil
}

func (s *Server) handleTotals(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	totals, err := s.node.Totals()
	if err != nil {
		return nil, err
	}
	count, err := s.node.NumberSwaps()
	if err != nil {
		return nil, err
	}
	cursor, err := s.node.DistributionCursor()
	if err != nil {
		return nil, err
	}
	return TotalsResult{
		SwappedEth:       amountString(totals.SwappedEth),
		SwappedToken:     amountString(totals.SwappedToken),
		DistributedToken: amountString(totals.DistributedToken),
		Outstanding:      amountString(totals.Outstanding()),
		NumberSwaps:      count,
		Cursor:           cursor,
	}, nil
}

func (s *Server) handleRoles(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	var p addressOnlyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	roles, err := s.node.Roles(p.Address)
	if err != nil {
		return nil, err
	}
	return RolesResult{
		Address:     crypto.FormatAddress(p.Address),
		Owner:       roles.Owner,
		Admin:       roles.Admin,
		Whitelisted: roles.Whitelisted,
	}, nil
}

func (s *Server) handleStateRoot(_ context.Context, _ [20]byte, params []json.RawMessage) (interface{}, error) {
	if err := decodeParams(params, nil); err != nil {
		return nil, err
	}
	root, err := s.node.StateRoot()
	if err != nil {
		return nil, err
	}
	return "0x" + hex.EncodeToString(root[:]), nil
}
