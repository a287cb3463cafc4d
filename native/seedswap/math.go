package seedswap

import (
	"math/big"

	"github.com/holiman/uint256"
)

var hundred = uint256.NewInt(100)

func toU256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, errOverflow
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, errOverflow
	}
	return out, nil
}

func mulAmount(a, b *big.Int) (*big.Int, error) {
	x, err := toU256(a)
	if err != nil {
		return nil, err
	}
	y, err := toU256(b)
	if err != nil {
		return nil, err
	}
	out, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, errOverflow
	}
	return out.ToBig(), nil
}

func addAmount(a, b *big.Int) (*big.Int, error) {
	x, err := toU256(a)
	if err != nil {
		return nil, err
	}
	y, err := toU256(b)
	if err != nil {
		return nil, err
	}
	out, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, errOverflow
	}
	return out.ToBig(), nil
}

// releaseDelta returns floor((token - distributed) * percentage / 100).
func releaseDelta(rec *SwapRecord, percentage uint64) (*big.Int, error) {
	remaining, err := toU256(rec.Remaining())
	if err != nil {
		return nil, err
	}
	scaled, overflow := new(uint256.Int).MulOverflow(remaining, uint256.NewInt(percentage))
	if overflow {
		return nil, errOverflow
	}
	return new(uint256.Int).Div(scaled, hundred).ToBig(), nil
}
