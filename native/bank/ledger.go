package bank

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"seedswap/core/events"
)

var (
	errNilState = errors.New("bank: state not configured")

	// ErrUnknownToken is returned for symbols that were never registered.
	ErrUnknownToken = errors.New("bank: unknown token")
	// ErrTokenExists guards against registering a symbol twice.
	ErrTokenExists = errors.New("bank: token already registered")
	// ErrInsufficientBalance is returned when a debit exceeds the holder balance.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")
	// ErrInsufficientAllowance is returned when BurnFrom or TransferFrom exceed the approval.
	ErrInsufficientAllowance = errors.New("bank: insufficient allowance")
	// ErrNegativeAmount rejects negative amounts on every mutating call.
	ErrNegativeAmount = errors.New("bank: amount must not be negative")
	// ErrZeroAddress rejects movements involving the zero address.
	ErrZeroAddress = errors.New("bank: zero address")
)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// TokenMetadata describes a registered fungible asset.
type TokenMetadata struct {
	Symbol   string
	Name     string
	Decimals uint8
	Supply   *big.Int
}

// Clone returns a deep copy of the metadata.
func (m *TokenMetadata) Clone() *TokenMetadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Supply = cloneBig(m.Supply)
	return &out
}

// Ledger keeps balances, allowances and supply for every registered token in
// the KV state.
type Ledger struct {
	state   ledgerState
	emitter events.Emitter
}

// NewLedger builds a ledger backed by state.
func NewLedger(state ledgerState) *Ledger {
	return &Ledger{state: state, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used by the ledger. Passing nil
// resets the emitter to a no-op implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil || evt == nil {
		return
	}
	l.emitter.Emit(evt)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// RegisterToken records metadata for a new asset with zero supply.
func (l *Ledger) RegisterToken(meta TokenMetadata) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	symbol := normalizeSymbol(meta.Symbol)
	if symbol == "" {
		return fmt.Errorf("bank: token symbol required")
	}
	exists, err := l.state.KVGet(tokenKey(symbol), nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, symbol)
	}
	stored := TokenMetadata{
		Symbol:   symbol,
		Name:     strings.TrimSpace(meta.Name),
		Decimals: meta.Decimals,
		Supply:   big.NewInt(0),
	}
	return l.state.KVPut(tokenKey(symbol), &stored)
}

// Token returns the metadata registered for symbol.
func (l *Ledger) Token(symbol string) (*TokenMetadata, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	symbol = normalizeSymbol(symbol)
	var meta TokenMetadata
	ok, err := l.state.KVGet(tokenKey(symbol), &meta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	if meta.Supply == nil {
		meta.Supply = big.NewInt(0)
	}
	return &meta, nil
}

// HasToken reports whether symbol is registered.
func (l *Ledger) HasToken(symbol string) bool {
	_, err := l.Token(symbol)
	return err == nil
}

// TotalSupply returns the circulating supply of symbol.
func (l *Ledger) TotalSupply(symbol string) (*big.Int, error) {
	meta, err := l.Token(symbol)
	if err != nil {
		return nil, err
	}
	return cloneBig(meta.Supply), nil
}

// Decimals returns the display precision of symbol.
func (l *Ledger) Decimals(symbol string) (uint8, error) {
	meta, err := l.Token(symbol)
	if err != nil {
		return 0, err
	}
	return meta.Decimals, nil
}

// BalanceOf returns holder's balance of symbol.
func (l *Ledger) BalanceOf(symbol string, holder [20]byte) (*big.Int, error) {
	if _, err := l.Token(symbol); err != nil {
		return nil, err
	}
	return l.balance(normalizeSymbol(symbol), holder)
}

func (l *Ledger) balance(symbol string, holder [20]byte) (*big.Int, error) {
	var amount big.Int
	ok, err := l.state.KVGet(balanceKey(symbol, holder), &amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return &amount, nil
}

func (l *Ledger) setBalance(symbol string, holder [20]byte, amount *big.Int) error {
	return l.state.KVPut(balanceKey(symbol, holder), cloneBig(amount))
}

func checkAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return amount, nil
}

// Mint creates amount of symbol and credits it to to.
func (l *Ledger) Mint(symbol string, to [20]byte, amount *big.Int) error {
	meta, err := l.Token(symbol)
	if err != nil {
		return err
	}
	amount, err = checkAmount(amount)
	if err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	bal, err := l.balance(meta.Symbol, to)
	if err != nil {
		return err
	}
	if err := l.setBalance(meta.Symbol, to, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	meta.Supply = new(big.Int).Add(meta.Supply, amount)
	if err := l.state.KVPut(tokenKey(meta.Symbol), meta); err != nil {
		return err
	}
	l.emit(events.Mint{Asset: meta.Symbol, To: to, Amount: cloneBig(amount)})
	return nil
}

// Transfer moves amount of symbol between two holders. A zero amount is a
// no-op that still validates the token.
func (l *Ledger) Transfer(symbol string, from, to [20]byte, amount *big.Int) error {
	meta, err := l.Token(symbol)
	if err != nil {
		return err
	}
	amount, err = checkAmount(amount)
	if err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := l.balance(meta.Symbol, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := l.setBalance(meta.Symbol, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := l.balance(meta.Symbol, to)
	if err != nil {
		return err
	}
	if err := l.setBalance(meta.Symbol, to, new(big.Int).Add(toBal, amount)); err != nil {
		return err
	}
	l.emit(events.Transfer{Asset: meta.Symbol, From: from, To: to, Amount: cloneBig(amount)})
	return nil
}

// Burn destroys amount of holder's balance.
func (l *Ledger) Burn(symbol string, holder [20]byte, amount *big.Int) error {
	meta, err := l.Token(symbol)
	if err != nil {
		return err
	}
	amount, err = checkAmount(amount)
	if err != nil {
		return err
	}
	bal, err := l.balance(meta.Symbol, holder)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := l.setBalance(meta.Symbol, holder, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	meta.Supply = new(big.Int).Sub(meta.Supply, amount)
	if err := l.state.KVPut(tokenKey(meta.Symbol), meta); err != nil {
		return err
	}
	l.emit(events.Burn{Asset: meta.Symbol, From: holder, Amount: cloneBig(amount)})
	return nil
}

// Allowance returns how much spender may move on owner's behalf.
func (l *Ledger) Allowance(symbol string, owner, spender [20]byte) (*big.Int, error) {
	meta, err := l.Token(symbol)
	if err != nil {
		return nil, err
	}
	var amount big.Int
	ok, err := l.state.KVGet(allowanceKey(meta.Symbol, owner, spender), &amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return &amount, nil
}

// Approve sets spender's allowance over owner's balance.
func (l *Ledger) Approve(symbol string, owner, spender [20]byte, amount *big.Int) error {
	meta, err := l.Token(symbol)
	if err != nil {
		return err
	}
	amount, err = checkAmount(amount)
	if err != nil {
		return err
	}
	if spender == ([20]byte{}) {
		return ErrZeroAddress
	}
	if err := l.state.KVPut(allowanceKey(meta.Symbol, owner, spender), cloneBig(amount)); err != nil {
		return err
	}
	l.emit(events.Approval{Asset: meta.Symbol, Owner: owner, Spender: spender, Amount: cloneBig(amount)})
	return nil
}

func (l *Ledger) spendAllowance(symbol string, owner, spender [20]byte, amount *big.Int) error {
	allowed, err := l.Allowance(symbol, owner, spender)
	if err != nil {
		return err
	}
	if allowed.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	return l.state.KVPut(allowanceKey(normalizeSymbol(symbol), owner, spender), new(big.Int).Sub(allowed, amount))
}

// BurnFrom destroys amount of owner's balance using spender's allowance.
func (l *Ledger) BurnFrom(symbol string, spender, owner [20]byte, amount *big.Int) error {
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if err := l.spendAllowance(symbol, owner, spender, amount); err != nil {
		return err
	}
	return l.Burn(symbol, owner, amount)
}

// TransferFrom moves amount from owner to to using spender's allowance.
func (l *Ledger) TransferFrom(symbol string, spender, owner, to [20]byte, amount *big.Int) error {
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if err := l.spendAllowance(symbol, owner, spender, amount); err != nil {
		return err
	}
	return l.Transfer(symbol, owner, to, amount)
}
