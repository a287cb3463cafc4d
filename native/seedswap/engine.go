package seedswap

import (
	"math/big"
	"strings"
	"time"

	"seedswap/core/events"
	"seedswap/core/types"
	"seedswap/crypto"
)

// VaultAddress custodies the sale asset awaiting distribution and briefly
// holds the base asset before it is forwarded.
var VaultAddress = crypto.ModuleAddress("seedswap/vault")

// Gateway moves and reports balances of the base and sale assets.
type Gateway interface {
	Transfer(asset string, from, to [20]byte, amount *big.Int) error
	BalanceOf(asset string, holder [20]byte) (*big.Int, error)
	TotalSupply(asset string) (*big.Int, error)
	Decimals(asset string) (uint8, error)
}

// AccessGate answers the capability questions the engine asks before acting.
type AccessGate interface {
	IsOwner(addr [20]byte) (bool, error)
	IsAdmin(addr [20]byte) (bool, error)
	IsWhitelisted(addr [20]byte) (bool, error)
	IsPaused() (bool, error)
}

// Engine implements admission, distribution, estimation and the emergency
// path on top of the swap ledger. It holds no sale state of its own; all of
// it lives behind the configured Storage.
type Engine struct {
	state   Storage
	ledger  *Ledger
	gateway Gateway
	access  AccessGate
	emitter events.Emitter
	vault   [20]byte
	nowFn   func() int64
}

// NewEngine creates an engine with a no-op emitter and the wall clock.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		vault:   VaultAddress,
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state Storage) {
	e.state = state
	e.ledger = NewLedger(state)
}

// SetGateway configures the asset ledger.
func (e *Engine) SetGateway(gateway Gateway) { e.gateway = gateway }

// SetAccess configures the capability predicates.
func (e *Engine) SetAccess(access AccessGate) { e.access = access }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Vault returns the custodian address.
func (e *Engine) Vault() [20]byte { return e.vault }

// Ledger exposes the underlying record store for read access.
func (e *Engine) Ledger() *Ledger { return e.ledger }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(seedswapEvent{evt: event})
}

func (e *Engine) now() uint64 {
	var ts int64
	if e == nil || e.nowFn == nil {
		ts = time.Now().Unix()
	} else {
		ts = e.nowFn()
	}
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	if e.gateway == nil {
		return errNilGateway
	}
	if e.access == nil {
		return errNilAccess
	}
	return nil
}

// Init stores the sale parameters. The sale asset must be known to the
// gateway and the eth recipient starts as the owner.
func (e *Engine) Init(owner [20]byte, params Params) error {
	if err := e.ready(); err != nil {
		return err
	}
	exists, err := e.state.KVGet(paramsKey, nil)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialised
	}
	params.SaleAsset = strings.ToUpper(strings.TrimSpace(params.SaleAsset))
	params.BaseAsset = strings.ToUpper(strings.TrimSpace(params.BaseAsset))
	if params.SaleAsset == "" {
		return ErrInvalidToken
	}
	if _, err := e.gateway.Decimals(params.SaleAsset); err != nil {
		return ErrInvalidToken
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := e.gateway.Decimals(params.BaseAsset); err != nil {
		return err
	}
	if owner == ([20]byte{}) {
		return ErrInvalidRecipient
	}
	params.EthRecipient = owner
	if err := e.putParams(&params); err != nil {
		return err
	}
	if err := e.ledger.PutTotals(newTotals()); err != nil {
		return err
	}
	e.emit(newInitialisedEvent(&params))
	return nil
}

// Params returns the current sale parameters.
func (e *Engine) Params() (*Params, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	var params Params
	ok, err := e.state.KVGet(paramsKey, &params)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialised
	}
	return params.Clone(), nil
}

func (e *Engine) putParams(params *Params) error {
	return e.state.KVPut(paramsKey, params.Clone())
}

// Record returns a single swap record.
func (e *Engine) Record(id uint64) (*SwapRecord, error) {
	if e == nil || e.ledger == nil {
		return nil, errNilState
	}
	return e.ledger.Get(id)
}

// Records returns a page of swap records. A zero limit returns all records
// from offset.
func (e *Engine) Records(offset, limit uint64) ([]*SwapRecord, error) {
	if e == nil || e.ledger == nil {
		return nil, errNilState
	}
	return e.ledger.Range(offset, limit)
}

// NumberSwaps returns how many records exist.
func (e *Engine) NumberSwaps() (uint64, error) {
	if e == nil || e.ledger == nil {
		return 0, errNilState
	}
	return e.ledger.Count()
}

// UserSwapData returns the aggregated view of user's records.
func (e *Engine) UserSwapData(user [20]byte) (*UserSwapData, error) {
	if e == nil || e.ledger == nil {
		return nil, errNilState
	}
	return e.ledger.UserData(user)
}

// Totals returns the running sums.
func (e *Engine) Totals() (*Totals, error) {
	if e == nil || e.ledger == nil {
		return nil, errNilState
	}
	return e.ledger.Totals()
}

// VaultBalance returns how much of asset the custodian holds.
func (e *Engine) VaultBalance(asset string) (*big.Int, error) {
	if e == nil || e.gateway == nil {
		return nil, errNilGateway
	}
	return e.gateway.BalanceOf(asset, e.vault)
}

func (e *Engine) requireOwner(caller [20]byte) error {
	ok, err := e.access.IsOwner(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotOwner
	}
	return nil
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	ok, err := e.access.IsAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAdmin
	}
	return nil
}

func (e *Engine) requireNotPaused() error {
	paused, err := e.access.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}
