package access

import (
	"errors"
	"fmt"

	"seedswap/core/events"
)

var (
	errNilState = errors.New("access: state not configured")

	// ErrNotOwner is returned by owner-gated operations.
	ErrNotOwner = errors.New("Ownable: caller is not the owner")
	// ErrZeroOwner rejects ownership transfers to the zero address.
	ErrZeroOwner = errors.New("Ownable: new owner is the zero address")
	// ErrNotAdmin is returned by admin-gated operations.
	ErrNotAdmin = errors.New("WhitelistAdminRole: caller does not have the WhitelistAdmin role")
	// ErrPaused is returned when pausing an already paused gate.
	ErrPaused = errors.New("paused")
	// ErrNotPaused is returned when unpausing a running gate.
	ErrNotPaused = errors.New("not paused")
	// ErrAlreadyInitialised guards Init against running twice.
	ErrAlreadyInitialised = errors.New("access: already initialised")
)

var (
	ownerKey  = []byte("access/owner")
	pausedKey = []byte("access/paused")
)

func adminKey(addr [20]byte) []byte {
	return append([]byte("access/admin/"), addr[:]...)
}

func userKey(addr [20]byte) []byte {
	return append([]byte("access/whitelist/"), addr[:]...)
}

type gateState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Gate stores ownership, the whitelist admin role, the whitelisted sender set
// and the pause flag. Every predicate reads straight from state.
type Gate struct {
	state   gateState
	emitter events.Emitter
}

// NewGate returns a gate backed by state.
func NewGate(state gateState) *Gate {
	return &Gate{state: state, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used by the gate. Passing nil resets
// the emitter to a no-op implementation.
func (g *Gate) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		g.emitter = events.NoopEmitter{}
		return
	}
	g.emitter = emitter
}

func (g *Gate) emit(evt events.Event) {
	if g == nil || g.emitter == nil || evt == nil {
		return
	}
	g.emitter.Emit(evt)
}

// Init sets the owner and grants the admin role to every address in admins.
func (g *Gate) Init(owner [20]byte, admins ...[20]byte) error {
	if g == nil || g.state == nil {
		return errNilState
	}
	if owner == ([20]byte{}) {
		return ErrZeroOwner
	}
	var existing [20]byte
	ok, err := g.state.KVGet(ownerKey, &existing)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialised
	}
	if err := g.state.KVPut(ownerKey, owner); err != nil {
		return err
	}
	g.emit(OwnershipTransferred{Previous: [20]byte{}, Next: owner})
	for _, admin := range admins {
		if err := g.setFlag(adminKey(admin), true); err != nil {
			return err
		}
		g.emit(RoleUpdated{Role: RoleAdmin, Account: admin, Granted: true})
	}
	return nil
}

// Owner returns the current owner. The zero address means uninitialised.
func (g *Gate) Owner() ([20]byte, error) {
	var owner [20]byte
	if g == nil || g.state == nil {
		return owner, errNilState
	}
	if _, err := g.state.KVGet(ownerKey, &owner); err != nil {
		return owner, fmt.Errorf("access: load owner: %w", err)
	}
	return owner, nil
}

func (g *Gate) flag(key []byte) (bool, error) {
	if g == nil || g.state == nil {
		return false, errNilState
	}
	var value bool
	if _, err := g.state.KVGet(key, &value); err != nil {
		return false, err
	}
	return value, nil
}

func (g *Gate) setFlag(key []byte, value bool) error {
	return g.state.KVPut(key, value)
}

// IsOwner reports whether addr owns the sale.
func (g *Gate) IsOwner(addr [20]byte) (bool, error) {
	owner, err := g.Owner()
	if err != nil {
		return false, err
	}
	return owner != ([20]byte{}) && owner == addr, nil
}

// IsAdmin reports whether addr holds the whitelist admin role.
func (g *Gate) IsAdmin(addr [20]byte) (bool, error) { return g.flag(adminKey(addr)) }

// IsWhitelisted reports whether addr may swap.
func (g *Gate) IsWhitelisted(addr [20]byte) (bool, error) { return g.flag(userKey(addr)) }

// IsPaused reports the global pause flag.
func (g *Gate) IsPaused() (bool, error) { return g.flag(pausedKey) }

// RequireOwner returns ErrNotOwner unless caller is the owner.
func (g *Gate) RequireOwner(caller [20]byte) error {
	ok, err := g.IsOwner(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotOwner
	}
	return nil
}

// RequireAdmin returns ErrNotAdmin unless caller holds the admin role.
func (g *Gate) RequireAdmin(caller [20]byte) error {
	ok, err := g.IsAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAdmin
	}
	return nil
}

// TransferOwnership hands the owner role to next.
func (g *Gate) TransferOwnership(caller, next [20]byte) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if next == ([20]byte{}) {
		return ErrZeroOwner
	}
	if err := g.state.KVPut(ownerKey, next); err != nil {
		return err
	}
	g.emit(OwnershipTransferred{Previous: caller, Next: next})
	return nil
}

// UpdateWhitelistedAdmins grants or revokes the admin role. Owner only.
// Entries already in the requested state are left untouched.
func (g *Gate) UpdateWhitelistedAdmins(caller [20]byte, addrs [][20]byte, granted bool) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	return g.updateSet(RoleAdmin, adminKey, addrs, granted)
}

// UpdateWhitelistedUsers adds or removes addresses from the swap whitelist.
// Admin only.
func (g *Gate) UpdateWhitelistedUsers(caller [20]byte, addrs [][20]byte, granted bool) error {
	if err := g.RequireAdmin(caller); err != nil {
		return err
	}
	return g.updateSet(RoleWhitelisted, userKey, addrs, granted)
}

func (g *Gate) updateSet(role string, keyFn func([20]byte) []byte, addrs [][20]byte, granted bool) error {
	for _, addr := range addrs {
		current, err := g.flag(keyFn(addr))
		if err != nil {
			return err
		}
		if current == granted {
			continue
		}
		if err := g.setFlag(keyFn(addr), granted); err != nil {
			return err
		}
		g.emit(RoleUpdated{Role: role, Account: addr, Granted: granted})
	}
	return nil
}

// Pause halts swaps and distributions. Admin only.
func (g *Gate) Pause(caller [20]byte) error {
	if err := g.RequireAdmin(caller); err != nil {
		return err
	}
	paused, err := g.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	if err := g.setFlag(pausedKey, true); err != nil {
		return err
	}
	g.emit(PauseToggled{Account: caller, Paused: true})
	return nil
}

// Unpause resumes a paused gate. Admin only.
func (g *Gate) Unpause(caller [20]byte) error {
	if err := g.RequireAdmin(caller); err != nil {
		return err
	}
	paused, err := g.IsPaused()
	if err != nil {
		return err
	}
	if !paused {
		return ErrNotPaused
	}
	if err := g.setFlag(pausedKey, false); err != nil {
		return err
	}
	g.emit(PauseToggled{Account: caller, Paused: false})
	return nil
}
