package access

import (
	"strconv"

	"seedswap/core/types"
	"seedswap/crypto"
)

const (
	RoleAdmin       = "admin"
	RoleWhitelisted = "whitelisted"

	TypeRoleUpdated          = "access.role_updated"
	TypeOwnershipTransferred = "access.ownership_transferred"
	TypePaused               = "access.paused"
	TypeUnpaused             = "access.unpaused"
)

// RoleUpdated is emitted whenever an address gains or loses a role.
type RoleUpdated struct {
	Role    string
	Account [20]byte
	Granted bool
}

func (RoleUpdated) EventType() string { return TypeRoleUpdated }

func (e RoleUpdated) Event() *types.Event {
	return &types.Event{Type: TypeRoleUpdated, Attributes: map[string]string{
		"role":    e.Role,
		"account": crypto.FormatAddress(e.Account),
		"granted": strconv.FormatBool(e.Granted),
	}}
}

type OwnershipTransferred struct {
	Previous [20]byte
	Next     [20]byte
}

func (OwnershipTransferred) EventType() string { return TypeOwnershipTransferred }

func (e OwnershipTransferred) Event() *types.Event {
	attrs := map[string]string{"next": crypto.FormatAddress(e.Next)}
	if e.Previous != ([20]byte{}) {
		attrs["previous"] = crypto.FormatAddress(e.Previous)
	}
	return &types.Event{Type: TypeOwnershipTransferred, Attributes: attrs}
}

type PauseToggled struct {
	Account [20]byte
	Paused  bool
}

func (e PauseToggled) EventType() string {
	if e.Paused {
		return TypePaused
	}
	return TypeUnpaused
}

func (e PauseToggled) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"account": crypto.FormatAddress(e.Account),
	}}
}
