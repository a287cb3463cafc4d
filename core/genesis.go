package core

import (
	"context"
	"errors"
	"fmt"

	"seedswap/core/genesis"
	"seedswap/native/bank"
	"seedswap/native/seedswap"
)

// ErrGenesisApplied is returned when Genesis runs against a ledger that was
// already initialised.
var ErrGenesisApplied = errors.New("core: genesis already applied")

// Initialised reports whether sale parameters are present in committed state.
func (n *Node) Initialised() (bool, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.initialised()
}

// initialised expects stateMu to be held.
func (n *Node) initialised() (bool, error) {
	_, err := n.engine.Params()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, seedswap.ErrNotInitialised):
		return false, nil
	default:
		return false, err
	}
}

// Genesis seeds an empty ledger from spec in a single atomic call.
func (n *Node) Genesis(ctx context.Context, spec *genesis.Spec) error {
	if spec == nil {
		return fmt.Errorf("genesis spec must not be nil")
	}
	owner := spec.OwnerAddress()
	deployer := spec.DeployerAddress()
	params := spec.Params()

	return n.exec(ctx, "genesis", func() error {
		initialised, err := n.initialised()
		if err != nil {
			return err
		}
		if initialised {
			return ErrGenesisApplied
		}

		// 1) Tokens and owner supply
		for _, tok := range spec.Tokens {
			if err := n.bank.RegisterToken(bank.TokenMetadata{Symbol: tok.Symbol, Name: tok.Name, Decimals: tok.Decimals}); err != nil {
				return fmt.Errorf("register %s: %w", tok.Symbol, err)
			}
			if supply := tok.TokenSupply(); supply.Sign() > 0 {
				if err := n.bank.Mint(tok.Symbol, owner, supply); err != nil {
					return fmt.Errorf("mint %s supply: %w", tok.Symbol, err)
				}
			}
		}

		// 2) Allocations
		allocations, err := spec.Allocations()
		if err != nil {
			return err
		}
		for _, alloc := range allocations {
			if err := n.bank.Mint(alloc.Symbol, alloc.Address, alloc.Amount); err != nil {
				return fmt.Errorf("alloc %s: %w", alloc.Symbol, err)
			}
		}

		// 3) Roles
		if err := n.access.Init(owner, owner, deployer); err != nil {
			return fmt.Errorf("access init: %w", err)
		}
		admins, err := spec.RoleMembers(genesis.RoleAdmin)
		if err != nil {
			return err
		}
		if len(admins) > 0 {
			if err := n.access.UpdateWhitelistedAdmins(owner, admins, true); err != nil {
				return fmt.Errorf("grant admins: %w", err)
			}
		}
		users, err := spec.RoleMembers(genesis.RoleWhitelisted)
		if err != nil {
			return err
		}
		if len(users) > 0 {
			if err := n.access.UpdateWhitelistedUsers(owner, users, true); err != nil {
				return fmt.Errorf("whitelist users: %w", err)
			}
		}

		// 4) Sale
		if err := n.engine.Init(owner, params); err != nil {
			return err
		}
		if funding := spec.VaultFunding(); funding.Sign() > 0 {
			if err := n.bank.Transfer(params.SaleAsset, owner, n.engine.Vault(), funding); err != nil {
				return fmt.Errorf("fund vault: %w", err)
			}
		}
		return nil
	})
}
