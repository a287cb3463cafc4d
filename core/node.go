package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"seedswap/core/events"
	ledgerstate "seedswap/core/state"
	"seedswap/native/access"
	"seedswap/native/bank"
	"seedswap/native/seedswap"
	"seedswap/observability"
	telemetry "seedswap/observability/otel"
	"seedswap/storage"
)

// Node wires the state manager, the token ledger, the access gate and the sale
// engine together. Every exported mutating method runs under a single writer
// lock and either commits all of its writes and events or none of them.
type Node struct {
	db      storage.Database
	state   *ledgerstate.Manager
	bank    *bank.Ledger
	access  *access.Gate
	engine  *seedswap.Engine
	pending *events.Buffer
	feed    *events.Broadcaster
	logger  *slog.Logger
	stateMu sync.Mutex
}

// NewNode opens the ledger on top of db.
func NewNode(db storage.Database) *Node {
	manager := ledgerstate.NewManager(db)
	pending := &events.Buffer{}

	ledger := bank.NewLedger(manager)
	ledger.SetEmitter(pending)
	gate := access.NewGate(manager)
	gate.SetEmitter(pending)

	engine := seedswap.NewEngine()
	engine.SetState(manager)
	engine.SetGateway(ledger)
	engine.SetAccess(gate)
	engine.SetEmitter(pending)

	return &Node{
		db:      db,
		state:   manager,
		bank:    ledger,
		access:  gate,
		engine:  engine,
		pending: pending,
		feed:    events.NewBroadcaster(),
		logger:  slog.Default(),
	}
}

// SetLogger replaces the logger used for call outcomes.
func (n *Node) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	n.logger = logger
}

// SetNowFunc overrides the engine clock.
func (n *Node) SetNowFunc(now func() int64) { n.engine.SetNowFunc(now) }

// Events returns the feed of committed events.
func (n *Node) Events() *events.Broadcaster { return n.feed }

// Vault returns the sale custodian address.
func (n *Node) Vault() [20]byte { return n.engine.Vault() }

// StateRoot returns the digest of the committed key space.
func (n *Node) StateRoot() ([32]byte, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.state.Root()
}

// Close releases the database.
func (n *Node) Close() {
	if n.db != nil {
		n.db.Close()
	}
}

// exec runs fn as one atomic call. A nil error commits the journal and
// publishes the buffered events; anything else discards both.
func (n *Node) exec(ctx context.Context, operation string, fn func() error) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	_, span := telemetry.Tracer().Start(ctx, "seedswap."+operation)
	defer span.End()
	start := time.Now()

	err := fn()
	if err == nil {
		if commitErr := n.state.Commit(); commitErr != nil {
			err = fmt.Errorf("commit %s: %w", operation, commitErr)
		}
	}
	observability.Ledger().ObserveCall(operation, err, time.Since(start))
	if err != nil {
		n.state.Discard()
		n.pending.Reset()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.logger.Debug("seedswap call rejected", slog.String("operation", operation), slog.String("reason", err.Error()))
		return err
	}

	committed := n.pending.Drain()
	span.SetAttributes(attribute.Int("events", len(committed)))
	metrics := observability.Ledger()
	for _, evt := range committed {
		metrics.RecordEvent(evt.EventType())
		n.feed.Emit(evt)
	}
	n.logger.Info("seedswap call committed", slog.String("operation", operation), slog.Int("events", len(committed)))
	return nil
}

// SwapEthToToken records a swap for sender.
func (n *Node) SwapEthToToken(ctx context.Context, sender [20]byte, ethAmount *big.Int) (*seedswap.SwapRecord, error) {
	return n.swap(ctx, "swap", sender, ethAmount, n.engine.SwapEthToToken)
}

// ReceiveEth handles a bare base-asset transfer to the sale.
func (n *Node) ReceiveEth(ctx context.Context, sender [20]byte, ethAmount *big.Int) (*seedswap.SwapRecord, error) {
	return n.swap(ctx, "receive", sender, ethAmount, n.engine.ReceiveEth)
}

func (n *Node) swap(ctx context.Context, op string, sender [20]byte, ethAmount *big.Int, fn func([20]byte, *big.Int) (*seedswap.SwapRecord, error)) (*seedswap.SwapRecord, error) {
	var rec *seedswap.SwapRecord
	err := n.exec(ctx, op, func() error {
		var err error
		rec, err = fn(sender, ethAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	if params, perr := n.engine.Params(); perr == nil {
		observability.Ledger().RecordSwap(params.BaseAsset, rec.EthAmount, params.SaleAsset, rec.TokenAmount)
	}
	return rec, nil
}

// DistributeAll runs a time-windowed distribution on behalf of caller.
func (n *Node) DistributeAll(ctx context.Context, caller [20]byte, percentage, timeUnits uint64) (*seedswap.DistributionPlan, error) {
	var plan *seedswap.DistributionPlan
	err := n.exec(ctx, "distribute_all", func() error {
		var err error
		plan, err = n.engine.DistributeAll(caller, percentage, timeUnits)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordDistribution(plan.TotalDistributingAmount)
	return plan, nil
}

// DistributeBatch distributes to the listed records on behalf of caller.
func (n *Node) DistributeBatch(ctx context.Context, caller [20]byte, percentage uint64, ids []uint64) (*seedswap.DistributionPlan, error) {
	var plan *seedswap.DistributionPlan
	err := n.exec(ctx, "distribute_batch", func() error {
		var err error
		plan, err = n.engine.DistributeBatch(caller, percentage, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordDistribution(plan.TotalDistributingAmount)
	return plan, nil
}

// EmergencyUserWithdrawToken releases caller's remaining claim after the deadline.
func (n *Node) EmergencyUserWithdrawToken(ctx context.Context, caller [20]byte) (*big.Int, error) {
	var amount *big.Int
	err := n.exec(ctx, "emergency_user_withdraw", func() error {
		var err error
		amount, err = n.engine.EmergencyUserWithdrawToken(caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordDistribution(amount)
	return amount, nil
}

// EmergencyOwnerWithdraw sweeps an asset from the vault to the owner.
func (n *Node) EmergencyOwnerWithdraw(ctx context.Context, caller [20]byte, asset string, amount *big.Int) error {
	return n.exec(ctx, "emergency_owner_withdraw", func() error {
		return n.engine.EmergencyOwnerWithdraw(caller, asset, amount)
	})
}

// UpdateSaleTimes moves the sale window.
func (n *Node) UpdateSaleTimes(ctx context.Context, caller [20]byte, start, end uint64) error {
	return n.exec(ctx, "update_sale_times", func() error {
		return n.engine.UpdateSaleTimes(caller, start, end)
	})
}

// UpdateSaleRate changes the rate for new swaps.
func (n *Node) UpdateSaleRate(ctx context.Context, caller [20]byte, rate *big.Int) error {
	return n.exec(ctx, "update_sale_rate", func() error {
		return n.engine.UpdateSaleRate(caller, rate)
	})
}

// UpdateEthRecipient changes where swapped base asset goes.
func (n *Node) UpdateEthRecipient(ctx context.Context, caller, recipient [20]byte) error {
	return n.exec(ctx, "update_eth_recipient", func() error {
		return n.engine.UpdateEthRecipient(caller, recipient)
	})
}

// UpdateWhitelistedAdmins grants or revokes the admin role.
func (n *Node) UpdateWhitelistedAdmins(ctx context.Context, caller [20]byte, addrs [][20]byte, granted bool) error {
	return n.exec(ctx, "update_admins", func() error {
		return n.access.UpdateWhitelistedAdmins(caller, addrs, granted)
	})
}

// UpdateWhitelistedUsers adds or removes swap whitelist entries.
func (n *Node) UpdateWhitelistedUsers(ctx context.Context, caller [20]byte, addrs [][20]byte, granted bool) error {
	return n.exec(ctx, "update_users", func() error {
		return n.access.UpdateWhitelistedUsers(caller, addrs, granted)
	})
}

// Pause halts swaps and distributions.
func (n *Node) Pause(ctx context.Context, caller [20]byte) error {
	return n.exec(ctx, "pause", func() error { return n.access.Pause(caller) })
}

// Unpause resumes a paused sale.
func (n *Node) Unpause(ctx context.Context, caller [20]byte) error {
	return n.exec(ctx, "unpause", func() error { return n.access.Unpause(caller) })
}

// TransferOwnership hands the owner role to next.
func (n *Node) TransferOwnership(ctx context.Context, caller, next [20]byte) error {
	return n.exec(ctx, "transfer_ownership", func() error {
		return n.access.TransferOwnership(caller, next)
	})
}

// Transfer moves a token between accounts on behalf of from.
func (n *Node) Transfer(ctx context.Context, asset string, from, to [20]byte, amount *big.Int) error {
	return n.exec(ctx, "transfer", func() error {
		return n.bank.Transfer(asset, from, to, amount)
	})
}

// Approve sets an allowance on behalf of owner.
func (n *Node) Approve(ctx context.Context, asset string, owner, spender [20]byte, amount *big.Int) error {
	return n.exec(ctx, "approve", func() error {
		return n.bank.Approve(asset, owner, spender, amount)
	})
}

// Burn destroys part of holder's balance.
func (n *Node) Burn(ctx context.Context, asset string, holder [20]byte, amount *big.Int) error {
	return n.exec(ctx, "burn", func() error {
		return n.bank.Burn(asset, holder, amount)
	})
}

// BurnFrom destroys part of owner's balance using spender's allowance.
func (n *Node) BurnFrom(ctx context.Context, asset string, spender, owner [20]byte, amount *big.Int) error {
	return n.exec(ctx, "burn_from", func() error {
		return n.bank.BurnFrom(asset, spender, owner, amount)
	})
}
