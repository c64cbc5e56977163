package xykmining

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"farmchain/core/clock"
	"farmchain/core/events"
	"farmchain/core/state"
	nativecommon "farmchain/native/common"
	lm "farmchain/native/liquiditymining"
	"farmchain/observability/metrics"
)

const (
	moduleName = "xykmining"

	// RoleFarmCreator gates global farm creation.
	RoleFarmCreator = "ROLE_FARM_CREATOR"

	// ReservedNFTClassIDUpTo is the last class id reserved for chain modules.
	ReservedNFTClassIDUpTo = 999
)

// Config binds the module to its custody account and deposit NFT class.
type Config struct {
	PalletID   string
	NFTClassID uint64
}

// Validate enforces that the deposit class lives in the reserved range so no
// user collection can collide with it.
func (c Config) Validate() error {
	if c.PalletID == "" {
		return fmt.Errorf("xykmining: pallet id must not be empty")
	}
	if c.NFTClassID > ReservedNFTClassIDUpTo {
		return fmt.Errorf("%w: %d", ErrInvalidNFTClass, c.NFTClassID)
	}
	return nil
}

// ModuleAccount derives the account holding locked AMM shares.
func ModuleAccount(palletID string) [20]byte {
	digest := ethcrypto.Keccak256([]byte("xykmining/"), []byte(palletID))
	var out [20]byte
	copy(out[:], digest[12:])
	return out
}

// Module exposes the liquidity mining engine to AMM share holders. Calls are
// serialized and each runs in its own state transaction; events are released
// only after the transaction commits.
type Module struct {
	mu      sync.Mutex
	manager *state.Manager
	engine  *lm.Engine
	clock   clock.Provider
	cfg     Config
	account [20]byte
	emitter events.Emitter
	pauses  nativecommon.PauseView
	logger  *slog.Logger
	metrics *metrics.FarmingMetrics
	tracer  trace.Tracer
}

// New wires the module and creates its NFT class on first use.
func New(manager *state.Manager, engine *lm.Engine, provider clock.Provider, cfg Config) (*Module, error) {
	if manager == nil {
		return nil, errNilManager
	}
	if provider == nil {
		return nil, errNilClock
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine.SetClock(provider)
	m := &Module{
		manager: manager,
		engine:  engine,
		clock:   provider,
		cfg:     cfg,
		account: ModuleAccount(cfg.PalletID),
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		tracer:  otel.Tracer("farmchain/native/xykmining"),
	}
	err := manager.Transaction(func(tx *state.Tx) error {
		exists, err := tx.NFTClassExists(cfg.NFTClassID)
		if err != nil || exists {
			return err
		}
		return tx.CreateNFTClass(cfg.NFTClassID, m.account)
	})
	if err != nil {
		return nil, fmt.Errorf("xykmining: create nft class: %w", err)
	}
	return m, nil
}

// SetEmitter configures the event emitter used by the module. Passing nil resets
// the emitter to a no-op implementation.
func (m *Module) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		m.emitter = events.NoopEmitter{}
		return
	}
	m.emitter = emitter
}

func (m *Module) SetPauses(p nativecommon.PauseView) { m.pauses = p }

func (m *Module) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	m.logger = logger
	m.engine.SetLogger(logger.With("module", "liquiditymining"))
}

func (m *Module) SetMetrics(registry *metrics.FarmingMetrics) { m.metrics = registry }

// Account returns the share custody account.
func (m *Module) Account() [20]byte { return m.account }

// Engine exposes the engine for read-only queries.
func (m *Module) Engine() *lm.Engine { return m.engine }

// callContext carries the collaborators bound to one transaction.
type callContext struct {
	ctx           context.Context
	caller        [20]byte
	tx            *state.Tx
	amm           AMM
	ledger        Ledger
	nft           NFTRegistry
	events        *events.Buffer
	remaining     map[lm.FarmID]*uint256.Int
	closed        map[lm.FarmID]bool
	claimed       []claimRecord
	undistributed []claimRecord
	deposits      int
}

type claimRecord struct {
	currency lm.AssetID
	amount   *uint256.Int
}

func (c *callContext) emit(evt events.Event) { c.events.Emit(evt) }

// trackGlobal snapshots a global farm's remaining budget for the metrics.
func (m *Module) trackGlobal(c *callContext, id lm.FarmID) {
	farm, err := m.engine.GlobalFarm(id)
	if err != nil {
		return
	}
	c.remaining[id] = farm.Remaining
}

func (m *Module) dispatch(ctx context.Context, call string, caller [20]byte, fn func(c *callContext) error) error {
	callID := uuid.NewString()
	ctx, span := m.tracer.Start(ctx, "xykmining."+call, trace.WithAttributes(
		attribute.String("call.id", callID),
		attribute.String("caller", common.Address(caller).Hex()),
	))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	c := &callContext{
		ctx:       ctx,
		caller:    caller,
		events:    &events.Buffer{},
		remaining: make(map[lm.FarmID]*uint256.Int),
		closed:    make(map[lm.FarmID]bool),
	}
	err := nativecommon.Guard(m.pauses, moduleName)
	if err == nil {
		err = m.manager.Transaction(func(tx *state.Tx) error {
			m.engine.SetState(tx)
			defer m.engine.SetState(nil)
			c.tx = tx
			c.amm = stateAMM{tx: tx}
			c.ledger = stateLedger{tx: tx}
			c.nft = stateNFT{tx: tx}
			if err := tx.RecordBlock(m.clock.CurrentBlock()); err != nil {
				return err
			}
			return fn(c)
		})
	}
	m.metrics.ObserveCall(call, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Warn("liquidity mining call rejected",
			"call", call,
			"call_id", callID,
			"caller", common.Address(caller).Hex(),
			"error", err)
		return err
	}

	for id, remaining := range c.remaining {
		m.metrics.SetRemaining(id, remaining)
	}
	for id := range c.closed {
		m.metrics.SetRemaining(id, nil)
	}
	for _, claim := range c.claimed {
		m.metrics.RecordClaim(claim.currency, claim.amount)
	}
	for _, refund := range c.undistributed {
		m.metrics.RecordUndistributed(refund.currency, refund.amount)
	}
	for ; c.deposits > 0; c.deposits-- {
		m.metrics.DepositOpened()
	}
	for ; c.deposits < 0; c.deposits++ {
		m.metrics.DepositClosed()
	}
	emitted := len(c.events.Events())
	c.events.FlushTo(m.emitter)
	span.SetAttributes(attribute.Int("events", emitted))
	m.logger.Info("liquidity mining call applied",
		"call", call,
		"call_id", callID,
		"caller", common.Address(caller).Hex(),
		"events", emitted)
	return nil
}

func (m *Module) ensureDepositOwner(c *callContext, depositID lm.DepositID) error {
	owner, ok, err := c.nft.OwnerOf(m.cfg.NFTClassID, depositID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCantFindDepositOwner
	}
	if owner != c.caller {
		return ErrNotDepositOwner
	}
	return nil
}

func (m *Module) requirePool(c *callContext, pair AssetPair) ([20]byte, error) {
	exists, err := c.amm.Exists(pair)
	if err != nil {
		return [20]byte{}, err
	}
	if !exists {
		return [20]byte{}, ErrAMMPoolDoesNotExist
	}
	return c.amm.PoolID(pair), nil
}

func eventPair(pair AssetPair) events.AssetPair {
	return events.AssetPair{AssetIn: pair.AssetIn, AssetOut: pair.AssetOut}
}

func describeCurve(curve *lm.LoyaltyCurve) string {
	if curve == nil {
		return ""
	}
	return fmt.Sprintf("%s/%d", lm.FormatFixed(curve.InitialRewardPercentage), curve.ScaleCoef)
}
