package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/metrics"
	"github.com/blockful/anticapture-sub000/internal/registry"
	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

// errAlreadyApplied aborts an event whose log row already exists
var errAlreadyApplied = errors.New("event already applied")

// Engine applies governance events to the persisted aggregates.
//
// Aggregates are updated read-modify-write, so events of a DAO must be applied one at
// a time in (block number, log index) order. Apply holds a mutex for the whole event;
// run one engine per process and feed it from a single ordered consumer per DAO.
type Engine struct {
	mu             sync.Mutex
	store          store.Store
	classification registry.ClassificationRegistry
	tokens         map[domain.DaoID]string
}

// NewEngine creates an engine. tokens maps each DAO to its governance token address.
func NewEngine(st store.Store, classification registry.ClassificationRegistry, tokens map[domain.DaoID]string) *Engine {
	normalized := make(map[domain.DaoID]string, len(tokens))
	for dao, token := range tokens {
		normalized[dao] = domain.NormalizeAddress(token)
	}
	if classification == nil {
		classification, _ = registry.NewClassificationRegistry(nil)
	}
	return &Engine{
		store:          st,
		classification: classification,
		tokens:         normalized,
	}
}

// Apply applies a single event inside one store transaction.
// An event whose log row already exists is skipped without error.
func (e *Engine) Apply(ctx context.Context, event *domain.GovernanceEvent) error {
	if event == nil || !event.Valid() {
		return domain.ErrInvalidEvent
	}

	tokenID, ok := e.tokens[event.DaoID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDAO, event.DaoID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	dao := event.DaoID.String()
	eventType := string(event.EventType)
	start := time.Now()

	err := e.store.Transaction(ctx, func(tx store.Store) error {
		a := &application{
			store:          tx,
			classification: e.classification,
			dao:            event.DaoID,
			tokenID:        tokenID,
			event:          event,
		}
		return a.run(ctx)
	})

	metrics.ApplyDuration.WithLabelValues(dao).Observe(time.Since(start).Seconds())

	if errors.Is(err, errAlreadyApplied) {
		metrics.EventsSkipped.WithLabelValues(dao, eventType).Inc()
		logger.DebugCtx(ctx, "Event already applied, skipping",
			logger.DAO(event.DaoID),
			zap.String("eventType", eventType),
			zap.String("id", event.ID()))
		return nil
	}
	if err != nil {
		metrics.ApplyErrors.WithLabelValues(dao, eventType).Inc()
		return fmt.Errorf("failed to apply %s event %s: %w", eventType, event.ID(), err)
	}

	metrics.EventsApplied.WithLabelValues(dao, eventType).Inc()
	metrics.LastBlock.WithLabelValues(dao, metrics.StageAggregator).Set(float64(event.BlockNumber))
	return nil
}

// application is the state of one event being applied within a transaction
type application struct {
	store          store.Store
	classification registry.ClassificationRegistry
	dao            domain.DaoID
	tokenID        string
	event          *domain.GovernanceEvent
}

func (a *application) run(ctx context.Context) error {
	switch a.event.EventType {
	case domain.EventTypeTransfer:
		return a.applyTransfer(ctx)
	case domain.EventTypeDelegateChanged:
		return a.applyDelegateChanged(ctx)
	case domain.EventTypeDelegateVotesChanged:
		return a.applyDelegateVotesChanged(ctx)
	case domain.EventTypeVoteCast:
		return a.applyVoteCast(ctx)
	case domain.EventTypeProposalCreated:
		return a.applyProposalCreated(ctx)
	case domain.EventTypeProposalCanceled:
		return a.setProposalStatus(ctx, domain.ProposalStatusCanceled)
	case domain.EventTypeProposalExecuted:
		return a.setProposalStatus(ctx, domain.ProposalStatusExecuted)
	case domain.EventTypeProposalQueued:
		return a.setProposalStatus(ctx, domain.ProposalStatusQueued)
	}
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedEvent, a.event.EventType)
}

func (a *application) timestamp() time.Time {
	return a.event.Timestamp.UTC()
}

// created turns a false insert result into errAlreadyApplied
func created(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return errAlreadyApplied
	}
	return nil
}

func (a *application) loadToken(ctx context.Context) (*schema.Token, error) {
	token, err := a.store.GetToken(ctx, a.dao, a.tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		token = schema.NewToken(a.dao, a.tokenID)
	}
	return token, nil
}

func (a *application) loadPower(ctx context.Context, account string) (*schema.AccountPower, error) {
	power, err := a.store.GetAccountPower(ctx, a.dao, account)
	if err != nil {
		return nil, err
	}
	if power == nil {
		power = schema.NewAccountPower(a.dao, account)
	}
	return power, nil
}

// updatePower loads the power of an account, applies fn and saves it
func (a *application) updatePower(ctx context.Context, account string, fn func(*schema.AccountPower)) (*schema.AccountPower, error) {
	power, err := a.loadPower(ctx, account)
	if err != nil {
		return nil, err
	}
	fn(power)
	if err := a.store.SaveAccountPower(ctx, power); err != nil {
		return nil, err
	}
	return power, nil
}

// setMetric moves a token field to value and records the move in the day bucket
func (a *application) setMetric(ctx context.Context, token *schema.Token, metric domain.MetricType, value *big.Int) error {
	field := tokenField(token, metric)
	if field == nil {
		return fmt.Errorf("unknown metric type %s", metric)
	}
	old := field.BigInt()
	*field = toDecimal(value)

	key := store.DailyBucketKey{
		Date:       domain.DayStart(a.timestamp()),
		DaoID:      a.dao,
		TokenID:    a.tokenID,
		MetricType: metric,
	}
	return storeDailyBucket(ctx, a.store, key, old, value, a.timestamp())
}

// adjustMetric adds delta to a token field
func (a *application) adjustMetric(ctx context.Context, token *schema.Token, metric domain.MetricType, delta *big.Int) error {
	field := tokenField(token, metric)
	if field == nil {
		return fmt.Errorf("unknown metric type %s", metric)
	}
	return a.setMetric(ctx, token, metric, new(big.Int).Add(field.BigInt(), delta))
}

func tokenField(token *schema.Token, metric domain.MetricType) *decimal.Decimal {
	switch metric {
	case domain.MetricTypeTotalSupply:
		return &token.TotalSupply
	case domain.MetricTypeDelegatedSupply:
		return &token.DelegatedSupply
	case domain.MetricTypeCexSupply:
		return &token.CexSupply
	case domain.MetricTypeDexSupply:
		return &token.DexSupply
	case domain.MetricTypeLendingSupply:
		return &token.LendingSupply
	case domain.MetricTypeTreasury:
		return &token.Treasury
	case domain.MetricTypeCirculatingSupply:
		return &token.CirculatingSupply
	case domain.MetricTypeActiveSupply:
		return &token.ActiveSupply
	}
	return nil
}
