package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"finvision/internal/core"
	"finvision/internal/ledger"
	"finvision/internal/log"
)

// ErrSaveFailed marks submissions that were valid but could not be persisted.
var ErrSaveFailed = errors.New("failed to save transaction")

// Publisher announces saved transactions to other processes.
type Publisher interface {
	PublishTransactionAppended(ctx context.Context, tx core.Transaction) error
}

// Query selects the table rows of a dashboard view.
type Query struct {
	Filter core.Filter
	Sort   core.SortKey
	Desc   bool
}

// Dashboard is everything one page render needs. Totals and charts always
// cover the whole ledger; only Rows honour the query.
type Dashboard struct {
	Notice     string
	Totals     core.Totals
	ByCategory []core.CategoryAmount
	ByMonth    []core.MonthAmount
	Rows       core.Ledger
	Categories []core.Category
	Total      int
}

// LedgerService runs each interaction against a fresh load of the store.
type LedgerService struct {
	store     ledger.Store
	publisher Publisher
	logger    *log.Logger
}

// NewLedgerService wires the store with an optional publisher (nil disables
// publishing).
func NewLedgerService(store ledger.Store, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTransaction),
	}
}

// Snapshot reloads the whole ledger.
func (s *LedgerService) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load ledger: %w", err)
	}
	if snap.Ledger == nil {
		snap.Ledger = core.Ledger{}
	}
	return snap, nil
}

func (s *LedgerService) Dashboard(ctx context.Context, q Query) (Dashboard, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	l := snap.Ledger
	return Dashboard{
		Notice:     snap.Notice,
		Totals:     core.Summarize(l),
		ByCategory: core.ByCategory(l),
		ByMonth:    core.ByMonth(l),
		Rows:       core.SortLedger(q.Filter.Apply(l), q.Sort, q.Desc),
		Categories: core.PresentCategories(l),
		Total:      l.Len(),
	}, nil
}

// Submit validates the form input and hands it to the store, which appends it
// to the rows it currently holds. Validation failures are returned unwrapped and
// leave the store untouched; storage failures wrap ErrSaveFailed. A failed
// publish is logged only.
func (s *LedgerService) Submit(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := core.NewTransaction(in)
	if err != nil {
		s.logger.InfoContext(ctx, "Transaction rejected",
			log.NewFields().WithOperation(log.OpValidate).WithError(err).ToSlice()...)
		return core.Transaction{}, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	next, err := s.store.AppendAndSave(ctx, snap.Ledger, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.logger.InfoContext(ctx, "Transaction added",
		append(log.NewFields().WithOperation(log.OpCreate).WithTransaction(tx).ToSlice(), log.FieldRows, next.Len())...)

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionAppended(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction",
				log.NewFields().WithOperation(log.OpPublish).WithTransaction(tx).WithError(err).ToSlice()...)
		}
	}
	return tx, nil
}

// Ready reports whether the store can currently be read.
func (s *LedgerService) Ready(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	_, err := s.store.Load(ctx)
	return err
}

// Close releases the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
