package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/greenledger/internal/domain"
)

// ScheduledTransferRepository implements usecase.ScheduledTransferRepository.
type ScheduledTransferRepository struct {
	store *Store
}

// NewScheduledTransferRepository creates a new ScheduledTransferRepository.
func NewScheduledTransferRepository(store *Store) *ScheduledTransferRepository {
	return &ScheduledTransferRepository{store: store}
}

// Create stores a directive.
func (r *ScheduledTransferRepository) Create(_ context.Context, directive *domain.ScheduledTransfer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d := *directive
	r.store.directives[d.ID] = &d
	return nil
}

// Update replaces a directive.
func (r *ScheduledTransferRepository) Update(_ context.Context, directive *domain.ScheduledTransfer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.directives[directive.ID]; !ok {
		return domain.ErrScheduledTransferNotFound
	}
	d := *directive
	r.store.directives[d.ID] = &d
	return nil
}

// GetByID retrieves a directive by ID.
func (r *ScheduledTransferRepository) GetByID(_ context.Context, id string) (*domain.ScheduledTransfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.directives[id]
	if !ok {
		return nil, domain.ErrScheduledTransferNotFound
	}
	cp := *d
	return &cp, nil
}

// ListByAccount lists directives that move value from or to accountID.
func (r *ScheduledTransferRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error) {
	all := r.filter(func(d *domain.ScheduledTransfer) bool {
		return d.SourceAccountID == accountID || d.DestinationAccountID == accountID
	})
	if offset >= len(all) {
		return []*domain.ScheduledTransfer{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

// ListDue returns enabled directives for dayOfMonth in creation order.
func (r *ScheduledTransferRepository) ListDue(_ context.Context, dayOfMonth int) ([]*domain.ScheduledTransfer, error) {
	return r.filter(func(d *domain.ScheduledTransfer) bool {
		return d.Enabled && d.DayOfMonth == dayOfMonth
	}), nil
}

func (r *ScheduledTransferRepository) filter(keep func(*domain.ScheduledTransfer) bool) []*domain.ScheduledTransfer {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.ScheduledTransfer
	for _, d := range r.store.directives {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type runKey struct {
	directiveID string
	runDate     time.Time
}

// SettlementRunRepository implements usecase.SettlementRunRepository.
type SettlementRunRepository struct {
	store *Store
}

// NewSettlementRunRepository creates a new SettlementRunRepository.
func NewSettlementRunRepository(store *Store) *SettlementRunRepository {
	return &SettlementRunRepository{store: store}
}

// Claim records a run unless one exists for the same directive and date.
func (r *SettlementRunRepository) Claim(_ context.Context, run *domain.SettlementRun) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := runKey{directiveID: run.DirectiveID, runDate: domain.RunDate(run.RunDate)}
	if _, ok := r.store.runs[key]; ok {
		return false, nil
	}
	cp := *run
	cp.RunDate = key.runDate
	r.store.runs[key] = &cp
	return true, nil
}

// UpdateStatus records the run's latest state.
func (r *SettlementRunRepository) UpdateStatus(_ context.Context, run *domain.SettlementRun) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := runKey{directiveID: run.DirectiveID, runDate: domain.RunDate(run.RunDate)}
	if _, ok := r.store.runs[key]; !ok {
		return domain.ErrScheduledTransferNotFound
	}
	cp := *run
	cp.RunDate = key.runDate
	r.store.runs[key] = &cp
	return nil
}

// Release drops a claim that is still PENDING.
func (r *SettlementRunRepository) Release(_ context.Context, directiveID string, runDate time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := runKey{directiveID: directiveID, runDate: domain.RunDate(runDate)}
	if run, ok := r.store.runs[key]; ok && run.Status == domain.RunStatusPending {
		delete(r.store.runs, key)
	}
	return nil
}

// ListByDate lists runs for a date ordered by directive.
func (r *SettlementRunRepository) ListByDate(_ context.Context, runDate time.Time) ([]*domain.SettlementRun, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	day := domain.RunDate(runDate)
	var out []*domain.SettlementRun
	for key, run := range r.store.runs {
		if key.runDate.Equal(day) {
			cp := *run
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DirectiveID < out[j].DirectiveID })
	return out, nil
}
