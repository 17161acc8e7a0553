package memory

// Repositories bundles every repository over one store.
type Repositories struct {
	Store      *Store
	TxManager  *TxManager
	Accounts   *AccountRepository
	Entries    *EntryRepository
	Keys       *IdempotencyKeyRepository
	Profiles   *ProfileRepository
	Directives *ScheduledTransferRepository
	Runs       *SettlementRunRepository
	Merchants  *MerchantRepository
	Outbox     *OutboxRepository
}

// New creates a fresh store and its repositories.
func New() *Repositories {
	store := NewStore()
	return &Repositories{
		Store:      store,
		TxManager:  NewTxManager(store),
		Accounts:   NewAccountRepository(store),
		Entries:    NewEntryRepository(store),
		Keys:       NewIdempotencyKeyRepository(store),
		Profiles:   NewProfileRepository(store),
		Directives: NewScheduledTransferRepository(store),
		Runs:       NewSettlementRunRepository(store),
		Merchants:  NewMerchantRepository(store),
		Outbox:     NewOutboxRepository(store),
	}
}
