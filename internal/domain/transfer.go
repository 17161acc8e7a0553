package domain

// Transfer describes a two-leg movement between accounts.
type Transfer struct {
	ID            string
	FromAccountID string
	ToAccountID   string
	Category      string
	ExternalRef   *string
	Amount        int64
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == "" || t.ToAccountID == "" {
		return ErrInvalidIDFormat
	}

	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	return ValidateAmount(t.Amount)
}
