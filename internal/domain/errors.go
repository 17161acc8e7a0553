package domain

import "errors"

var (
	// Validation errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
	ErrMalformedToken    = errors.New("malformed identity token")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrInvalidDomain     = errors.New("invalid ledger domain")
	ErrInvalidStatus     = errors.New("invalid account status")
	ErrInvalidIDFormat   = errors.New("invalid ID format")
	ErrMissingReference  = errors.New("external reference is required")
	ErrInvalidTarget     = errors.New("invalid conversion target system")

	// Precondition errors
	ErrAccountNotFound           = errors.New("account not found")
	ErrAccountExists             = errors.New("account already exists for owner and domain")
	ErrAccountClosed             = errors.New("account is closed")
	ErrAccountSuspended          = errors.New("account is suspended")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrEntryNotFound             = errors.New("ledger entry not found")
	ErrProfileNotFound           = errors.New("profile not found")
	ErrScheduledTransferNotFound = errors.New("scheduled transfer not found")
	ErrNotAccountOwner           = errors.New("account does not belong to owner")
	ErrDuplicateExternalRef      = errors.New("external reference already bound")
	ErrMerchantNotFound          = errors.New("merchant not found")
	ErrRemoteRejected            = errors.New("request rejected by sibling service")

	// Transfer outcome errors
	ErrTransferCompensated = errors.New("transfer did not complete, funds were returned to source")
	ErrCompensationFailed  = errors.New("transfer compensation could not be recorded")

	// Backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ErrorClass groups errors by what a caller can do about them.
type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassValidation
	ClassPrecondition
	ClassCompensated
	ClassBackend
)

func (c ErrorClass) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassPrecondition:
		return "precondition"
	case ClassCompensated:
		return "compensated"
	case ClassBackend:
		return "backend"
	default:
		return "internal"
	}
}

// Retryable reports whether retrying the same request might succeed.
func (c ErrorClass) Retryable() bool {
	return c == ClassBackend
}

var (
	validationErrors = []error{
		ErrInvalidAmount, ErrAmountTooLarge, ErrMalformedToken, ErrSameAccount,
		ErrInvalidCategory, ErrInvalidDayOfMonth, ErrInvalidDomain, ErrInvalidStatus,
		ErrInvalidIDFormat, ErrMissingReference, ErrInvalidTarget, ErrInvalidTierPolicy,
	}
	preconditionErrors = []error{
		ErrAccountNotFound, ErrAccountExists, ErrAccountClosed, ErrAccountSuspended,
		ErrInsufficientBalance, ErrEntryNotFound, ErrProfileNotFound,
		ErrScheduledTransferNotFound, ErrNotAccountOwner, ErrDuplicateExternalRef,
		ErrMerchantNotFound, ErrRemoteRejected,
	}
)

// ClassOf classifies err. Transfer outcomes are checked first because they
// wrap the leg error that caused them.
func ClassOf(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassInternal
	case errors.Is(err, ErrCompensationFailed):
		return ClassBackend
	case errors.Is(err, ErrTransferCompensated):
		return ClassCompensated
	case errors.Is(err, ErrBackendUnavailable):
		return ClassBackend
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return ClassValidation
		}
	}
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return ClassPrecondition
		}
	}
	return ClassInternal
}
