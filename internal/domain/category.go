package domain

// Point categories accepted from sibling services.
const (
	CategoryDailyQuiz            = "DAILY_QUIZ"
	CategoryWalking              = "WALKING"
	CategoryElectronicReceipt    = "ELECTRONIC_RECEIPT"
	CategoryEcoChallenge         = "ECO_CHALLENGE"
	CategoryEcoMerchant          = "ECO_MERCHANT"
	CategoryMoneyConversion      = "MONEY_CONVERSION"
	CategoryEnvironmentDonation  = "ENVIRONMENT_DONATION"
	CategoryAutoTransfer         = "AUTO_TRANSFER"
	CategoryTransfer             = "TRANSFER"
	CategoryTransferCompensation = "TRANSFER_COMPENSATION"
)

var inboundCategories = map[string]bool{
	CategoryDailyQuiz:           true,
	CategoryWalking:             true,
	CategoryElectronicReceipt:   true,
	CategoryEcoChallenge:        true,
	CategoryEcoMerchant:         true,
	CategoryMoneyConversion:     true,
	CategoryEnvironmentDonation: true,
}

// ValidateInboundCategory checks category against the set sibling
// services may credit through event ingestion.
func ValidateInboundCategory(category string) error {
	if !inboundCategories[category] {
		return ErrInvalidCategory
	}
	return nil
}
