package enums

// PaymentStatus mirrors the gateway's terminal transaction states.
type PaymentStatus string

const (
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusAbandoned PaymentStatus = "abandoned"
)

// IsSuccessful reports whether the gateway settled the transaction.
func (s PaymentStatus) IsSuccessful() bool {
	return s == PaymentStatusSuccess
}
