package orders

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every accepted value in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// ParseStatus accepts exactly one of the five status literals.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", &ValidationError{Message: "Invalid status value"}
}

// IsTerminal reports whether the order left the fulfilment pipeline. It is
// informational only: transitions out of a terminal status are accepted.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// PaymentMethod is how the customer pays on delivery or online.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
)

// ParsePaymentMethod defaults an empty value to cash.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch PaymentMethod(value) {
	case "":
		return PaymentCash, nil
	case PaymentCash, PaymentCreditCard, PaymentPayPal:
		return PaymentMethod(value), nil
	default:
		return "", &ValidationError{Message: "Invalid payment method"}
	}
}
