package models

import "fmt"

// PaymentMethod is a supported payment method id
type PaymentMethod string

const (
	MethodCreditCard    PaymentMethod = "credit_card"
	MethodPayPal        PaymentMethod = "paypal"
	MethodMobilePayment PaymentMethod = "mobile_payment"
)

// IsValid checks the method against the supported set
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCreditCard, MethodPayPal, MethodMobilePayment:
		return true
	}
	return false
}

// PaymentStatus is the sub-state of a payment attempt
type PaymentStatus string

const (
	PaymentSelecting    PaymentStatus = "selecting"
	PaymentDetailsEntry PaymentStatus = "details_entry"
	PaymentProcessing   PaymentStatus = "processing"
	PaymentSucceeded    PaymentStatus = "succeeded"
	PaymentFailed       PaymentStatus = "failed"
	PaymentExpired      PaymentStatus = "expired"
)

// IsTerminal reports whether no further transition is defined
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentSucceeded || s == PaymentFailed || s == PaymentExpired
}

// PaymentData carries method-specific payment details. Card fields are
// forwarded to the backend payment endpoint and never logged.
type PaymentData struct {
	CardNumber     string `json:"card_number,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
	CVV            string `json:"cvv,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
}

// PaymentResult is the backend's response to a processed payment
type PaymentResult struct {
	Status        string `json:"status"`
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message,omitempty"`
}

// Succeeded reports whether the backend accepted the payment
func (r *PaymentResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// ValidatePaymentData performs the client-side checks for a method before
// any network call is made
func ValidatePaymentData(method PaymentMethod, data PaymentData) error {
	if method == MethodCreditCard {
		if data.CardNumber == "" || data.ExpiryDate == "" || data.CVV == "" || data.CardHolderName == "" {
			return fmt.Errorf("card number, expiry, cvv and holder name are required for %s", method)
		}
	}
	return nil
}
