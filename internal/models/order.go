package models

import "time"

// PaymentMethod enumerates wallet funding methods.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentBank     PaymentMethod = "bank"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentUSSD     PaymentMethod = "ussd"
	PaymentQR       PaymentMethod = "qr"
)

// Credentials are write-only secrets collected at submit time.
// They are excluded from every serialized form of an order.
type Credentials struct {
	PIN        string
	CardNumber string
	CardExpiry string
	CardCVV    string
}

// OrderRequest is one in-progress customer submission.
type OrderRequest struct {
	Service         ServiceType   `json:"service"`
	Provider        string        `json:"provider"`
	Category        string        `json:"category"`
	PlanID          string        `json:"planId,omitempty"`
	Amount          string        `json:"amount,omitempty"`
	Phone           string        `json:"phoneNumber,omitempty"`
	RecipientPhone  string        `json:"recipientPhone,omitempty"`
	AccountNumber   string        `json:"accountNumber,omitempty"`
	SmartCardNumber string        `json:"smartCardNumber,omitempty"`
	CustomerName    string        `json:"customerName,omitempty"`
	CustomerPhone   string        `json:"customerPhone,omitempty"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty"`
	Bank            string        `json:"bank,omitempty"`
	Months          int           `json:"months,omitempty"`
	BypassPhone     bool          `json:"bypassPhone,omitempty"`

	Credentials Credentials `json:"-"`
}

// ClearSecrets drops every credential from the request.
func (r *OrderRequest) ClearSecrets() {
	r.Credentials = Credentials{}
}

// SessionStatus is the state of a form session.
type SessionStatus string

const (
	SessionEditing    SessionStatus = "editing"
	SessionValidating SessionStatus = "validating"
	SessionInvalid    SessionStatus = "invalid"
	SessionSubmitting SessionStatus = "submitting"
	SessionSuccess    SessionStatus = "success"
	SessionFailed     SessionStatus = "failed"
)

// Editable reports whether the session accepts field updates.
func (s SessionStatus) Editable() bool {
	switch s {
	case SessionEditing, SessionInvalid, SessionFailed:
		return true
	}
	return false
}

// Session is a single customer form session and owns its OrderRequest.
type Session struct {
	ID        string            `json:"id"`
	Status    SessionStatus     `json:"status"`
	Request   OrderRequest      `json:"request"`
	Errors    map[string]string `json:"errors,omitempty"`
	Message   string            `json:"message,omitempty"`
	Reference string            `json:"reference,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
