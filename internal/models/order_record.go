package models

import "time"

type OrderStatus string

const (
	OrderSuccess OrderStatus = "success"
	OrderFailed  OrderStatus = "failed"
)

// OrderRecord is the history entry written after a submission resolves.
// It never carries credentials.
type OrderRecord struct {
	ID           int         `db:"id" json:"-"`
	Reference    string      `db:"reference" json:"reference"`
	SessionID    string      `db:"session_id" json:"sessionId"`
	Service      ServiceType `db:"service" json:"service"`
	Provider     string      `db:"provider" json:"provider"`
	PlanID       *string     `db:"plan_id" json:"planId,omitempty"`
	CustomerNo   string      `db:"customer_no" json:"customerNo"`
	Charged      int         `db:"charged" json:"charged"`
	Credited     int         `db:"credited" json:"credited"`
	Status       OrderStatus `db:"status" json:"status"`
	FailedReason *string     `db:"failed_reason" json:"failedReason,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
}
