// Package view defines the non-authoritative markers recording that an
// approver opened a pending payment. They drive seen/unseen signaling only
// and never influence payment state or guards.
package view

import (
	"context"
	"time"
)

// Record states that a user opened a payment at a point in time. Multiple
// records per (payment, user) pair are permitted; only the latest is surfaced
// per user, but the merged history feed may list all of them.
type Record struct {
	PaymentID int64     `json:"payment_id" bson:"payment_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	ViewedAt  time.Time `json:"viewed_at" bson:"viewed_at"`
}

// NewRecord creates a view record stamped with the current time
func NewRecord(paymentID, userID int64) *Record {
	return &Record{
		PaymentID: paymentID,
		UserID:    userID,
		ViewedAt:  time.Now(),
	}
}

// Repository manages view record persistence
type Repository interface {
	// Append stores one record. Calling it repeatedly for the same
	// (payment, user) pair is always legal.
	Append(ctx context.Context, record *Record) error

	// ListByPaymentID returns every record for a payment, oldest first
	ListByPaymentID(ctx context.Context, paymentID int64) ([]*Record, error)

	// LatestByUser returns the most recent view time per user for a payment
	LatestByUser(ctx context.Context, paymentID int64) (map[int64]time.Time, error)
}
