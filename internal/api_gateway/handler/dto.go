package handler

import (
	"time"

	"github.com/finflow-payment-approval/internal/api_gateway/service"
	"github.com/finflow-payment-approval/internal/domain/audit"
	"github.com/finflow-payment-approval/internal/domain/payment"
	"github.com/finflow-payment-approval/internal/domain/view"
)

// DraftRequest represents a request to create or edit a draft payment
type DraftRequest struct {
	CategoryID    *int64            `json:"category_id"`
	Description   string            `json:"description" binding:"required"`
	Amount        int64             `json:"amount" binding:"min=0"`
	PaymentDate   time.Time         `json:"payment_date" binding:"required"`
	LegalEntityID *int64            `json:"legal_entity_id"`
	ContractorID  *int64            `json:"contractor_id"`
	DepartmentID  *int64            `json:"department_id"`
	ServiceID     *int64            `json:"service_id"`
	InvoiceID     *int64            `json:"invoice_id"`
	CustomFields  map[string]string `json:"custom_fields"`
}

// DecisionRequest represents an approve or reject decision
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Comment  string `json:"comment"`
}

// RevokeRequest represents a revocation; the comment is mandatory
type RevokeRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// ApproveAllRequest represents a bulk approval request
type ApproveAllRequest struct {
	PaymentIDs []int64 `json:"payment_ids" binding:"required,min=1"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            int64             `json:"id"`
	CreatorID     int64             `json:"creator_id"`
	CategoryID    *int64            `json:"category_id,omitempty"`
	Description   string            `json:"description"`
	Amount        int64             `json:"amount"`
	PaymentDate   string            `json:"payment_date"`
	LegalEntityID *int64            `json:"legal_entity_id,omitempty"`
	ContractorID  *int64            `json:"contractor_id,omitempty"`
	DepartmentID  *int64            `json:"department_id,omitempty"`
	ServiceID     *int64            `json:"service_id,omitempty"`
	InvoiceID     *int64            `json:"invoice_id,omitempty"`
	CustomFields  map[string]string `json:"custom_fields,omitempty"`
	Status        string            `json:"status"`
	Version       int               `json:"version"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	SubmittedAt   string            `json:"submitted_at,omitempty"`
	RejectedAt    string            `json:"rejected_at,omitempty"`
	RevokedAt     string            `json:"revoked_at,omitempty"`
}

// PendingItemResponse represents one inbox entry for an approver
type PendingItemResponse struct {
	Payment  PaymentResponse `json:"payment"`
	Seen     bool            `json:"seen"`
	ViewedAt string          `json:"viewed_at,omitempty"`
}

// AuditEntryResponse represents one audit entry in API responses
type AuditEntryResponse struct {
	ID        int64  `json:"id"`
	ActorID   int64  `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Action    string `json:"action"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ViewRecordResponse represents one view record in API responses
type ViewRecordResponse struct {
	UserID   int64  `json:"user_id"`
	ViewedAt string `json:"viewed_at"`
}

// HistoryResponse combines the audit trail with view records
type HistoryResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Views   []ViewRecordResponse `json:"views,omitempty"`
}

// BatchResultResponse reports the outcome of one payment in a bulk approval
type BatchResultResponse struct {
	PaymentID int64  `json:"payment_id"`
	Approved  bool   `json:"approved"`
	Error     string `json:"error,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func (r DraftRequest) toInput() service.DraftInput {
	return service.DraftInput{
		CategoryID:    r.CategoryID,
		Description:   r.Description,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		LegalEntityID: r.LegalEntityID,
		ContractorID:  r.ContractorID,
		DepartmentID:  r.DepartmentID,
		ServiceID:     r.ServiceID,
		InvoiceID:     r.InvoiceID,
		CustomFields:  r.CustomFields,
	}
}

func mapPaymentToResponse(p *payment.Payment) PaymentResponse {
	response := PaymentResponse{
		ID:            p.ID,
		CreatorID:     p.CreatorID,
		CategoryID:    p.CategoryID,
		Description:   p.Description,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate.Format(time.RFC3339),
		LegalEntityID: p.LegalEntityID,
		ContractorID:  p.ContractorID,
		DepartmentID:  p.DepartmentID,
		ServiceID:     p.ServiceID,
		InvoiceID:     p.InvoiceID,
		CustomFields:  p.CustomFields,
		Status:        string(p.Status),
		Version:       p.Version,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}

	if p.SubmittedAt != nil {
		response.SubmittedAt = p.SubmittedAt.Format(time.RFC3339)
	}
	if p.RejectedAt != nil {
		response.RejectedAt = p.RejectedAt.Format(time.RFC3339)
	}
	if p.RevokedAt != nil {
		response.RevokedAt = p.RevokedAt.Format(time.RFC3339)
	}

	return response
}

func mapAuditEntryToResponse(entry *audit.Entry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		ActorRole: entry.ActorRole,
		Action:    string(entry.Action),
		Comment:   entry.Comment,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
}

func mapViewRecordToResponse(record *view.Record) ViewRecordResponse {
	return ViewRecordResponse{
		UserID:   record.UserID,
		ViewedAt: record.ViewedAt.Format(time.RFC3339),
	}
}
