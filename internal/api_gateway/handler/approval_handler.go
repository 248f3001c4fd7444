package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/finflow-payment-approval/internal/api_gateway/middleware"
	"github.com/finflow-payment-approval/internal/api_gateway/service"
	"github.com/finflow-payment-approval/internal/domain/payment"
)

// ApprovalHandler handles HTTP requests for payment state transitions and the
// audit/view surfaces
type ApprovalHandler struct {
	approvalService service.ApprovalService
	logger          *slog.Logger
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(logger *slog.Logger, approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
		logger:          logger,
	}
}

// Submit moves a draft or rejected payment into the approval pipeline
func (h *ApprovalHandler) Submit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := parsePaymentID(c)
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID")
		return
	}

	p, err := h.approvalService.Submit(c.Request.Context(), actor, id, middleware.GetCorrelationID(c))
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// Decide applies an approve or reject decision to a pending payment
func (h *ApprovalHandler) Decide(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := parsePaymentID(c)
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	correlationID := middleware.GetCorrelationID(c)

	var p *payment.Payment
	if req.Decision == "approve" {
		p, err = h.approvalService.Approve(c.Request.Context(), actor, id, req.Comment, correlationID)
	} else {
		p, err = h.approvalService.Reject(c.Request.Context(), actor, id, req.Comment, correlationID)
	}
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// Revoke withdraws an approved payment back to draft
func (h *ApprovalHandler) Revoke(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := parsePaymentID(c)
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID")
		return
	}

	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondUnprocessableEntity(c, "Revocation requires a comment")
		return
	}

	p, err := h.approvalService.Revoke(c.Request.Context(), actor, id, req.Comment, middleware.GetCorrelationID(c))
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// ApproveAll approves a batch of payments; each id succeeds or fails alone
func (h *ApprovalHandler) ApproveAll(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req ApproveAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	results := h.approvalService.ApproveAll(c.Request.Context(), actor, req.PaymentIDs, middleware.GetCorrelationID(c))

	responses := make([]BatchResultResponse, 0, len(results))
	for _, r := range results {
		response := BatchResultResponse{PaymentID: r.PaymentID, Approved: r.Err == nil}
		if r.Err != nil {
			response.Error = r.Err.Error()
		}
		responses = append(responses, response)
	}

	RespondOK(c, responses)
}

// RecordView stores a marker that the caller opened the payment
func (h *ApprovalHandler) RecordView(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := parsePaymentID(c)
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.approvalService.RecordView(c.Request.Context(), actor, id); err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// History returns the audit trail and view records for a payment
func (h *ApprovalHandler) History(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := parsePaymentID(c)
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID")
		return
	}

	feed, err := h.approvalService.History(c.Request.Context(), actor, id)
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	response := HistoryResponse{
		Entries: make([]AuditEntryResponse, 0, len(feed.Entries)),
		Views:   make([]ViewRecordResponse, 0, len(feed.Views)),
	}
	for _, entry := range feed.Entries {
		response.Entries = append(response.Entries, mapAuditEntryToResponse(entry))
	}
	for _, record := range feed.Views {
		response.Views = append(response.Views, mapViewRecordToResponse(record))
	}

	RespondOK(c, response)
}
