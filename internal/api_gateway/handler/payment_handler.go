package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow-payment-approval/internal/api_gateway/middleware"
	"github.com/finflow-payment-approval/internal/api_gateway/service"
	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/domain/payment"
)

// PaymentHandler handles HTTP requests for draft lifecycle and payment reads
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Create creates a new draft payment owned by the caller
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.paymentService.CreateDraft(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapPaymentToResponse(p))
}

// GetByID retrieves a payment visible to the caller
func (h *PaymentHandler) GetByID(c *gin.Context) {
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

	p, err := h.paymentService.GetPayment(c.Request.Context(), actor, id)
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// Update applies edits to a draft owned by the caller
func (h *PaymentHandler) Update(c *gin.Context) {
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

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.paymentService.UpdateDraft(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// Delete removes a draft owned by the caller
func (h *PaymentHandler) Delete(c *gin.Context) {
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

	if err := h.paymentService.DeleteDraft(c.Request.Context(), actor, id); err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// ListMine returns the caller's own payments, newest first
func (h *PaymentHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	payments, err := h.paymentService.ListMyPayments(c.Request.Context(), actor, pagination.Page, pagination.PerPage)
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, mapPaymentToResponse(p))
	}

	RespondOK(c, responses)
}

// PendingInbox returns payments currently awaiting the caller's decision
func (h *PaymentHandler) PendingInbox(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.paymentService.PendingInbox(c.Request.Context(), actor, pagination.Page, pagination.PerPage)
	if err != nil {
		respondPaymentError(c, h.logger, err)
		return
	}

	responses := make([]PendingItemResponse, 0, len(items))
	for _, item := range items {
		response := PendingItemResponse{
			Payment: mapPaymentToResponse(item.Payment),
			Seen:    item.Seen,
		}
		if item.ViewedAt != nil {
			response.ViewedAt = item.ViewedAt.Format(time.RFC3339)
		}
		responses = append(responses, response)
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

func parsePaymentID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// respondPaymentError maps domain errors onto HTTP statuses. Shared by the
// payment and approval handlers so both surfaces fail identically.
func respondPaymentError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		notFoundErr     payment.ErrNotFound
		unauthorizedErr payment.ErrUnauthorized
		transitionErr   payment.ErrInvalidTransition
		validationErr   payment.ErrValidation
		staleErr        payment.ErrStaleState
	)

	switch {
	case errors.As(err, &notFoundErr):
		RespondNotFound(c, err.Error())
	case errors.As(err, &unauthorizedErr):
		RespondForbidden(c, err.Error())
	case errors.As(err, &transitionErr):
		RespondConflict(c, err.Error())
	case errors.As(err, &staleErr):
		RespondConflict(c, err.Error())
	case errors.As(err, &validationErr):
		RespondUnprocessableEntity(c, err.Error())
	case errors.Is(err, approval.ErrUnresolvedService{}):
		RespondUnprocessableEntity(c, err.Error())
	default:
		logger.Error("Unhandled service error", "error", err)
		RespondInternalError(c)
	}
}
