package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/dto"
	"github.com/ketsolab/ketoan/internal/middleware"
)

// documentHandler handles draft management, posting and cancellation for every
// source-document variant.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
	postingService  portssvc.PostingSvcFacade
}

func newDocumentHandler(ds portssvc.DocumentSvcFacade, ps portssvc.PostingSvcFacade) *documentHandler {
	return &documentHandler{documentService: ds, postingService: ps}
}

// sourceTypeFromPath maps the URL segment to the document variant.
var sourceTypeFromPath = map[string]domain.SourceType{
	"invoices":          domain.SourceInvoice,
	"vouchers":          domain.SourceWarehouseVoucher,
	"bank-transactions": domain.SourceBankTransaction,
	"payroll-runs":      domain.SourcePayrollRun,
}

// registerDocumentRoutes registers routes for all document variants.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade, postingService portssvc.PostingSvcFacade) {
	h := newDocumentHandler(documentService, postingService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.PUT("/:id", h.updateInvoice)
	}
	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.PUT("/:id", h.updateVoucher)
	}
	rg.POST("/bank-transactions", h.createBankTransaction)
	rg.POST("/payroll-runs", h.createPayrollRun)

	// Shared lifecycle surface keyed by the variant path segment.
	docs := rg.Group("/documents/:kind")
	{
		docs.GET("", h.listDocuments)
		docs.GET("/:id", h.getDocument)
		docs.POST("/:id/post", h.postDocument)
		docs.POST("/:id/cancel", h.cancelDocument)
	}
}

func (h *documentHandler) kind(c *gin.Context) (domain.SourceType, bool) {
	sourceType, ok := sourceTypeFromPath[c.Param("kind")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown document kind: " + c.Param("kind")})
	}
	return sourceType, ok
}

func (h *documentHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	invoice, err := h.documentService.CreateInvoice(c.Request.Context(), req, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentEnvelope(invoice))
}

func (h *documentHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	invoice, err := h.documentService.UpdateInvoice(c.Request.Context(), c.Param("id"), req, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentEnvelope(invoice))
}

func (h *documentHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	voucher, err := h.documentService.CreateVoucher(c.Request.Context(), req, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to create voucher")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentEnvelope(voucher))
}

func (h *documentHandler) updateVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	voucher, err := h.documentService.UpdateVoucher(c.Request.Context(), c.Param("id"), req, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to update voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentEnvelope(voucher))
}

func (h *documentHandler) createBankTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBankTxnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.documentService.CreateBankTransaction(c.Request.Context(), req, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to create bank transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentEnvelope(txn))
}

func (h *documentHandler) createPayrollRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePayrollRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	run, err := h.documentService.CreatePayrollRun(c.Request.Context(), req, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to create payroll run")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentEnvelope(run))
}

func (h *documentHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sourceType, ok := h.kind(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetDocument(c.Request.Context(), sourceType, c.Param("id"))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to retrieve document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentEnvelope(doc))
}

func (h *documentHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sourceType, ok := h.kind(c)
	if !ok {
		return
	}

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	docs, nextToken, err := h.documentService.ListDocuments(c.Request.Context(), sourceType, params)
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to list documents")
		return
	}

	envelopes := make([]dto.DocumentEnvelope, len(docs))
	for i, doc := range docs {
		envelopes[i] = dto.ToDocumentEnvelope(doc)
	}
	c.JSON(http.StatusOK, dto.ListDocumentsResponse{Documents: envelopes, NextToken: nextToken})
}

func (h *documentHandler) postDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sourceType, ok := h.kind(c)
	if !ok {
		return
	}

	entry, err := h.postingService.Post(c.Request.Context(), sourceType, c.Param("id"), middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to post document")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *documentHandler) cancelDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sourceType, ok := h.kind(c)
	if !ok {
		return
	}

	var req dto.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.postingService.Cancel(c.Request.Context(), sourceType, c.Param("id"), req.Reason, middleware.GetActorFromContext(c))
	if err != nil {
		respondDocumentError(c, logger, err, "Failed to cancel document")
		return
	}
	if entry == nil {
		// Draft cancellation leaves no ledger trace.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// respondDocumentError maps service errors to HTTP codes shared by the
// document endpoints.
func respondDocumentError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrIntegrity):
		logger.Error("Ledger integrity violation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger integrity violation"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
