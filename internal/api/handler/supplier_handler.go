package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// SupplierHandler handles HTTP requests for suppliers and their imports
type SupplierHandler struct {
	supplierService service.SupplierService
	maxUploadBytes  int64
	logger          *slog.Logger
}

func NewSupplierHandler(logger *slog.Logger, supplierService service.SupplierService, maxUploadBytes int64) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.supplierService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to list suppliers", err)
		return
	}
	RespondOK(c, suppliers)
}

func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sup, err := h.supplierService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to get supplier", err)
		return
	}
	RespondOK(c, sup)
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	sup, err := h.supplierService.Create(c.Request.Context(), service.CreateSupplierInput{
		Name:            req.Name,
		ContactEmail:    req.ContactEmail,
		DefaultCurrency: req.DefaultCurrency,
		ImportTemplate:  req.ImportTemplate,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to create supplier", err)
		return
	}
	RespondCreated(c, sup)
}

func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch supplier.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	sup, err := h.supplierService.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "Failed to update supplier", err)
		return
	}
	RespondOK(c, sup)
}

func (h *SupplierHandler) ListItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.supplierService.ListItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to list supplier items", err)
		return
	}
	RespondOK(c, items)
}

// Import accepts a multipart CSV or XLSX upload. Inline runs answer 200 with
// the row summary, queued runs answer 202 with the job.
func (h *SupplierHandler) Import(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var form ImportForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(c, http.StatusRequestEntityTooLarge, CodeBadRequest, "Upload exceeds the size limit", nil)
			return
		}
		respondBindError(c, h.logger, err)
		return
	}

	rate := decimal.Zero
	if form.ExchangeRate != "" {
		parsed, err := decimal.NewFromString(form.ExchangeRate)
		if err != nil || !parsed.IsPositive() {
			RespondValidation(c, shared.ValidationErrors{{Field: "exchangeRate", Message: "must be a positive number"}})
			return
		}
		rate = parsed
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondValidation(c, shared.ValidationErrors{{Field: "file", Message: "is required"}})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}

	outcome, err := h.supplierService.Import(c.Request.Context(), service.ImportInput{
		SupplierID:   uuid.MustParse(form.SupplierID),
		Filename:     fileHeader.Filename,
		Data:         data,
		ExchangeRate: rate,
		Async:        form.Async,
	})
	if err != nil {
		respondError(c, h.logger, "Supplier import failed", err)
		return
	}

	if outcome.Queued {
		RespondAccepted(c, outcome)
		return
	}
	RespondOK(c, outcome)
}
