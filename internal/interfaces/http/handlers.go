package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/school-admin/internal/application/service"
	"github.com/garyjia/school-admin/internal/infrastructure/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartOverhead is the room left above the file limit for multipart
// boundaries and part headers
const multipartOverhead = 64 << 10

// Handlers contains all HTTP request handlers
type Handlers struct {
	services       Services
	health         HealthChecker
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, health HealthChecker, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		services:       services,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// CreateClassRequest is the body of POST /api/classes
type CreateClassRequest struct {
	Name       string  `json:"name" binding:"required"`
	MonthlyFee float64 `json:"monthly_fee" binding:"gte=0"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if h.health != nil && !h.health.Healthy(c.Request.Context()) {
		resp.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: resp, Error: "database unavailable"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// ListClasses handles GET /api/classes
func (h *Handlers) ListClasses(c *gin.Context) {
	classes, err := h.services.Class.ListClasses(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to list classes")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: classes})
}

// CreateClass handles POST /api/classes
func (h *Handlers) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	class, err := h.services.Class.CreateClass(c.Request.Context(), req.Name, req.MonthlyFee)
	if err != nil {
		h.respondError(c, err, "failed to create class")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: class})
}

// GetClass handles GET /api/classes/:id
func (h *Handlers) GetClass(c *gin.Context) {
	id, ok := pathID(c, "class")
	if !ok {
		return
	}

	class, err := h.services.Class.GetClass(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to get class")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: class})
}

// ListStudents handles GET /api/classes/:id/students
func (h *Handlers) ListStudents(c *gin.Context) {
	id, ok := pathID(c, "class")
	if !ok {
		return
	}

	students, err := h.services.Import.ListStudents(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to list students")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: students})
}

// ImportStudents handles POST /api/classes/:id/students/import.
// With dry_run=true the file is mapped and returned without writing.
func (h *Handlers) ImportStudents(c *gin.Context) {
	id, ok := pathID(c, "class")
	if !ok {
		return
	}

	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))
	if dryRun {
		// Import checks the class itself
		if _, err := h.services.Class.GetClass(c.Request.Context(), id); err != nil {
			h.respondError(c, err, "failed to get class")
			return
		}
	}

	if h.maxUploadBytes > 0 {
		limit := h.maxUploadBytes + multipartOverhead
		if c.Request.ContentLength > limit {
			h.uploadTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.uploadTooLarge(c)
			return
		}
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		h.uploadTooLarge(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, err, "failed to open upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, err, "failed to read upload")
		return
	}
	filename := storage.SanitizeFileName(header.Filename)

	if dryRun {
		preview, err := h.services.Import.Preview(filename, data)
		if err != nil {
			h.respondError(c, err, "failed to preview import")
			return
		}
		c.JSON(http.StatusOK, Response{Success: true, Data: preview})
		return
	}

	result, err := h.services.Import.Import(c.Request.Context(), id, filename, data)
	if err != nil {
		h.respondError(c, err, "failed to import students")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

func (h *Handlers) uploadTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, Response{
		Success: false,
		Error:   fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes),
	})
}

// QuoteFees handles POST /api/fees/quote
func (h *Handlers) QuoteFees(c *gin.Context) {
	var input service.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	quote, err := h.services.Fee.Quote(input)
	if err != nil {
		h.respondError(c, err, "failed to quote fees")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: quote})
}

// GenerateVoucher handles POST /api/vouchers
func (h *Handlers) GenerateVoucher(c *gin.Context) {
	var req service.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.StudentID <= 0 {
		badRequest(c, "student_id is required")
		return
	}

	v, err := h.services.Fee.GenerateVoucher(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "failed to generate voucher")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: v})
}

// GetVoucher handles GET /api/vouchers/:id
func (h *Handlers) GetVoucher(c *gin.Context) {
	id, ok := pathID(c, "voucher")
	if !ok {
		return
	}

	v, err := h.services.Fee.GetVoucher(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to get voucher")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: v})
}

// ExportVoucher handles GET /api/vouchers/:id/export
func (h *Handlers) ExportVoucher(c *gin.Context) {
	id, ok := pathID(c, "voucher")
	if !ok {
		return
	}

	exported, err := h.services.Fee.ExportVoucher(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to export voucher")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exported.FileName))
	c.Data(http.StatusOK, xlsxContentType, exported.Content)
}

// ListStudentVouchers handles GET /api/students/:id/vouchers
func (h *Handlers) ListStudentVouchers(c *gin.Context) {
	id, ok := pathID(c, "student")
	if !ok {
		return
	}

	vouchers, err := h.services.Fee.ListVouchers(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vouchers})
}

func pathID(c *gin.Context, kind string) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+kind+" ID")
		return 0, false
	}
	return id, true
}

func errorFields(c *gin.Context, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	}
}

