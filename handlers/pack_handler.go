package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenderpack-backend/assembler"
	"tenderpack-backend/exporter"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
	"tenderpack-backend/service"
)

// PackHandler handles HTTP requests for tender packs
type PackHandler struct {
	packs  *service.PackService
	logger *zap.Logger
}

// NewPackHandler creates a new pack handler
func NewPackHandler(packs *service.PackService, logger *zap.Logger) *PackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackHandler{packs: packs, logger: logger}
}

// CreatePackRequest represents the request body for creating a pack
type CreatePackRequest struct {
	Title      string                 `json:"title" binding:"required"`
	Source     models.PackSource      `json:"source"`
	SourceID   string                 `json:"sourceId"`
	TenderNo   string                 `json:"tenderNo"`
	Department string                 `json:"department"`
	Checklist  []models.ChecklistItem `json:"checklist"`
	Annexures  []string               `json:"annexures"`
	Templates  []string               `json:"templates"`
}

// CreatePack handles POST /api/packs
func (h *PackHandler) CreatePack(c *gin.Context) {
	var req CreatePackRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.CreatePack(c.Request.Context(), service.CreatePackRequest{
		Owner: ownerOf(c),
		Draft: assembler.PackDraft{
			Title:      req.Title,
			Source:     req.Source,
			SourceID:   req.SourceID,
			TenderNo:   req.TenderNo,
			Department: req.Department,
			Checklist:  req.Checklist,
			Annexures:  req.Annexures,
			Templates:  req.Templates,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, result.Pack)
}

// ListPacksQuery represents the query string for listing packs
type ListPacksQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ListPacks handles GET /api/packs
func (h *PackHandler) ListPacks(c *gin.Context) {
	var q ListPacksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.packs.ListPacks(c.Request.Context(), service.ListPacksRequest{
		Owner:  ownerOf(c),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result.Packs)
}

// GetPack handles GET /api/packs/:id
func (h *PackHandler) GetPack(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}

	result, err := h.packs.GetPack(c.Request.Context(), service.GetPackRequest{Owner: ownerOf(c), PackID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result.Pack)
}

// DeletePack handles DELETE /api/packs/:id
func (h *PackHandler) DeletePack(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}

	if err := h.packs.DeletePack(c.Request.Context(), service.GetPackRequest{Owner: ownerOf(c), PackID: id}); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// ToggleItemRequest represents the request body for toggling a checklist item
type ToggleItemRequest struct {
	Done bool `json:"done"`
}

// ToggleChecklistItem handles POST /api/packs/:id/checklist/:itemId/toggle
func (h *PackHandler) ToggleChecklistItem(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req ToggleItemRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.ToggleChecklistItem(c.Request.Context(), service.ToggleChecklistItemRequest{
		Owner:  ownerOf(c),
		PackID: id,
		ItemID: c.Param("itemId"),
		Done:   req.Done,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result.Pack)
}

// SetItemStatusRequest represents the request body for setting an item status
type SetItemStatusRequest struct {
	Status models.ItemStatus `json:"status" binding:"required"`
}

// SetItemStatus handles PUT /api/packs/:id/items/:itemId/status
func (h *PackHandler) SetItemStatus(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req SetItemStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.SetItemStatus(c.Request.Context(), service.SetItemStatusRequest{
		Owner:  ownerOf(c),
		PackID: id,
		ItemID: c.Param("itemId"),
		Status: req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result.Pack)
}

// AttachFile handles POST /api/packs/:id/items/:itemId/files
func (h *PackHandler) AttachFile(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("MISSING_FILE", "File is required"))
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, errorBody("FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum of %d bytes", maxUploadSize)))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("FILE_OPEN_ERROR", err.Error()))
		return
	}
	defer file.Close()

	result, err := h.packs.AttachFile(c.Request.Context(), service.AttachFileRequest{
		Owner:    ownerOf(c),
		PackID:   id,
		ItemID:   c.Param("itemId"),
		Filename: fileHeader.Filename,
		Data:     file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, result.Pack)
}

// SetChoiceRequest represents the request body for setting a choice field
type SetChoiceRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// SetChoiceField handles PUT /api/packs/:id/choices
func (h *PackHandler) SetChoiceField(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req SetChoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.SetChoiceField(c.Request.Context(), service.SetChoiceFieldRequest{
		Owner:  ownerOf(c),
		PackID: id,
		Key:    req.Key,
		Value:  req.Value,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"pack": result.Pack, "changed": result.Changed})
}

// SaveFieldsRequest represents the request body for saving field overrides
type SaveFieldsRequest struct {
	Fields   map[string]string `json:"fields" binding:"required"`
	Remember bool              `json:"remember"`
}

// SaveFieldOverrides handles PUT /api/packs/:id/fields
func (h *PackHandler) SaveFieldOverrides(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req SaveFieldsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.SaveFieldOverrides(c.Request.Context(), service.SaveFieldOverridesRequest{
		Owner:    ownerOf(c),
		PackID:   id,
		Fields:   req.Fields,
		Remember: req.Remember,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"pack": result.Pack, "updated": result.Updated})
}

// DetectAnnexuresBody represents the request body for annexure detection.
// Titles skip the detector when the client already knows them.
type DetectAnnexuresBody struct {
	NoticeText string   `json:"noticeText"`
	Titles     []string `json:"titles"`
}

// DetectAnnexures handles POST /api/packs/:id/annexures/detect
func (h *PackHandler) DetectAnnexures(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req DetectAnnexuresBody
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.DetectAnnexures(c.Request.Context(), service.DetectAnnexuresRequest{
		Owner:      ownerOf(c),
		PackID:     id,
		NoticeText: req.NoticeText,
		Titles:     req.Titles,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"pack":      result.Pack,
		"matched":   result.Matched,
		"unmatched": result.Unmatched,
	})
}

// GenerateBody represents the optional request body of the generation
// endpoints
type GenerateBody struct {
	TemplateID string                           `json:"templateId"`
	Tables     map[string]placeholder.TableRows `json:"tables"`
}

// GenerateAnnexures handles POST /api/packs/:id/annexures/generate
func (h *PackHandler) GenerateAnnexures(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req GenerateBody
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.packs.GenerateAnnexures(c.Request.Context(), service.GenerateAnnexuresRequest{
		Owner:  ownerOf(c),
		PackID: id,
		Tables: req.Tables,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"pack":      result.Pack,
		"generated": result.Generated,
		"notFound":  result.NotFound,
	})
}

// GenerateTemplates handles POST /api/packs/:id/templates/generate
func (h *PackHandler) GenerateTemplates(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req GenerateBody
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.packs.GenerateTemplates(c.Request.Context(), service.GenerateTemplatesRequest{
		Owner:  ownerOf(c),
		PackID: id,
		Tables: req.Tables,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"pack": result.Pack, "generated": result.Generated})
}

// GenerateDocument handles POST /api/packs/:id/documents/generate
func (h *PackHandler) GenerateDocument(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req GenerateBody
	if !bindJSON(c, &req) {
		return
	}
	if req.TemplateID == "" {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "templateId is required"))
		return
	}

	result, err := h.packs.GenerateDocument(c.Request.Context(), service.GenerateDocumentRequest{
		Owner:      ownerOf(c),
		PackID:     id,
		TemplateID: req.TemplateID,
		Tables:     req.Tables,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"pack": result.Pack, "document": result.Document})
}

// MapVaultRequest represents the request body for mapping a vault document
type MapVaultRequest struct {
	FileID     string  `json:"fileId" binding:"required"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// MapVaultDocument handles PUT /api/packs/:id/vault/:itemId
func (h *PackHandler) MapVaultDocument(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}
	var req MapVaultRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packs.MapVaultDocument(c.Request.Context(), service.MapVaultDocumentRequest{
		Owner:      ownerOf(c),
		PackID:     id,
		ItemID:     c.Param("itemId"),
		FileID:     req.FileID,
		Confidence: req.Confidence,
		Reason:     req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result.Pack)
}

// PrintPack handles GET /api/packs/:id/print
func (h *PackHandler) PrintPack(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}

	result, err := h.packs.PrintPack(c.Request.Context(), service.PrintPackRequest{
		Owner:      ownerOf(c),
		PackID:     id,
		View:       exporter.ParseViewMode(c.Query("view")),
		Density:    exporter.ParseDensity(c.Query("density")),
		Letterhead: c.DefaultQuery("letterhead", "true") != "false",
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
}

// ExportPack handles GET /api/packs/:id/export.zip
func (h *PackHandler) ExportPack(c *gin.Context) {
	id, ok := parsePackID(c)
	if !ok {
		return
	}

	w := &attachmentWriter{c: c, filename: fmt.Sprintf("pack-%s.zip", id)}
	report, err := h.packs.ExportPack(c.Request.Context(), service.ExportPackRequest{
		Owner:   ownerOf(c),
		PackID:  id,
		Density: exporter.ParseDensity(c.Query("density")),
	}, w)
	if err != nil {
		if !w.started {
			writeError(c, err)
			return
		}
		h.logger.Error("pack export aborted mid-stream",
			zap.String("pack_id", id.String()),
			zap.Error(err))
		c.Abort()
		return
	}
	h.logger.Info("pack exported",
		zap.String("pack_id", id.String()),
		zap.Int("included", len(report.Included)),
		zap.Int("skipped", len(report.Skipped)))
}

// attachmentWriter defers the download headers until the archive's first
// byte so a failed export can still answer with a JSON error.
type attachmentWriter struct {
	c        *gin.Context
	filename string
	started  bool
}

func (w *attachmentWriter) Write(p []byte) (int, error) {
	if !w.started {
		w.started = true
		w.c.Header("Content-Type", "application/zip")
		w.c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, w.filename))
		w.c.Status(http.StatusOK)
	}
	return w.c.Writer.Write(p)
}
