package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
	"tenderpack-backend/service"
)

// TemplateHandler handles HTTP requests for templates
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// SaveTemplateBody represents the request body for creating or updating a
// template
type SaveTemplateBody struct {
	Name            string                        `json:"name" binding:"required"`
	Kind            models.TemplateKind           `json:"kind"`
	Body            string                        `json:"body"`
	ChecklistItemID string                        `json:"checklistItemId"`
	Fields          []placeholder.FieldDescriptor `json:"fields"`
}

// CreateTemplate handles POST /api/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	h.save(c, "", http.StatusCreated)
}

// UpdateTemplate handles PUT /api/templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	h.save(c, c.Param("id"), http.StatusOK)
}

func (h *TemplateHandler) save(c *gin.Context, id string, status int) {
	var req SaveTemplateBody
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.templates.SaveTemplate(c.Request.Context(), service.SaveTemplateRequest{
		Owner:           ownerOf(c),
		ID:              id,
		Name:            req.Name,
		Kind:            req.Kind,
		Body:            req.Body,
		ChecklistItemID: req.ChecklistItemID,
		Fields:          req.Fields,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	unknown := result.UnknownKeys
	if unknown == nil {
		unknown = []placeholder.FieldKey{}
	}
	respond(c, status, gin.H{
		"template":    result.Template,
		"migration":   result.Migration,
		"unknownKeys": unknown,
	})
}

// ListTemplates handles GET /api/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templates.ListTemplates(c.Request.Context(), ownerOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, templates)
}

// GetTemplate handles GET /api/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.GetTemplate(c.Request.Context(), service.GetTemplateRequest{
		Owner: ownerOf(c),
		ID:    c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, tpl)
}

// DeleteTemplate handles DELETE /api/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	err := h.templates.DeleteTemplate(c.Request.Context(), service.GetTemplateRequest{
		Owner: ownerOf(c),
		ID:    c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

// PreviewBody represents the request body for a template preview
type PreviewBody struct {
	Body   string                           `json:"body"`
	PackID string                           `json:"packId"`
	Tables map[string]placeholder.TableRows `json:"tables"`
}

// PreviewTemplate handles POST /api/templates/:id/preview
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	h.preview(c, c.Param("id"))
}

// PreviewDraft handles POST /api/templates/preview for unsaved bodies
func (h *TemplateHandler) PreviewDraft(c *gin.Context) {
	h.preview(c, "")
}

func (h *TemplateHandler) preview(c *gin.Context, templateID string) {
	var req PreviewBody
	if !bindOptionalJSON(c, &req) {
		return
	}
	if templateID == "" && req.Body == "" {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "body is required"))
		return
	}

	serviceReq := service.PreviewTemplateRequest{
		Owner:      ownerOf(c),
		TemplateID: templateID,
		Body:       req.Body,
		Tables:     req.Tables,
	}
	if req.PackID != "" {
		id, err := uuid.Parse(req.PackID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("INVALID_PACK_ID", "Invalid packId format"))
			return
		}
		serviceReq.PackID = &id
	}

	result, err := h.templates.PreviewTemplate(c.Request.Context(), serviceReq)
	if err != nil {
		writeError(c, err)
		return
	}
	missing := result.MissingFields
	if missing == nil {
		missing = []string{}
	}
	respond(c, http.StatusOK, gin.H{
		"html":          result.HTML,
		"missingFields": missing,
		"validation":    result.Validation,
	})
}
