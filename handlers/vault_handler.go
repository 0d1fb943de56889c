package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenderpack-backend/models"
	"tenderpack-backend/service"
)

// VaultHandler handles HTTP requests for the document vault and the
// contractor profile
type VaultHandler struct {
	vault    *service.VaultService
	profiles *service.ProfileService
}

// NewVaultHandler creates a new vault handler
func NewVaultHandler(vault *service.VaultService, profiles *service.ProfileService) *VaultHandler {
	return &VaultHandler{vault: vault, profiles: profiles}
}

// UploadFile handles POST /api/vault
func (h *VaultHandler) UploadFile(c *gin.Context) {
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

	record, err := h.vault.Upload(c.Request.Context(), service.UploadVaultFileRequest{
		Owner:    ownerOf(c),
		Title:    c.PostForm("title"),
		Category: c.PostForm("category"),
		Filename: fileHeader.Filename,
		Data:     file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, record)
}

// ListFiles handles GET /api/vault
func (h *VaultHandler) ListFiles(c *gin.Context) {
	files, err := h.vault.List(c.Request.Context(), ownerOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, files)
}

// DeleteFile handles DELETE /api/vault/:id
func (h *VaultHandler) DeleteFile(c *gin.Context) {
	if err := h.vault.Delete(c.Request.Context(), ownerOf(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

// GetProfile handles GET /api/profile
func (h *VaultHandler) GetProfile(c *gin.Context) {
	result, err := h.profiles.GetProfile(c.Request.Context(), ownerOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// SaveProfile handles PUT /api/profile
func (h *VaultHandler) SaveProfile(c *gin.Context) {
	var req models.ContractorProfile
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.SaveProfile(c.Request.Context(), ownerOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}
