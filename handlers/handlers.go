// Package handlers exposes the pack, template and vault services over HTTP.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tenderpack-backend/assembler"
	"tenderpack-backend/exporter"
	"tenderpack-backend/placeholder"
	"tenderpack-backend/service"
	"tenderpack-backend/storage"
)

// OwnerHeader carries the contractor identity set by the upstream gateway.
const OwnerHeader = "X-Owner-ID"

const ownerKey = "owner"

// maxUploadSize bounds multipart uploads.
const maxUploadSize = 10 * 1024 * 1024

// RequireOwner rejects requests without a usable owner header.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader(OwnerHeader)
		if owner == "" {
			abortWithError(c, http.StatusUnauthorized, "MISSING_OWNER", "X-Owner-ID header is required")
			return
		}
		if !storage.ValidOwner(owner) {
			abortWithError(c, http.StatusUnauthorized, "INVALID_OWNER", "Invalid owner ID")
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func ownerOf(c *gin.Context) string {
	return c.GetString(ownerKey)
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody(code, message))
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrPackNotFound, http.StatusNotFound, "PACK_NOT_FOUND"},
	{service.ErrTemplateNotFound, http.StatusNotFound, "TEMPLATE_NOT_FOUND"},
	{service.ErrVaultFileNotFound, http.StatusNotFound, "VAULT_FILE_NOT_FOUND"},
	{assembler.ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND"},
	{storage.ErrNotFound, http.StatusNotFound, "FILE_NOT_FOUND"},
	{service.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
	{assembler.ErrInvalidPack, http.StatusBadRequest, "INVALID_PACK"},
	{assembler.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{storage.ErrUnsafePath, http.StatusBadRequest, "UNSAFE_PATH"},
	{assembler.ErrNothingToGenerate, http.StatusConflict, "NOTHING_TO_GENERATE"},
	{service.ErrDetectorUnavailable, http.StatusServiceUnavailable, "DETECTOR_UNAVAILABLE"},
	{service.ErrDetectionFailed, http.StatusBadGateway, "DETECTION_FAILED"},
	{exporter.ErrArchiveCreate, http.StatusInternalServerError, "EXPORT_FAILED"},
}

// writeError maps a service error onto a status code and error body.
func writeError(c *gin.Context, err error) {
	var invalid *placeholder.InvalidTokenError
	if errors.As(err, &invalid) {
		body := errorBody("INVALID_TOKENS", err.Error())
		body["error"].(gin.H)["tokens"] = invalid.Tokens
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	var choice *placeholder.InvalidChoiceError
	if errors.As(err, &choice) {
		body := errorBody("INVALID_CHOICE", err.Error())
		body["error"].(gin.H)["choices"] = choice.Choices
		c.JSON(http.StatusBadRequest, body)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, errorBody(m.code, err.Error()))
			return
		}
	}
	c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", err.Error()))
}

func parsePackID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ID", "Invalid pack ID format"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err.Error()))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err.Error()))
		return false
	}
	return true
}
