package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every owner-scoped endpoint on api.
func RegisterRoutes(api *gin.RouterGroup, packs *PackHandler, templates *TemplateHandler, vault *VaultHandler) {
	api.Use(RequireOwner())

	api.POST("/templates", templates.CreateTemplate)
	api.GET("/templates", templates.ListTemplates)
	api.POST("/templates/preview", templates.PreviewDraft)
	api.GET("/templates/:id", templates.GetTemplate)
	api.PUT("/templates/:id", templates.UpdateTemplate)
	api.DELETE("/templates/:id", templates.DeleteTemplate)
	api.POST("/templates/:id/preview", templates.PreviewTemplate)

	api.POST("/packs", packs.CreatePack)
	api.GET("/packs", packs.ListPacks)
	api.GET("/packs/:id", packs.GetPack)
	api.DELETE("/packs/:id", packs.DeletePack)
	api.POST("/packs/:id/checklist/:itemId/toggle", packs.ToggleChecklistItem)
	api.PUT("/packs/:id/items/:itemId/status", packs.SetItemStatus)
	api.POST("/packs/:id/items/:itemId/files", packs.AttachFile)
	api.PUT("/packs/:id/choices", packs.SetChoiceField)
	api.PUT("/packs/:id/fields", packs.SaveFieldOverrides)
	api.POST("/packs/:id/annexures/detect", packs.DetectAnnexures)
	api.POST("/packs/:id/annexures/generate", packs.GenerateAnnexures)
	api.POST("/packs/:id/templates/generate", packs.GenerateTemplates)
	api.POST("/packs/:id/documents/generate", packs.GenerateDocument)
	api.PUT("/packs/:id/vault/:itemId", packs.MapVaultDocument)
	api.GET("/packs/:id/print", packs.PrintPack)
	api.GET("/packs/:id/export.zip", packs.ExportPack)

	api.POST("/vault", vault.UploadFile)
	api.GET("/vault", vault.ListFiles)
	api.DELETE("/vault/:id", vault.DeleteFile)

	api.GET("/profile", vault.GetProfile)
	api.PUT("/profile", vault.SaveProfile)
}
