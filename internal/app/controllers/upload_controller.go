package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
	"noticeboard-http-service/internal/infrastructure/storage"
)

// InterfaceUploadController defines the signed URL handlers.
type InterfaceUploadController interface {
	PresignUpload()
	RedirectToFile()
}

type UploadController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewUploadController(ctx *gin.Context, container *container.ServiceContainer) *UploadController {
	return &UploadController{
		Ctx:       ctx,
		Container: container,
	}
}

// PresignUploadRequest asks for an upload URL.
type PresignUploadRequest struct {
	FileName string `json:"fileName" binding:"required,max=255" example:"lift-maintenance.pdf"`
	FileType string `json:"fileType" binding:"required" example:"application/pdf"`
}

// PresignUploadResponse is what the client PUTs the file to.
type PresignUploadResponse struct {
	URL       string `json:"url"`
	Key       string `json:"key" example:"notices/4/3f1c2a9e-0b7d-4c55-9a1e-6f2d8b1c0e4a.pdf"`
	Method    string `json:"method" example:"PUT"`
	ExpiresIn int    `json:"expiresIn" example:"60"`
}

// HandleUploadFunc returns a gin handler for the named upload procedure.
func HandleUploadFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUploadController(ctx, container)

		switch method {
		case "presignUpload":
			controller.PresignUpload()
		case "redirectToFile":
			controller.RedirectToFile()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *UploadController) storage() storage.FileStorage {
	return c.Container.GetService(container.ServiceStorage).(storage.FileStorage)
}

// 1. PresignUpload mints a short-lived upload URL for a PDF
// @Summary Presign upload
// @Description Returns a URL the client PUTs the file to directly. Only PDF files are accepted.
// @Tags Upload
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PresignUploadRequest true "File"
// @Success 200 {object} SuccessResponse{data=PresignUploadResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /upload/presign [post]
func (c *UploadController) PresignUpload() {
	var req PresignUploadRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}
	cfg := c.Container.Config()
	if req.FileType != cfg.AllowedUploadFormat {
		response.Fail(c.Ctx, code.ErrUnsupportedFileType, nil)
		return
	}

	orgID, ok := organisationOf(c.Ctx, middleware.CurrentUser(c.Ctx))
	if !ok {
		return
	}

	key := storage.NewObjectKey(orgID, req.FileName)
	presigned, err := c.storage().PresignUpload(c.Ctx.Request.Context(), key, req.FileType, cfg.UploadURLExpiry)
	if err != nil {
		c.Container.Logger().Error("failed to presign upload", zap.String("key", key), zap.Error(err))
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}

	c.Container.Logger().Info("upload presigned", zap.String("key", key), zap.Uint("user_id", middleware.CurrentUserID(c.Ctx)))
	response.Success(c.Ctx, PresignUploadResponse{
		URL:       presigned.URL,
		Key:       presigned.Key,
		Method:    presigned.Method,
		ExpiresIn: int(cfg.UploadURLExpiry.Seconds()),
	})
}

// 2. RedirectToFile
// @Summary Download notice file
// @Description Redirects to a signed download URL of the stored file.
// @Tags Upload
// @Param key path string true "Object key"
// @Success 302
// @Failure 404 {object} ErrorResponse
// @Router /files/{key} [get]
func (c *UploadController) RedirectToFile() {
	key := strings.TrimPrefix(c.Ctx.Param("key"), "/")
	if !strings.HasPrefix(key, storage.NoticePrefix) || strings.Contains(key, "..") {
		response.NotFound(c.Ctx, "File not found")
		return
	}

	presigned, err := c.storage().PresignDownload(c.Ctx.Request.Context(), key, c.Container.Config().DownloadURLExpiry)
	if err != nil {
		c.Container.Logger().Error("failed to presign download", zap.String("key", key), zap.Error(err))
		response.Fail(c.Ctx, code.ErrStorage, nil)
		return
	}
	c.Ctx.Redirect(http.StatusFound, presigned.URL)
}
