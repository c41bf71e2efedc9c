package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
	"noticeboard-http-service/internal/infrastructure/email"
)

// ErrorResponse documents the error envelope.
type ErrorResponse struct {
	Code    int         `json:"code" example:"101000"`
	Message string      `json:"message" example:"Notice not found"`
	Data    interface{} `json:"data"`
}

// SuccessResponse documents the success envelope.
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data"`
}

// serviceErrorCodes maps domain errors to response codes.
var serviceErrorCodes = []struct {
	err  error
	code int
}{
	{services.ErrNoticeNotFound, code.ErrNoticeNotFound},
	{models.ErrInvalidNoticeStatus, code.ErrNoticeInvalidStatus},
	{models.ErrIllegalTransition, code.ErrNoticeIllegalTransition},
	{services.ErrInvalidCursor, code.ErrNoticeInvalidCursor},
	{services.ErrInvalidDateRange, code.ErrNoticeInvalidDateRange},
	{services.ErrInvalidNoticeFile, code.ErrNoticeInvalidFile},
	{services.ErrBuildingComplexNotFound, code.ErrBuildingComplexNotFound},
	{services.ErrInvalidBuildingComplexType, code.ErrBuildingComplexInvalidType},
	{services.ErrOrganisationNotFound, code.ErrOrganisationNotFound},
	{services.ErrOrganisationRequired, code.ErrOrganisationRequired},
	{services.ErrBillingNotFound, code.ErrBillingNotFound},
	{services.ErrBillingAlreadyExists, code.ErrBillingAlreadyExist},
	{services.ErrUserNotFound, code.ErrUserNotFound},
	{services.ErrPasswordIncorrect, code.ErrUserPasswordIncorrect},
	{services.ErrForbidden, code.ErrForbidden},
	{services.ErrInvalidToken, code.ErrTokenInvalid},
	{email.ErrNoRecipients, code.ErrValidation},
}

// handleServiceError writes the response for err. Errors without a mapping are
// logged and reported with fallback.
func handleServiceError(ctx *gin.Context, c *container.ServiceContainer, err error, fallback int) {
	for _, m := range serviceErrorCodes {
		if errors.Is(err, m.err) {
			response.Fail(ctx, m.code, nil)
			return
		}
	}
	c.Logger().Error("request failed",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.FullPath()),
		zap.Uint("user_id", middleware.CurrentUserID(ctx)),
		zap.Error(err))
	response.Fail(ctx, fallback, nil)
}

// parseID reads a positive numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ParamError(ctx, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// organisationOf returns the caller's organisation id, answering 400 when onboarding is unfinished.
func organisationOf(ctx *gin.Context, user *models.User) (uint, bool) {
	if user == nil || user.OrganisationID == nil {
		response.Fail(ctx, code.ErrOrganisationRequired, nil)
		return 0, false
	}
	return *user.OrganisationID, true
}

// invalidateTags drops cached responses built from the given resources.
func invalidateTags(ctx *gin.Context, c *container.ServiceContainer, tags ...string) {
	cache, ok := c.GetService(container.ServiceCache).(services.InterfaceCacheService)
	if !ok {
		return
	}
	for _, tag := range tags {
		if err := cache.InvalidateTag(ctx.Request.Context(), tag); err != nil {
			c.Logger().Warn("cache invalidation failed", zap.String("tag", tag), zap.Error(err))
		}
	}
}
