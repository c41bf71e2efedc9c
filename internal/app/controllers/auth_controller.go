package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// InterfaceAuthController defines the auth handlers.
type InterfaceAuthController interface {
	SignIn()
	GetSession()
}

type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAuthFunc returns a gin handler for the named auth procedure.
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "signIn":
			controller.SignIn()
		case "getSession":
			controller.GetSession()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *AuthController) service() services.InterfaceJWTService {
	return c.Container.GetService(container.ServiceJWT).(services.InterfaceJWTService)
}

// 1. SignIn
// @Summary Sign in
// @Description Signs in with email and password. The first sign-in of an email creates its user.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.SignInInput true "Credentials"
// @Success 200 {object} SuccessResponse{data=services.SignInResult}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/signin [post]
func (c *AuthController) SignIn() {
	var input services.SignInInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	result, err := c.service().SignIn(c.Ctx.Request.Context(), input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	secure := !c.Container.Config().IsLocal()
	c.Ctx.SetCookie(middleware.SessionCookie, result.Token, maxAge, "/", "", secure, true)
	response.Success(c.Ctx, result)
}

// 2. GetSession
// @Summary Get session
// @Description Returns the current session, or null data when the token is missing or invalid.
// @Tags Auth
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.Session}
// @Router /auth/session [get]
func (c *AuthController) GetSession() {
	session, err := c.service().GetSession(c.Ctx.Request.Context(), middleware.ExtractToken(c.Ctx))
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, session)
}
