package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
	"noticeboard-http-service/internal/infrastructure/email"
)

type EmailController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewEmailController(ctx *gin.Context, container *container.ServiceContainer) *EmailController {
	return &EmailController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleEmailFunc returns a gin handler for the named email procedure.
func HandleEmailFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewEmailController(ctx, container)

		switch method {
		case "sendEmail":
			controller.SendEmail()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

// SendEmail relays a message through the email provider with the server's API key
// @Summary Send email
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body email.Message true "Message"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /email/send [post]
func (c *EmailController) SendEmail() {
	var msg email.Message
	if err := c.Ctx.ShouldBindJSON(&msg); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}
	if msg.HTML == "" && msg.Text == "" {
		response.ParamError(c.Ctx, "html or text is required")
		return
	}

	sender := c.Container.GetService(container.ServiceEmail).(email.Sender)
	id, err := sender.Send(c.Ctx.Request.Context(), msg)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrEmail)
		return
	}

	c.Container.Logger().Info("email relayed",
		zap.String("id", id),
		zap.Int("recipients", len(msg.To)),
		zap.Uint("user_id", middleware.CurrentUserID(c.Ctx)))
	response.Success(c.Ctx, gin.H{"id": id})
}
