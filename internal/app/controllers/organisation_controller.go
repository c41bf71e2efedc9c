package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// InterfaceOrganisationController defines the organisation.* handlers.
type InterfaceOrganisationController interface {
	CreateOrganisation()
	GetOrganisation()
	UpdateOrganisation()
	GetBilling()
}

type OrganisationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewOrganisationController(ctx *gin.Context, container *container.ServiceContainer) *OrganisationController {
	return &OrganisationController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleOrganisationFunc returns a gin handler for the named organisation procedure.
func HandleOrganisationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewOrganisationController(ctx, container)

		switch method {
		case "createOrganisation":
			controller.CreateOrganisation()
		case "getOrganisation":
			controller.GetOrganisation()
		case "updateOrganisation":
			controller.UpdateOrganisation()
		case "getBilling":
			controller.GetBilling()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *OrganisationController) service() services.InterfaceOrganisationService {
	return c.Container.GetService(container.ServiceOrganisation).(services.InterfaceOrganisationService)
}

// 1. CreateOrganisation completes onboarding
// @Summary Create organisation
// @Description Creates an organisation and makes the caller its first member.
// @Tags Organisation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.OrganisationInput true "Organisation"
// @Success 200 {object} SuccessResponse{data=models.Organisation}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /organisations [post]
func (c *OrganisationController) CreateOrganisation() {
	var input services.OrganisationInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}
	user := middleware.CurrentUser(c.Ctx)
	if user.OrganisationID != nil {
		response.FailWithMessage(c.Ctx, code.ErrForbidden, "User already belongs to an organisation", nil)
		return
	}

	org, err := c.service().Create(c.Ctx.Request.Context(), user.ID, input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	invalidateTags(c.Ctx, c.Container, services.CacheTagOrganisation, services.CacheTagUser)
	response.Success(c.Ctx, org)
}

// 2. GetOrganisation
// @Summary Get organisation
// @Tags Organisation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organisation ID"
// @Success 200 {object} SuccessResponse{data=models.Organisation}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /organisations/{id} [get]
func (c *OrganisationController) GetOrganisation() {
	id, ok := c.ownID()
	if !ok {
		return
	}

	org, err := c.service().GetByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, org)
}

// 3. UpdateOrganisation
// @Summary Update organisation
// @Tags Organisation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organisation ID"
// @Param request body services.OrganisationInput true "Organisation"
// @Success 200 {object} SuccessResponse{data=models.Organisation}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /organisations/{id} [put]
func (c *OrganisationController) UpdateOrganisation() {
	id, ok := c.ownID()
	if !ok {
		return
	}
	var input services.OrganisationInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	org, err := c.service().Update(c.Ctx.Request.Context(), id, input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	c.Container.Logger().Info("organisation updated", zap.Uint("organisation_id", id), zap.Uint("user_id", middleware.CurrentUserID(c.Ctx)))
	invalidateTags(c.Ctx, c.Container, services.CacheTagOrganisation)
	response.Success(c.Ctx, org)
}

// 4. GetBilling
// @Summary Get billing details
// @Description Data is null until billing details are saved.
// @Tags Organisation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organisation ID"
// @Success 200 {object} SuccessResponse{data=models.Billing}
// @Failure 403 {object} ErrorResponse
// @Router /organisations/{id}/billing [get]
func (c *OrganisationController) GetBilling() {
	id, ok := c.ownID()
	if !ok {
		return
	}

	billing, err := c.service().GetBilling(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, billing)
}

// ownID parses the organisation id and requires the caller to belong to it.
func (c *OrganisationController) ownID() (uint, bool) {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return 0, false
	}
	if err := services.CheckOrganisationAccess(middleware.CurrentUser(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrForbidden)
		return 0, false
	}
	return id, true
}
