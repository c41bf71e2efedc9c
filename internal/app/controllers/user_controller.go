package controllers

import (
	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// InterfaceUserController defines the user.* handlers.
type InterfaceUserController interface {
	GetUser()
	UpdateUser()
}

type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleUserFunc returns a gin handler for the named user procedure.
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUser":
			controller.GetUser()
		case "updateUser":
			controller.UpdateUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *UserController) service() services.InterfaceUserService {
	return c.Container.GetService(container.ServiceUser).(services.InterfaceUserService)
}

// 1. GetUser returns the caller or a member of the caller's organisation
// @Summary Get user
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (c *UserController) GetUser() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	caller := middleware.CurrentUser(c.Ctx)
	if id == caller.ID {
		response.Success(c.Ctx, caller)
		return
	}

	user, err := c.service().GetByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	if user.OrganisationID == nil {
		response.Forbidden(c.Ctx)
		return
	}
	if err := services.CheckOrganisationAccess(caller, *user.OrganisationID); err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrForbidden)
		return
	}
	response.Success(c.Ctx, user)
}

// 2. UpdateUser changes the caller's own profile
// @Summary Update user
// @Description Users may only update themselves. organisationId may only restate the current organisation and buildingComplexId must belong to it.
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body services.UpdateUserInput true "Profile fields"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/{id} [put]
func (c *UserController) UpdateUser() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	caller := middleware.CurrentUser(c.Ctx)
	if id != caller.ID {
		response.Forbidden(c.Ctx)
		return
	}
	var input services.UpdateUserInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	// Joining an organisation goes through organisation.create.
	if input.OrganisationID != nil {
		if err := services.CheckOrganisationAccess(caller, *input.OrganisationID); err != nil {
			handleServiceError(c.Ctx, c.Container, err, code.ErrForbidden)
			return
		}
	}
	if input.BuildingComplexID != nil {
		complexes := c.Container.GetService(container.ServiceBuildingComplex).(services.InterfaceBuildingComplexService)
		bc, err := complexes.GetByID(c.Ctx.Request.Context(), *input.BuildingComplexID)
		if err != nil {
			handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
			return
		}
		if err := services.CheckOrganisationAccess(caller, bc.OrganisationID); err != nil {
			handleServiceError(c.Ctx, c.Container, err, code.ErrForbidden)
			return
		}
	}

	user, err := c.service().UpdateUser(c.Ctx.Request.Context(), id, input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	invalidateTags(c.Ctx, c.Container, services.CacheTagUser)
	response.Success(c.Ctx, user)
}
