package controllers

import (
	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// InterfaceBuildingComplexController defines the buildingComplex.* handlers.
type InterfaceBuildingComplexController interface {
	CreateBuildingComplex()
	GetBuildingComplex()
	GetBuildingComplexesByOrganisation()
}

type BuildingComplexController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewBuildingComplexController(ctx *gin.Context, container *container.ServiceContainer) *BuildingComplexController {
	return &BuildingComplexController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleBuildingComplexFunc returns a gin handler for the named building complex procedure.
func HandleBuildingComplexFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBuildingComplexController(ctx, container)

		switch method {
		case "createBuildingComplex":
			controller.CreateBuildingComplex()
		case "getBuildingComplex":
			controller.GetBuildingComplex()
		case "getBuildingComplexesByOrganisation":
			controller.GetBuildingComplexesByOrganisation()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *BuildingComplexController) service() services.InterfaceBuildingComplexService {
	return c.Container.GetService(container.ServiceBuildingComplex).(services.InterfaceBuildingComplexService)
}

// 1. CreateBuildingComplex
// @Summary Create building complex
// @Description Adds a building complex to the caller's organisation.
// @Tags BuildingComplex
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.BuildingComplexInput true "Building complex"
// @Success 200 {object} SuccessResponse{data=models.BuildingComplex}
// @Failure 400 {object} ErrorResponse
// @Router /building-complexes [post]
func (c *BuildingComplexController) CreateBuildingComplex() {
	var input services.BuildingComplexInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	bc, err := c.service().Create(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	c.invalidate()
	response.Success(c.Ctx, bc)
}

// 2. GetBuildingComplex
// @Summary Get building complex
// @Tags BuildingComplex
// @Produce json
// @Security BearerAuth
// @Param id path int true "Building complex ID"
// @Success 200 {object} SuccessResponse{data=models.BuildingComplex}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /building-complexes/{id} [get]
func (c *BuildingComplexController) GetBuildingComplex() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	bc, err := c.service().GetByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	if err := services.CheckOrganisationAccess(middleware.CurrentUser(c.Ctx), bc.OrganisationID); err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrForbidden)
		return
	}
	response.Success(c.Ctx, bc)
}

// 3. GetBuildingComplexesByOrganisation
// @Summary List building complexes of an organisation
// @Tags BuildingComplex
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organisation ID"
// @Success 200 {object} SuccessResponse{data=[]models.BuildingComplex}
// @Failure 403 {object} ErrorResponse
// @Router /organisations/{id}/building-complexes [get]
func (c *BuildingComplexController) GetBuildingComplexesByOrganisation() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	if err := services.CheckOrganisationAccess(middleware.CurrentUser(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrForbidden)
		return
	}

	complexes, err := c.service().ListByOrganisation(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, complexes)
}

func (c *BuildingComplexController) invalidate() {
	invalidateTags(c.Ctx, c.Container, services.CacheTagBuildingComplex)
}
