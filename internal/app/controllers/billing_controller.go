package controllers

import (
	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// InterfaceBillingController defines the billing.* handlers.
type InterfaceBillingController interface {
	CreateBilling()
	UpdateBilling()
	SaveBilling()
}

type BillingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewBillingController(ctx *gin.Context, container *container.ServiceContainer) *BillingController {
	return &BillingController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleBillingFunc returns a gin handler for the named billing procedure.
func HandleBillingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBillingController(ctx, container)

		switch method {
		case "createBilling":
			controller.CreateBilling()
		case "updateBilling":
			controller.UpdateBilling()
		case "saveBilling":
			controller.SaveBilling()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *BillingController) service() services.InterfaceBillingService {
	return c.Container.GetService(container.ServiceBilling).(services.InterfaceBillingService)
}

// 1. CreateBilling
// @Summary Create billing details
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.BillingInput true "Billing"
// @Success 200 {object} SuccessResponse{data=models.Billing}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /billing [post]
func (c *BillingController) CreateBilling() {
	orgID, ok := organisationOf(c.Ctx, middleware.CurrentUser(c.Ctx))
	if !ok {
		return
	}
	var input services.BillingInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	billing, err := c.service().Create(c.Ctx.Request.Context(), orgID, input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	invalidateTags(c.Ctx, c.Container, services.CacheTagOrganisation)
	response.Success(c.Ctx, billing)
}

// 2. UpdateBilling
// @Summary Update billing details
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Billing ID"
// @Param request body services.BillingInput true "Billing"
// @Success 200 {object} SuccessResponse{data=models.Billing}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /billing/{id} [put]
func (c *BillingController) UpdateBilling() {
	orgID, ok := organisationOf(c.Ctx, middleware.CurrentUser(c.Ctx))
	if !ok {
		return
	}
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	var input services.BillingInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	billing, err := c.service().Update(c.Ctx.Request.Context(), orgID, id, input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	invalidateTags(c.Ctx, c.Container, services.CacheTagOrganisation)
	response.Success(c.Ctx, billing)
}

// 3. SaveBilling creates or updates depending on whether an id is sent
// @Summary Save billing details
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.BillingSaveInput true "Billing, with id to update"
// @Success 200 {object} SuccessResponse{data=models.Billing}
// @Failure 400 {object} ErrorResponse
// @Router /billing/save [post]
func (c *BillingController) SaveBilling() {
	orgID, ok := organisationOf(c.Ctx, middleware.CurrentUser(c.Ctx))
	if !ok {
		return
	}
	var input services.BillingSaveInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	billing, err := c.service().Save(c.Ctx.Request.Context(), orgID, input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	invalidateTags(c.Ctx, c.Container, services.CacheTagOrganisation)
	response.Success(c.Ctx, billing)
}
