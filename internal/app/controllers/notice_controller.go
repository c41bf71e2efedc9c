package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
)

// InterfaceNoticeController defines the notice.* handlers.
type InterfaceNoticeController interface {
	CreateNotice()
	ListNotices()
	InfiniteListNotices()
	ListArchivedNotices()
	GetNotice()
	UpdateStatus()
	ArchiveNotice()
	DeleteNotice()
	SearchNotices()
	ExportNotices()
}

type NoticeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewNoticeController(ctx *gin.Context, container *container.ServiceContainer) *NoticeController {
	return &NoticeController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateStatusRequest is the body of notice.updateStatus.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"published"`
}

// HandleNoticeFunc returns a gin handler for the named notice procedure.
func HandleNoticeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNoticeController(ctx, container)

		switch method {
		case "createNotice":
			controller.CreateNotice()
		case "listNotices":
			controller.ListNotices()
		case "infiniteListNotices":
			controller.InfiniteListNotices()
		case "listArchivedNotices":
			controller.ListArchivedNotices()
		case "getNotice":
			controller.GetNotice()
		case "updateStatus":
			controller.UpdateStatus()
		case "archiveNotice":
			controller.ArchiveNotice()
		case "deleteNotice":
			controller.DeleteNotice()
		case "searchNotices":
			controller.SearchNotices()
		case "exportNotices":
			controller.ExportNotices()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

func (c *NoticeController) service() services.InterfaceNoticeService {
	return c.Container.GetService(container.ServiceNotice).(services.InterfaceNoticeService)
}

// 1. CreateNotice records an uploaded PDF as a notice
// @Summary Create notice
// @Description Creates a notice from a file already uploaded with a presigned URL. Status defaults to draft.
// @Tags Notice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateNoticeInput true "Notice"
// @Success 200 {object} SuccessResponse{data=models.Notice}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notices [post]
func (c *NoticeController) CreateNotice() {
	var input services.CreateNoticeInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	notice, err := c.service().CreateNotice(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), input)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, notice)
}

// 2. ListNotices lists draft and published notices
// @Summary List notices
// @Description Newest first. Pass nextCursor back as cursor to get the following page.
// @Tags Notice
// @Produce json
// @Security BearerAuth
// @Param buildingComplexId query int false "Building complex; defaults to every complex of the organisation"
// @Param status query string false "draft or published"
// @Param limit query int false "Page size, default 10"
// @Param cursor query int false "Id of the last notice already seen"
// @Success 200 {object} SuccessResponse{data=models.CursorPage[models.Notice]}
// @Failure 400 {object} ErrorResponse
// @Router /notices [get]
func (c *NoticeController) ListNotices() {
	var q services.NoticeListQuery
	if err := c.Ctx.ShouldBindQuery(&q); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	page, err := c.service().ListNotices(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), q)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, page)
}

// 3. InfiniteListNotices lists what a building's occupants currently see
// @Summary Public notice feed
// @Description Published notices of a building complex whose date window contains now.
// @Tags Notice
// @Produce json
// @Param buildingComplexId query int true "Building complex"
// @Param limit query int false "Page size, default 8"
// @Param cursor query int false "Id of the last notice already seen"
// @Success 200 {object} SuccessResponse{data=models.CursorPage[models.Notice]}
// @Failure 400 {object} ErrorResponse
// @Router /notices/infinite [get]
func (c *NoticeController) InfiniteListNotices() {
	var q services.InfiniteNoticeQuery
	if err := c.Ctx.ShouldBindQuery(&q); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	page, err := c.service().InfiniteListNotices(c.Ctx.Request.Context(), q)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, page)
}

// 4. ListArchivedNotices
// @Summary List archived notices
// @Tags Notice
// @Produce json
// @Security BearerAuth
// @Param buildingComplexId query int false "Building complex"
// @Param limit query int false "Page size, default 10"
// @Param cursor query int false "Id of the last notice already seen"
// @Success 200 {object} SuccessResponse{data=models.CursorPage[models.Notice]}
// @Failure 400 {object} ErrorResponse
// @Router /notices/archived [get]
func (c *NoticeController) ListArchivedNotices() {
	var q services.NoticeListQuery
	if err := c.Ctx.ShouldBindQuery(&q); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}
	q.Status = ""

	page, err := c.service().ListArchivedNotices(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), q)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, page)
}

// 5. GetNotice
// @Summary Get notice
// @Tags Notice
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} SuccessResponse{data=models.Notice}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notices/{id} [get]
func (c *NoticeController) GetNotice() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	notice, err := c.service().GetNotice(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, notice)
}

// 6. UpdateStatus moves a notice through its lifecycle
// @Summary Update notice status
// @Description Publishing emails the organisation's users. Requesting the current status is a no-op.
// @Tags Notice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 200 {object} SuccessResponse{data=models.Notice}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /notices/{id}/status [patch]
func (c *NoticeController) UpdateStatus() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}
	status, err := models.ParseNoticeStatus(req.Status)
	if err != nil {
		response.Fail(c.Ctx, code.ErrNoticeInvalidStatus, nil)
		return
	}

	notice, err := c.service().UpdateStatus(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), id, status)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, notice)
}

// 7. ArchiveNotice
// @Summary Archive notice
// @Tags Notice
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} SuccessResponse{data=models.Notice}
// @Failure 404 {object} ErrorResponse
// @Router /notices/{id}/archive [post]
func (c *NoticeController) ArchiveNotice() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	notice, err := c.service().ArchiveNotice(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, notice)
}

// 8. DeleteNotice
// @Summary Delete notice
// @Description Removes the notice, its search record and its file.
// @Tags Notice
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /notices/{id} [delete]
func (c *NoticeController) DeleteNotice() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteNotice(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}

// 9. SearchNotices
// @Summary Search notices
// @Tags Notice
// @Produce json
// @Security BearerAuth
// @Param id path int true "Building complex ID"
// @Param q query string false "Search text"
// @Param limit query int false "Maximum hits, default 20"
// @Success 200 {object} SuccessResponse{data=[]search.NoticeDocument}
// @Failure 502 {object} ErrorResponse
// @Router /building-complexes/{id}/notices/search [get]
func (c *NoticeController) SearchNotices() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "0"))

	hits, err := c.service().SearchNotices(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), id, c.Ctx.Query("q"), limit)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrSearch)
		return
	}
	response.Success(c.Ctx, hits)
}

// 10. ExportNotices downloads the notice register as a spreadsheet
// @Summary Export notices
// @Tags Notice
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Building complex ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /building-complexes/{id}/notices/export [get]
func (c *NoticeController) ExportNotices() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	exportService := c.Container.GetService(container.ServiceExport).(services.InterfaceExportService)
	data, fileName, err := exportService.ExportNotices(c.Ctx.Request.Context(), middleware.CurrentUser(c.Ctx), id)
	if err != nil {
		handleServiceError(c.Ctx, c.Container, err, code.ErrDatabase)
		return
	}
	const xlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Ctx.Header("Content-Type", xlsx)
	c.Ctx.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Ctx.Data(http.StatusOK, xlsx, data)
}
