package controllers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
)

// BoardTemplates parses the board page templates for gin's HTML renderer.
func BoardTemplates() *template.Template {
	t := template.Must(template.New("board").Funcs(template.FuncMap{
		"date": func(n *models.Notice) string { return n.CreatedAt.Format("2 Jan 2006") },
	}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}} noticeboard</title>
</head>
<body>
<h1>{{.Name}}</h1>
{{if .Notices}}
<ul>
{{range .Notices}}<li><a href="{{.UploadURL}}" target="_blank" rel="noopener">{{.Title}}</a> <small>{{date .}}</small></li>
{{end}}</ul>
{{else}}
<p>There are no notices right now.</p>
{{end}}
{{if .NextCursor}}<p><a href="?cursor={{.NextCursor}}">Older notices</a></p>{{end}}
</body>
</html>
`))
	return template.Must(t.New("board_message").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Noticeboard</title></head>
<body><p>{{.}}</p></body>
</html>
`))
}

type boardPage struct {
	Name       string
	Notices    []*models.Notice
	NextCursor string
}

type BoardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewBoardController(ctx *gin.Context, container *container.ServiceContainer) *BoardController {
	return &BoardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleBoardFunc returns a gin handler for the public board page.
func HandleBoardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBoardController(ctx, container)

		switch method {
		case "showBoard":
			controller.ShowBoard()
		default:
			controller.html(http.StatusNotFound, "Not found")
		}
	}
}

// ShowBoard renders the notices a building's occupants currently see.
func (c *BoardController) ShowBoard() {
	id, err := strconv.ParseUint(c.Ctx.Param("buildingComplexId"), 10, 64)
	if err != nil || id == 0 {
		c.html(http.StatusNotFound, "Noticeboard not found")
		return
	}
	q := services.InfiniteNoticeQuery{BuildingComplexID: uint(id)}
	if raw := c.Ctx.Query("cursor"); raw != "" {
		cursor, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.html(http.StatusBadRequest, "Invalid cursor")
			return
		}
		v := uint(cursor)
		q.Cursor = &v
	}

	ctx := c.Ctx.Request.Context()
	complexes := c.Container.GetService(container.ServiceBuildingComplex).(services.InterfaceBuildingComplexService)
	bc, err := complexes.GetByID(ctx, uint(id))
	if err != nil {
		c.fail(err)
		return
	}
	notices := c.Container.GetService(container.ServiceNotice).(services.InterfaceNoticeService)
	page, err := notices.InfiniteListNotices(ctx, q)
	if err != nil {
		c.fail(err)
		return
	}

	view := boardPage{Name: bc.Name}
	for i := range page.Items {
		view.Notices = append(view.Notices, &page.Items[i])
	}
	if page.NextCursor != nil {
		view.NextCursor = strconv.FormatUint(uint64(*page.NextCursor), 10)
	}

	c.Ctx.HTML(http.StatusOK, "board", view)
}

func (c *BoardController) fail(err error) {
	switch {
	case errors.Is(err, services.ErrBuildingComplexNotFound):
		c.html(http.StatusNotFound, "Noticeboard not found")
	case errors.Is(err, services.ErrInvalidCursor):
		c.html(http.StatusBadRequest, "Invalid cursor")
	default:
		c.Container.Logger().Error("failed to load board", zap.Error(err))
		c.html(http.StatusInternalServerError, "Something went wrong")
	}
}

func (c *BoardController) html(status int, message string) {
	c.Ctx.HTML(status, "board_message", message)
}
