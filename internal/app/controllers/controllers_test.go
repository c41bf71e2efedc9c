package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
	"noticeboard-http-service/internal/infrastructure/config"
	"noticeboard-http-service/internal/infrastructure/email"
	"noticeboard-http-service/internal/infrastructure/storage"
)

type fakeStorage struct {
	uploads   []string
	downloads []string
	err       error
}

func (f *fakeStorage) PresignUpload(_ context.Context, key, _ string, expires time.Duration) (*storage.PresignedRequest, error) {
	f.uploads = append(f.uploads, key)
	if f.err != nil {
		return nil, f.err
	}
	return &storage.PresignedRequest{URL: "https://bucket.example.com/" + key + "?sig=1", Key: key, Method: http.MethodPut, ExpiresAt: time.Now().Add(expires)}, nil
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string, expires time.Duration) (*storage.PresignedRequest, error) {
	f.downloads = append(f.downloads, key)
	if f.err != nil {
		return nil, f.err
	}
	return &storage.PresignedRequest{URL: "https://bucket.example.com/" + key + "?sig=2", Key: key, Method: http.MethodGet, ExpiresAt: time.Now().Add(expires)}, nil
}

func (f *fakeStorage) Delete(context.Context, string) error { return f.err }

// fakeNotices implements the notice procedures the tests call; anything else panics.
type fakeNotices struct {
	services.InterfaceNoticeService
	page          *models.CursorPage[models.Notice]
	err           error
	statusUpdates []models.NoticeStatus
	lastQuery     services.InfiniteNoticeQuery
}

func (f *fakeNotices) InfiniteListNotices(_ context.Context, q services.InfiniteNoticeQuery) (*models.CursorPage[models.Notice], error) {
	f.lastQuery = q
	return f.page, f.err
}

func (f *fakeNotices) UpdateStatus(_ context.Context, _ *models.User, id uint, status models.NoticeStatus) (*models.Notice, error) {
	f.statusUpdates = append(f.statusUpdates, status)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Notice{BaseModel: models.BaseModel{ID: id}, Status: status}, nil
}

type fakeComplexes struct {
	services.InterfaceBuildingComplexService
	complex *models.BuildingComplex
	err     error
}

func (f *fakeComplexes) GetByID(context.Context, uint) (*models.BuildingComplex, error) {
	return f.complex, f.err
}

type fakeExport struct {
	data []byte
	err  error
}

func (f *fakeExport) ExportNotices(context.Context, *models.User, uint) ([]byte, string, error) {
	return f.data, "notices-5-20261018.xlsx", f.err
}

type fakeSender struct {
	sent []email.Message
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	f.sent = append(f.sent, msg)
	return "msg-1", nil
}

func newTestContainer(t *testing.T, fs *fakeStorage) *container.ServiceContainer {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cfg := &config.Config{
		EnvType:             "LOCAL",
		JWTSecretKey:        "a-very-long-session-secret",
		SessionTTL:          time.Hour,
		UploadURLExpiry:     60 * time.Second,
		DownloadURLExpiry:   3600 * time.Second,
		AllowedUploadFormat: "application/pdf",
	}
	return container.NewServiceContainer(db, cfg, container.Infrastructure{Storage: fs}, zap.NewNop())
}

// newTestEngine signs in user for every request when it is non-nil.
func newTestEngine(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(BoardTemplates())
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUserID, user.ID)
			c.Set(middleware.ContextUser, user)
		}
		c.Next()
	})
	return r
}

func manager() *models.User {
	org := uint(4)
	return &models.User{BaseModel: models.BaseModel{ID: 1}, Email: "manager@example.com", OrganisationID: &org}
}

func doJSON(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestPresignUpload(t *testing.T) {
	fs := &fakeStorage{}
	sc := newTestContainer(t, fs)
	r := newTestEngine(manager())
	r.POST("/upload/presign", HandleUploadFunc(sc, "presignUpload"))

	w, env := doJSON(r, http.MethodPost, "/upload/presign", PresignUploadRequest{FileName: "Lift.PDF", FileType: "application/pdf"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)

	data := env.Data.(map[string]interface{})
	key := data["key"].(string)
	assert.True(t, strings.HasPrefix(key, "notices/4/"), "keys are issued under the caller's organisation")
	assert.True(t, storage.OwnedBy(key, 4))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.Equal(t, "PUT", data["method"])
	assert.EqualValues(t, 60, data["expiresIn"])
	assert.Equal(t, []string{key}, fs.uploads)
}

func TestPresignUpload_RejectsNonPDF(t *testing.T) {
	fs := &fakeStorage{}
	sc := newTestContainer(t, fs)
	r := newTestEngine(manager())
	r.POST("/upload/presign", HandleUploadFunc(sc, "presignUpload"))

	w, env := doJSON(r, http.MethodPost, "/upload/presign", PresignUploadRequest{FileName: "photo.png", FileType: "image/png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrUnsupportedFileType, env.Code)
	assert.Empty(t, fs.uploads)
}

func TestPresignUpload_RequiresOrganisation(t *testing.T) {
	fs := &fakeStorage{}
	sc := newTestContainer(t, fs)
	r := newTestEngine(&models.User{BaseModel: models.BaseModel{ID: 2}, Email: "new@example.com"})
	r.POST("/upload/presign", HandleUploadFunc(sc, "presignUpload"))

	_, env := doJSON(r, http.MethodPost, "/upload/presign", PresignUploadRequest{FileName: "a.pdf", FileType: "application/pdf"})
	assert.Equal(t, code.ErrOrganisationRequired, env.Code)
	assert.Empty(t, fs.uploads)
}

func TestPresignUpload_StorageFailure(t *testing.T) {
	fs := &fakeStorage{err: errors.New("bucket unreachable")}
	sc := newTestContainer(t, fs)
	r := newTestEngine(manager())
	r.POST("/upload/presign", HandleUploadFunc(sc, "presignUpload"))

	_, env := doJSON(r, http.MethodPost, "/upload/presign", PresignUploadRequest{FileName: "a.pdf", FileType: "application/pdf"})
	assert.Equal(t, code.ErrStorage, env.Code)
}

func TestRedirectToFile(t *testing.T) {
	fs := &fakeStorage{}
	sc := newTestContainer(t, fs)
	r := newTestEngine(nil)
	r.GET("/files/*key", HandleUploadFunc(sc, "redirectToFile"))

	w, _ := doJSON(r, http.MethodGet, "/files/notices/abc.pdf", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://bucket.example.com/notices/abc.pdf?sig=2", w.Header().Get("Location"))

	for _, path := range []string{"/files/private/keys.txt", "/files/notices/../secrets.pdf"} {
		w, env := doJSON(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, code.ErrRecordNotFound, env.Code, path)
	}
	assert.Equal(t, []string{"notices/abc.pdf"}, fs.downloads)
}

func TestGetSession_NoTokenReturnsNull(t *testing.T) {
	sc := newTestContainer(t, &fakeStorage{})
	r := newTestEngine(nil)
	r.GET("/auth/session", HandleAuthFunc(sc, "getSession"))

	w, env := doJSON(r, http.MethodGet, "/auth/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)
	assert.Nil(t, env.Data)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestUpdateStatus(t *testing.T) {
	notices := &fakeNotices{}
	sc := newTestContainer(t, &fakeStorage{})
	sc.Register(container.ServiceNotice, notices)
	r := newTestEngine(manager())
	r.PATCH("/notices/:id/status", HandleNoticeFunc(sc, "updateStatus"))

	w, env := doJSON(r, http.MethodPatch, "/notices/7/status", UpdateStatusRequest{Status: "pinned"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrNoticeInvalidStatus, env.Code)
	assert.Empty(t, notices.statusUpdates)

	w, env = doJSON(r, http.MethodPatch, "/notices/7/status", UpdateStatusRequest{Status: "published"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "published", env.Data.(map[string]interface{})["status"])
	assert.Equal(t, []models.NoticeStatus{models.NoticeStatusPublished}, notices.statusUpdates)

	w, _ = doJSON(r, http.MethodPatch, "/notices/abc/status", UpdateStatusRequest{Status: "published"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus_MapsServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{services.ErrForbidden, http.StatusForbidden, code.ErrForbidden},
		{services.ErrNoticeNotFound, http.StatusNotFound, code.ErrNoticeNotFound},
		{errors.New("deadlock"), http.StatusInternalServerError, code.ErrDatabase},
	}
	for _, tc := range cases {
		sc := newTestContainer(t, &fakeStorage{})
		sc.Register(container.ServiceNotice, &fakeNotices{err: tc.err})
		r := newTestEngine(manager())
		r.PATCH("/notices/:id/status", HandleNoticeFunc(sc, "updateStatus"))

		w, env := doJSON(r, http.MethodPatch, "/notices/7/status", UpdateStatusRequest{Status: "archived"})
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, env.Code, tc.err.Error())
	}
}

func TestInfiniteListNotices(t *testing.T) {
	next := uint(11)
	notices := &fakeNotices{page: &models.CursorPage[models.Notice]{
		Items:      []models.Notice{{BaseModel: models.BaseModel{ID: 12}, Title: "Pool closed"}},
		NextCursor: &next,
	}}
	sc := newTestContainer(t, &fakeStorage{})
	sc.Register(container.ServiceNotice, notices)
	r := newTestEngine(nil)
	r.GET("/notices/infinite", HandleNoticeFunc(sc, "infiniteListNotices"))

	w, env := doJSON(r, http.MethodGet, "/notices/infinite?buildingComplexId=5&cursor=20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := env.Data.(map[string]interface{})
	assert.EqualValues(t, 11, data["nextCursor"])
	assert.Len(t, data["items"], 1)
	assert.Equal(t, uint(5), notices.lastQuery.BuildingComplexID)
	require.NotNil(t, notices.lastQuery.Cursor)
	assert.Equal(t, uint(20), *notices.lastQuery.Cursor)

	w, _ = doJSON(r, http.MethodGet, "/notices/infinite", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportNotices(t *testing.T) {
	sc := newTestContainer(t, &fakeStorage{})
	sc.Register(container.ServiceExport, &fakeExport{data: []byte("PK\x03\x04")})
	r := newTestEngine(manager())
	r.Use(func(c *gin.Context) { c.Header("Content-Type", "application/json") })
	r.GET("/building-complexes/:id/notices/export", HandleNoticeFunc(sc, "exportNotices"))

	w, _ := doJSON(r, http.MethodGet, "/building-complexes/5/notices/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="notices-5-20261018.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04", w.Body.String())
}

func TestShowBoard(t *testing.T) {
	next := uint(3)
	sc := newTestContainer(t, &fakeStorage{})
	sc.Register(container.ServiceBuildingComplex, &fakeComplexes{complex: &models.BuildingComplex{Name: "Harbour <View>"}})
	sc.Register(container.ServiceNotice, &fakeNotices{page: &models.CursorPage[models.Notice]{
		Items: []models.Notice{{
			BaseModel: models.BaseModel{ID: 4, CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)},
			Title:     "Fire drill",
			UploadURL: "https://bucket.example.com/notices/drill.pdf",
		}},
		NextCursor: &next,
	}})
	r := newTestEngine(nil)
	r.GET("/board/:buildingComplexId", HandleBoardFunc(sc, "showBoard"))

	w, _ := doJSON(r, http.MethodGet, "/board/5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Harbour &lt;View&gt;")
	assert.Contains(t, body, "Fire drill")
	assert.Contains(t, body, "1 Oct 2026")
	assert.Contains(t, body, `href="?cursor=3"`)
}

func TestShowBoard_UnknownComplex(t *testing.T) {
	sc := newTestContainer(t, &fakeStorage{})
	sc.Register(container.ServiceBuildingComplex, &fakeComplexes{err: services.ErrBuildingComplexNotFound})
	r := newTestEngine(nil)
	r.GET("/board/:buildingComplexId", HandleBoardFunc(sc, "showBoard"))

	w, _ := doJSON(r, http.MethodGet, "/board/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Noticeboard not found")
}

func TestShowBoard_InvalidCursorUsesMessageTemplate(t *testing.T) {
	sc := newTestContainer(t, &fakeStorage{})
	r := newTestEngine(nil)
	r.GET("/board/:buildingComplexId", HandleBoardFunc(sc, "showBoard"))

	w, _ := doJSON(r, http.MethodGet, "/board/5?cursor=latest", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<title>Noticeboard</title>")
	assert.Contains(t, w.Body.String(), "<p>Invalid cursor</p>")
}

func TestUnknownMethod(t *testing.T) {
	sc := newTestContainer(t, &fakeStorage{})
	r := newTestEngine(nil)
	r.GET("/x", HandleNoticeFunc(sc, "nope"))

	_, env := doJSON(r, http.MethodGet, "/x", nil)
	assert.Equal(t, code.ErrBind, env.Code)
}

func TestSendEmail(t *testing.T) {
	sender := &fakeSender{}
	sc := newTestContainer(t, &fakeStorage{})
	sc.Register(container.ServiceEmail, sender)
	r := newTestEngine(manager())
	r.POST("/email/send", HandleEmailFunc(sc, "sendEmail"))

	w, env := doJSON(r, http.MethodPost, "/email/send", email.Message{To: []string{"sam@example.com"}, Subject: "Hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrValidation, env.Code)

	w, _ = doJSON(r, http.MethodPost, "/email/send", email.Message{To: []string{"not-an-email"}, Subject: "Hi", Text: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sender.sent)

	w, env = doJSON(r, http.MethodPost, "/email/send", email.Message{To: []string{"sam@example.com"}, Subject: "Lift", Text: "Back in service"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "msg-1", env.Data.(map[string]interface{})["id"])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Lift", sender.sent[0].Subject)
}
