package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	srv       *httptest.Server
	requests  []string
	uploaded  []byte
	uploadCT  string
	created   map[string]interface{}
	authToken string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	mux := http.NewServeMux()

	writeEnvelope := func(w http.ResponseWriter, status, code int, message string, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "message": message, "data": data})
	}

	mux.HandleFunc("/api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		api.requests = append(api.requests, r.Method+" "+r.URL.Path)
		writeEnvelope(w, http.StatusOK, successCode, "Success", map[string]string{"token": "tok-123"})
	})
	mux.HandleFunc("/api/notices/infinite", func(w http.ResponseWriter, r *http.Request) {
		api.requests = append(api.requests, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		next := uint(7)
		writeEnvelope(w, http.StatusOK, successCode, "Success", map[string]interface{}{
			"items": []map[string]interface{}{{
				"id":                8,
				"title":             "Water outage",
				"fileName":          "water.pdf",
				"uploadUrl":         "https://bucket.example.com/notices/4/water.pdf?signed",
				"status":            "published",
				"buildingComplexId": 5,
				"createdAt":         "2026-10-01T09:00:00Z",
			}},
			"nextCursor": next,
		})
	})
	mux.HandleFunc("/api/upload/presign", func(w http.ResponseWriter, r *http.Request) {
		api.requests = append(api.requests, r.Method+" "+r.URL.Path)
		api.authToken = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, successCode, "Success", map[string]interface{}{
			"url":       api.srv.URL + "/bucket/notices/4/abc.pdf",
			"key":       "notices/4/abc.pdf",
			"method":    "PUT",
			"expiresIn": 60,
		})
	})
	mux.HandleFunc("/bucket/notices/4/abc.pdf", func(w http.ResponseWriter, r *http.Request) {
		api.requests = append(api.requests, r.Method+" "+r.URL.Path)
		api.uploaded, _ = io.ReadAll(r.Body)
		api.uploadCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/notices", func(w http.ResponseWriter, r *http.Request) {
		api.requests = append(api.requests, r.Method+" "+r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&api.created)
		writeEnvelope(w, http.StatusOK, successCode, "Success", map[string]interface{}{
			"id":     42,
			"title":  api.created["title"],
			"status": "draft",
		})
	})
	mux.HandleFunc("/api/notices/9/status", func(w http.ResponseWriter, r *http.Request) {
		api.requests = append(api.requests, r.Method+" "+r.URL.Path)
		writeEnvelope(w, http.StatusBadRequest, 100010, "Invalid notice status", nil)
	})

	api.srv = httptest.NewServer(mux)
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) client() *Client {
	return New(a.srv.URL+"/api", zap.NewNop())
}

func TestSignInKeepsToken(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	token, err := c.SignIn(context.Background(), "sam@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = c.UploadNotice(context.Background(), &File{Name: "a.pdf", Data: []byte("%PDF")}, NoticeMeta{Title: "A", BuildingComplexID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", api.authToken)
}

func TestInfiniteListNotices(t *testing.T) {
	api := newFakeAPI(t)

	page, err := api.client().InfiniteListNotices(context.Background(), 5, 8, uintPtr(12))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, "Water outage", item.Title)
	assert.Equal(t, NoticeStatusPublished, item.Status)
	assert.Equal(t, "https://bucket.example.com/notices/4/water.pdf?signed", item.DownloadURL)
	assert.Equal(t, uint(5), item.BuildingComplexID)
	assert.Equal(t, 2026, item.CreatedAt.Year())
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, uint(7), *page.NextCursor)
	assert.Equal(t, []string{"GET /api/notices/infinite?buildingComplexId=5&cursor=12&limit=8"}, api.requests)
}

func TestInfiniteNoticePager(t *testing.T) {
	api := newFakeAPI(t)
	pager := api.client().InfiniteNoticePager(5, 8)

	_, err := pager.Next(context.Background())
	require.NoError(t, err)
	_, err = pager.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /api/notices/infinite?buildingComplexId=5&limit=8",
		"GET /api/notices/infinite?buildingComplexId=5&cursor=7&limit=8",
	}, api.requests)
}

func TestAPIErrorCarriesEnvelope(t *testing.T) {
	api := newFakeAPI(t)

	_, err := api.client().UpdateStatus(context.Background(), 9, "pinned")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 100010, apiErr.Code)
	assert.Equal(t, "Invalid notice status", apiErr.Message)
}

func TestUploadNotice_RequiresFile(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	_, err := c.UploadNotice(context.Background(), nil, NoticeMeta{Title: "A"})
	assert.EqualError(t, err, "File is required")

	_, err = c.UploadNotice(context.Background(), &File{Name: "empty.pdf"}, NoticeMeta{Title: "A"})
	assert.ErrorIs(t, err, ErrFileRequired)

	assert.Empty(t, api.requests)
}

func TestUploadNotice_PresignPutCreate(t *testing.T) {
	api := newFakeAPI(t)
	data := []byte("%PDF-1.7 small")

	result, err := api.client().UploadNotice(context.Background(),
		&File{Name: "lift.pdf", ContentType: "application/pdf", Data: data},
		NoticeMeta{Title: "Lift maintenance", BuildingComplexID: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/upload/presign",
		"PUT /bucket/notices/4/abc.pdf",
		"POST /api/notices",
	}, api.requests)
	assert.Equal(t, data, api.uploaded)
	assert.Equal(t, "application/pdf", api.uploadCT)

	assert.Equal(t, "notices/4/abc.pdf", api.created["fileKey"])
	assert.Equal(t, "lift.pdf", api.created["fileName"])
	assert.EqualValues(t, len(data), api.created["fileSize"])
	assert.EqualValues(t, 3, api.created["buildingComplexId"])

	assert.Equal(t, uint(42), result.Notice.ID)
	assert.Equal(t, NoticeStatusDraft, result.Notice.Status)
	assert.Empty(t, result.Warning)
}

func TestUploadNotice_LargeFileWarnsButUploads(t *testing.T) {
	api := newFakeAPI(t)
	data := bytes.Repeat([]byte("a"), LargeFileBytes+1)

	result, err := api.client().UploadNotice(context.Background(),
		&File{Name: "big.pdf", Data: data},
		NoticeMeta{Title: "Annual report", BuildingComplexID: 3})
	require.NoError(t, err)

	assert.Contains(t, result.Warning, "big.pdf")
	assert.Len(t, api.uploaded, LargeFileBytes+1)
	assert.Equal(t, "application/pdf", api.uploadCT)
	assert.Equal(t, uint(42), result.Notice.ID)
}
