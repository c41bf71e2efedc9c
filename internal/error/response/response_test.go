package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard-http-service/internal/error/code"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, map[string]string{"title": "Lift maintenance"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, code.ErrSuccess, resp.Code)
	assert.Equal(t, "Lift maintenance", resp.Data.(map[string]interface{})["title"])
}

func TestSuccess_NullData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, nil)

	assert.JSONEq(t, `{"code":100000,"message":"Success","data":null}`, w.Body.String())
}

func TestParamError_KeepsMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ParamError(c, "title is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, code.ErrValidation, resp.Code)
	assert.Equal(t, "title is required", resp.Message)
}

func TestNotFound_DefaultMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NotFound(c, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Record not found", decode(t, w).Message)
}
