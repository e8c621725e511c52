package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusRequest struct {
	IsActive *bool  `json:"isActive" binding:"required"`
	Title    string `json:"title" binding:"max=5"`
}

func setup(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tr, err := i18n.New("en")
	require.NoError(t, err)
	require.NoError(t, Setup(tr))
}

func bindBody(body, locale string) map[string]string {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(i18n.ContextKeyLocale, locale)

	var req statusRequest
	return Bind(c, &req)
}

func TestBindValid(t *testing.T) {
	setup(t)
	assert.Nil(t, bindBody(`{"isActive":false,"title":"ok"}`, "en"))
}

func TestBindTranslatesFieldErrors(t *testing.T) {
	setup(t)

	fields := bindBody(`{"title":"too long"}`, "en")
	require.Contains(t, fields, "isActive")
	assert.Equal(t, "isActive is a required field", fields["isActive"])
	assert.Contains(t, fields, "title")

	fields = bindBody(`{}`, "id")
	assert.Equal(t, "isActive wajib diisi", fields["isActive"])
}

func TestBindSyntaxError(t *testing.T) {
	setup(t)
	fields := bindBody(`{"isActive":`, "en")
	assert.Contains(t, fields, "detail")
}
