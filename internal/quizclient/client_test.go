package quizclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1/", "tok", zerolog.Nop())
}

func TestCreateSendsPayloadAndDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/teacher/quizzes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var p model.QuizPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "Animals", p.Title)
		require.Len(t, p.Questions, 1)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"quiz":{"id":"q-1","title":"Animals","questions":[
			{"id":"x","order":1,"type":"true_false","prompt":"Dogs bark","correctAnswer":true}]}},
			"metadata":{"request_id":"r"}}`)
	})

	q, err := c.Create(context.Background(), model.QuizPayload{
		Title:     "Animals",
		Questions: []model.Question{{Prompt: "Dogs bark", Body: &model.TrueFalse{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
	require.Len(t, q.Questions, 1)
	assert.Equal(t, model.QuestionTypeTrueFalse, q.Questions[0].Type())
}

func TestGetByIDAcceptsBareObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/teacher/quizzes/q-2", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"q-2","title":"Cells","isActive":true,"questions":[]}`)
	})

	q, err := c.GetByID(context.Background(), "q-2")
	require.NoError(t, err)
	assert.Equal(t, "Cells", q.Title)
	assert.True(t, q.IsActive)
}

func TestGetAll(t *testing.T) {
	active := true
	chapter := int64(3)

	t.Run("envelope with pagination", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "cell", r.URL.Query().Get("search"))
			assert.Equal(t, "true", r.URL.Query().Get("is_active"))
			assert.Equal(t, "3", r.URL.Query().Get("chapter_id"))
			assert.Empty(t, r.URL.Query().Get("page"))
			_, _ = io.WriteString(w, `{"data":{"quizzes":[{"id":"a"},{"id":"b"}]},
				"pagination":{"page":1,"per_page":10,"total_items":2,"total_pages":1}}`)
		})

		quizzes, page, err := c.GetAll(context.Background(), model.QuizFilter{Search: "cell", IsActive: &active, ChapterID: &chapter})
		require.NoError(t, err)
		assert.Len(t, quizzes, 2)
		require.NotNil(t, page)
		assert.Equal(t, 2, page.TotalItems)
	})

	t.Run("bare array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[{"id":"a"}]`)
		})

		quizzes, page, err := c.GetAll(context.Background(), model.QuizFilter{})
		require.NoError(t, err)
		assert.Len(t, quizzes, 1)
		assert.Nil(t, page)
	})
}

func TestUpdateStatusAndDelete(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPatch {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, false, body["isActive"])
			_, _ = io.WriteString(w, `{"data":{"quiz":{"id":"q","isActive":false}}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"message":"Quiz deleted"}}`)
	})

	q, err := c.UpdateStatus(context.Background(), "q", false)
	require.NoError(t, err)
	assert.False(t, q.IsActive)
	require.NoError(t, c.Delete(context.Background(), "q"))

	assert.Equal(t, []string{"PATCH /api/v1/teacher/quizzes/q/status", "DELETE /api/v1/teacher/quizzes/q"}, calls)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"envelope", http.StatusUnprocessableEntity, `{"data":null,"error":{"code":"QUIZ_INVALID","message":"Question 2: mark exactly one choice as correct"}}`, "QUIZ_INVALID", "Question 2: mark exactly one choice as correct"},
		{"plain message", http.StatusBadRequest, `{"message":"bad things"}`, "", "bad things"},
		{"plain error", http.StatusBadRequest, `{"error":"nope"}`, "", "nope"},
		{"html", http.StatusBadGateway, `<html>oops</html>`, "", defaultErrorMessage},
		{"empty", http.StatusNotFound, ``, "", defaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.GetByID(context.Background(), "q")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.status == http.StatusNotFound, IsNotFound(err))
		})
	}
}
