// Package quizclient talks to the quiz persistence API.
package quizclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
)

const defaultErrorMessage = "The quiz service could not complete the request."

// APIError is a non-2xx answer from the API. Message is the server's message
// when it sent one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("quiz api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("quiz api: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client calls the teacher quiz endpoints with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 15s-timeout http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL, token string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("component", "quiz_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Create(ctx context.Context, p model.QuizPayload) (*model.Quiz, error) {
	var q model.Quiz
	if err := c.do(ctx, http.MethodPost, "/teacher/quizzes", p, "quiz", &q, nil); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) Update(ctx context.Context, id string, p model.QuizPayload) (*model.Quiz, error) {
	var q model.Quiz
	if err := c.do(ctx, http.MethodPut, "/teacher/quizzes/"+url.PathEscape(id), p, "quiz", &q, nil); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var q model.Quiz
	if err := c.do(ctx, http.MethodGet, "/teacher/quizzes/"+url.PathEscape(id), nil, "quiz", &q, nil); err != nil {
		return nil, err
	}
	return &q, nil
}

// GetAll lists quizzes matching f. The pagination is nil when the server sent none.
func (c *Client) GetAll(ctx context.Context, f model.QuizFilter) ([]model.Quiz, *response.Pagination, error) {
	var (
		quizzes []model.Quiz
		page    *response.Pagination
	)
	path := "/teacher/quizzes"
	if qs := filterQuery(f).Encode(); qs != "" {
		path += "?" + qs
	}
	if err := c.do(ctx, http.MethodGet, path, nil, "quizzes", &quizzes, &page); err != nil {
		return nil, nil, err
	}
	return quizzes, page, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, active bool) (*model.Quiz, error) {
	var q model.Quiz
	body := model.UpdateQuizStatusRequest{IsActive: &active}
	if err := c.do(ctx, http.MethodPatch, "/teacher/quizzes/"+url.PathEscape(id)+"/status", body, "quiz", &q, nil); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/teacher/quizzes/"+url.PathEscape(id), nil, "", nil, nil)
}

// do sends one request and decodes the answer into out. The body may be the
// envelope {data: {<key>: ...}}, {data: ...} or a bare object or array.
func (c *Client) do(ctx context.Context, method, path string, in any, key string, out any, page **response.Pagination) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Quiz API call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return decodeData(raw, key, out, page)
}

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func decodeData(raw []byte, key string, out any, page **response.Pagination) error {
	data := raw
	var env envelope
	if json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 {
		data = env.Data
		if page != nil {
			*page = env.Pagination
		}
	}

	if key != "" {
		var wrapped map[string]json.RawMessage
		if json.Unmarshal(data, &wrapped) == nil {
			if inner, ok := wrapped[key]; ok {
				data = inner
			}
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: defaultErrorMessage}

	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		apiErr.Code = string(env.Error.Code)
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	var plain struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &plain) == nil {
		switch {
		case plain.Message != "":
			apiErr.Message = plain.Message
		case plain.Error != "":
			apiErr.Message = plain.Error
		}
	}
	return apiErr
}

func filterQuery(f model.QuizFilter) url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	setInt := func(name string, p *int64) {
		if p != nil {
			v.Set(name, strconv.FormatInt(*p, 10))
		}
	}
	setInt("chapter_id", f.ChapterID)
	setInt("subject_id", f.SubjectID)
	setInt("season_id", f.SeasonID)
	if f.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	if f.TrainingOnly != nil {
		v.Set("training_only", strconv.FormatBool(*f.TrainingOnly))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return v
}
