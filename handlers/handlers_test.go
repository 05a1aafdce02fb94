package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
)

type fakeMath struct{ panics bool }

func (f fakeMath) Solve(_ context.Context, query string, _ *components.LLMUsage) string {
	if f.panics {
		panic("calculator exploded")
	}
	return "solved: " + query
}

type fakeWeather struct{}

func (fakeWeather) Report(_ context.Context, city string) string { return "report for " + city }

func (fakeWeather) AnswerIn(_ context.Context, query string, city string, _ *components.LLMUsage) string {
	return "chat about " + query + " in " + city
}

func (fakeWeather) DefaultCity() string { return "Dhaka" }

type fakeOrchestrator struct{}

func (fakeOrchestrator) Handle(_ context.Context, query string) string { return "routed: " + query }

func newHandlers() *Handlers {
	return New(
		WithMath(fakeMath{}),
		WithWeather(fakeWeather{}),
		WithOrchestrator(fakeOrchestrator{}),
		WithStage("prod"),
	)
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	ret := make(map[string]any)
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &ret))
	return ret
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name  string
		event string
	}{
		{name: "direct", event: `{"query":"2+2"}`},
		{name: "string body", event: `{"body":"{\"query\":\"2+2\"}","httpMethod":"POST"}`},
		{name: "object body", event: `{"body":{"query":"2+2"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MathRequest
			require.NoError(t, DecodeEvent([]byte(tt.event), &req))
			assert.Equal(t, "2+2", req.Query)
		})
	}
	var req MathRequest
	require.NoError(t, DecodeEvent([]byte(`{"query":"2+2","show_steps":"yes"}`), &req))
	assert.Equal(t, `"yes"`, string(req.ShowSteps))
	assert.ErrorIs(t, DecodeEvent([]byte(`{"body":"not json"}`), &req), ErrInvalidBody)
	assert.ErrorIs(t, DecodeEvent([]byte(`[1,2]`), &req), ErrInvalidBody)
	require.NoError(t, DecodeEvent(nil, &req))
}

func TestMath(t *testing.T) {
	ctx := context.Background()
	h := newHandlers()

	resp, err := h.Math(ctx, json.RawMessage(`{"query":"2+2"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "GET,POST,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, map[string]any{"response": "solved: 2+2", "query": "2+2", "show_steps": true, "stage": "prod"}, decodeBody(t, resp))

	resp, _ = h.Math(ctx, json.RawMessage(`{"query":"2+2","show_steps":false}`))
	assert.Equal(t, false, decodeBody(t, resp)["show_steps"])

	resp, _ = h.Math(ctx, json.RawMessage(`{"query":"2+2","show_steps":"yes"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "yes", decodeBody(t, resp)["show_steps"])

	resp, _ = h.Math(ctx, json.RawMessage(`{"body":"{not json"}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.True(t, strings.HasPrefix(decodeBody(t, resp)["error"].(string), "Internal server error: invalid request body"))

	resp, _ = h.Math(ctx, json.RawMessage(`{"body":"{\"query\":\"  \"}"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Query parameter is required"}, decodeBody(t, resp))

	resp, err = New(WithMath(fakeMath{panics: true})).Math(ctx, json.RawMessage(`{"query":"1/0"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Internal server error: calculator exploded"}, decodeBody(t, resp))
}

func TestWeather(t *testing.T) {
	ctx := context.Background()
	h := newHandlers()

	resp, _ := h.Weather(ctx, json.RawMessage(`{"query":"what's the Weather like","city":"Paris"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{
		"response": "chat about what's the Weather like in Paris",
		"query":    "what's the Weather like",
		"city":     "Paris",
		"stage":    "prod",
	}, decodeBody(t, resp))

	resp, _ = h.Weather(ctx, json.RawMessage(`{"query":"Dhaka report"}`))
	body := decodeBody(t, resp)
	assert.Equal(t, "report for Dhaka", body["response"])
	assert.Equal(t, "Dhaka", body["city"])

	resp, _ = h.Weather(ctx, json.RawMessage(`{"city":"Paris"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTeacher(t *testing.T) {
	ctx := context.Background()
	h := newHandlers()

	resp, _ := h.Teacher(ctx, json.RawMessage(`{"body":"{\"userQuestion\":\"How much leave?\"}"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{
		"agentResponse": "routed: How much leave?",
		"userQuestion":  "How much leave?",
		"context":       map[string]any{},
		"stage":         "prod",
		"function":      "teacher-orchestrator",
	}, decodeBody(t, resp))

	resp, _ = h.Teacher(ctx, json.RawMessage(`{"userQuestion":"hi","context":{"user":"u1"}}`))
	assert.Equal(t, map[string]any{"user": "u1"}, decodeBody(t, resp)["context"])

	resp, _ = h.Teacher(ctx, json.RawMessage(`[1,2]`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = h.Teacher(ctx, json.RawMessage(`{"query":"hi"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "userQuestion parameter is required", decodeBody(t, resp)["error"])

	resp, _ = New().Teacher(ctx, json.RawMessage(`{"userQuestion":"hi"}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "dev", New().stage)
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(newHandlers())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/teacher", strings.NewReader(`{"userQuestion":"weather?"}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"agentResponse":"routed: weather?"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/math", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/math", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
