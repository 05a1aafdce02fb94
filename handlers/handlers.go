package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/bububa/teachassist/agents/weather"
	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/logger"
)

const (
	DefaultStage       = "dev"
	OrchestratorFunc   = "teacher-orchestrator"
	queryRequired      = "Query parameter is required"
	userQuestionNeeded = "userQuestion parameter is required"
)

// MathSolver answers math queries
type MathSolver interface {
	Solve(ctx context.Context, query string, usage *components.LLMUsage) string
}

// WeatherResponder answers weather queries by direct fetch or conversationally
type WeatherResponder interface {
	Report(ctx context.Context, city string) string
	AnswerIn(ctx context.Context, query string, city string, usage *components.LLMUsage) string
	DefaultCity() string
}

// QueryHandler routes a question to at most one responder
type QueryHandler interface {
	Handle(ctx context.Context, query string) string
}

// HandlerFunc is the signature shared by lambda and http entry points
type HandlerFunc func(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error)

// Handlers are the request adapters of every entry point
type Handlers struct {
	math         MathSolver
	weather      WeatherResponder
	orchestrator QueryHandler
	stage        string
}

type Option func(*Handlers)

func WithMath(m MathSolver) Option {
	return func(h *Handlers) {
		h.math = m
	}
}

func WithWeather(w WeatherResponder) Option {
	return func(h *Handlers) {
		h.weather = w
	}
}

func WithOrchestrator(o QueryHandler) Option {
	return func(h *Handlers) {
		h.orchestrator = o
	}
}

func WithStage(stage string) Option {
	return func(h *Handlers) {
		if stage != "" {
			h.stage = stage
		}
	}
}

func New(opts ...Option) *Handlers {
	ret := &Handlers{stage: DefaultStage}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// MathRequest carries show_steps as sent, it is echoed back untouched
type MathRequest struct {
	Query     string          `json:"query"`
	ShowSteps json.RawMessage `json:"show_steps,omitempty"`
}

type MathResponse struct {
	Response  string          `json:"response"`
	Query     string          `json:"query"`
	ShowSteps json.RawMessage `json:"show_steps"`
	Stage     string          `json:"stage"`
}

type WeatherRequest struct {
	Query string `json:"query"`
	City  string `json:"city,omitempty"`
}

type WeatherResponse struct {
	Response string `json:"response"`
	Query    string `json:"query"`
	City     string `json:"city"`
	Stage    string `json:"stage"`
}

type TeacherRequest struct {
	UserQuestion string          `json:"userQuestion"`
	Context      json.RawMessage `json:"context,omitempty"`
}

type TeacherResponse struct {
	AgentResponse string          `json:"agentResponse"`
	UserQuestion  string          `json:"userQuestion"`
	Context       json.RawMessage `json:"context"`
	Stage         string          `json:"stage"`
	Function      string          `json:"function"`
}

// Math is the math entry point
func (h *Handlers) Math(ctx context.Context, event json.RawMessage) (resp events.APIGatewayProxyResponse, err error) {
	defer recoverTo(ctx, "math", &resp)
	logger.FromContext(ctx).Info("math handler received", "stage", h.stage)
	var req MathRequest
	if err := DecodeEvent(event, &req); err != nil {
		return internalError(err), nil
	}
	if strings.TrimSpace(req.Query) == "" {
		return badRequest(queryRequired), nil
	}
	if h.math == nil {
		return internalError(fmt.Errorf("math responder is not configured")), nil
	}
	showSteps := req.ShowSteps
	if len(showSteps) == 0 {
		showSteps = json.RawMessage("true")
	}
	answer := h.math.Solve(ctx, req.Query, nil)
	return NewResponse(http.StatusOK, MathResponse{
		Response:  answer,
		Query:     req.Query,
		ShowSteps: showSteps,
		Stage:     h.stage,
	}), nil
}

// Weather is the weather entry point. Queries mentioning weather are answered
// conversationally, anything else gets the report of the requested city.
func (h *Handlers) Weather(ctx context.Context, event json.RawMessage) (resp events.APIGatewayProxyResponse, err error) {
	defer recoverTo(ctx, "weather", &resp)
	logger.FromContext(ctx).Info("weather handler received", "stage", h.stage)
	var req WeatherRequest
	if err := DecodeEvent(event, &req); err != nil {
		return internalError(err), nil
	}
	if strings.TrimSpace(req.Query) == "" {
		return badRequest(queryRequired), nil
	}
	if h.weather == nil {
		return internalError(fmt.Errorf("weather responder is not configured")), nil
	}
	city := req.City
	if strings.TrimSpace(city) == "" {
		city = h.weather.DefaultCity()
	}
	var answer string
	if weather.IsConversational(req.Query) {
		answer = h.weather.AnswerIn(ctx, req.Query, city, nil)
	} else {
		answer = h.weather.Report(ctx, city)
	}
	return NewResponse(http.StatusOK, WeatherResponse{
		Response: answer,
		Query:    req.Query,
		City:     city,
		Stage:    h.stage,
	}), nil
}

// Teacher is the orchestrator entry point
func (h *Handlers) Teacher(ctx context.Context, event json.RawMessage) (resp events.APIGatewayProxyResponse, err error) {
	defer recoverTo(ctx, "teacher", &resp)
	log := logger.FromContext(ctx)
	log.Info("teacher orchestrator received", "stage", h.stage)
	var req TeacherRequest
	if err := DecodeEvent(event, &req); err != nil {
		return internalError(err), nil
	}
	if strings.TrimSpace(req.UserQuestion) == "" {
		return badRequest(userQuestionNeeded), nil
	}
	if h.orchestrator == nil {
		return internalError(fmt.Errorf("orchestrator is not configured")), nil
	}
	info := req.Context
	if len(info) == 0 || string(info) == "null" {
		info = json.RawMessage("{}")
	}
	answer := h.orchestrator.Handle(ctx, req.UserQuestion)
	log.Debug("teacher agent response", "response", answer)
	return NewResponse(http.StatusOK, TeacherResponse{
		AgentResponse: answer,
		UserQuestion:  req.UserQuestion,
		Context:       info,
		Stage:         h.stage,
		Function:      OrchestratorFunc,
	}), nil
}

func recoverTo(ctx context.Context, entry string, resp *events.APIGatewayProxyResponse) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		logger.FromContext(ctx).Error("handler panic", "entry", entry, "error", err)
		*resp = internalError(err)
	}
}
