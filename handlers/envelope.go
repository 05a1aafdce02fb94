package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// ErrInvalidBody is returned when an inbound event carries no decodable JSON body.
// Handlers answer it as an internal error, only missing fields are bad requests.
var ErrInvalidBody = errors.New("invalid request body")

// Headers are attached to every response
var Headers = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
}

// DecodeEvent decodes the request body of event into v. The event may be an
// API Gateway proxy event whose body is a JSON string or object, or the body itself.
func DecodeEvent(event []byte, v any) error {
	event = bytes.TrimSpace(event)
	if len(event) == 0 {
		event = []byte("{}")
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(event, &envelope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	body := event
	if raw, ok := envelope["body"]; ok {
		body = bytes.TrimSpace(raw)
		var text string
		switch {
		case bytes.Equal(body, []byte("null")):
			body = []byte("{}")
		case len(body) > 0 && body[0] == '"':
			if err := json.Unmarshal(body, &text); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidBody, err)
			}
			body = []byte(text)
			if len(bytes.TrimSpace(body)) == 0 {
				body = []byte("{}")
			}
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

// NewResponse builds a response envelope with a JSON encoded body
func NewResponse(statusCode int, body any) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(Headers))
	for k, v := range Headers {
		headers[k] = v
	}
	bs, err := json.Marshal(body)
	if err != nil {
		statusCode = http.StatusInternalServerError
		bs, _ = json.Marshal(ErrorBody{Error: "Internal server error: " + err.Error()})
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(bs),
	}
}

type ErrorBody struct {
	Error string `json:"error"`
}

func badRequest(msg string) events.APIGatewayProxyResponse {
	return NewResponse(http.StatusBadRequest, ErrorBody{Error: msg})
}

func internalError(err error) events.APIGatewayProxyResponse {
	return NewResponse(http.StatusInternalServerError, ErrorBody{Error: "Internal server error: " + err.Error()})
}
