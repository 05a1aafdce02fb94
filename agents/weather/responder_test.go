package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/gateway/gatewaytest"
	weathertool "github.com/bububa/teachassist/tools/weather"
)

const payload = `{"current_condition":[{"FeelsLikeC":"12","humidity":"60","temp_C":"10","visibility":"10","weatherDesc":[{"value":"Cloudy"}],"windspeedKmph":"5"}],"nearest_area":[{"areaName":[{"value":"Paris"}],"country":[{"value":"France"}]}]}`

func newFetcher(t *testing.T) *weathertool.Tool {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Paris" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return weathertool.New(weathertool.WithBaseURL(srv.URL), weathertool.WithHTTPClient(srv.Client()))
}

func TestReport(t *testing.T) {
	r := New(nil, newFetcher(t), nil)
	ctx := context.Background()
	assert.True(t, strings.HasPrefix(r.Report(ctx, "Paris"), "Current Weather in Paris, France:"))
	assert.Equal(t, "⚠️ Could not fetch weather data for 'Dhaka'. Please check the city name.", r.Report(ctx, ""))
}

func TestAnswerInUsesFallbackCity(t *testing.T) {
	gw := &gatewaytest.Gateway{
		Calls: []gatewaytest.Call{{Capability: weathertool.Name, Arguments: `{}`}},
		ReplyFunc: func(_ *gateway.Request, results []string) (string, error) {
			return "It is cloudy. " + strings.SplitN(results[0], "\n", 2)[0], nil
		},
	}
	clock := &gatewaytest.Capability{CapabilityName: "current_time"}
	r := New(gw, newFetcher(t), []gateway.Capability{clock})
	out := r.AnswerIn(context.Background(), "what's the weather like", "Paris", nil)
	assert.Equal(t, "It is cloudy. Current Weather in Paris, France:", out)

	req := gw.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, SystemPrompt, req.SystemPrompt)
	assert.Equal(t, "Respond to this weather-related query with accurate data and friendly tone: what's the weather like", req.UserMessage)
	require.Len(t, req.Capabilities, 2)
	assert.Equal(t, "current_time", req.Capabilities[0].Name())
	assert.Equal(t, weathertool.Name, req.Capabilities[1].Name())
}

func TestAnswerFallbacks(t *testing.T) {
	ctx := context.Background()
	r := New(&gatewaytest.Gateway{}, newFetcher(t), nil, WithDefaultCity("Paris"))
	assert.Equal(t, "Paris", r.DefaultCity())
	assert.Equal(t, NotUnderstood, r.Answer(ctx, "weather?", nil))

	r = New(&gatewaytest.Gateway{Err: errors.New("timeout")}, newFetcher(t), nil)
	assert.Equal(t, "❌ Error handling the query: timeout", r.Answer(ctx, "weather?", nil))
}

func TestIsConversational(t *testing.T) {
	assert.True(t, IsConversational("What's the WEATHER in Paris"))
	assert.False(t, IsConversational("Paris forecast"))
}
