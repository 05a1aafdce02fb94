package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
)

const (
	Name           = "get_weather"
	DefaultBaseURL = "https://wttr.in"
	DefaultTimeout = 10 * time.Second
	// MaxPayloadBytes bounds how much of a weather response is read
	MaxPayloadBytes = 1 << 20
)

// Input names the city to fetch the current weather for
type Input struct {
	City string `json:"city" jsonschema:"title=city,description=Name of the city to get the current weather for."`
}

type Tool struct {
	tools.Config
	baseURL string
	client  *http.Client
	timeout time.Duration
}

var _ tools.Tool[Input, schema.String] = (*Tool)(nil)

type Option func(*Tool)

func WithBaseURL(baseURL string) Option {
	return func(t *Tool) {
		t.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(t *Tool) {
		t.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(t *Tool) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(t *Tool) {
		tools.Apply(&t.Config, opts...)
	}
}

func New(opts ...Option) *Tool {
	ret := &Tool{
		baseURL: DefaultBaseURL,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.Title() == "" {
		ret.SetTitle(Name)
	}
	if ret.Description() == "" {
		ret.SetDescription("Fetches the current weather for a city: temperature, feels like temperature, condition, humidity, wind speed and visibility.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*schema.String, error) {
	return schema.NewString(t.Fetch(ctx, input.City)), nil
}

// Fetch returns the formatted weather report for city.
// Failures are rendered as user facing messages instead of errors.
func (t *Tool) Fetch(ctx context.Context, city string) string {
	city = strings.TrimSpace(city)
	body, status, err := t.get(ctx, city)
	if err != nil {
		return fmt.Sprintf("❌ Error retrieving weather: %v", err)
	}
	if status != http.StatusOK {
		return couldNotFetch(city)
	}
	report, ok := Format(body)
	if !ok {
		return couldNotFetch(city)
	}
	return report
}

func (t *Tool) get(ctx context.Context, city string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	link := fmt.Sprintf("%s/%s?format=j1", t.baseURL, url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadBytes+1))
	if err != nil {
		return nil, 0, err
	}
	if len(body) > MaxPayloadBytes {
		return nil, 0, fmt.Errorf("weather response larger than %d bytes", MaxPayloadBytes)
	}
	return body, resp.StatusCode, nil
}

func couldNotFetch(city string) string {
	return fmt.Sprintf("⚠️ Could not fetch weather data for '%s'. Please check the city name.", city)
}

// Format renders a wttr.in j1 payload as a human readable report
func Format(payload []byte) (string, bool) {
	if !gjson.ValidBytes(payload) {
		return "", false
	}
	res := gjson.ParseBytes(payload)
	current := res.Get("current_condition.0")
	area := res.Get("nearest_area.0")
	if !current.Exists() || !area.Exists() {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current Weather in %s, %s:\n",
		area.Get("areaName.0.value").String(),
		area.Get("country.0.value").String())
	fmt.Fprintf(&b, "🌡️ Temperature: %s°C (Feels like %s°C)\n", current.Get("temp_C").String(), current.Get("FeelsLikeC").String())
	fmt.Fprintf(&b, "🌤️ Condition: %s\n", current.Get("weatherDesc.0.value").String())
	fmt.Fprintf(&b, "💧 Humidity: %s%%\n", current.Get("humidity").String())
	fmt.Fprintf(&b, "🌬️ Wind: %s km/h\n", current.Get("windspeedKmph").String())
	fmt.Fprintf(&b, "👁️ Visibility: %s km", current.Get("visibility").String())
	return b.String(), true
}
