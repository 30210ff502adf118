package weather

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Report is the subset of the provider response the bot presents.
type Report struct {
	Temp        float64
	Description string
	Humidity    int
}

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient builds a weather client for the given API key.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpc:   &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// SetBaseURL points the client at a different API root, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current returns the current conditions for a city.
func (c *Client) Current(city string) (Report, error) {
	query := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	resp, err := c.httpc.Get(c.baseURL + "/weather?" + query.Encode())
	if err != nil {
		return Report{}, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("fetch weather: status %d", resp.StatusCode)
	}

	var parsed weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Report{}, fmt.Errorf("decode weather: %w", err)
	}

	report := Report{Temp: parsed.Main.Temp, Humidity: parsed.Main.Humidity}
	if len(parsed.Weather) > 0 {
		report.Description = parsed.Weather[0].Description
	}
	return report, nil
}
