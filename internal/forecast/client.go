package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"

	"github.com/NoID1290/WeatherWatch/internal/models"
)

// Querier is the forecast collaborator contract: a record for a known
// location, nil for an unknown one.
type Querier interface {
	Query(ctx context.Context, locationID string) (*models.ForecastRecord, error)
}

// Client fetches forecasts from an Open-Meteo style JSON API. Unlike feed
// fetches, this path retries: it is not bound by the alert cycle's
// next-tick retry rule.
type Client struct {
	http      *retryablehttp.Client
	baseURL   string
	locations map[string]string // id -> "lat,lon"
	clock     clockwork.Clock
}

// NewClient creates a forecast client. locationsJSON maps location ids to
// "lat,lon" pairs; empty means no known locations.
func NewClient(baseURL, locationsJSON string, timeout time.Duration) (*Client, error) {
	locations := map[string]string{}
	if locationsJSON != "" {
		if err := json.Unmarshal([]byte(locationsJSON), &locations); err != nil {
			return nil, fmt.Errorf("parse forecast locations: %w", err)
		}
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		http:      rc,
		baseURL:   baseURL,
		locations: locations,
		clock:     clockwork.NewRealClock(),
	}, nil
}

// SetClock replaces the wall clock, for tests
func (c *Client) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// Query resolves the location and fetches its current forecast. Unknown
// locations yield (nil, nil).
func (c *Client) Query(ctx context.Context, locationID string) (*models.ForecastRecord, error) {
	coords, ok := c.locations[locationID]
	if !ok {
		return nil, nil
	}

	var lat, lon float64
	if _, err := fmt.Sscanf(coords, "%f,%f", &lat, &lon); err != nil {
		return nil, fmt.Errorf("bad coordinates for %s: %w", locationID, err)
	}

	u := fmt.Sprintf("%s?latitude=%s&longitude=%s&current_weather=true&daily=temperature_2m_max,weathercode&timezone=UTC",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%.4f", lat)),
		url.QueryEscape(fmt.Sprintf("%.4f", lon)),
	)

	req, err := retryablehttp.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req = req.WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read forecast body: %w", err)
	}

	return c.parseRecord(locationID, body), nil
}

// parseRecord lifts the fields the renderer needs out of the response
func (c *Client) parseRecord(locationID string, body []byte) *models.ForecastRecord {
	doc := gjson.ParseBytes(body)

	rec := &models.ForecastRecord{
		Location:     locationID,
		TemperatureC: doc.Get("current_weather.temperature").Float(),
		Condition:    conditionFor(int(doc.Get("current_weather.weathercode").Int())),
		WindKPH:      doc.Get("current_weather.windspeed").Float(),
		RetrievedAt:  c.clock.Now().UTC(),
	}

	names := doc.Get("daily.time").Array()
	temps := doc.Get("daily.temperature_2m_max").Array()
	codes := doc.Get("daily.weathercode").Array()
	for i := range names {
		period := models.ForecastPeriod{Name: names[i].String()}
		if i < len(temps) {
			period.TemperatureC = temps[i].Float()
		}
		if i < len(codes) {
			period.Condition = conditionFor(int(codes[i].Int()))
		}
		rec.Periods = append(rec.Periods, period)
	}

	return rec
}

// conditionFor maps WMO weather codes to display labels
func conditionFor(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly Cloudy"
	case code <= 48:
		return "Fog"
	case code <= 57:
		return "Drizzle"
	case code <= 67:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Showers"
	case code <= 86:
		return "Snow Showers"
	default:
		return "Thunderstorm"
	}
}
