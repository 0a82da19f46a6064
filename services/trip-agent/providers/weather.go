package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultForecastDays = 3

// OpenMeteo fetches a daily forecast from the Open-Meteo API, resolving the
// city to coordinates through its geocoding endpoint first.
type OpenMeteo struct {
	GeocodeURL  string
	ForecastURL string
	client      *http.Client
}

func NewOpenMeteo(geocodeURL, forecastURL string, timeout time.Duration) *OpenMeteo {
	return &OpenMeteo{
		GeocodeURL:  strings.TrimRight(geocodeURL, "/"),
		ForecastURL: strings.TrimRight(forecastURL, "/"),
		client:      &http.Client{Timeout: timeout},
	}
}

func (o *OpenMeteo) Name() string { return "open-meteo" }

type openMeteoGeocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type openMeteoForecastResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// DailyForecast is the normalized weather shape handed back to tools.
type DailyForecast struct {
	City string        `json:"city"`
	Days []ForecastDay `json:"days"`
}

type ForecastDay struct {
	Date            string  `json:"date"`
	TempMaxC        float64 `json:"temp_max_c"`
	TempMinC        float64 `json:"temp_min_c"`
	PrecipitationMM float64 `json:"precipitation_mm"`
}

func (o *OpenMeteo) Fetch(ctx context.Context, q Query) (any, error) {
	city := strings.TrimSpace(q.City)
	if city == "" {
		return nil, fmt.Errorf("city is empty")
	}

	geoURL := fmt.Sprintf("%s/v1/search?name=%s&count=1", o.GeocodeURL, url.QueryEscape(city))
	var geo openMeteoGeocodeResponse
	if err := getJSON(ctx, o.client, geoURL, &geo); err != nil {
		return nil, fmt.Errorf("geocode %s: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("geocode %s: no match", city)
	}
	loc := geo.Results[0]

	days := q.Days
	if days <= 0 {
		days = defaultForecastDays
	}
	forecastURL := fmt.Sprintf(
		"%s/v1/forecast?latitude=%s&longitude=%s&daily=temperature_2m_max,temperature_2m_min,precipitation_sum&forecast_days=%d&timezone=auto",
		o.ForecastURL,
		strconv.FormatFloat(loc.Latitude, 'f', 4, 64),
		strconv.FormatFloat(loc.Longitude, 'f', 4, 64),
		days,
	)
	var forecast openMeteoForecastResponse
	if err := getJSON(ctx, o.client, forecastURL, &forecast); err != nil {
		return nil, fmt.Errorf("forecast %s: %w", city, err)
	}
	if len(forecast.Daily.Time) == 0 {
		return nil, fmt.Errorf("forecast %s: empty daily series", city)
	}

	result := DailyForecast{City: loc.Name}
	for i, date := range forecast.Daily.Time {
		day := ForecastDay{Date: date}
		if i < len(forecast.Daily.TemperatureMax) {
			day.TempMaxC = forecast.Daily.TemperatureMax[i]
		}
		if i < len(forecast.Daily.TemperatureMin) {
			day.TempMinC = forecast.Daily.TemperatureMin[i]
		}
		if i < len(forecast.Daily.PrecipitationSum) {
			day.PrecipitationMM = forecast.Daily.PrecipitationSum[i]
		}
		result.Days = append(result.Days, day)
	}
	return result, nil
}

// Wttr is the fallback weather backend using wttr.in's JSON interface. It
// returns current conditions only, which is lower fidelity than a forecast.
type Wttr struct {
	BaseURL string
	client  *http.Client
}

func NewWttr(baseURL string, timeout time.Duration) *Wttr {
	return &Wttr{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (w *Wttr) Name() string { return "wttr" }

type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// CurrentConditions is wttr's normalized shape.
type CurrentConditions struct {
	City        string  `json:"city"`
	TempC       float64 `json:"temp_c"`
	Description string  `json:"description"`
}

func (w *Wttr) Fetch(ctx context.Context, q Query) (any, error) {
	city := strings.TrimSpace(q.City)
	if city == "" {
		return nil, fmt.Errorf("city is empty")
	}

	reqURL := fmt.Sprintf("%s/%s?format=j1", w.BaseURL, url.PathEscape(city))
	var resp wttrResponse
	if err := getJSON(ctx, w.client, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("wttr %s: %w", city, err)
	}
	if len(resp.CurrentCondition) == 0 {
		return nil, fmt.Errorf("wttr %s: empty current_condition", city)
	}

	cond := resp.CurrentCondition[0]
	temp, err := strconv.ParseFloat(cond.TempC, 64)
	if err != nil {
		return nil, fmt.Errorf("wttr %s: parse temp %q: %w", city, cond.TempC, err)
	}
	desc := ""
	if len(cond.WeatherDesc) > 0 {
		desc = cond.WeatherDesc[0].Value
	}
	return CurrentConditions{City: city, TempC: temp, Description: desc}, nil
}
