package tools

import (
	"context"
	"fmt"
	"strings"

	"trip-agent/providers"
)

// Capability names used to key provider chains.
const (
	CapabilityWeather  = "weather"
	CapabilityPlaces   = "places"
	CapabilityCurrency = "currency"
)

// NewWeatherTool looks up the forecast for a city through the weather chain.
func NewWeatherTool(chain *providers.Chain) Tool {
	return New("get_weather", "Get the weather forecast for a city. Results carry a degraded flag when they come from a fallback source.",
		Parameters{
			Properties: map[string]Property{
				"city": {Type: "string", Description: "City name, e.g. Paris"},
				"days": {Type: "integer", Description: "Forecast days, default 3"},
			},
			Required: []string{"city"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			city, _ := params["city"].(string)
			days, _ := numberParam(params, "days")
			return chain.Fetch(ctx, providers.Query{City: city, Days: int(days)})
		})
}

// newPlaceTool builds one place-search tool over the shared places chain,
// specialized by category. All place tools are thin shells over the same
// fallback policy.
func newPlaceTool(chain *providers.Chain, name, category, description string) Tool {
	return New(name, description,
		Parameters{
			Properties: map[string]Property{
				"city":  {Type: "string", Description: "City name, e.g. Paris"},
				"limit": {Type: "integer", Description: "Maximum results, default 10"},
			},
			Required: []string{"city"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			city, _ := params["city"].(string)
			limit, _ := numberParam(params, "limit")
			return chain.Fetch(ctx, providers.Query{City: city, Category: category, Limit: int(limit)})
		})
}

func NewAttractionsTool(chain *providers.Chain) Tool {
	return newPlaceTool(chain, "find_attractions", "attractions",
		"Find sightseeing attractions in a city.")
}

func NewRestaurantsTool(chain *providers.Chain) Tool {
	return newPlaceTool(chain, "find_restaurants", "restaurants",
		"Find restaurants and food spots in a city.")
}

func NewActivitiesTool(chain *providers.Chain) Tool {
	return newPlaceTool(chain, "find_activities", "activities",
		"Find sports and leisure activities in a city.")
}

func NewTransportTool(chain *providers.Chain) Tool {
	return newPlaceTool(chain, "find_transport", "transport",
		"Find transport hubs (stations, airports) in a city.")
}

// NewConvertCurrencyTool converts an amount using a live rate from the
// currency chain.
func NewConvertCurrencyTool(chain *providers.Chain) Tool {
	return New("convert_currency", "Convert an amount between currencies using a live exchange rate.",
		Parameters{
			Properties: map[string]Property{
				"amount": {Type: "number", Description: "Amount in the source currency"},
				"from":   {Type: "string", Description: "Source currency code, e.g. USD"},
				"to":     {Type: "string", Description: "Target currency code, e.g. EUR"},
			},
			Required: []string{"amount", "from", "to"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			amount, _ := numberParam(params, "amount")
			from, _ := params["from"].(string)
			to, _ := params["to"].(string)

			result, err := chain.Fetch(ctx, providers.Query{From: from, To: to})
			if err != nil {
				return nil, err
			}
			rate, ok := result.Data.(providers.Rate)
			if !ok {
				return nil, fmt.Errorf("unexpected rate payload %T from %s", result.Data, result.SourceUsed)
			}

			return map[string]any{
				"converted":   amount * rate.Rate,
				"rate":        rate.Rate,
				"from":        strings.ToUpper(strings.TrimSpace(from)),
				"to":          strings.ToUpper(strings.TrimSpace(to)),
				"source_used": result.SourceUsed,
				"degraded":    result.Degraded,
			}, nil
		})
}
