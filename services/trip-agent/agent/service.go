package agent

import (
	"context"
	"fmt"
	"log"

	"trip-agent/config"
	"trip-agent/export"
	"trip-agent/providers"
	"trip-agent/reasoner"
	"trip-agent/tools"
)

// Service wires the tool registry, provider chains, reasoner client, and
// document exporter, and runs one orchestrated loop per query. The registry
// is built once here and shared read-only across concurrent queries.
type Service struct {
	reasoner      Reasoner
	registry      *tools.Registry
	maxIterations int
	exporter      *export.Writer
}

// ToolRun summarizes one tool invocation for the response payload.
type ToolRun struct {
	RequestID string `json:"request_id"`
	Tool      string `json:"tool"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// PlanResult is what one successful loop hands back to the RPC layer.
type PlanResult struct {
	Answer     string
	Iterations int
	Sources    []ToolRun
	Raw        map[string]interface{}
}

// NewService builds a Service from the global configuration.
func NewService() (*Service, error) {
	cfg := config.AppConfig
	if cfg == nil {
		return nil, fmt.Errorf("config is not initialised")
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}

	client := reasoner.NewClient(
		cfg.GetReasonerAPIKey(),
		cfg.Reasoner.BaseURL,
		cfg.Reasoner.Model,
		cfg.Reasoner.Timeout,
	)

	svc := &Service{
		reasoner:      newLLMReasoner(client, registry.Definitions()),
		registry:      registry,
		maxIterations: cfg.Loop.MaxIterations,
	}
	if cfg.Export.Enabled {
		svc.exporter = export.NewWriter(cfg.Export.Dir)
	}

	log.Printf("[Agent] service ready provider=%s model=%s tools=%v max_iterations=%d",
		cfg.Reasoner.Provider, cfg.Reasoner.Model, registry.Names(), svc.maxIterations)
	return svc, nil
}

// buildRegistry registers every tool once at startup. Duplicate names are a
// fatal configuration error surfaced before serving.
func buildRegistry(cfg *config.Config) (*tools.Registry, error) {
	weather := buildWeatherChain(cfg.Providers.Weather)
	places := buildPlacesChain(cfg)
	currency := buildCurrencyChain(cfg.Providers.Currency)

	registry := tools.NewRegistry()
	registry.CallTimeout = cfg.Loop.ToolTimeout

	all := []tools.Tool{
		tools.NewWeatherTool(weather),
		tools.NewAttractionsTool(places),
		tools.NewRestaurantsTool(places),
		tools.NewActivitiesTool(places),
		tools.NewTransportTool(places),
		tools.NewConvertCurrencyTool(currency),
		tools.NewMultiplyTool(),
		tools.NewAddTool(),
		tools.NewEstimateStayCostTool(),
		tools.NewAggregateExpensesTool(),
		tools.NewDailyBudgetTool(),
		tools.NewPlanBudgetTool(),
	}
	for _, tl := range all {
		if err := registry.Register(tl); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func buildWeatherChain(cfg config.WeatherProviders) *providers.Chain {
	var backends []providers.Backend
	for _, name := range cfg.Order {
		switch name {
		case "open-meteo":
			backends = append(backends, providers.NewOpenMeteo(cfg.OpenMeteoGeocodeURL, cfg.OpenMeteoForecastURL, cfg.Timeout))
		case "wttr":
			backends = append(backends, providers.NewWttr(cfg.WttrURL, cfg.Timeout))
		default:
			log.Printf("[Agent] unknown weather backend %q, skipping", name)
		}
	}
	return providers.NewChain(tools.CapabilityWeather, backends...)
}

func buildPlacesChain(cfg *config.Config) *providers.Chain {
	placesCfg := cfg.Providers.Places
	var backends []providers.Backend
	for _, name := range placesCfg.Order {
		switch name {
		case "opentripmap":
			backends = append(backends, providers.NewOpenTripMap(placesCfg.OpenTripMapURL, cfg.GetOpenTripMapAPIKey(), placesCfg.Timeout))
		case "nominatim":
			backends = append(backends, providers.NewNominatim(placesCfg.NominatimURL, placesCfg.Timeout))
		default:
			log.Printf("[Agent] unknown places backend %q, skipping", name)
		}
	}
	return providers.NewChain(tools.CapabilityPlaces, backends...)
}

func buildCurrencyChain(cfg config.CurrencyProviders) *providers.Chain {
	var backends []providers.Backend
	for _, name := range cfg.Order {
		switch name {
		case "er-api":
			backends = append(backends, providers.NewERAPI(cfg.ERAPIURL, cfg.Timeout))
		case "frankfurter":
			backends = append(backends, providers.NewFrankfurter(cfg.FrankfurterURL, cfg.Timeout))
		default:
			log.Printf("[Agent] unknown currency backend %q, skipping", name)
		}
	}
	return providers.NewChain(tools.CapabilityCurrency, backends...)
}

// Plan runs the loop for one query. Tool failures are absorbed into the
// conversation; only reasoner failures and the iteration bound are fatal.
func (s *Service) Plan(ctx context.Context, query string) (*PlanResult, error) {
	orchestrator := NewOrchestrator(s.reasoner, s.registry, s.maxIterations)
	outcome, err := orchestrator.Run(ctx, query)
	if err != nil {
		return nil, err
	}

	sources := collectSources(outcome.Conversation)
	result := &PlanResult{
		Answer:     outcome.Answer,
		Iterations: outcome.Iterations,
		Sources:    sources,
		Raw:        collectRaw(outcome.Conversation),
	}

	if s.exporter != nil {
		notes := make([]export.SourceNote, 0, len(sources))
		for _, src := range sources {
			notes = append(notes, export.SourceNote{Tool: src.Tool, Status: src.Status, Detail: src.Error})
		}
		if path, err := s.exporter.Write(query, outcome.Answer, notes); err != nil {
			log.Printf("[Agent] export_failed err=%v", err)
		} else {
			log.Printf("[Agent] exported path=%s", path)
		}
	}

	return result, nil
}

// collectSources pairs every tool request in the conversation with its
// result, in request order.
func collectSources(conv *Conversation) []ToolRun {
	resultsByID := make(map[string]*ToolResult)
	for _, turn := range conv.Turns() {
		if res, ok := turn.(*ToolResult); ok {
			resultsByID[res.RequestID] = res
		}
	}

	var runs []ToolRun
	for _, turn := range conv.Turns() {
		output, ok := turn.(*ReasonerOutput)
		if !ok {
			continue
		}
		for _, req := range output.ToolRequests {
			run := ToolRun{RequestID: req.ID, Tool: req.Name, Status: "success"}
			res := resultsByID[req.ID]
			switch {
			case res == nil:
				run.Status = "not_executed"
			case res.IsError:
				run.Status = "error"
				run.Error = res.Payload
			}
			runs = append(runs, run)
		}
	}
	return runs
}

func collectRaw(conv *Conversation) map[string]interface{} {
	requestNames := make(map[string]string)
	for _, turn := range conv.Turns() {
		if output, ok := turn.(*ReasonerOutput); ok {
			for _, req := range output.ToolRequests {
				requestNames[req.ID] = req.Name
			}
		}
	}

	raw := make(map[string]interface{})
	for _, turn := range conv.Turns() {
		res, ok := turn.(*ToolResult)
		if !ok {
			continue
		}
		entry := map[string]interface{}{"request_id": res.RequestID}
		if res.IsError {
			entry["error"] = res.Payload
		} else {
			entry["result"] = res.Payload
		}

		name := requestNames[res.RequestID]
		if existing, ok := raw[name]; ok {
			raw[name] = append(existing.([]map[string]interface{}), entry)
		} else {
			raw[name] = []map[string]interface{}{entry}
		}
	}
	return raw
}
