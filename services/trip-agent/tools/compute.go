package tools

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidExpenseInput means an expense component amount is negative.
	ErrInvalidExpenseInput = errors.New("invalid expense input")
	// ErrDivisionByZero means a per-day budget was requested over zero or
	// negative days.
	ErrDivisionByZero = errors.New("division by zero")
)

// ExpenseBreakdown is a derived budget summary. Each calculation produces a
// fresh value; breakdowns are never mutated.
type ExpenseBreakdown struct {
	Components  map[string]float64 `json:"components"`
	Total       float64            `json:"total"`
	Currency    string             `json:"currency"`
	DailyBudget float64            `json:"daily_budget"`
}

func Multiply(a, b float64) float64 { return a * b }

func Add(values ...float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// EstimateStayCost prices an accommodation stay.
func EstimateStayCost(nightlyRate, nights float64) float64 {
	return nightlyRate * nights
}

// AggregateExpenses sums expense components by category.
func AggregateExpenses(components map[string]float64) (float64, error) {
	var total float64
	for category, amount := range components {
		if amount < 0 {
			return 0, fmt.Errorf("%w: category %s is negative (%v)", ErrInvalidExpenseInput, category, amount)
		}
		total += amount
	}
	return total, nil
}

// DailyBudget spreads a total across trip days.
func DailyBudget(total float64, days int) (float64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: days=%d", ErrDivisionByZero, days)
	}
	return total / float64(days), nil
}

// BuildExpenseBreakdown composes AggregateExpenses and DailyBudget into a
// full breakdown.
func BuildExpenseBreakdown(components map[string]float64, currency string, days int) (ExpenseBreakdown, error) {
	total, err := AggregateExpenses(components)
	if err != nil {
		return ExpenseBreakdown{}, err
	}
	daily, err := DailyBudget(total, days)
	if err != nil {
		return ExpenseBreakdown{}, err
	}

	copied := make(map[string]float64, len(components))
	for k, v := range components {
		copied[k] = v
	}
	return ExpenseBreakdown{
		Components:  copied,
		Total:       total,
		Currency:    currency,
		DailyBudget: daily,
	}, nil
}

// NewMultiplyTool exposes Multiply to the reasoner.
func NewMultiplyTool() Tool {
	return New("multiply", "Multiply two numbers and return the product.",
		Parameters{
			Properties: map[string]Property{
				"a": {Type: "number", Description: "First factor"},
				"b": {Type: "number", Description: "Second factor"},
			},
			Required: []string{"a", "b"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			a, _ := numberParam(params, "a")
			b, _ := numberParam(params, "b")
			return map[string]any{"result": Multiply(a, b)}, nil
		})
}

// NewAddTool exposes Add to the reasoner.
func NewAddTool() Tool {
	return New("add", "Add a list of numbers and return the sum.",
		Parameters{
			Properties: map[string]Property{
				"values": {Type: "array", Description: "Numbers to add"},
			},
			Required: []string{"values"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			raw, _ := params["values"].([]any)
			values := make([]float64, 0, len(raw))
			for i, item := range raw {
				v, ok := item.(float64)
				if !ok {
					return nil, fmt.Errorf("%w: values[%d] is not a number", ErrInvalidArguments, i)
				}
				values = append(values, v)
			}
			return map[string]any{"result": Add(values...)}, nil
		})
}

// NewEstimateStayCostTool prices nightly_rate * nights.
func NewEstimateStayCostTool() Tool {
	return New("estimate_stay_cost", "Estimate total accommodation cost as nightly_rate * nights.",
		Parameters{
			Properties: map[string]Property{
				"nightly_rate": {Type: "number", Description: "Price of one night"},
				"nights":       {Type: "number", Description: "Number of nights"},
			},
			Required: []string{"nightly_rate", "nights"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			rate, _ := numberParam(params, "nightly_rate")
			nights, _ := numberParam(params, "nights")
			return map[string]any{"result": EstimateStayCost(rate, nights)}, nil
		})
}

// NewAggregateExpensesTool sums a category->amount mapping.
func NewAggregateExpensesTool() Tool {
	return New("aggregate_expenses", "Sum trip expense components given as a category-to-amount object.",
		Parameters{
			Properties: map[string]Property{
				"components": {Type: "object", Description: "Mapping of expense category to amount"},
			},
			Required: []string{"components"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			components, err := componentsParam(params)
			if err != nil {
				return nil, err
			}
			total, err := AggregateExpenses(components)
			if err != nil {
				return nil, err
			}
			return map[string]any{"total": total}, nil
		})
}

// NewDailyBudgetTool divides a total across days.
func NewDailyBudgetTool() Tool {
	return New("daily_budget", "Compute the per-day budget as total / days.",
		Parameters{
			Properties: map[string]Property{
				"total": {Type: "number", Description: "Total trip budget"},
				"days":  {Type: "integer", Description: "Number of trip days, must be positive"},
			},
			Required: []string{"total", "days"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			total, _ := numberParam(params, "total")
			days, _ := numberParam(params, "days")
			daily, err := DailyBudget(total, int(days))
			if err != nil {
				return nil, err
			}
			return map[string]any{"daily_budget": daily}, nil
		})
}

// NewPlanBudgetTool produces a full ExpenseBreakdown in one call.
func NewPlanBudgetTool() Tool {
	return New("plan_budget", "Build a full expense breakdown: component sums, total, and per-day budget.",
		Parameters{
			Properties: map[string]Property{
				"components": {Type: "object", Description: "Mapping of expense category to amount"},
				"currency":   {Type: "string", Description: "Currency code of the amounts, e.g. USD"},
				"days":       {Type: "integer", Description: "Number of trip days, must be positive"},
			},
			Required: []string{"components", "days"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			components, err := componentsParam(params)
			if err != nil {
				return nil, err
			}
			currency, _ := params["currency"].(string)
			days, _ := numberParam(params, "days")
			return BuildExpenseBreakdown(components, currency, int(days))
		})
}

func numberParam(params map[string]any, key string) (float64, bool) {
	v, ok := params[key].(float64)
	return v, ok
}

func componentsParam(params map[string]any) (map[string]float64, error) {
	raw, ok := params["components"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: components must be an object", ErrInvalidArguments)
	}

	components := make(map[string]float64, len(raw))
	for k, v := range raw {
		amount, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: component %s is not a number", ErrInvalidArguments, k)
		}
		components[k] = amount
	}
	return components, nil
}
