package tools

import "context"

// Tool is a named, schema-described operation the reasoner may invoke.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// ToolDefinition mirrors the OpenAI function-calling tool schema that is
// sent to the reasoner verbatim.
type ToolDefinition struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function 工具函数定义
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters 工具参数定义
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property 参数属性
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Handler executes a tool with already-validated parameters.
type Handler func(ctx context.Context, params map[string]any) (any, error)

type funcTool struct {
	def     ToolDefinition
	handler Handler
}

// New wraps a handler function into a Tool with the given schema.
func New(name, description string, params Parameters, handler Handler) Tool {
	if params.Type == "" {
		params.Type = "object"
	}
	return &funcTool{
		def: ToolDefinition{
			Type: "function",
			Function: Function{
				Name:        name,
				Description: description,
				Parameters:  params,
			},
		},
		handler: handler,
	}
}

func (t *funcTool) Definition() ToolDefinition { return t.def }

func (t *funcTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	return t.handler(ctx, params)
}
