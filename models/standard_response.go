package models

// StandardResponse 统一响应结构
type StandardResponse struct {
	Data         interface{} `json:"data"`
	Error        string      `json:"error"`
	ErrorMessage string      `json:"error_message"`
}

// TripPlanResponse 行程规划的响应数据
type TripPlanResponse struct {
	Answer     string                 `json:"answer"`
	Sources    []TripSource           `json:"sources"`
	Raw        map[string]interface{} `json:"raw,omitempty"`
	Iterations int                    `json:"iterations"`
}

// TripSource is one tool invocation that contributed to (or failed during)
// the plan.
type TripSource struct {
	RequestID string `json:"request_id"`
	Tool      string `json:"tool"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
