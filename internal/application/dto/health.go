package dto

type GetHealthCommand struct{}

type HealthOutput struct {
	Status  string                 `json:"status"`
	Network string                 `json:"network,omitempty"`
	Checks  map[string]HealthCheck `json:"checks,omitempty"`
}

type HealthCheck struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type GetOpenAPISpecQuery struct{}

type OpenAPISpecOutput struct {
	Content     []byte
	ContentType string
}
