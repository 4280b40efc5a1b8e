package health

import "context"

const serviceName = "promptfotos"

// a named readiness probe, e.g. the database pool's Ping
type Check struct {
	Name     string
	Probe    func(ctx context.Context) error
	Required bool
}

// Response represents the health check response
type Response struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
