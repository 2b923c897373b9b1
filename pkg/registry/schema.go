// pkg/registry/schema.go
package registry

import "time"

// JSONSchema is an inline JSON Schema document.
type JSONSchema map[string]interface{}

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity binds a Zeebe job type to its input contract. InputSchema is
// applied to the job variables before they are decoded; ErrorCodes lists
// the BPMN error codes the worker may throw.
type Activity struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"displayName"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	TaskType     string     `json:"taskType"`
	InputSchema  JSONSchema `json:"inputSchema"`
	OutputSchema JSONSchema `json:"outputSchema,omitempty"`
	ErrorCodes   []string   `json:"errorCodes"`
	Timeout      string     `json:"timeout"`
	Retries      int        `json:"retries"`
	Workflows    []string   `json:"workflows,omitempty"`
}

// JobTimeout parses Timeout; an empty value yields zero.
func (a Activity) JobTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}
