package entity

type ServiceStatus string

const (
	ServiceOK            ServiceStatus = "ok"
	ServiceError         ServiceStatus = "error"
	ServiceNotConfigured ServiceStatus = "not_configured"
	ServiceDisabled      ServiceStatus = "disabled"
	ServiceEnabled       ServiceStatus = "enabled"
)

type HealthServices struct {
	Database     ServiceStatus `json:"database"`
	BlobStorage  ServiceStatus `json:"blobStorage"`
	Telemetry    ServiceStatus `json:"telemetry"`
	RAG          ServiceStatus `json:"rag"`
	SecretsVault ServiceStatus `json:"secretsVault"`
}

type HealthResponse struct {
	Status   string         `json:"status"`
	Services HealthServices `json:"services"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
