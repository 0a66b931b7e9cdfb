package types

// HealthStatus is the plant health verdict returned by the prediction service.
type HealthStatus string

const (
	Healthy     HealthStatus = "Healthy"
	MildDisease HealthStatus = "Mild Disease"
	Critical    HealthStatus = "Critical"
)

// PredictionResult is the classification payload returned by POST /predict.
// It is held only long enough to render.
type PredictionResult struct {
	Success        bool         `json:"success,omitempty"`
	PredictedClass string       `json:"predicted_class,omitempty"`
	DiseaseName    string       `json:"disease_name"`
	Description    string       `json:"description"`
	Confidence     float64      `json:"confidence"`
	HealthStatus   HealthStatus `json:"health_status"`
	Causes         []string     `json:"causes"`
	Prevention     []string     `json:"prevention"`
	Treatment      []string     `json:"treatment"`
}

// HealthReport is the payload of GET /health.
type HealthReport struct {
	Status                string `json:"status"`
	ModelLoaded           bool   `json:"model_loaded"`
	DiseaseDatabaseLoaded bool   `json:"disease_database_loaded"`
	TotalClasses          int    `json:"total_classes"`
}

// ErrorResponse is the body the prediction service sends with non-2xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
