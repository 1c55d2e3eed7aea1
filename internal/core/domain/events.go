package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventDatasetReloaded EventType = "DATASET_RELOADED"
	EventSLABreach       EventType = "SLA_BREACH"
	EventPong            EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Dataset string      `json:"dataset"` // Used for routing to dataset "rooms"
	Payload interface{} `json:"payload,omitempty"`
}

// DatasetReloadedPayload carries the headline numbers of a freshly loaded dataset.
type DatasetReloadedPayload struct {
	Total          int                 `json:"total"`
	MeanHours      float64             `json:"meanHours"`
	WithinSLA      float64             `json:"withinSlaPercent"`
	ThresholdHours float64             `json:"thresholdHours"`
	Normalization  NormalizationReport `json:"normalization"`
}

// SLABreachPayload is sent when the share of tickets closed within the
// threshold drops below the target.
type SLABreachPayload struct {
	WithinSLA      float64 `json:"withinSlaPercent"`
	TargetPercent  float64 `json:"targetPercent"`
	ThresholdHours float64 `json:"thresholdHours"`
	Total          int     `json:"total"`
}
