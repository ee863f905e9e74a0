// Package events provides in-process change notification between the
// quantum-system models and the components that cache derived results.
package events

// EventType identifies an event on the bus.
type EventType string

const (
	// QuantumSystemUpdated fires whenever a circuit parameter is mutated.
	// Consumers holding spectra or Hamiltonians derived from the previous
	// parameter set must treat them as stale.
	QuantumSystemUpdated EventType = "quantum_system_updated"
)

// EventData is the interface that all event data types must implement.
// This allows for type-safe event data while maintaining flexibility.
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// QuantumSystemUpdatedData contains data for QuantumSystemUpdated events.
type QuantumSystemUpdatedData struct {
	System string `json:"system"` // e.g. "flux_qubit"
	Field  string `json:"field"`  // mutated parameter, or "params" for bulk updates
}

// EventType returns the event type for QuantumSystemUpdatedData.
func (d *QuantumSystemUpdatedData) EventType() EventType {
	return QuantumSystemUpdated
}
