// Package components holds the interaction state of presentational components.
// Views render from these values; handlers drive them from requests.
package components

// Event is a user interaction delivered to a component.
type Event struct {
	stopped bool
}

// StopPropagation keeps the event from reaching enclosing components.
func (e *Event) StopPropagation() {
	if e != nil {
		e.stopped = true
	}
}

func (e *Event) PropagationStopped() bool {
	return e != nil && e.stopped
}
