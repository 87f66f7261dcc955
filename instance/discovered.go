package instance

import (
	"id5multiplexing/domain"
	"id5multiplexing/messaging"
)

// DiscoveredInstance is a peer learned from a Hello. Entries are updated by later Hellos and never
// removed.
type DiscoveredInstance struct {
	Properties domain.Properties
	State      domain.InstanceState
	// Window is the window the Hello came from; remote calls to the peer go through it.
	Window *messaging.Window
}

// IsCandidate reports whether the peer takes part in the election.
func (d DiscoveredInstance) IsCandidate() bool {
	return d.State.OperatingMode.IsMultiplexingCapable()
}
