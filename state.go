// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

// State is the lifecycle state of a registered plugin.
type State int

// Plugin states. A plugin moves Registered -> Loaded -> Enabled and back;
// removal destroys the record, so there is no terminal state value.
const (
	// StateRegistered - manifest known, no instance constructed.
	StateRegistered State = iota

	// StateLoaded - instance constructed and load callback run, not enabled.
	StateLoaded

	// StateEnabled - loaded and enabled.
	StateEnabled
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateLoaded:
		return "loaded"
	case StateEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}
