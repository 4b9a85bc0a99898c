package mode

// Mode is the policy for bare (non-keyword) query terms.
type Mode string

// Bare-term policies.
const (
	// Drop ignores tokens without a keyword.
	Drop Mode = "drop"
	// Route passes bare terms to the handler registered under query.BareKeyword.
	// Terms are still dropped when no such handler exists.
	Route Mode = "route"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Drop || m == Route
}

// OrDefault returns Drop for an empty mode.
func (m Mode) OrDefault() Mode {
	if m == "" {
		return Drop
	}
	return m
}
