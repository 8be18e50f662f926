package tier

import "fmt"

// Unknown is reported when no CSR is available to derive a tier from.
const Unknown = "Unknown"

// Threshold maps a lower CSR bound to a tier label.
type Threshold struct {
	Name string `yaml:"name"` // Tier label (e.g. "Onyx", "Diamond")
	Min  int    `yaml:"min"`  // Inclusive lower bound
}

// Document is the YAML shape of a tier table.
type Document struct {
	Floor string      `yaml:"floor"` // Tier for CSR values below every threshold
	Tiers []Threshold `yaml:"tiers"`
}

// InvalidTableError is returned when a tier table document fails validation.
type InvalidTableError struct {
	Reason string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid tier table: %s", e.Reason)
}
