package models

// DetectorRules is the YAML configuration for trigger sequence detection.
// Omitted keys keep the built-in defaults.
type DetectorRules struct {
	StartSignal string `json:"startSignal" yaml:"start_signal"`
	CloseSignal string `json:"closeSignal" yaml:"close_signal"`
	Wiggle      *int   `json:"wiggle,omitempty" yaml:"wiggle,omitempty"`
}
