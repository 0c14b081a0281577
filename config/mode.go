package config

// OperatingMode selects whether planning steps may use web search
type OperatingMode int

const (
	// LLMOnly relies solely on the model's trained knowledge
	LLMOnly OperatingMode = iota
	// Enhanced lets planning steps call the web search tool
	Enhanced
)

func (m OperatingMode) String() string {
	switch m {
	case Enhanced:
		return "enhanced"
	default:
		return "llm-only"
	}
}

// SelectMode returns Enhanced iff a search credential is present.
// Presence is the only test, an invalid key is discovered when search is used.
func SelectMode(cfg RunConfiguration) OperatingMode {
	if cfg.searchCredential != "" {
		return Enhanced
	}
	return LLMOnly
}
