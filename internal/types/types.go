package types

// ScreenData is the structure expected from the LLM for a single screen.
// It is transient: the service layer turns it into a persisted Screen.
type ScreenData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HTMLContent string `json:"htmlContent"`
	CSSContent  string `json:"cssContent"`

	// IsFallback is set when the content came from the deterministic
	// fallback template rather than the model. Not part of the LLM contract.
	IsFallback bool `json:"-"`
}
