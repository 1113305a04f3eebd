package budget

// ModelRegistry resolves a model name to its context window size in tokens.
// Implementations return 0 for unknown models; the resolver substitutes its
// default window in that case.
type ModelRegistry interface {
	ContextWindow(model string) int
}

// KnownWindows maps model IDs to their context window sizes.
var KnownWindows = map[string]int{
	// Claude 4 models
	"claude-sonnet-4-5-20250929": 200000,
	"claude-opus-4-5-20251101":   200000,
	// Claude 3.5 models
	"claude-3-5-sonnet-20241022": 200000,
	"claude-3-5-haiku-20241022":  200000,
	// Claude 3 models
	"claude-3-opus-20240229":   200000,
	"claude-3-sonnet-20240229": 200000,
	"claude-3-haiku-20240307":  200000,
}

// StaticRegistry is a ModelRegistry backed by an in-memory table.
type StaticRegistry struct {
	windows map[string]int
}

// NewStaticRegistry creates a registry over the KnownWindows table.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{windows: KnownWindows}
}

// NewStaticRegistryWithWindows creates a registry over a custom table.
func NewStaticRegistryWithWindows(windows map[string]int) *StaticRegistry {
	return &StaticRegistry{windows: windows}
}

// ContextWindow returns the context window for the model, or 0 if unknown.
func (r *StaticRegistry) ContextWindow(model string) int {
	return r.windows[model]
}
