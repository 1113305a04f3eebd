// Package budget resolves configuration values into concrete token budgets.
//
// A budget value may be, in priority order:
//
//  1. A plain integer: 51200
//  2. A unit-suffixed string: "50k", "2mb" (k=1024, m=1024², g=1024³)
//  3. An arithmetic expression over integers: "50*1024"
//  4. A fractional value in [0,1] interpreted as a percentage of a named
//     model's context window: 0.5
//
// Resolution never fails: any unparseable value falls back to the default
// budget, and a model with no known context window falls back to the default
// window. A configuration problem must degrade the budget, never abort a
// prune.
package budget

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

const (
	// DefaultBudget is the fallback token budget when resolution fails.
	DefaultBudget = 50 * 1024

	// DefaultWindow is the fallback context window size for unknown models.
	DefaultWindow = 120000
)

var unitPattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([kmg])b?\s*$`)

// Resolver converts configuration values into token budgets.
type Resolver struct {
	registry      ModelRegistry
	defaultBudget int
	defaultWindow int
}

// NewResolver creates a resolver with the given model registry. A nil
// registry resolves every fractional budget against the default window.
func NewResolver(registry ModelRegistry) *Resolver {
	return &Resolver{
		registry:      registry,
		defaultBudget: DefaultBudget,
		defaultWindow: DefaultWindow,
	}
}

// WithDefaults overrides the fallback budget and window. Non-positive values
// keep the package defaults.
func (r *Resolver) WithDefaults(budget, window int) *Resolver {
	if budget > 0 {
		r.defaultBudget = budget
	}
	if window > 0 {
		r.defaultWindow = window
	}
	return r
}

// DefaultBudget returns the resolver's fallback budget.
func (r *Resolver) DefaultBudget() int {
	return r.defaultBudget
}

// Resolve converts a configuration value into a positive token budget.
// The model name is consulted only for fractional values.
func (r *Resolver) Resolve(value any, model string) int {
	switch v := value.(type) {
	case nil:
		return r.defaultBudget
	case int:
		return r.fromInt(int64(v))
	case int64:
		return r.fromInt(v)
	case float64:
		return r.fromFloat(v, model)
	case float32:
		return r.fromFloat(float64(v), model)
	case string:
		return r.fromString(v, model)
	default:
		return r.defaultBudget
	}
}

func (r *Resolver) fromInt(v int64) int {
	if v <= 0 {
		return r.defaultBudget
	}
	return int(v)
}

// fromFloat applies the fractional-window rule: values in (0,1] are a share
// of the model's context window, anything else is treated as a whole token
// count.
func (r *Resolver) fromFloat(v float64, model string) int {
	if v <= 0 {
		return r.defaultBudget
	}
	if v <= 1 {
		return r.fractionOfWindow(v, model)
	}
	return int(v)
}

func (r *Resolver) fromString(s, model string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return r.defaultBudget
	}

	// Plain integer.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return r.fromInt(n)
	}

	// Unit-suffixed: "50k", "2mb", case-insensitive.
	if m := unitPattern.FindStringSubmatch(s); m != nil {
		base, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			mult := float64(unitMultiplier(m[2]))
			if n := int(base * mult); n > 0 {
				return n
			}
		}
		return r.defaultBudget
	}

	// Bare fraction: "0.5".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return r.fromFloat(f, model)
	}

	// Arithmetic expression: "50*1024".
	if n, ok := evalExpression(s); ok && n > 0 {
		return n
	}

	return r.defaultBudget
}

func (r *Resolver) fractionOfWindow(fraction float64, model string) int {
	window := 0
	if r.registry != nil {
		window = r.registry.ContextWindow(model)
	}
	if window <= 0 {
		window = r.defaultWindow
	}
	n := int(fraction * float64(window))
	if n <= 0 {
		return r.defaultBudget
	}
	return n
}

func unitMultiplier(unit string) int64 {
	switch strings.ToLower(unit) {
	case "k":
		return 1024
	case "m":
		return 1024 * 1024
	case "g":
		return 1024 * 1024 * 1024
	}
	return 1
}

// evalExpression evaluates an arithmetic expression over integers with
// + - * / // % ** and parentheses. Python-style operators are normalized
// for the expression engine (** becomes ^, // becomes /); the numeric
// result is truncated to an integer.
func evalExpression(src string) (int, bool) {
	normalized := strings.ReplaceAll(src, "**", "^")
	normalized = strings.ReplaceAll(normalized, "//", "/")

	program, err := expr.Compile(normalized)
	if err != nil {
		return 0, false
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return 0, false
	}

	switch n := out.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Resolve is a convenience function using a resolver over the static model
// registry.
func Resolve(value any, model string) int {
	return NewResolver(NewStaticRegistry()).Resolve(value, model)
}
