// Package conditions evaluates field/operator/value rules against event payloads.
package conditions

import (
	"reflect"
	"strings"

	"github.com/givehub/automata/pkg/models"
)

// Evaluator applies condition lists with AND semantics. It holds no state and
// is safe for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a condition evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns true only if every condition passes against data, short-
// circuiting on the first failure. An empty condition list passes vacuously.
// Malformed or missing fields never match: a dotted path that fails to
// resolve makes that condition false, it never surfaces as an error.
func (e *Evaluator) Evaluate(conds []models.Condition, data map[string]any) bool {
	for _, cond := range conds {
		if !e.evaluateOne(cond, data) {
			return false
		}
	}

	return true
}

func (e *Evaluator) evaluateOne(cond models.Condition, data map[string]any) bool {
	resolved, ok := resolvePath(data, cond.Field)
	if !ok {
		return false
	}

	switch cond.Operator {
	case models.OperatorEquals:
		return looseEqual(resolved, cond.Value)
	case models.OperatorNotEquals:
		return !looseEqual(resolved, cond.Value)
	case models.OperatorContains:
		return contains(resolved, cond.Value)
	case models.OperatorGreaterThan:
		return compare(resolved, cond.Value) > 0
	case models.OperatorLessThan:
		return compare(resolved, cond.Value) < 0
	default:
		return false
	}
}

// resolvePath walks a dotted path through nested maps. Any missing or
// non-map intermediate segment fails the resolution.
func resolvePath(data map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = data

	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// looseEqual compares values, treating all numeric types as equivalent so
// JSON-decoded float64 payloads compare against int condition values.
func looseEqual(a, b any) bool {
	fa, aNum := asFloat(a)
	fb, bNum := asFloat(b)

	if aNum && bNum {
		return fa == fb
	}

	return reflect.DeepEqual(a, b)
}

// contains checks string substring or slice membership. Values that support
// neither never match.
func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		if !ok {
			return false
		}

		return strings.Contains(h, n)
	case []any:
		for _, item := range h {
			if looseEqual(item, needle) {
				return true
			}
		}

		return false
	case []string:
		n, ok := needle.(string)
		if !ok {
			return false
		}

		for _, item := range h {
			if item == n {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// compare orders two values: numerically when both are numbers, lexico-
// graphically when both are strings. Non-comparable operands return 0 so
// both greaterThan and lessThan read as no-match.
func compare(a, b any) int {
	fa, aNum := asFloat(a)
	fb, bNum := asFloat(b)

	if aNum && bNum {
		switch {
		case fa > fb:
			return 1
		case fa < fb:
			return -1
		default:
			return 0
		}
	}

	sa, aStr := a.(string)
	sb, bStr := b.(string)

	if aStr && bStr {
		return strings.Compare(sa, sb)
	}

	return 0
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
