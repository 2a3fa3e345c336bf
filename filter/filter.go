package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/snapdock/snapdock/screenshot"
)

// Predicate decides whether a batch result entry matches a filter.
type Predicate func(item screenshot.BatchItem) (bool, error)

// Compile builds a predicate from an expr expression. Expressions see one
// batch entry at a time through these variables:
//
//	url         string
//	success     bool
//	size        int
//	duration_ms int
//	error_code  string
//
// plus the helper contains(s, substr).
func Compile(expression string) (Predicate, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("filter expression is empty")
	}

	program, err := expr.Compile(expression,
		expr.Env(environment(screenshot.BatchItem{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	return func(item screenshot.BatchItem) (bool, error) {
		return run(program, item)
	}, nil
}

// Apply returns the batch entries matching the expression, preserving order.
func Apply(items []screenshot.BatchItem, expression string) ([]screenshot.BatchItem, error) {
	predicate, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	matched := make([]screenshot.BatchItem, 0, len(items))
	for _, item := range items {
		ok, err := predicate(item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}

	return matched, nil
}

func run(program *vm.Program, item screenshot.BatchItem) (bool, error) {
	output, err := expr.Run(program, environment(item))
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed: %w", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression must evaluate to a boolean")
	}

	return result, nil
}

func environment(item screenshot.BatchItem) map[string]any {
	errorCode := ""
	if item.Error != nil {
		errorCode = item.Error.Code
	}

	return map[string]any{
		"url":         item.URL,
		"success":     item.Success,
		"size":        item.Size,
		"duration_ms": item.DurationMS,
		"error_code":  errorCode,
		"contains":    strings.Contains,
	}
}
