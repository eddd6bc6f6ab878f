// Package interpolate expands {{variable}} placeholders in request fields.
package interpolate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BuiltinFunc generates a dynamic value such as {{$uuid}}.
type BuiltinFunc func() string

// Engine handles variable interpolation.
type Engine struct {
	mu             sync.RWMutex
	variables      map[string]string
	builtins       map[string]BuiltinFunc
	allowUndefined bool
}

// variablePattern matches {{variable}} or {{ variable }} syntax.
var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_$][a-zA-Z0-9_\-$]*)\s*\}\}`)

// NewEngine creates an engine with the default builtins registered.
func NewEngine() *Engine {
	e := &Engine{
		variables: make(map[string]string),
		builtins: map[string]BuiltinFunc{
			"$uuid":         func() string { return uuid.New().String() },
			"$timestamp":    func() string { return strconv.FormatInt(time.Now().Unix(), 10) },
			"$isoTimestamp": func() string { return time.Now().Format(time.RFC3339) },
		},
	}
	return e
}

// SetVariables merges vars into the engine.
func (e *Engine) SetVariables(vars map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range vars {
		e.variables[k] = v
	}
}

// Variables returns a copy of all variables.
func (e *Engine) Variables() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make(map[string]string, len(e.variables))
	for k, v := range e.variables {
		result[k] = v
	}
	return result
}

// AllowUndefined makes undefined variables expand to the empty string
// instead of failing.
func (e *Engine) AllowUndefined(allow bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.allowUndefined = allow
}

// RegisterBuiltin registers a custom builtin; names must start with "$".
func (e *Engine) RegisterBuiltin(name string, fn BuiltinFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.builtins[name] = fn
}

// Interpolate replaces all {{variable}} placeholders in the input string.
func (e *Engine) Interpolate(input string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var missing []string
	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(name, "$") {
			if fn, ok := e.builtins[name]; ok {
				return fn()
			}
		}
		if value, ok := e.variables[name]; ok {
			return value
		}
		if e.allowUndefined {
			return ""
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("undefined variable: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// ExtractVariables returns the distinct variable names found in input.
func ExtractVariables(input string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, match := range variablePattern.FindAllStringSubmatch(input, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			result = append(result, match[1])
		}
	}
	return result
}
