package core

import "sort"

// Environment is a named set of variables used for interpolation.
type Environment struct {
	name      string
	variables map[string]string
	secrets   map[string]string
}

// NewEnvironment creates a new environment with the given name.
func NewEnvironment(name string) *Environment {
	return &Environment{
		name:      name,
		variables: make(map[string]string),
		secrets:   make(map[string]string),
	}
}

func (e *Environment) Name() string { return e.name }

// Variables returns a copy of all variables.
func (e *Environment) Variables() map[string]string {
	return copyMap(e.variables)
}

// GetVariable returns a variable value.
func (e *Environment) GetVariable(key string) string {
	return e.variables[key]
}

// SetVariable sets a variable value.
func (e *Environment) SetVariable(key, value string) {
	e.variables[key] = value
}

// SetSecret sets a secret value.
func (e *Environment) SetSecret(key, value string) {
	e.secrets[key] = value
}

// SecretNames returns secret names (not values) in sorted order.
func (e *Environment) SecretNames() []string {
	names := make([]string, 0, len(e.secrets))
	for k := range e.secrets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ExportAll returns variables and secrets combined for interpolation.
// Secrets win on name clashes.
func (e *Environment) ExportAll() map[string]string {
	result := copyMap(e.variables)
	for k, v := range e.secrets {
		result[k] = v
	}
	return result
}
