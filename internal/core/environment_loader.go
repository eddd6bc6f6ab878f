package core

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type environmentFile struct {
	Name         string            `yaml:"name"`
	Variables    map[string]string `yaml:"variables"`
	Secrets      map[string]string `yaml:"secrets"`
	Environments []environmentFile `yaml:"environments"`
}

// LoadEnvironmentsFromFile reads one or more environments from a YAML file.
//
// Two layouts are accepted: a single environment
//
//	name: dev
//	variables: {base_url: http://localhost:8080}
//
// or a list under "environments".
func LoadEnvironmentsFromFile(path string) ([]*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}
	return LoadEnvironmentsFromYAML(data)
}

// LoadEnvironmentsFromYAML parses environments from YAML data.
func LoadEnvironmentsFromYAML(data []byte) ([]*Environment, error) {
	var file environmentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid environment YAML: %w", err)
	}

	entries := file.Environments
	if len(entries) == 0 {
		entries = []environmentFile{file}
	}

	envs := make([]*Environment, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("environment %d: name is required", i)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("environment %q: duplicate name", entry.Name)
		}
		seen[entry.Name] = true

		env := NewEnvironment(entry.Name)
		for k, v := range entry.Variables {
			env.SetVariable(k, v)
		}
		for k, v := range entry.Secrets {
			env.SetSecret(k, v)
		}
		envs = append(envs, env)
	}
	if len(envs) == 0 {
		return nil, errors.New("no environments defined")
	}
	return envs, nil
}
