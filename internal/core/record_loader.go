package core

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type recordEntry struct {
	Name     string            `yaml:"name"`
	Method   string            `yaml:"method"`
	URL      string            `yaml:"url"`
	Headers  map[string]string `yaml:"headers"`
	Query    map[string]string `yaml:"query"`
	Body     string            `yaml:"body"`
	BodyType string            `yaml:"body_type"`
}

type recordsFile struct {
	Requests []recordEntry `yaml:"requests"`
}

// LoadRecordsFromFile reads the requests to open as tabs at startup.
func LoadRecordsFromFile(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests file: %w", err)
	}
	return LoadRecordsFromYAML(data)
}

// LoadRecordsFromYAML parses a "requests:" list into records.
// Missing names default to the URL and missing methods to GET.
func LoadRecordsFromYAML(data []byte) ([]*Record, error) {
	var file recordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid requests YAML: %w", err)
	}
	if len(file.Requests) == 0 {
		return nil, errors.New("no requests defined")
	}

	records := make([]*Record, 0, len(file.Requests))
	for i, entry := range file.Requests {
		if entry.URL == "" && entry.Name == "" {
			return nil, fmt.Errorf("request %d: name or url is required", i)
		}
		method := entry.Method
		if method == "" {
			method = "GET"
		}
		name := entry.Name
		if name == "" {
			name = entry.URL
		}

		rec := NewRecord(name, method, "")
		rec.SetURL(entry.URL)
		for k, v := range entry.Headers {
			rec.SetHeader(k, v)
		}
		for k, v := range entry.Query {
			rec.SetQueryParam(k, v)
		}
		rec.SetBody(entry.Body)
		rec.SetBodyType(entry.BodyType)
		records = append(records, rec)
	}
	return records, nil
}
