package core

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/artpar/reqtabs/internal/interpolate"
	"github.com/google/uuid"
)

var (
	// ErrEmptyURL is returned when a record is sent without a URL.
	ErrEmptyURL = errors.New("URL is empty")
	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("URL must start with http:// or https://")
)

// Methods lists the HTTP methods a record can cycle through.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// Body types understood by ToRequest.
const (
	BodyTypeRaw  = "raw"
	BodyTypeJSON = "json"
)

// Record is an editable request definition shown in one tab.
type Record struct {
	id          string
	name        string
	method      string
	url         string
	headers     map[string]string
	queryParams map[string]string
	bodyType    string
	body        string
}

// NewRecord creates a record with a fresh id.
func NewRecord(name, method, rawURL string) *Record {
	return NewRecordWithID(uuid.New().String(), name, method, rawURL)
}

// NewRecordWithID creates a record with a specific id.
func NewRecordWithID(id, name, method, rawURL string) *Record {
	return &Record{
		id:          id,
		name:        name,
		method:      method,
		url:         rawURL,
		headers:     make(map[string]string),
		queryParams: make(map[string]string),
		bodyType:    BodyTypeRaw,
	}
}

func (r *Record) ID() string       { return r.id }
func (r *Record) Name() string     { return r.name }
func (r *Record) Method() string   { return r.method }
func (r *Record) URL() string      { return r.url }
func (r *Record) BodyType() string { return r.bodyType }
func (r *Record) Body() string     { return r.body }

func (r *Record) SetName(name string)     { r.name = name }
func (r *Record) SetMethod(method string) { r.method = method }
func (r *Record) SetBody(body string)     { r.body = body }

// SetBodyType sets the body type; unknown types fall back to raw.
func (r *Record) SetBodyType(bodyType string) {
	if bodyType != BodyTypeJSON {
		bodyType = BodyTypeRaw
	}
	r.bodyType = bodyType
}

// SetURL stores the base URL and moves any query string into query params.
func (r *Record) SetURL(rawURL string) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		r.url = rawURL
		return
	}
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			r.queryParams[key] = values[0]
		}
	}
	parsed.RawQuery = ""
	r.url = strings.TrimSuffix(parsed.String(), "?")
}

// FullURL returns the URL with query parameters appended.
func (r *Record) FullURL() string {
	if len(r.queryParams) == 0 {
		return r.url
	}
	parsed, err := url.Parse(r.url)
	if err != nil {
		return r.url
	}
	q := parsed.Query()
	for k, v := range r.queryParams {
		q.Set(k, v)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func (r *Record) SetHeader(key, value string) {
	r.headers[key] = value
}

func (r *Record) RemoveHeader(key string) {
	delete(r.headers, key)
}

func (r *Record) Headers() map[string]string {
	return copyMap(r.headers)
}

// HeaderKeys returns header names in sorted order.
func (r *Record) HeaderKeys() []string {
	return sortedKeys(r.headers)
}

func (r *Record) SetQueryParam(key, value string) {
	r.queryParams[key] = value
}

func (r *Record) RemoveQueryParam(key string) {
	delete(r.queryParams, key)
}

func (r *Record) QueryParams() map[string]string {
	return copyMap(r.queryParams)
}

// QueryKeys returns query parameter names in sorted order.
func (r *Record) QueryKeys() []string {
	return sortedKeys(r.queryParams)
}

// NextMethod advances the method to the next entry in Methods.
func (r *Record) NextMethod() {
	for i, m := range Methods {
		if strings.EqualFold(m, r.method) {
			r.method = Methods[(i+1)%len(Methods)]
			return
		}
	}
	r.method = Methods[0]
}

// Clone returns a deep copy that keeps the same id.
func (r *Record) Clone() *Record {
	clone := NewRecordWithID(r.id, r.name, r.method, r.url)
	clone.bodyType = r.bodyType
	clone.body = r.body
	for k, v := range r.headers {
		clone.headers[k] = v
	}
	for k, v := range r.queryParams {
		clone.queryParams[k] = v
	}
	return clone
}

// ValidateURL checks that the URL is present and uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrEmptyURL
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}
	return nil
}

// ToRequest resolves the record into a sendable request. When engine is
// non-nil, {{var}} placeholders in the URL, headers and body are expanded.
func (r *Record) ToRequest(engine *interpolate.Engine) (*Request, error) {
	expand := func(s string) (string, error) {
		if engine == nil {
			return s, nil
		}
		return engine.Interpolate(s)
	}

	finalURL, err := expand(r.FullURL())
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	if err := ValidateURL(finalURL); err != nil {
		return nil, err
	}

	req, err := NewRequest(strings.ToUpper(r.method), finalURL)
	if err != nil {
		return nil, err
	}
	req.recordID = r.id

	for _, key := range r.HeaderKeys() {
		value, err := expand(r.headers[key])
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", key, err)
		}
		req.SetHeader(key, value)
	}

	if r.body != "" {
		body, err := expand(r.body)
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		contentType := "text/plain"
		if r.bodyType == BodyTypeJSON {
			contentType = "application/json"
		}
		if req.Headers().Get("Content-Type") == "" {
			req.SetHeader("Content-Type", contentType)
		}
		req.SetBody(NewRawBody([]byte(body), contentType))
	}

	return req, nil
}

func copyMap(in map[string]string) map[string]string {
	result := make(map[string]string, len(in))
	for k, v := range in {
		result[k] = v
	}
	return result
}

func sortedKeys(in map[string]string) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
