package core

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Request is a fully resolved request ready to be sent by an executor.
type Request struct {
	id       string
	recordID string
	method   string
	endpoint string
	headers  *Headers
	body     Body
}

// NewRequest creates a new request with the given parameters.
func NewRequest(method, endpoint string) (*Request, error) {
	if method == "" {
		return nil, errors.New("method cannot be empty")
	}
	if endpoint == "" {
		return nil, errors.New("endpoint cannot be empty")
	}

	return &Request{
		id:       uuid.New().String(),
		method:   method,
		endpoint: endpoint,
		headers:  NewHeaders(),
		body:     NewEmptyBody(),
	}, nil
}

func (r *Request) ID() string {
	return r.id
}

// RecordID returns the id of the record this request was built from.
func (r *Request) RecordID() string {
	return r.recordID
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) Endpoint() string {
	return r.endpoint
}

func (r *Request) Headers() *Headers {
	return r.headers
}

func (r *Request) Body() Body {
	return r.body
}

func (r *Request) SetHeader(key, value string) {
	r.headers.Set(key, value)
}

func (r *Request) SetBody(body Body) {
	r.body = body
}

// Headers implements a case-insensitive HTTP header store.
type Headers struct {
	data     map[string][]string
	keyOrder []string // original casing, insertion order
}

// NewHeaders creates an empty headers collection.
func NewHeaders() *Headers {
	return &Headers{
		data:     make(map[string][]string),
		keyOrder: make([]string, 0),
	}
}

func (h *Headers) normalize(key string) string {
	return strings.ToLower(key)
}

func (h *Headers) Set(key, value string) {
	normalized := h.normalize(key)
	if _, exists := h.data[normalized]; !exists {
		h.keyOrder = append(h.keyOrder, key)
	} else {
		for i, k := range h.keyOrder {
			if h.normalize(k) == normalized {
				h.keyOrder[i] = key
				break
			}
		}
	}
	h.data[normalized] = []string{value}
}

func (h *Headers) Add(key, value string) {
	normalized := h.normalize(key)
	if _, exists := h.data[normalized]; !exists {
		h.keyOrder = append(h.keyOrder, key)
	}
	h.data[normalized] = append(h.data[normalized], value)
}

func (h *Headers) Get(key string) string {
	values := h.data[h.normalize(key)]
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

func (h *Headers) GetAll(key string) []string {
	values := h.data[h.normalize(key)]
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func (h *Headers) Keys() []string {
	result := make([]string, len(h.keyOrder))
	copy(result, h.keyOrder)
	return result
}

func (h *Headers) Len() int {
	return len(h.keyOrder)
}

// Body is a request or response payload.
type Body interface {
	ContentType() string
	IsEmpty() bool
	Size() int64
	Bytes() []byte
	String() string
	Reader() io.Reader
}

type emptyBody struct{}

// NewEmptyBody creates an empty body.
func NewEmptyBody() Body {
	return emptyBody{}
}

func (emptyBody) ContentType() string { return "" }
func (emptyBody) IsEmpty() bool       { return true }
func (emptyBody) Size() int64         { return 0 }
func (emptyBody) Bytes() []byte       { return nil }
func (emptyBody) String() string      { return "" }
func (emptyBody) Reader() io.Reader   { return bytes.NewReader(nil) }

type rawBody struct {
	content     []byte
	contentType string
}

// NewRawBody creates a body with the given content and content type.
func NewRawBody(content []byte, contentType string) Body {
	return &rawBody{
		content:     content,
		contentType: contentType,
	}
}

func (b *rawBody) ContentType() string { return b.contentType }
func (b *rawBody) IsEmpty() bool       { return len(b.content) == 0 }
func (b *rawBody) Size() int64         { return int64(len(b.content)) }
func (b *rawBody) Bytes() []byte       { return b.content }
func (b *rawBody) String() string      { return string(b.content) }
func (b *rawBody) Reader() io.Reader   { return bytes.NewReader(b.content) }
