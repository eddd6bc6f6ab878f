package core

import (
	"time"

	"github.com/google/uuid"
)

// Timing holds wall-clock timing of a single run.
type Timing struct {
	StartTime time.Time
	EndTime   time.Time
	Total     time.Duration
}

// NewTiming builds timing info from start and end instants.
func NewTiming(start, end time.Time) Timing {
	return Timing{StartTime: start, EndTime: end, Total: end.Sub(start)}
}

// Status represents an HTTP status code and text.
type Status struct {
	code int
	text string
}

// NewStatus creates a new status.
func NewStatus(code int, text string) *Status {
	return &Status{
		code: code,
		text: text,
	}
}

func (s *Status) Code() int    { return s.code }
func (s *Status) Text() string { return s.text }

func (s *Status) IsSuccess() bool {
	return s.code >= 200 && s.code < 300
}

func (s *Status) IsError() bool {
	return s.code >= 400
}

// Response is the result payload of a completed run.
type Response struct {
	id        string
	requestID string
	status    *Status
	headers   *Headers
	body      Body
	timing    Timing
}

// NewResponse creates a new response for the given request id.
func NewResponse(requestID string, status *Status) *Response {
	return &Response{
		id:        uuid.New().String(),
		requestID: requestID,
		status:    status,
		headers:   NewHeaders(),
		body:      NewEmptyBody(),
	}
}

func (r *Response) ID() string {
	return r.id
}

func (r *Response) RequestID() string {
	return r.requestID
}

func (r *Response) Status() *Status {
	return r.status
}

func (r *Response) Headers() *Headers {
	return r.headers
}

func (r *Response) Body() Body {
	return r.body
}

func (r *Response) Timing() Timing {
	return r.timing
}

// WithHeaders sets the response headers and returns the response for chaining.
func (r *Response) WithHeaders(h *Headers) *Response {
	r.headers = h
	return r
}

// WithBody sets the response body and returns the response for chaining.
func (r *Response) WithBody(b Body) *Response {
	r.body = b
	return r
}

// WithTiming sets the timing info and returns the response for chaining.
func (r *Response) WithTiming(t Timing) *Response {
	r.timing = t
	return r
}
