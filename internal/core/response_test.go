package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewResponse(t *testing.T) {
	resp := NewResponse("req-1", NewStatus(200, "200 OK"))

	assert.NotEmpty(t, resp.ID())
	assert.Equal(t, "req-1", resp.RequestID())
	assert.Equal(t, 200, resp.Status().Code())
	assert.Equal(t, "200 OK", resp.Status().Text())
	assert.True(t, resp.Body().IsEmpty())
	assert.Zero(t, resp.Headers().Len())
}

func TestResponse_Builders(t *testing.T) {
	headers := NewHeaders()
	headers.Set("Content-Type", "application/json")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	resp := NewResponse("req-1", NewStatus(201, "201 Created")).
		WithHeaders(headers).
		WithBody(NewRawBody([]byte(`{"id":1}`), "application/json")).
		WithTiming(NewTiming(start, start.Add(150*time.Millisecond)))

	assert.Equal(t, "application/json", resp.Headers().Get("content-type"))
	assert.Equal(t, `{"id":1}`, resp.Body().String())
	assert.Equal(t, 150*time.Millisecond, resp.Timing().Total)
	assert.Equal(t, start, resp.Timing().StartTime)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		code    int
		success bool
		isError bool
	}{
		{200, true, false},
		{204, true, false},
		{301, false, false},
		{404, false, true},
		{500, false, true},
	}

	for _, tt := range tests {
		s := NewStatus(tt.code, "")
		assert.Equal(t, tt.success, s.IsSuccess(), "code %d", tt.code)
		assert.Equal(t, tt.isError, s.IsError(), "code %d", tt.code)
	}
}
