// Package response defines the uniform JSON envelope returned by the lab
// management API. Every endpoint wraps its payload in the same shape so
// clients can branch on success/errors without inspecting status codes alone.
package response

import "time"

// Version is reported in every envelope.
const Version = "1.0"

// Envelope is the standard API response wrapper.
type Envelope struct {
	Timestamp string                 `json:"timestamp"`
	Success   bool                   `json:"success"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Errors    []string               `json:"errors,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func base(success bool) *Envelope {
	return &Envelope{
		Timestamp: time.Now().Format(time.RFC3339),
		Success:   success,
		Version:   Version,
	}
}

// Success builds a success envelope. data and metadata may be nil.
func Success(data interface{}, message string, metadata map[string]interface{}) *Envelope {
	e := base(true)
	e.Data = data
	e.Message = message
	e.Metadata = metadata
	return e
}

// Error builds an error envelope with a non-empty errors list.
func Error(errs []string, message string) *Envelope {
	e := base(false)
	if len(errs) == 0 {
		errs = []string{message}
	}
	e.Errors = errs
	e.Message = message
	return e
}

// Info builds an informational envelope.
func Info(data interface{}, message string) *Envelope {
	e := base(true)
	if message == "" {
		message = "Request processed"
	}
	e.Data = data
	e.Message = message
	return e
}
