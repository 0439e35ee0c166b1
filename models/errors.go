package models

import "fmt"

// ValidationError reports missing or contradictory request input. Always
// client-caused.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigError reports a required credential or environment value that is
// absent. Always server-caused.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// NotFoundError reports an upstream that explicitly said "no such resource",
// either an empty result set or an HTTP 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// UpstreamError reports any other non-success response or network failure
// from a third-party API. Message carries the upstream's own error text when
// one was available.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s request failed", e.Service)
}
