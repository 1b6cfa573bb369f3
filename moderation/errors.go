package moderation

import (
	"fmt"
)

// ServiceError is returned by a Client when the moderation service could not
// be reached or returned an unusable response.
type ServiceError struct {
	StatusCode int
	Err        error
}

func NewServiceError(statusCode int, err error) *ServiceError {
	return &ServiceError{StatusCode: statusCode, Err: err}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("moderation service error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("moderation service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned when a backend is constructed without a
// setting it cannot work without.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid moderation configuration: %s %s", e.Setting, e.Reason)
}

// ImageNotFoundError is returned when an image reference cannot be read.
type ImageNotFoundError struct {
	Image string
	Err   error
}

func (e *ImageNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image not found: %s: %v", e.Image, e.Err)
	}
	return fmt.Sprintf("image not found: %s", e.Image)
}

func (e *ImageNotFoundError) Unwrap() error {
	return e.Err
}
