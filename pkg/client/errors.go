package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ServerError is returned when the service answers with an error.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// IsBadRequest reports whether err is a ServerError for rejected input.
func IsBadRequest(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.StatusCode == http.StatusBadRequest
}
