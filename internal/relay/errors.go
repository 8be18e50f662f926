package relay

import (
	"fmt"
	"net/http"
)

// Kind classifies relay failures. Each kind maps to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindUpstream
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_error"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code reported to the caller.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified relay failure. UpstreamStatus and UpstreamBody are
// set only when the upstream reply is passed back to the caller.
type Error struct {
	Kind           Kind
	Message        string
	UpstreamStatus int
	UpstreamBody   string
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Response renders the JSON body sent to the caller.
func (e *Error) Response() ErrorResponse {
	resp := ErrorResponse{Error: e.Message}
	if e.UpstreamStatus != 0 {
		status := e.UpstreamStatus
		body := e.UpstreamBody
		resp.Status = &status
		resp.Body = &body
	}
	return resp
}

const (
	msgMissingInput    = "Missing gt or playlist"
	msgNotConfigured   = "Relay not configured (GRUNT_URL/GRUNT_SHARED_SECRET)"
	msgUpstream        = "Grunt upstream error"
	msgInvalidJSON     = "Invalid JSON from Grunt"
	msgGamertagUnknown = "Gamertag not found"
	msgInternal        = "Relay exception"
)
