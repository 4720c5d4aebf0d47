package meta

import "fmt"

// Error codes Meta uses for a consumed authorization code.
const (
	codeInvalidParam    = 100
	subcodeCodeConsumed = 36009
)

// GraphError is the structured error shape the Graph API returns in
// non-success responses:
//
//	{"error": {"message": ..., "type": ..., "code": 100, "error_subcode": 36009}}
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`

	// HTTPStatus of the response the error was parsed from.
	HTTPStatus int `json:"-"`
}

type graphErrorEnvelope struct {
	Error *GraphError `json:"error"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api error (http %d, code %d, subcode %d): %s",
		e.HTTPStatus, e.Code, e.Subcode, e.Message)
}

// CodeAlreadyUsed reports whether the error means the one-time
// authorization code was already exchanged.
func (e *GraphError) CodeAlreadyUsed() bool {
	return e.Code == codeInvalidParam && e.Subcode == subcodeCodeConsumed
}
