// Package web provides shared HTTP helpers: the response envelope,
// router middleware and request parsing utilities.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope keys shared by every endpoint.
const (
	KeySuccess = "success"
	KeyMessage = "message"
	KeyCode    = "code"
	KeyError   = "error"
	KeyResult  = "result"

	SuccessTrue  = 1
	SuccessFalse = 0
)

// InternalServerErrorMessage is returned instead of the real error text
// outside of dev mode.
const InternalServerErrorMessage = "Something went wrong."

// Responder shapes every API response into the uniform
// {success: 0|1, ...} envelope. When dev is true, exception envelopes carry
// the real error message; otherwise a generic one.
type Responder struct {
	logger *slog.Logger
	dev    bool
}

// NewResponder creates a Responder. dev controls whether exception messages
// are shown verbatim.
func NewResponder(logger *slog.Logger, dev bool) *Responder {
	return &Responder{
		logger: logger.With("component", "responder"),
		dev:    dev,
	}
}

// Respond writes data wrapped in a success envelope with the given status code.
// A status code outside the standard set is downgraded to a plain 500 envelope.
func (rp *Responder) Respond(w http.ResponseWriter, status int, success int, data map[string]any) {
	if !isValidHTTPStatusCode(status) {
		rp.logger.Error("Invalid HTTP status code passed to responder", "status", status)
		payload := map[string]any{
			KeySuccess: SuccessFalse,
			KeyCode:    http.StatusInternalServerError,
			KeyError:   InternalServerErrorMessage,
		}
		writeJSON(w, rp.logger, http.StatusInternalServerError, payload)
		return
	}

	payload := make(map[string]any, len(data)+1)
	payload[KeySuccess] = success
	for k, v := range data {
		payload[k] = v
	}
	writeJSON(w, rp.logger, status, payload)
}

// RespondError writes a success=0 envelope carrying only a message.
func (rp *Responder) RespondError(w http.ResponseWriter, status int, message string) {
	rp.Respond(w, status, SuccessFalse, map[string]any{KeyMessage: message})
}

// ExceptionError writes the {success:0, code, error, result} envelope for a
// caught exception. The error text is err.Error() in dev mode and a generic
// message otherwise. result carries whatever partial data the caller wants to
// surface (e.g. a partial-success warning).
func (rp *Responder) ExceptionError(w http.ResponseWriter, err error, result map[string]any, status int) {
	code := status
	if !isValidHTTPStatusCode(code) {
		code = http.StatusInternalServerError
	}
	payload := map[string]any{
		KeySuccess: SuccessFalse,
		KeyCode:    code,
		KeyError:   rp.exceptionMessage(err),
		KeyResult:  result,
	}
	writeJSON(w, rp.logger, code, payload)
}

func (rp *Responder) exceptionMessage(err error) string {
	if rp.dev {
		return err.Error()
	}
	return InternalServerErrorMessage
}

// isValidHTTPStatusCode reports whether the code is a standard HTTP status.
func isValidHTTPStatusCode(status int) bool {
	return http.StatusText(status) != ""
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}
