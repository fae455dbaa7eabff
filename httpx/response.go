// Package httpx writes the JSON envelopes shared by every API handler:
// {success:true, message?, data} on success and
// {success:false, message, code, errors?} on failure.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/diewo77/go-backoffice/i18n"
	"github.com/diewo77/go-backoffice/internal/apperr"
)

// SuccessResponse is the envelope of every successful call.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope of every failed call.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// JSON writes payload with status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"encode error","code":"internal_error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// OK writes a success envelope. messageCode is translated when not empty.
func OK(w http.ResponseWriter, r *http.Request, status int, messageCode string, data any) {
	resp := SuccessResponse{Success: true, Data: data}
	if messageCode != "" {
		resp.Message = i18n.T(i18n.LangFrom(r.Context()), messageCode)
	}
	JSON(w, status, resp)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the failure envelope for err. Foreign errors become a generic
// 500; their text never reaches the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	lang := i18n.LangFrom(r.Context())
	var fields map[string][]string
	if len(e.Fields) > 0 {
		fields = make(map[string][]string, len(e.Fields))
		for f, codes := range e.Fields {
			for _, c := range codes {
				fields[f] = append(fields[f], i18n.T(lang, c))
			}
		}
	}
	JSON(w, StatusFor(e.Kind), ErrorResponse{
		Success: false,
		Message: i18n.T(lang, e.Code),
		Code:    e.Code,
		Errors:  fields,
	})
}
