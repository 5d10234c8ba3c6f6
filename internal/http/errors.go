package http

import (
	"log"
	"net/http"
)

// The API reports exactly three error kinds. The numeric code and reason
// strings are part of the wire contract.
type errKind int

const (
	kindNotFound errKind = 1
	kindInvalid  errKind = 2
	kindInternal errKind = 3
)

func (k errKind) reason() string {
	switch k {
	case kindNotFound:
		return "ERR_NOT_FOUND"
	case kindInvalid:
		return "ERR_INVALID_REQUEST"
	default:
		return "ERR_INTERNAL_SERVER_ERROR"
	}
}

func (k errKind) status() int {
	switch k {
	case kindNotFound:
		return http.StatusNotFound
	case kindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, kind errKind, message string) {
	writeErrorStatus(w, kind.status(), kind, message)
}

// writeErrorStatus exists for the one divergence from kind.status():
// missing or unverifiable tokens answer 401 instead of 400.
func writeErrorStatus(w http.ResponseWriter, status int, kind errKind, message string) {
	if kind == kindInternal {
		log.Printf("internal server error: %s", message)
	}
	writeJSON(w, status, errorResponse{
		Code:    int(kind),
		Reason:  kind.reason(),
		Message: message,
	})
}

func writeInternal(w http.ResponseWriter, err error) {
	writeError(w, kindInternal, err.Error())
}
