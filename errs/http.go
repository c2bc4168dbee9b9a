package errs

import (
	"encoding/json"
	"net/http"

	"wtfSocial/logger"
)

var log = logger.New()

// Lookup of application error codes to HTTP status codes.
var codes = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EFORBIDDEN:    http.StatusForbidden,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EINTERNAL:     http.StatusInternalServerError,
}

// errorResponse is the json body returned for any failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ReturnError writes an error to the response as json. Internal errors get
// logged and the client only ever sees a generic message for them.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&errorResponse{Error: message, Code: code})
}

// LogError logs an error together with the request method and path.
func LogError(r *http.Request, err error) {
	log.Error("http", r.Method+" "+r.URL.Path, err)
}
