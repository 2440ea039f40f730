package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// internalErrorMessage is the stable client-facing text for 500 responses.
// Details go in debug_info, never in the error field.
const internalErrorMessage = "An internal server error occurred"

type errorResponse struct {
	Error string     `json:"error"`
	Debug *errorDebug `json:"debug_info,omitempty"`
}

type errorDebug struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeInternalError(w http.ResponseWriter, errorType string, err error) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: internalErrorMessage,
		Debug: &errorDebug{
			ErrorType:    errorType,
			ErrorMessage: err.Error(),
		},
	})
}
