package api

import (
	"encoding/json"
	"net/http"

	"shared-clipboard/internal/store"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// submitResponse acknowledges a stored entry.
type submitResponse struct {
	Success   bool   `json:"success"`
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

func newSubmitResponse(e store.Entry) submitResponse {
	return submitResponse{
		Success:   true,
		ID:        e.ID,
		Text:      e.Text,
		CreatedAt: store.FormatTime(e.CreatedAt),
	}
}

// writeJSON encodes v before touching the response so that an encoding
// failure can still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any, encode func(any) ([]byte, error)) error {
	body, err := encode(v)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return nil
}

// writeError renders err without leaking its internal detail.
func writeError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if encErr := writeJSON(w, status, errorResponse{Success: false, Error: appErr.Message}, json.Marshal); encErr != nil {
		http.Error(w, ErrInternal.Message, http.StatusInternalServerError)
	}
}
