package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// WriteResponse writes resp to w. A zero status code is written as 200.
func WriteResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if _, err := io.WriteString(w, resp.Body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// WriteJSON writes data as a JSON response outside the adapter path,
// carrying the same headers the adapter attaches.
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	WriteResponse(w, Response{
		StatusCode: code,
		Body:       string(body),
		Headers:    responseHeaders(),
	})
	return nil
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst
// at its zero value.
func decodeBody(body []byte, dst any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return err
	}
	return nil
}
