package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	vcerrors "github.com/bjtill/Vinyl-Record-Collection-Database/internal/errors"
)

const maxBodyBytes = 32 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// messageBody acknowledges a mutation.
type messageBody struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorBody{Error: message})
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// requiredOrder lists mandatory record fields in the order they are reported.
var requiredOrder = []string{"artist", "album_title"}

// validationMessage renders the first failing field as "<field> is required".
func validationMessage(verr *vcerrors.ValidationError) string {
	for _, name := range requiredOrder {
		if problem, ok := verr.Fields[name]; ok {
			return name + " " + problem
		}
	}
	if msg := verr.FirstField(); msg != "" {
		return msg
	}
	return verr.Message
}
