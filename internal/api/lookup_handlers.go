package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
)

type barcodeRequest struct {
	Barcode string `json:"barcode"`
	Token   string `json:"token"`
}

type titleRequest struct {
	Query string `json:"query"`
	Token string `json:"token"`
}

type releaseRequest struct {
	Token   string `json:"token"`
	Barcode string `json:"barcode"`
}

func (s *Server) token(requested string) string {
	if t := strings.TrimSpace(requested); t != "" {
		return t
	}
	return s.defaultToken
}

func (s *Server) handleSearchBarcode(w http.ResponseWriter, r *http.Request) {
	var req barcodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	barcode := strings.TrimSpace(req.Barcode)
	token := s.token(req.Token)
	if barcode == "" || token == "" {
		s.writeError(w, http.StatusBadRequest, "Barcode and token required")
		return
	}

	rec, err := s.lookup.Barcode(r.Context(), barcode, token)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSearchTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	query := strings.TrimSpace(req.Query)
	token := s.token(req.Token)
	if query == "" || token == "" {
		s.writeError(w, http.StatusBadRequest, "Query and token required")
		return
	}

	candidates, err := s.lookup.Title(r.Context(), query, token)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleGetRelease(w http.ResponseWriter, r *http.Request) {
	releaseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || releaseID <= 0 {
		s.writeError(w, http.StatusBadRequest, "Invalid release id")
		return
	}

	var req releaseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token := s.token(req.Token)
	if token == "" {
		s.writeError(w, http.StatusBadRequest, "Token required")
		return
	}

	rec, err := s.lookup.Release(r.Context(), releaseID, strings.TrimSpace(req.Barcode), token)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lookup.ErrNoResults):
		s.writeError(w, http.StatusNotFound, "No results found")
	case errors.Is(err, lookup.ErrFetchFailed):
		s.writeError(w, http.StatusInternalServerError, "Could not fetch release details")
	default:
		s.logger.Error("Lookup failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Lookup failed")
	}
}
