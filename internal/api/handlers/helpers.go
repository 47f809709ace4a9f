package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/platform/obs"
	"eco-route-service/internal/ports"
	"eco-route-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeFailure maps err to a status code and a {error, kind} body so callers
// can tell failure kinds apart. Unclassified errors are logged and hidden.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrUnknownPreset),
		errors.Is(err, ports.ErrReportNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, services.ErrNoResult),
		errors.Is(err, services.ErrStaleResult):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusUnprocessableEntity
	case domain.KindAlreadySubmitting, domain.KindInvariantViolation:
		status = http.StatusConflict
	case domain.KindNetwork, domain.KindSchemaViolation:
		status = http.StatusBadGateway
	default:
		log.Printf("req_id=%s request failed: method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
		writeError(w, r, status, "internal server error")
		return
	}

	writeJSON(w, r, status, dto.KindError{Error: err.Error(), Kind: string(kind)})
}

// decodeJSON reads exactly one JSON object into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
