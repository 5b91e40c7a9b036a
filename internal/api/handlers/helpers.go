package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/metrics"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Request bodies larger than this are rejected.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go ones.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().
			Err(err).
			Str("req_id", obs.RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeJSON reads exactly one JSON object into dst and validates it.
// On failure the 400 response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body: "+err.Error())
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

// validationMessage renders the first failed rule as "field: reason".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := jsonPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "gt", "gte", "min", "max", "lt", "lte":
		return fmt.Sprintf("%s: must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, fe.Param())
	case "unique":
		return field + ": must not contain duplicates"
	case "datetime":
		return fmt.Sprintf("%s: must be a date formatted as %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}

// jsonPath drops the Go type and embedded struct names from a validator
// namespace: "TabuRequest.StopSource.stops[0].latitude" -> "stops[0].latitude".
func jsonPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && p[0] >= 'A' && p[0] <= 'Z' {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

// writeServiceError maps an error from the service or adapter layer onto a
// status code. Only unexpected errors are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "some orders were not found")
	case errors.Is(err, errStorageUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().
			Err(err).
			Str("req_id", obs.RequestID(r.Context())).
			Str("op", op).
			Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// observeRun records optimizer metrics for one run.
func observeRun(algorithm string, start time.Time, improvement float64, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		outcome = "invalid"
	default:
		outcome = "error"
	}

	metrics.OptimizerRuns.WithLabelValues(algorithm, outcome).Inc()
	if err != nil {
		return
	}
	metrics.OptimizerDuration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
	metrics.OptimizerImprovement.WithLabelValues(algorithm).Observe(improvement)
}

// round2 rounds to two decimals for presentation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
