package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/erraggy/oaspipe/internal/issues"
	"github.com/erraggy/oaspipe/logging"
	"github.com/erraggy/oaspipe/oaserrors"
)

// fail answers a request that could not be served.
func (rt *Router) fail(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	var invalid *oaserrors.InvalidRequestError
	var contract *oaserrors.ContractError
	switch {
	case errors.As(err, &invalid):
		if rt.opts.errorMode == ErrorModePermissive {
			log.Info("invalid request", "kind", string(invalid.Kind), "status", invalid.Status, "error", err)
			writePlain(w, invalid)
			return
		}
		log.Debug("invalid request", "kind", string(invalid.Kind), "status", invalid.Status, "error", err)
	case errors.As(err, &contract):
		log.Error("response contract violation", "kind", string(contract.Kind), "status", contract.Status, "error", err)
	default:
		log.Error("request failed", "error", err)
	}
	rt.opts.errorHandler(w, r, err)
}

// DefaultErrorHandler answers invalid requests with their status and a JSON
// description of the problem; 406 responses carry no body. Every other
// error becomes a bare 500 so that handler bugs do not leak detail.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var invalid *oaserrors.InvalidRequestError
	if !errors.As(err, &invalid) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if invalid.Status == http.StatusNotAcceptable {
		w.WriteHeader(invalid.Status)
		return
	}
	writeInvalidRequest(w, invalid)
}

// writeInvalidRequest writes a detailed invalid request response.
// Note: Encoding errors are intentionally not returned since the response headers
// and status have already been written.
func writeInvalidRequest(w http.ResponseWriter, err *oaserrors.InvalidRequestError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	details := make([]map[string]string, 0)
	var incompatible *oaserrors.IncompatibleValueError
	if errors.As(err.Cause, &incompatible) {
		for _, issue := range incompatible.Issues {
			details = append(details, map[string]string{
				"path":    issuePath(err.Parameter, issue),
				"message": issue.Message,
			})
		}
	} else if err.Parameter != "" || err.Cause != nil {
		detail := map[string]string{"path": err.Parameter}
		if err.Cause != nil {
			detail["message"] = err.Cause.Error()
		}
		details = append(details, detail)
	}

	response := map[string]any{
		"error":  string(err.Kind),
		"errors": details,
	}
	if err.Parameter != "" {
		response["parameter"] = err.Parameter
	}
	_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // Cannot recover after headers written
}

// issuePath locates an issue in the request. Parameter issues are already
// rooted at the parameter name by the wrapping schema.
func issuePath(parameter string, issue issues.Issue) string {
	path := issue.InstancePath
	if path == "" {
		path = "/"
	}
	if parameter != "" && issue.Field() != parameter {
		return parameter + path
	}
	return path
}

// writePlain answers an invalid request with its status and message.
func writePlain(w http.ResponseWriter, err *oaserrors.InvalidRequestError) {
	if err.Status == http.StatusNotAcceptable {
		w.WriteHeader(err.Status)
		return
	}
	http.Error(w, err.Error(), err.Status)
}
