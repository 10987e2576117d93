package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, message string, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, http.StatusOK, body)
}

func confirmed(w http.ResponseWriter, message string, c models.Confirmation) {
	ok(w, message, envelope{
		"confirmation":    c,
		"transactionHash": c.HandleID,
		"blockNumber":     c.Position,
	})
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch common.KindOf(err) {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindAuthRejected:
		return http.StatusUnauthorized
	case common.KindConfirmationTimeout, common.KindLedgerUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status := statusOf(err)
	body := envelope{"success": false, "kind": common.KindOf(err)}

	var e *common.Error
	if errors.As(err, &e) {
		body["message"] = e.Message
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		if e.Err != nil {
			body["error"] = e.Err.Error()
		}
	} else {
		body["message"] = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", "path", r.URL.Path, "kind", common.KindOf(err), "error", err)
	}
	writeJSON(w, status, body)
}

// decodeFields reads a JSON object body. Numbers are kept as json.Number so
// that large ids survive.
func decodeFields(w http.ResponseWriter, r *http.Request) (payload.Fields, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var f payload.Fields
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return payload.Fields{}, nil
		}
		return nil, common.Validation(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if f == nil {
		f = payload.Fields{}
	}
	return f, nil
}
