package rest

import (
	"encoding/json"
	"net/http"

	"github.com/cryptogopniks/GopStake/common/errors"
	"github.com/cryptogopniks/GopStake/staking/api"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// BadRequest wraps an error into a bad request response.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// NotFound wraps an error into a not found response.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// fromBackend maps backend errors onto response statuses.
func fromBackend(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, api.ErrCollectionIsNotFound), errors.Is(err, api.ErrParameterIsNotFound),
		errors.Is(err, api.ErrNotInitialized):
		return NotFound(err)
	default:
		// Every other staking error rejects the request itself.
		if module, _ := errors.Code(err); module == api.ModuleName {
			return BadRequest(err)
		}
		return err
	}
}

// HandlerFunc is like http.HandlerFunc, but returns an error.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc converts a HandlerFunc to a http.HandlerFunc, responding
// with the status of a returned httpError or with an internal server error.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		if he, ok := err.(*httpError); ok {
			http.Error(w, he.cause.Error(), he.status)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// JSONContentType is the content type of every response.
const JSONContentType = "application/json; charset=utf-8"

// WriteJSON responds with an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}
