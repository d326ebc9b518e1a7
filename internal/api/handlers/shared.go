// Package handlers contains the HTTP layer adapters: request parsing,
// validation dispatch, and response shaping. Business logic lives in the
// service and advisor packages.
package handlers

import (
	"encoding/json"
	"net/http"
)

// parseJSON decodes a request body into the given request type.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}
