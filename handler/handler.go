package handler

import (
	"encoding/json"
	"net/http"
	"rovify-backend/response"
	"strconv"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return response.InvalidBody()
	}
	return nil
}

// queryInt parses an integer query parameter, falling back to def when absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
