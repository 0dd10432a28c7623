package response

import (
	"encoding/json"
	"net/http"
)

type SuccessResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	StatusCode int         `json:"-"`
}

func (r SuccessResponse) Send(w http.ResponseWriter) {
	r.Success = true
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}

func OK(w http.ResponseWriter, data interface{}) {
	SuccessResponse{Data: data, StatusCode: http.StatusOK}.Send(w)
}

func Created(w http.ResponseWriter, data interface{}, message string) {
	SuccessResponse{Data: data, Message: message, StatusCode: http.StatusCreated}.Send(w)
}
