package checkapp

import (
	"encoding/json"
	"net/http"
)

// Info represents information about the service.
type Info struct {
	Status     string `json:"status,omitempty"`
	Build      string `json:"build,omitempty"`
	Host       string `json:"host,omitempty"`
	GOMAXPROCS int    `json:"GOMAXPROCS,omitempty"`
}

// Encode implements the web.Encoder interface.
func (app Info) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// Readiness lists the state of every dependency the service needs.
type Readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Encode implements the web.Encoder interface.
func (app Readiness) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (app Readiness) HTTPStatus() int {
	if app.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
