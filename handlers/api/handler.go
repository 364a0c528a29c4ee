package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/middleware"
	"github.com/sjlee-dev/vidbrief/models"
)

// Response is the uniform envelope every endpoint emits, success or not.
type Response struct {
	Success bool             `json:"success"`
	Data    interface{}      `json:"data,omitempty"`
	Error   *models.APIError `json:"error,omitempty"`
	Meta    *models.Meta     `json:"meta,omitempty"`
	Status  int              `json:"status"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	respondEnvelope(w, r, Response{
		Success: code >= 200 && code < 300,
		Data:    payload,
		Status:  code,
	})
}

func respondList(w http.ResponseWriter, r *http.Request, payload interface{}, pagination *models.Pagination) {
	resp := Response{
		Success: true,
		Data:    payload,
		Status:  http.StatusOK,
	}
	if pagination != nil {
		resp.Meta = &models.Meta{Pagination: pagination}
	}
	respondEnvelope(w, r, resp)
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Internal("respondError", err, "Internal server error")
	}

	logrus.WithFields(logrus.Fields{
		"error":      err,
		"status":     appErr.Code,
		"request_id": middleware.GetRequestID(r.Context()),
		"path":       r.URL.Path,
		"method":     r.Method,
	}).Error("Request error")

	respondEnvelope(w, r, Response{
		Success: false,
		Error: &models.APIError{
			Status:  appErr.Code,
			Name:    appErr.Name,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Status: appErr.Code,
	})
}

func respondEnvelope(w http.ResponseWriter, r *http.Request, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

func readJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidInput("readJSON", err, "Invalid JSON format")
	}
	return nil
}
