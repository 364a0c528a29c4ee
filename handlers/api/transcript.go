package api

import (
	"net/http"

	"github.com/sjlee-dev/vidbrief/transcript"
	"github.com/sjlee-dev/vidbrief/validation"
)

const maxJSONBody = 1 << 20 // 1MB

type TranscriptHandler struct {
	service   transcript.Service
	validator *validation.Validator
}

func NewTranscriptHandler(service transcript.Service, validator *validation.Validator) *TranscriptHandler {
	return &TranscriptHandler{
		service:   service,
		validator: validator,
	}
}

type transcriptRequest struct {
	VideoID string `json:"videoId" validate:"required"`
}

// HandleFetchTranscript resolves the transcript bundle for one video.
// Accepts a bare 11-character ID or any recognized YouTube URL form.
func (h *TranscriptHandler) HandleFetchTranscript(w http.ResponseWriter, r *http.Request) {
	const op = "TranscriptHandler.HandleFetchTranscript"

	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxJSONBody,
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req transcriptRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	data, err := h.service.Fetch(r.Context(), req.VideoID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, data)
}
