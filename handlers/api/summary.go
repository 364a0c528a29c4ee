package api

import (
	"net/http"
	"strconv"

	"github.com/sjlee-dev/vidbrief/middleware"
	"github.com/sjlee-dev/vidbrief/models"
	"github.com/sjlee-dev/vidbrief/services/auth"
	"github.com/sjlee-dev/vidbrief/services/summary"
	"github.com/sjlee-dev/vidbrief/summarizer"
	"github.com/sjlee-dev/vidbrief/validation"
)

type SummaryHandler struct {
	service   summary.Service
	generator summarizer.Service
	auth      auth.Service
	validator *validation.Validator
}

func NewSummaryHandler(
	service summary.Service,
	generator summarizer.Service,
	authSvc auth.Service,
	validator *validation.Validator,
) *SummaryHandler {
	return &SummaryHandler{
		service:   service,
		generator: generator,
		auth:      authSvc,
		validator: validator,
	}
}

type generateRequest struct {
	VideoID string `json:"videoId" validate:"required"`
}

type summarizeRequest struct {
	FullTranscript string `json:"fullTranscript" validate:"required"`
}

type createSummaryRequest struct {
	VideoID string `json:"videoId" validate:"required"`
	Title   string `json:"title"`
	Content string `json:"content" validate:"required"`
}

type updateSummaryRequest struct {
	Title   string `json:"title" validate:"required,max=256"`
	Content string `json:"content" validate:"required"`
}

// HandleGenerate runs the full transcript -> summary -> save pipeline.
func (h *SummaryHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "SummaryHandler.HandleGenerate"

	var req generateRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := h.service.Generate(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()), req.VideoID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, saved)
}

// HandleSummarizeText summarizes caller-supplied transcript text without
// persisting anything. Credit-gated but never charged.
func (h *SummaryHandler) HandleSummarizeText(w http.ResponseWriter, r *http.Request) {
	const op = "SummaryHandler.HandleSummarizeText"

	var req summarizeRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.auth.RequireCredits(middleware.GetUser(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}

	content, err := h.generator.Summarize(r.Context(), req.FullTranscript, "")
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, content)
}

func (h *SummaryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "SummaryHandler.HandleCreate"

	var req createSummaryRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := h.service.Create(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()),
		models.SummaryDraft{
			VideoID: req.VideoID,
			Title:   req.Title,
			Content: req.Content,
		})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, saved)
}

func (h *SummaryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	records, pagination, err := h.service.List(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()), page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondList(w, r, records, pagination)
}

func (h *SummaryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()),
		r.PathValue("documentId"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, record)
}

func (h *SummaryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "SummaryHandler.HandleUpdate"

	var req updateSummaryRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()),
		r.PathValue("documentId"),
		models.SummaryUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, updated)
}

func (h *SummaryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()),
		r.PathValue("documentId"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, true)
}
