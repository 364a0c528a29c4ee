package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/cms"
	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/middleware"
	"github.com/sjlee-dev/vidbrief/models"
	"github.com/sjlee-dev/vidbrief/services/auth"
	"github.com/sjlee-dev/vidbrief/validation"
)

const maxImageBody = 8 << 20 // 8MB

// ImageStore is the upload slice of the CMS client.
type ImageStore interface {
	UploadFile(ctx context.Context, authToken, filename string, contents io.Reader, ref *cms.UploadRef) ([]models.Image, error)
	DeleteFile(ctx context.Context, authToken string, fileID int) error
}

type ProfileHandler struct {
	service   auth.Service
	uploads   ImageStore
	validator *validation.Validator
}

func NewProfileHandler(service auth.Service, uploads ImageStore, validator *validation.Validator) *ProfileHandler {
	return &ProfileHandler{
		service:   service,
		uploads:   uploads,
		validator: validator,
	}
}

type profileUpdateRequest struct {
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
	Bio       string `json:"bio" validate:"max=2048"`
}

// HandleGetProfile returns the session user already resolved by the auth
// middleware. No second CMS round trip.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, middleware.GetUser(r.Context()))
}

func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	const op = "ProfileHandler.HandleUpdateProfile"

	var req profileUpdateRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(),
		middleware.GetToken(r.Context()), middleware.GetUser(r.Context()),
		models.ProfileUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
		})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, updated)
}

// HandleUploadImage accepts a multipart "files" part and attaches it to the
// caller's profile image field.
func (h *ProfileHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	const op = "ProfileHandler.HandleUploadImage"

	user := middleware.GetUser(r.Context())
	if user == nil {
		respondError(w, r, errors.Unauthorized(op, nil, "로그인이 필요합니다."))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBody)
	if err := r.ParseMultipartForm(maxImageBody); err != nil {
		respondError(w, r, errors.InvalidInput(op, err, "Invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("files")
	if err != nil {
		respondError(w, r, errors.InvalidInput(op, err, "Missing file field 'files'"))
		return
	}
	defer file.Close()

	images, err := h.uploads.UploadFile(r.Context(),
		middleware.GetToken(r.Context()), header.Filename, file,
		&cms.UploadRef{
			Ref:   "plugin::users-permissions.user",
			RefID: strconv.Itoa(user.ID),
			Field: "image",
		})
	if err != nil {
		respondError(w, r, err)
		return
	}

	// The field holds a single image; drop the file it replaced.
	if user.Image != nil && user.Image.ID != 0 {
		if err := h.uploads.DeleteFile(r.Context(), middleware.GetToken(r.Context()), user.Image.ID); err != nil {
			logrus.WithError(err).WithField("file_id", user.Image.ID).
				Warn("Failed to remove replaced profile image")
		}
	}

	respondJSON(w, r, http.StatusCreated, images)
}
