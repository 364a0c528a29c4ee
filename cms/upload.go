package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/httpclient"
	"github.com/sjlee-dev/vidbrief/models"
)

// UploadRef attaches an uploaded file to a field on an existing record.
type UploadRef struct {
	Ref   string // e.g. "plugin::users-permissions.user"
	RefID string
	Field string
}

// UploadFile sends one file to the CMS media library. Multipart bodies do
// not fit the JSON client wrapper, so this call is made directly.
func (c *Client) UploadFile(ctx context.Context, authToken, filename string, contents io.Reader, ref *UploadRef) ([]models.Image, error) {
	const op = "cms.UploadFile"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build upload request")
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, errors.Internal(op, err, "Failed to read upload contents")
	}

	if ref != nil {
		_ = writer.WriteField("ref", ref.Ref)
		_ = writer.WriteField("refId", ref.RefID)
		_ = writer.WriteField("field", ref.Field)
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Internal(op, err, "Failed to build upload request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/upload", ""), &body)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(op, err)
		}
		return nil, errors.Network(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var remote struct {
			Error *models.APIError `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&remote) == nil && remote.Error != nil {
			return nil, errors.RemoteService(op, resp.StatusCode, remote.Error.Name, remote.Error.Message)
		}
		return nil, errors.RemoteService(op, resp.StatusCode, "", resp.Status)
	}

	var files []models.Image
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode upload response")
	}
	return files, nil
}

// DeleteFile removes a previously uploaded file from the media library.
func (c *Client) DeleteFile(ctx context.Context, authToken string, fileID int) error {
	const op = "cms.DeleteFile"

	if authToken == "" {
		return errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/upload/files/"+strconv.Itoa(fileID), "")
	result := c.http.Delete(ctx, target, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return result.AppError(op)
	}
	return nil
}
