package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"enroll/internal/registration/models"
	dErrors "enroll/pkg/domain-errors"
)

// maxUploadBody bounds a document request. Base64 inflates payloads by a
// third, so a data URI for the largest accepted image still fits.
const maxUploadBody = models.MaxImageBytes*4/3 + 64<<10

const maxJSONBody = 64 << 10

// SubmitDataRequest carries the host form and the user's confirmation of it.
type SubmitDataRequest struct {
	User      *models.UserData `json:"user"`
	Confirmed bool             `json:"confirmed"`
}

type ConfirmCodesRequest struct {
	EmailCode string `json:"email_code"`
	PhoneCode string `json:"phone_code"`
}

// AttachDocumentRequest is the JSON form of a document upload.
type AttachDocumentRequest struct {
	DataURI string `json:"data_uri"`
}

type upload struct {
	MimeType string
	Size     int64
	Data     []byte
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// readUpload accepts a multipart "file" part or a JSON data URI.
func readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(r)
	}

	var req AttachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, bodyError(err)
	}
	return parseDataURI(req.DataURI)
}

func readMultipart(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, bodyError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "multipart field \"file\" is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, models.MaxImageBytes+1))
	if err != nil {
		return nil, bodyError(err)
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &upload{MimeType: mimeType, Size: header.Size, Data: data}, nil
}

// parseDataURI decodes "data:<mime>;base64,<payload>".
func parseDataURI(uri string) (*upload, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "data_uri must start with data:")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "data_uri has no payload")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "data_uri must be base64 encoded")
	}
	data, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, bytes.NewBufferString(payload)))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "data_uri payload is not valid base64")
	}
	return &upload{MimeType: mimeType, Size: int64(len(data)), Data: data}, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dErrors.Wrap(err, dErrors.CodePayloadTooLarge, "document upload is too large")
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid document upload")
}
