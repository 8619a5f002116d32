package service

import (
	"context"
	"encoding/base64"

	"enroll/internal/audit"
	"enroll/internal/registration/backend"
	"enroll/internal/registration/models"
	dErrors "enroll/pkg/domain-errors"
)

// Fixed file metadata the backend expects for each side.
const (
	frontFileName = "document_front.jpg"
	backFileName  = "document_back.jpg"
	documentType  = "image/jpeg"
)

// AttachDocument validates and stores one side of the identity document.
func (o *Orchestrator) AttachDocument(ctx context.Context, s *models.Session, side models.Side, mimeType string, size int64, data []byte) (*models.Image, error) {
	img, err := s.Documents.Attach(side, mimeType, size, data)
	if err != nil {
		reason := "invalid"
		switch {
		case dErrors.HasCode(err, dErrors.CodeUnsupportedMediaType):
			reason = "unsupported_type"
		case dErrors.HasCode(err, dErrors.CodePayloadTooLarge):
			reason = "too_large"
		}
		o.metrics.IncrementDocumentRejected(reason)
		o.notify(s, models.NoticeError, dErrors.MessageOf(err))
		return nil, err
	}
	s.Touch(o.now())
	o.logger.DebugContext(ctx, "document attached", "session_id", s.ID.String(), "side", string(side), "bytes", size)
	return img, nil
}

// SaveDocuments uploads both sides for the validated user. It does not change
// the session on any outcome.
func (o *Orchestrator) SaveDocuments(ctx context.Context, s *models.Session, front, back *models.Image) error {
	if !s.HasUser() {
		o.notify(s, models.NoticeError, msgUserIDMissing)
		return dErrors.New(dErrors.CodePreconditionFailed, "user id is not set")
	}
	if front == nil || back == nil {
		o.notify(s, models.NoticeError, msgImagesIncomplete)
		return dErrors.New(dErrors.CodePreconditionFailed, "both document images are required")
	}

	req := backend.SaveIdentityDocumentRequest{
		UserID: s.UserID,
		Files: []backend.File{
			o.documentFile(frontFileName, front),
			o.documentFile(backFileName, back),
		},
	}
	env, err := o.backend.SaveIdentityDocument(ctx, req)
	if err != nil {
		o.notify(s, models.NoticeError, msgSaveTransport)
		return dErrors.Wrap(err, dErrors.CodeTransportFailure, msgSaveTransport)
	}
	if !env.Success {
		msg := serverMessage(env, msgSaveFailed)
		o.notify(s, models.NoticeError, msg)
		return dErrors.New(dErrors.CodeRemoteRejected, msg)
	}
	o.logAudit(ctx, s, audit.EventDocumentsSaved, "")
	return nil
}

func (o *Orchestrator) documentFile(name string, img *models.Image) backend.File {
	return backend.File{
		FileID:     o.newFileID().String(),
		FileName:   name,
		FileType:   documentType,
		FileStream: base64.StdEncoding.EncodeToString(img.Data),
	}
}
