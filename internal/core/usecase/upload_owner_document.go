package usecase

import (
	"context"
	"fmt"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"

	"github.com/google/uuid"
)

// UploadOwnerDocumentUseCase - ручная повторная загрузка документа уже опубликованного собственника.
type UploadOwnerDocumentUseCase struct {
	owners   port.OwnerRepositoryPort
	uploads  port.UploadServicePort
	maxBytes int64
}

func NewUploadOwnerDocumentUseCase(owners port.OwnerRepositoryPort, uploads port.UploadServicePort, maxBytes int64) *UploadOwnerDocumentUseCase {
	return &UploadOwnerDocumentUseCase{
		owners:   owners,
		uploads:  uploads,
		maxBytes: maxBytes,
	}
}

func (uc *UploadOwnerDocumentUseCase) Execute(ctx context.Context, propertyID, ownerID uuid.UUID, docType domain.DocumentType, file domain.PendingFile) (domain.StoredFile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "UploadOwnerDocument",
		"property_id":   propertyID.String(),
		"owner_id":      ownerID.String(),
		"document_type": string(docType),
		"size":          len(file.Content),
	})

	if len(file.Content) == 0 {
		return domain.StoredFile{}, domain.ErrEmptyFile
	}
	if uc.maxBytes > 0 && int64(len(file.Content)) > uc.maxBytes {
		return domain.StoredFile{}, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrFileTooLarge, len(file.Content), uc.maxBytes)
	}

	ownerType, err := uc.owners.FindOwnerType(ctx, propertyID, ownerID)
	if err != nil {
		ucLogger.Warn("Owner lookup failed", port.Fields{"error": err.Error()})
		return domain.StoredFile{}, fmt.Errorf("failed to find owner: %w", err)
	}
	if !domain.DocumentApplies(ownerType, docType) {
		return domain.StoredFile{}, fmt.Errorf("%w: %s for owner type %s", domain.ErrDocumentNotApplicable, docType, ownerType)
	}

	stored, err := uc.uploads.Upload(ctx, ownerID.String(), docType, file)
	if err != nil {
		ucLogger.Error("Upload service returned an error", err, nil)
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	if err := uc.owners.AttachDocument(ctx, ownerID, docType, stored); err != nil {
		ucLogger.Error("Failed to attach document to owner", err, port.Fields{"path": stored.Path})
		return domain.StoredFile{}, fmt.Errorf("failed to attach document: %w", err)
	}

	ucLogger.Info("Document uploaded", port.Fields{"path": stored.Path})
	return stored, nil
}
