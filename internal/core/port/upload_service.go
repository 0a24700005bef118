package port

import (
	"context"
	"property-publishing-service/internal/core/domain"
)

// UploadServicePort загружает файл документа в хранилище.
// ownerOrPropertyID используется как префикс пути.
type UploadServicePort interface {
	Upload(ctx context.Context, ownerOrPropertyID string, docType domain.DocumentType, file domain.PendingFile) (domain.StoredFile, error)
	// Owns сообщает, что ранее сохраненный файл принадлежит этому хранилищу.
	Owns(file domain.StoredFile) bool
}
