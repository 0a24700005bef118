package usecases_port

import (
	"context"
	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
)

type UploadOwnerDocumentPort interface {
	Execute(ctx context.Context, propertyID, ownerID uuid.UUID, docType domain.DocumentType, file domain.PendingFile) (domain.StoredFile, error)
}
