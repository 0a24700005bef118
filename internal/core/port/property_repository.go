package port

import (
	"context"
	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
)

type PropertyRepositoryPort interface {
	SaveProperty(ctx context.Context, publisherID uuid.UUID, record domain.PropertyRecord) (uuid.UUID, error)
}
