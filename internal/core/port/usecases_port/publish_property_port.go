package usecases_port

import (
	"context"
	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
)

type PublishPropertyPort interface {
	Execute(ctx context.Context, publisherID uuid.UUID, draft domain.Draft) (*domain.PublicationResult, error)
}
