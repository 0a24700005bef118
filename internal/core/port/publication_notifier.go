package port

import (
	"context"
	"property-publishing-service/internal/core/domain"
)

type PublicationNotifierPort interface {
	NotifyPropertyPublished(ctx context.Context, result domain.PublicationResult) error
}
