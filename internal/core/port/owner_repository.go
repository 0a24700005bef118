package port

import (
	"context"
	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerRepositoryPort сохраняет собственников. Каждый вызов атомарен сам по себе,
// но несколько вызовов не объединены в транзакцию.
type OwnerRepositoryPort interface {
	SaveOwner(ctx context.Context, propertyID uuid.UUID, owner domain.Owner) (uuid.UUID, error)
	SaveOwnershipRelationship(ctx context.Context, propertyID, ownerID uuid.UUID, percentage decimal.Decimal) error
	AttachDocument(ctx context.Context, ownerID uuid.UUID, docType domain.DocumentType, file domain.StoredFile) error
	// FindOwnerType возвращает domain.ErrOwnerNotFound, если собственник не связан с объектом.
	FindOwnerType(ctx context.Context, propertyID, ownerID uuid.UUID) (domain.OwnerType, error)
}
