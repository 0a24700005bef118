package usecases_port

import (
	"context"
	"property-publishing-service/internal/core/domain"
)

type ValidateDraftPort interface {
	Execute(ctx context.Context, draft domain.Draft) (domain.Draft, domain.ErrorMap)
}
