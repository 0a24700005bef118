package usecase

import (
	"context"
	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"
)

// ValidateDraftUseCase нормализует черновик и возвращает полную карту ошибок.
// Ничего не сохраняет.
type ValidateDraftUseCase struct{}

func NewValidateDraftUseCase() *ValidateDraftUseCase {
	return &ValidateDraftUseCase{}
}

func (uc *ValidateDraftUseCase) Execute(ctx context.Context, draft domain.Draft) (domain.Draft, domain.ErrorMap) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "ValidateDraft",
		"property_type": string(draft.Property.PropertyType),
		"owner_count":   len(draft.Owners),
	})

	normalized := domain.NormalizeDraft(draft)
	errs := domain.ValidateDraft(normalized)

	if errs.Empty() {
		ucLogger.Debug("Draft is valid", nil)
	} else {
		ucLogger.Debug("Draft has validation errors", port.Fields{"error_keys": errs.Keys()})
	}
	return normalized, errs
}
