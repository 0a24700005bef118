package usecase

import (
	"context"
	"fmt"
	"time"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"

	"github.com/google/uuid"
)

// PublishPropertyUseCase проверяет черновик и сохраняет объект, собственников и документы.
type PublishPropertyUseCase struct {
	properties port.PropertyRepositoryPort
	owners     port.OwnerRepositoryPort
	uploads    port.UploadServicePort
	notifier   port.PublicationNotifierPort
	now        func() time.Time
}

func NewPublishPropertyUseCase(
	properties port.PropertyRepositoryPort,
	owners port.OwnerRepositoryPort,
	uploads port.UploadServicePort,
	notifier port.PublicationNotifierPort,
) *PublishPropertyUseCase {
	return &PublishPropertyUseCase{
		properties: properties,
		owners:     owners,
		uploads:    uploads,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Execute выполняет публикацию. Порядок: валидация, объект, собственники со связями,
// документы, событие. Уже сохраненные строки при последующих ошибках не откатываются.
func (uc *PublishPropertyUseCase) Execute(ctx context.Context, publisherID uuid.UUID, draft domain.Draft) (*domain.PublicationResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "PublishProperty",
		"publisher_id":  publisherID.String(),
		"property_type": string(draft.Property.PropertyType),
		"owner_count":   len(draft.Owners),
	})

	ucLogger.Info("Use case started: publishing property draft", nil)

	// Все локальные ошибки вычисляются до первого обращения к внешним системам.
	normalized := domain.NormalizeDraft(uc.dropForeignDocuments(ucLogger, draft))
	if errs := domain.ValidateDraft(normalized); !errs.Empty() {
		ucLogger.Warn("Draft rejected by validation", port.Fields{"error_keys": errs.Keys()})
		return nil, &domain.ValidationError{Errors: errs}
	}

	propertyID, err := uc.properties.SaveProperty(ctx, publisherID, normalized.Property)
	if err != nil {
		ucLogger.Error("Property repository returned an error", err, nil)
		return nil, fmt.Errorf("failed to save property: %w", err)
	}
	ucLogger = ucLogger.WithFields(port.Fields{"property_id": propertyID.String()})

	result := &domain.PublicationResult{
		PropertyID:   propertyID,
		PublisherID:  publisherID,
		PropertyType: normalized.Property.PropertyType,
		ListingType:  normalized.Property.ListingType,
		Owners:       make([]domain.PublishedOwner, 0, len(normalized.Owners)),
	}

	for i, owner := range normalized.Owners {
		published, err := uc.saveOwner(ctx, propertyID, normalized.Owners, i)
		if err != nil {
			ucLogger.Error("Failed to save owner, earlier rows are kept", err, port.Fields{
				"draft_owner_id": owner.ID,
				"saved_owners":   len(result.Owners),
			})
			return nil, &domain.PartialPublicationError{
				PropertyID:    propertyID,
				SavedOwners:   result.Owners,
				FailedOwnerID: owner.ID,
				Err:           err,
			}
		}
		result.Owners = append(result.Owners, published)
	}

	for i, owner := range normalized.Owners {
		uc.storeDocuments(ctx, ucLogger, result, result.Owners[i].OwnerID, owner)
	}

	result.PublishedAt = uc.now().UTC()

	if err := uc.notifier.NotifyPropertyPublished(ctx, *result); err != nil {
		// Публикация уже сохранена, поэтому ошибка уведомления только логируется.
		ucLogger.Error("Failed to send publication event after successful save", err, nil)
	}

	ucLogger.Info("Use case finished", port.Fields{
		"uploaded_documents": len(result.UploadedDocuments),
		"failed_uploads":     len(result.FailedUploads),
	})
	return result, nil
}

func (uc *PublishPropertyUseCase) saveOwner(ctx context.Context, propertyID uuid.UUID, owners []domain.Owner, i int) (domain.PublishedOwner, error) {
	owner := owners[i]
	ownerID, err := uc.owners.SaveOwner(ctx, propertyID, owner)
	if err != nil {
		return domain.PublishedOwner{}, fmt.Errorf("save owner %s: %w", owner.ID, err)
	}

	percentage := domain.EffectivePercentage(owners, i)
	if err := uc.owners.SaveOwnershipRelationship(ctx, propertyID, ownerID, percentage); err != nil {
		return domain.PublishedOwner{}, fmt.Errorf("save ownership of owner %s: %w", owner.ID, err)
	}

	return domain.PublishedOwner{
		DraftOwnerID: owner.ID,
		OwnerID:      ownerID,
		OwnerType:    owner.Type(),
		Percentage:   percentage,
	}, nil
}

// dropForeignDocuments очищает слоты, ссылающиеся на файлы вне хранилища документов.
// Такой слот считается незаполненным и проверяется валидацией как обычно.
func (uc *PublishPropertyUseCase) dropForeignDocuments(logger port.LoggerPort, draft domain.Draft) domain.Draft {
	owners := make([]domain.Owner, len(draft.Owners))
	for i, owner := range draft.Owners {
		docs := make([]domain.DocumentSlot, len(owner.Documents))
		copy(docs, owner.Documents)
		for j, slot := range docs {
			if slot.Pending != nil || (slot.URL == "" && slot.Path == "") {
				continue
			}
			stored := domain.StoredFile{URL: slot.URL, Path: slot.Path}
			if domain.IsStoredDocument(stored, slot.Type) && uc.uploads.Owns(stored) {
				continue
			}
			logger.Warn("Discarding document reference outside of document storage", port.Fields{
				"draft_owner_id": owner.ID,
				"document_type":  string(slot.Type),
			})
			docs[j].URL, docs[j].Path = "", ""
		}
		owner.Documents = docs
		owners[i] = owner
	}
	draft.Owners = owners
	return draft
}

// storeDocuments загружает выбранные файлы и привязывает их к собственнику.
// Ошибки по отдельным документам собираются в результат и не прерывают публикацию.
func (uc *PublishPropertyUseCase) storeDocuments(ctx context.Context, logger port.LoggerPort, result *domain.PublicationResult, ownerID uuid.UUID, owner domain.Owner) {
	for _, slot := range owner.Documents {
		if !slot.Uploaded() {
			continue
		}
		docLogger := logger.WithFields(port.Fields{
			"owner_id":      ownerID.String(),
			"document_type": string(slot.Type),
		})

		stored := domain.StoredFile{URL: slot.URL, Path: slot.Path}
		if slot.Pending != nil {
			var err error
			stored, err = uc.uploads.Upload(ctx, ownerID.String(), slot.Type, *slot.Pending)
			if err != nil {
				docLogger.Error("Document upload failed", err, nil)
				result.FailedUploads = append(result.FailedUploads, domain.DocumentUploadFailure{
					OwnerID: ownerID, DocumentType: slot.Type, Reason: err.Error(),
				})
				continue
			}
		}

		if err := uc.owners.AttachDocument(ctx, ownerID, slot.Type, stored); err != nil {
			docLogger.Error("Failed to attach uploaded document to owner", err, nil)
			result.FailedUploads = append(result.FailedUploads, domain.DocumentUploadFailure{
				OwnerID: ownerID, DocumentType: slot.Type, Reason: err.Error(),
			})
			continue
		}

		result.UploadedDocuments = append(result.UploadedDocuments, domain.UploadedDocument{
			OwnerID: ownerID, DocumentType: slot.Type, File: stored,
		})
	}
}
