package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PublishedOwner связывает собственника черновика с сохраненной записью.
type PublishedOwner struct {
	DraftOwnerID string
	OwnerID      uuid.UUID
	OwnerType    OwnerType
	Percentage   decimal.Decimal
}

type UploadedDocument struct {
	OwnerID      uuid.UUID
	DocumentType DocumentType
	File         StoredFile
}

// DocumentUploadFailure - документ, который не удалось загрузить. Публикацию не отменяет,
// пользователь может повторить загрузку вручную.
type DocumentUploadFailure struct {
	OwnerID      uuid.UUID
	DocumentType DocumentType
	Reason       string
}

// PublicationResult - итог публикации черновика.
type PublicationResult struct {
	PropertyID        uuid.UUID
	PublisherID       uuid.UUID
	PropertyType      PropertyType
	ListingType       ListingType
	Owners            []PublishedOwner
	UploadedDocuments []UploadedDocument
	FailedUploads     []DocumentUploadFailure
	PublishedAt       time.Time
}

// PartialPublicationError - объект и часть собственников уже сохранены, следующий собственник - нет.
// Сохраненные строки не откатываются.
type PartialPublicationError struct {
	PropertyID    uuid.UUID
	SavedOwners   []PublishedOwner
	FailedOwnerID string
	Err           error
}

func (e *PartialPublicationError) Error() string {
	return fmt.Sprintf("property %s saved with %d owner(s), owner %s failed: %v",
		e.PropertyID, len(e.SavedOwners), e.FailedOwnerID, e.Err)
}

func (e *PartialPublicationError) Unwrap() error {
	return e.Err
}

// EffectivePercentage - доля для сохранения: единственный собственник без доли владеет 100%.
func EffectivePercentage(owners []Owner, i int) decimal.Decimal {
	p := owners[i].OwnershipPercentage
	if p != nil {
		return *p
	}
	if len(owners) == 1 {
		return hundred
	}
	return decimal.Zero
}
