package rabbitmq

import (
	"time"

	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
)

// PropertyPublishedEventDTO - тело события PropertyPublishedEvent/1.0.0.
type PropertyPublishedEventDTO struct {
	PropertyID    uuid.UUID              `json:"property_id"`
	PublisherID   uuid.UUID              `json:"publisher_id"`
	PropertyType  string                 `json:"property_type"`
	ListingType   string                 `json:"listing_type"`
	PublishedAt   string                 `json:"published_at"`
	Owners        []PublishedOwnerDTO    `json:"owners"`
	Documents     []PublishedDocumentDTO `json:"documents,omitempty"`
	FailedUploads []FailedUploadDTO      `json:"failed_uploads,omitempty"`
}

type PublishedOwnerDTO struct {
	OwnerID             uuid.UUID `json:"owner_id"`
	OwnerType           string    `json:"owner_type"`
	OwnershipPercentage string    `json:"ownership_percentage"`
}

type PublishedDocumentDTO struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	DocumentType string    `json:"document_type"`
	URL          string    `json:"url"`
}

type FailedUploadDTO struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	DocumentType string    `json:"document_type"`
	Reason       string    `json:"reason"`
}

func toPublishedEventDTO(r domain.PublicationResult) PropertyPublishedEventDTO {
	dto := PropertyPublishedEventDTO{
		PropertyID:   r.PropertyID,
		PublisherID:  r.PublisherID,
		PropertyType: string(r.PropertyType),
		ListingType:  string(r.ListingType),
		PublishedAt:  r.PublishedAt.UTC().Format(time.RFC3339),
		Owners:       make([]PublishedOwnerDTO, 0, len(r.Owners)),
	}
	for _, o := range r.Owners {
		dto.Owners = append(dto.Owners, PublishedOwnerDTO{
			OwnerID:             o.OwnerID,
			OwnerType:           string(o.OwnerType),
			OwnershipPercentage: o.Percentage.String(),
		})
	}
	for _, d := range r.UploadedDocuments {
		dto.Documents = append(dto.Documents, PublishedDocumentDTO{
			OwnerID:      d.OwnerID,
			DocumentType: string(d.DocumentType),
			URL:          d.File.URL,
		})
	}
	for _, f := range r.FailedUploads {
		dto.FailedUploads = append(dto.FailedUploads, FailedUploadDTO{
			OwnerID:      f.OwnerID,
			DocumentType: string(f.DocumentType),
			Reason:       f.Reason,
		})
	}
	return dto
}
