package rest

import (
	"fmt"

	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
)

func toDomainProperty(dto PropertyDTO) domain.PropertyRecord {
	listing := domain.ListingType(dto.ListingType)
	if listing == "" {
		listing = domain.ListingTypeRent
	}
	return domain.PropertyRecord{
		PropertyType:    domain.PropertyType(dto.PropertyType),
		ListingType:     listing,
		Bedrooms:        dto.Bedrooms,
		Bathrooms:       dto.Bathrooms,
		UsableArea:      dto.UsableArea,
		TotalArea:       dto.TotalArea,
		HasTerrace:      dto.HasTerrace,
		HasStorage:      dto.HasStorage,
		StorageArea:     dto.StorageArea,
		StorageLocation: dto.StorageLocation,
		StorageNumber:   dto.StorageNumber,
		ParkingCount:    dto.ParkingCount,
		ParkingLocation: dto.ParkingLocation,
		ParcelNumber:    dto.ParcelNumber,
		Price:           dto.Price,
		CommonExpenses:  dto.CommonExpenses,
		Description:     dto.Description,
		Address:         domain.PropertyAddress(dto.Address),
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
	}
}

func toPropertyDTO(p domain.PropertyRecord) PropertyDTO {
	return PropertyDTO{
		PropertyType:    string(p.PropertyType),
		ListingType:     string(p.ListingType),
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		UsableArea:      p.UsableArea,
		TotalArea:       p.TotalArea,
		HasTerrace:      p.HasTerrace,
		HasStorage:      p.HasStorage,
		StorageArea:     p.StorageArea,
		StorageLocation: p.StorageLocation,
		StorageNumber:   p.StorageNumber,
		ParkingCount:    p.ParkingCount,
		ParkingLocation: p.ParkingLocation,
		ParcelNumber:    p.ParcelNumber,
		Price:           p.Price,
		CommonExpenses:  p.CommonExpenses,
		Description:     p.Description,
		Address:         PropertyAddressDTO(p.Address),
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
	}
}

// toDomainOwner собирает собственника из запроса. Данные другого варианта игнорируются,
// слоты документов перестраиваются под тип собственника.
func toDomainOwner(dto OwnerDTO) (domain.Owner, error) {
	ownerType, err := domain.ParseOwnerType(dto.OwnerType)
	if err != nil {
		return domain.Owner{}, err
	}
	percentage, err := domain.ParsePercentage(string(dto.OwnershipPercentage))
	if err != nil {
		return domain.Owner{}, err
	}

	owner := domain.Owner{
		ID:                  dto.ID,
		Address:             domain.OwnerAddress(dto.Address),
		Nationality:         dto.Nationality,
		OwnershipPercentage: percentage,
	}
	if owner.ID == "" {
		owner.ID = uuid.NewString()
	}

	switch ownerType {
	case domain.OwnerTypeNatural:
		var np domain.NaturalPerson
		if dto.Natural != nil {
			np = domain.NaturalPerson(*dto.Natural)
		}
		owner.Variant = np
	case domain.OwnerTypeLegal:
		var le domain.LegalEntity
		if dto.Legal != nil {
			ct, err := domain.ParseConstitutionType(dto.Legal.ConstitutionType)
			if err != nil {
				return domain.Owner{}, err
			}
			le = domain.LegalEntity{
				CompanyName:      dto.Legal.CompanyName,
				CompanyTaxID:     dto.Legal.CompanyTaxID,
				BusinessPurpose:  dto.Legal.BusinessPurpose,
				CompanyEmail:     dto.Legal.CompanyEmail,
				CompanyPhone:     dto.Legal.CompanyPhone,
				ConstitutionDate: dto.Legal.ConstitutionDate,
				VerificationCode: dto.Legal.VerificationCode,
				NotaryName:       dto.Legal.NotaryName,
				RepertoryNumber:  dto.Legal.RepertoryNumber,
				Representative:   domain.LegalRepresentative(dto.Legal.Representative),
			}.WithConstitutionType(ct)
		}
		owner.Variant = le
	}

	docs := make([]domain.DocumentSlot, 0, len(dto.Documents))
	for _, d := range dto.Documents {
		docType, err := domain.ParseDocumentType(d.Type)
		if err != nil {
			return domain.Owner{}, err
		}
		slot := domain.DocumentSlot{Type: docType}
		// Сохраненный файл принимается, только если его ключ построен сервисом загрузки.
		if stored := (domain.StoredFile{URL: d.URL, Path: d.Path}); domain.IsStoredDocument(stored, docType) {
			slot.URL, slot.Path = stored.URL, stored.Path
		}
		docs = append(docs, slot)
	}
	owner.Documents = domain.MergeDocuments(docs, ownerType)
	return owner, nil
}

func toOwnerDTO(o domain.Owner) OwnerDTO {
	dto := OwnerDTO{
		ID:          o.ID,
		OwnerType:   string(o.Type()),
		DisplayName: o.DisplayName(),
		Nationality: o.Nationality,
		Address:     OwnerAddressDTO(o.Address),
		Documents:   make([]DocumentDTO, 0, len(o.Documents)),
	}
	if o.OwnershipPercentage != nil {
		dto.OwnershipPercentage = PercentageDTO(o.OwnershipPercentage.String())
	}
	if np, ok := o.Natural(); ok {
		n := NaturalPersonDTO(np)
		dto.Natural = &n
	}
	if le, ok := o.Legal(); ok {
		dto.Legal = &LegalEntityDTO{
			CompanyName:      le.CompanyName,
			CompanyTaxID:     le.CompanyTaxID,
			BusinessPurpose:  le.BusinessPurpose,
			CompanyEmail:     le.CompanyEmail,
			CompanyPhone:     le.CompanyPhone,
			ConstitutionType: string(le.ConstitutionType),
			ConstitutionDate: le.ConstitutionDate,
			VerificationCode: le.VerificationCode,
			NotaryName:       le.NotaryName,
			RepertoryNumber:  le.RepertoryNumber,
			Representative:   RepresentativeDTO(le.Representative),
		}
	}
	for _, d := range o.Documents {
		dto.Documents = append(dto.Documents, toDocumentDTO(d))
	}
	return dto
}

func toDocumentDTO(d domain.DocumentSlot) DocumentDTO {
	return DocumentDTO{
		Type:     string(d.Type),
		Label:    d.Label,
		Required: d.Required,
		Uploaded: d.Uploaded(),
		URL:      d.URL,
		Path:     d.Path,
	}
}

func toDomainDraft(dto DraftDTO) (domain.Draft, error) {
	draft := domain.Draft{
		Property: toDomainProperty(dto.Property),
		Owners:   make([]domain.Owner, 0, len(dto.Owners)),
	}
	seen := make(map[string]bool, len(dto.Owners))
	for i, o := range dto.Owners {
		owner, err := toDomainOwner(o)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("owner #%d: %w", i+1, err)
		}
		if seen[owner.ID] {
			return domain.Draft{}, fmt.Errorf("owner #%d: duplicate owner id %q", i+1, owner.ID)
		}
		seen[owner.ID] = true
		draft.Owners = append(draft.Owners, owner)
	}
	return draft, nil
}

func toDraftDTO(d domain.Draft) DraftDTO {
	dto := DraftDTO{
		Property: toPropertyDTO(d.Property),
		Owners:   make([]OwnerDTO, 0, len(d.Owners)),
	}
	for _, o := range d.Owners {
		dto.Owners = append(dto.Owners, toOwnerDTO(o))
	}
	return dto
}

func toPublishedOwnerDTOs(owners []domain.PublishedOwner) []PublishedOwnerDTO {
	out := make([]PublishedOwnerDTO, 0, len(owners))
	for _, o := range owners {
		out = append(out, PublishedOwnerDTO{
			DraftOwnerID:        o.DraftOwnerID,
			OwnerID:             o.OwnerID,
			OwnerType:           string(o.OwnerType),
			OwnershipPercentage: o.Percentage.String(),
		})
	}
	return out
}

func toPublicationResponse(r *domain.PublicationResult) PublicationResponse {
	resp := PublicationResponse{
		PropertyID:        r.PropertyID,
		PropertyType:      string(r.PropertyType),
		ListingType:       string(r.ListingType),
		Owners:            toPublishedOwnerDTOs(r.Owners),
		UploadedDocuments: make([]UploadedDocumentDTO, 0, len(r.UploadedDocuments)),
		FailedUploads:     make([]FailedUploadDTO, 0, len(r.FailedUploads)),
		PublishedAt:       r.PublishedAt,
	}
	for _, d := range r.UploadedDocuments {
		resp.UploadedDocuments = append(resp.UploadedDocuments, UploadedDocumentDTO{
			OwnerID:      d.OwnerID,
			DocumentType: string(d.DocumentType),
			URL:          d.File.URL,
			Path:         d.File.Path,
		})
	}
	for _, f := range r.FailedUploads {
		resp.FailedUploads = append(resp.FailedUploads, FailedUploadDTO{
			OwnerID:      f.OwnerID,
			DocumentType: string(f.DocumentType),
			Reason:       f.Reason,
		})
	}
	return resp
}

func toPolicyDTO(t domain.PropertyType, p domain.TypePolicy) PropertyTypePolicyDTO {
	dto := PropertyTypePolicyDTO{
		PropertyType: string(t),
		Required:     make([]string, 0, len(p.Required)),
		Cleared:      make([]string, 0, len(p.Cleared)),
		Forced:       make(map[string]string, len(p.Forced)),
	}
	for _, f := range p.Required {
		dto.Required = append(dto.Required, string(f))
	}
	for _, f := range p.Cleared {
		dto.Cleared = append(dto.Cleared, string(f))
	}
	for f, v := range p.Forced {
		dto.Forced[string(f)] = v
	}
	return dto
}
