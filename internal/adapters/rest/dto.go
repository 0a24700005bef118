package rest

import (
	"bytes"
	"encoding/json"
	"time"

	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
)

type PropertyAddressDTO struct {
	Street  string `json:"street"`
	Number  string `json:"number"`
	Unit    string `json:"unit,omitempty"`
	Region  string `json:"region"`
	Commune string `json:"commune"`
}

type PropertyDTO struct {
	PropertyType    string             `json:"property_type"`
	ListingType     string             `json:"listing_type,omitempty"`
	Bedrooms        string             `json:"bedrooms"`
	Bathrooms       string             `json:"bathrooms"`
	UsableArea      string             `json:"usable_area"`
	TotalArea       string             `json:"total_area"`
	HasTerrace      string             `json:"has_terrace"`
	HasStorage      string             `json:"has_storage"`
	StorageArea     string             `json:"storage_area"`
	StorageLocation string             `json:"storage_location"`
	StorageNumber   string             `json:"storage_number"`
	ParkingCount    string             `json:"parking_count"`
	ParkingLocation string             `json:"parking_location"`
	ParcelNumber    string             `json:"parcel_number"`
	Price           string             `json:"price"`
	CommonExpenses  string             `json:"common_expenses"`
	Description     string             `json:"description"`
	Address         PropertyAddressDTO `json:"address"`
	Latitude        *float64           `json:"latitude"`
	Longitude       *float64           `json:"longitude"`
}

type OwnerAddressDTO struct {
	Street          string `json:"street"`
	Number          string `json:"number"`
	Unit            string `json:"unit,omitempty"`
	Region          string `json:"region"`
	Commune         string `json:"commune"`
	UnitType        string `json:"unit_type"`
	ApartmentNumber string `json:"apartment_number,omitempty"`
}

type NaturalPersonDTO struct {
	FirstName             string `json:"first_name"`
	PaternalLastName      string `json:"paternal_last_name"`
	MaternalLastName      string `json:"maternal_last_name"`
	NationalID            string `json:"national_id"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	MaritalPropertyRegime string `json:"marital_property_regime"`
}

type RepresentativeDTO struct {
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name"`
	NationalID       string `json:"national_id"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
}

type LegalEntityDTO struct {
	CompanyName      string            `json:"company_name"`
	CompanyTaxID     string            `json:"company_tax_id"`
	BusinessPurpose  string            `json:"business_purpose"`
	CompanyEmail     string            `json:"company_email"`
	CompanyPhone     string            `json:"company_phone"`
	ConstitutionType string            `json:"constitution_type"`
	ConstitutionDate string            `json:"constitution_date"`
	VerificationCode string            `json:"verification_code"`
	NotaryName       string            `json:"notary_name"`
	RepertoryNumber  string            `json:"repertory_number"`
	Representative   RepresentativeDTO `json:"representative"`
}

// DocumentDTO - слот документа. Required и Label заполняет сервер, от клиента они игнорируются.
type DocumentDTO struct {
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required"`
	Uploaded bool   `json:"uploaded"`
	URL      string `json:"url,omitempty"`
	Path     string `json:"path,omitempty"`
}

// PercentageDTO принимает долю числом или строкой ("33,5" допускается).
type PercentageDTO string

func (p *PercentageDTO) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PercentageDTO(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = PercentageDTO(n.String())
	return nil
}

type OwnerDTO struct {
	ID                  string            `json:"id,omitempty"`
	OwnerType           string            `json:"owner_type"`
	DisplayName         string            `json:"display_name,omitempty"`
	Nationality         string            `json:"nationality"`
	OwnershipPercentage PercentageDTO     `json:"ownership_percentage,omitempty"`
	Address             OwnerAddressDTO   `json:"address"`
	Natural             *NaturalPersonDTO `json:"natural,omitempty"`
	Legal               *LegalEntityDTO   `json:"juridica,omitempty"`
	Documents           []DocumentDTO     `json:"documents"`
}

type DraftDTO struct {
	Property PropertyDTO `json:"property"`
	Owners   []OwnerDTO  `json:"owners"`
}

type OwnerTypeChangeRequest struct {
	Owner     OwnerDTO `json:"owner"`
	OwnerType string   `json:"owner_type"`
}

type PropertyTypeChangeRequest struct {
	Property     PropertyDTO `json:"property"`
	PropertyType string      `json:"property_type"`
}

type ValidationResponse struct {
	Valid  bool            `json:"valid"`
	Errors domain.ErrorMap `json:"errors"`
	Draft  DraftDTO        `json:"draft"`
}

type ValidationErrorResponse struct {
	Error  string          `json:"error"`
	Errors domain.ErrorMap `json:"errors"`
}

type PropertyTypePolicyDTO struct {
	PropertyType string            `json:"property_type"`
	Required     []string          `json:"required"`
	Cleared      []string          `json:"cleared"`
	Forced       map[string]string `json:"forced"`
}

type PublishedOwnerDTO struct {
	DraftOwnerID        string    `json:"draft_owner_id"`
	OwnerID             uuid.UUID `json:"owner_id"`
	OwnerType           string    `json:"owner_type"`
	OwnershipPercentage string    `json:"ownership_percentage"`
}

type UploadedDocumentDTO struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	DocumentType string    `json:"document_type"`
	URL          string    `json:"url"`
	Path         string    `json:"path"`
}

type FailedUploadDTO struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	DocumentType string    `json:"document_type"`
	Reason       string    `json:"reason"`
}

type PublicationResponse struct {
	PropertyID        uuid.UUID             `json:"property_id"`
	PropertyType      string                `json:"property_type"`
	ListingType       string                `json:"listing_type"`
	Owners            []PublishedOwnerDTO   `json:"owners"`
	UploadedDocuments []UploadedDocumentDTO `json:"uploaded_documents"`
	FailedUploads     []FailedUploadDTO     `json:"failed_uploads"`
	PublishedAt       time.Time             `json:"published_at"`
}

type PartialPublicationResponse struct {
	Error         string              `json:"error"`
	PropertyID    uuid.UUID           `json:"property_id"`
	SavedOwners   []PublishedOwnerDTO `json:"saved_owners"`
	FailedOwnerID string              `json:"failed_owner_id"`
}

type StoredFileResponse struct {
	DocumentType string `json:"document_type"`
	URL          string `json:"url"`
	Path         string `json:"path"`
}
