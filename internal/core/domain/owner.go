package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxOwners - максимальное количество собственников в одном черновике.
const MaxOwners = 5

type OwnerType string

const (
	OwnerTypeNatural OwnerType = "natural"
	OwnerTypeLegal   OwnerType = "juridica"
)

func ParseOwnerType(s string) (OwnerType, error) {
	switch t := OwnerType(s); t {
	case OwnerTypeNatural, OwnerTypeLegal:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOwnerType, s)
}

// ConstitutionType - способ учреждения юридического лица.
type ConstitutionType string

const (
	ConstitutionUnset       ConstitutionType = ""
	ConstitutionSameDay     ConstitutionType = "empresa_en_un_dia"
	ConstitutionTraditional ConstitutionType = "tradicional"
)

func ParseConstitutionType(s string) (ConstitutionType, error) {
	switch t := ConstitutionType(s); t {
	case ConstitutionUnset, ConstitutionSameDay, ConstitutionTraditional:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownConstitution, s)
}

type OwnerAddress struct {
	Street          string
	Number          string
	Unit            string
	Region          string
	Commune         string
	UnitType        string
	ApartmentNumber string
}

// OwnerVariant - закрытое объединение: его реализуют только NaturalPerson и LegalEntity.
type OwnerVariant interface {
	ownerType() OwnerType
}

type NaturalPerson struct {
	FirstName             string
	PaternalLastName      string
	MaternalLastName      string
	NationalID            string
	Email                 string
	Phone                 string
	MaritalPropertyRegime string
}

func (NaturalPerson) ownerType() OwnerType { return OwnerTypeNatural }

type LegalRepresentative struct {
	FirstName        string
	PaternalLastName string
	MaternalLastName string
	NationalID       string
	Email            string
	Phone            string
}

type LegalEntity struct {
	CompanyName      string
	CompanyTaxID     string
	BusinessPurpose  string
	CompanyEmail     string
	CompanyPhone     string
	ConstitutionType ConstitutionType
	ConstitutionDate string
	// Только для empresa_en_un_dia.
	VerificationCode string
	// Только для tradicional.
	NotaryName       string
	RepertoryNumber  string
	Representative   LegalRepresentative
}

func (LegalEntity) ownerType() OwnerType { return OwnerTypeLegal }

// WithConstitutionType меняет способ учреждения и очищает идентификаторы другого способа.
func (le LegalEntity) WithConstitutionType(ct ConstitutionType) LegalEntity {
	le.ConstitutionType = ct
	switch ct {
	case ConstitutionSameDay:
		le.NotaryName = ""
		le.RepertoryNumber = ""
	case ConstitutionTraditional:
		le.VerificationCode = ""
	default:
		le.VerificationCode = ""
		le.NotaryName = ""
		le.RepertoryNumber = ""
	}
	return le
}

// Owner - собственник в черновике публикации.
type Owner struct {
	ID                  string
	Address             OwnerAddress
	Nationality         string
	OwnershipPercentage *decimal.Decimal
	Documents           []DocumentSlot
	Variant             OwnerVariant
}

func (o Owner) Type() OwnerType {
	if o.Variant == nil {
		return ""
	}
	return o.Variant.ownerType()
}

func (o Owner) Natural() (NaturalPerson, bool) {
	np, ok := o.Variant.(NaturalPerson)
	return np, ok
}

func (o Owner) Legal() (LegalEntity, bool) {
	le, ok := o.Variant.(LegalEntity)
	return le, ok
}

// IdentityKey - RUT физического лица или RUT компании.
func (o Owner) IdentityKey() string {
	switch v := o.Variant.(type) {
	case NaturalPerson:
		return v.NationalID
	case LegalEntity:
		return v.CompanyTaxID
	}
	return ""
}

// ContactEmail - личный email физического лица или email компании.
func (o Owner) ContactEmail() string {
	switch v := o.Variant.(type) {
	case NaturalPerson:
		return v.Email
	case LegalEntity:
		return v.CompanyEmail
	}
	return ""
}

// DisplayName используется в логах и событиях.
func (o Owner) DisplayName() string {
	switch v := o.Variant.(type) {
	case NaturalPerson:
		return joinNonEmpty(v.FirstName, v.PaternalLastName, v.MaternalLastName)
	case LegalEntity:
		return v.CompanyName
	}
	return ""
}

// Document возвращает слот документа указанного типа.
func (o Owner) Document(t DocumentType) (DocumentSlot, bool) {
	for _, d := range o.Documents {
		if d.Type == t {
			return d, true
		}
	}
	return DocumentSlot{}, false
}

func emptyVariant(t OwnerType) (OwnerVariant, error) {
	switch t {
	case OwnerTypeNatural:
		return NaturalPerson{}, nil
	case OwnerTypeLegal:
		return LegalEntity{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOwnerType, t)
}

// NewOwner создает собственника с пустыми полями и слотами документов для его типа.
func NewOwner(t OwnerType) (Owner, error) {
	variant, err := emptyVariant(t)
	if err != nil {
		return Owner{}, err
	}
	return Owner{
		ID:        uuid.NewString(),
		Variant:   variant,
		Documents: RequiredDocuments(t),
	}, nil
}

// ChangeOwnerType пересобирает вариант с нуля, сохраняя общие поля.
// Загруженные документы не теряются: см. MergeDocuments.
func ChangeOwnerType(o Owner, newType OwnerType) (Owner, error) {
	if o.Type() == newType {
		o.Documents = MergeDocuments(o.Documents, newType)
		return o, nil
	}
	variant, err := emptyVariant(newType)
	if err != nil {
		return o, err
	}
	o.Variant = variant
	o.Documents = MergeDocuments(o.Documents, newType)
	return o, nil
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
