package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OwnerField - ключ поля собственника. Совпадает с суффиксом ключа ошибки owner_<id>_<field>.
type OwnerField string

const (
	OwnerFieldType                   OwnerField = "owner_type"
	OwnerFieldNationality            OwnerField = "nationality"
	OwnerFieldOwnershipPercentage    OwnerField = "ownership_percentage"
	OwnerFieldAddressStreet          OwnerField = "address_street"
	OwnerFieldAddressNumber          OwnerField = "address_number"
	OwnerFieldAddressUnit            OwnerField = "address_unit"
	OwnerFieldAddressRegion          OwnerField = "address_region"
	OwnerFieldAddressCommune         OwnerField = "address_commune"
	OwnerFieldAddressUnitType        OwnerField = "address_unit_type"
	OwnerFieldAddressApartmentNumber OwnerField = "address_apartment_number"

	OwnerFieldFirstName             OwnerField = "first_name"
	OwnerFieldPaternalLastName      OwnerField = "paternal_last_name"
	OwnerFieldMaternalLastName      OwnerField = "maternal_last_name"
	OwnerFieldNationalID            OwnerField = "national_id"
	OwnerFieldEmail                 OwnerField = "email"
	OwnerFieldPhone                 OwnerField = "phone"
	OwnerFieldMaritalPropertyRegime OwnerField = "marital_property_regime"

	OwnerFieldCompanyName             OwnerField = "company_name"
	OwnerFieldCompanyTaxID            OwnerField = "company_tax_id"
	OwnerFieldCompanyBusinessPurpose  OwnerField = "company_business_purpose"
	OwnerFieldCompanyEmail            OwnerField = "company_email"
	OwnerFieldCompanyPhone            OwnerField = "company_phone"
	OwnerFieldConstitutionType        OwnerField = "constitution_type"
	OwnerFieldConstitutionDate        OwnerField = "constitution_date"
	OwnerFieldVerificationCode        OwnerField = "verification_code"
	OwnerFieldNotaryName              OwnerField = "notary_name"
	OwnerFieldRepertoryNumber         OwnerField = "repertory_number"
	OwnerFieldRepFirstName            OwnerField = "representative_first_name"
	OwnerFieldRepPaternalLastName     OwnerField = "representative_paternal_last_name"
	OwnerFieldRepMaternalLastName     OwnerField = "representative_maternal_last_name"
	OwnerFieldRepNationalID           OwnerField = "representative_national_id"
	OwnerFieldRepEmail                OwnerField = "representative_email"
	OwnerFieldRepPhone                OwnerField = "representative_phone"
)

// SetOwnerField возвращает копию собственника с измененным полем.
// Поля другого варианта и поля другого способа учреждения отклоняются с ErrFieldNotApplicable.
func SetOwnerField(o Owner, field OwnerField, value string) (Owner, error) {
	switch field {
	case OwnerFieldType:
		t, err := ParseOwnerType(value)
		if err != nil {
			return o, err
		}
		return ChangeOwnerType(o, t)
	case OwnerFieldOwnershipPercentage:
		p, err := ParsePercentage(value)
		if err != nil {
			return o, err
		}
		o.OwnershipPercentage = p
		return o, nil
	}

	if ptr := commonFieldPtr(&o, field); ptr != nil {
		*ptr = value
		return o, nil
	}

	switch v := o.Variant.(type) {
	case NaturalPerson:
		ptr := naturalFieldPtr(&v, field)
		if ptr == nil {
			return o, notApplicable(o, field)
		}
		*ptr = value
		o.Variant = v
		return o, nil

	case LegalEntity:
		if field == OwnerFieldConstitutionType {
			ct, err := ParseConstitutionType(value)
			if err != nil {
				return o, err
			}
			o.Variant = v.WithConstitutionType(ct)
			return o, nil
		}
		switch field {
		case OwnerFieldVerificationCode:
			if v.ConstitutionType != ConstitutionSameDay {
				return o, fmt.Errorf("%w: %s requires constitution type %s", ErrFieldNotApplicable, field, ConstitutionSameDay)
			}
		case OwnerFieldNotaryName, OwnerFieldRepertoryNumber:
			if v.ConstitutionType != ConstitutionTraditional {
				return o, fmt.Errorf("%w: %s requires constitution type %s", ErrFieldNotApplicable, field, ConstitutionTraditional)
			}
		}
		ptr := legalFieldPtr(&v, field)
		if ptr == nil {
			return o, notApplicable(o, field)
		}
		*ptr = value
		o.Variant = v
		return o, nil
	}
	return o, fmt.Errorf("%w: %q", ErrUnknownOwnerType, o.Type())
}

// ParsePercentage разбирает долю владения. Пустая строка означает "не задана".
func ParsePercentage(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := parseDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPercentage, raw)
	}
	return &d, nil
}

func notApplicable(o Owner, field OwnerField) error {
	if isKnownOwnerField(field) {
		return fmt.Errorf("%w: %s for owner type %s", ErrFieldNotApplicable, field, o.Type())
	}
	return fmt.Errorf("%w: %q", ErrUnknownOwnerField, field)
}

func isKnownOwnerField(field OwnerField) bool {
	var (
		o  Owner
		np NaturalPerson
		le LegalEntity
	)
	return field == OwnerFieldType || field == OwnerFieldOwnershipPercentage ||
		field == OwnerFieldConstitutionType ||
		commonFieldPtr(&o, field) != nil ||
		naturalFieldPtr(&np, field) != nil ||
		legalFieldPtr(&le, field) != nil
}

func commonFieldPtr(o *Owner, field OwnerField) *string {
	switch field {
	case OwnerFieldNationality:
		return &o.Nationality
	case OwnerFieldAddressStreet:
		return &o.Address.Street
	case OwnerFieldAddressNumber:
		return &o.Address.Number
	case OwnerFieldAddressUnit:
		return &o.Address.Unit
	case OwnerFieldAddressRegion:
		return &o.Address.Region
	case OwnerFieldAddressCommune:
		return &o.Address.Commune
	case OwnerFieldAddressUnitType:
		return &o.Address.UnitType
	case OwnerFieldAddressApartmentNumber:
		return &o.Address.ApartmentNumber
	}
	return nil
}

func naturalFieldPtr(np *NaturalPerson, field OwnerField) *string {
	switch field {
	case OwnerFieldFirstName:
		return &np.FirstName
	case OwnerFieldPaternalLastName:
		return &np.PaternalLastName
	case OwnerFieldMaternalLastName:
		return &np.MaternalLastName
	case OwnerFieldNationalID:
		return &np.NationalID
	case OwnerFieldEmail:
		return &np.Email
	case OwnerFieldPhone:
		return &np.Phone
	case OwnerFieldMaritalPropertyRegime:
		return &np.MaritalPropertyRegime
	}
	return nil
}

func legalFieldPtr(le *LegalEntity, field OwnerField) *string {
	switch field {
	case OwnerFieldCompanyName:
		return &le.CompanyName
	case OwnerFieldCompanyTaxID:
		return &le.CompanyTaxID
	case OwnerFieldCompanyBusinessPurpose:
		return &le.BusinessPurpose
	case OwnerFieldCompanyEmail:
		return &le.CompanyEmail
	case OwnerFieldCompanyPhone:
		return &le.CompanyPhone
	case OwnerFieldConstitutionDate:
		return &le.ConstitutionDate
	case OwnerFieldVerificationCode:
		return &le.VerificationCode
	case OwnerFieldNotaryName:
		return &le.NotaryName
	case OwnerFieldRepertoryNumber:
		return &le.RepertoryNumber
	case OwnerFieldRepFirstName:
		return &le.Representative.FirstName
	case OwnerFieldRepPaternalLastName:
		return &le.Representative.PaternalLastName
	case OwnerFieldRepMaternalLastName:
		return &le.Representative.MaternalLastName
	case OwnerFieldRepNationalID:
		return &le.Representative.NationalID
	case OwnerFieldRepEmail:
		return &le.Representative.Email
	case OwnerFieldRepPhone:
		return &le.Representative.Phone
	}
	return nil
}
