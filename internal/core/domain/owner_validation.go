package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

var (
	fieldValidator = validator.New()
	hundred        = decimal.NewFromInt(100)
)

var commonRequired = []OwnerField{
	OwnerFieldAddressStreet,
	OwnerFieldAddressNumber,
	OwnerFieldAddressRegion,
	OwnerFieldAddressCommune,
	OwnerFieldAddressUnitType,
}

// Телефон физического лица намеренно не обязателен, в отличие от телефона представителя.
var naturalRequired = []OwnerField{
	OwnerFieldFirstName,
	OwnerFieldPaternalLastName,
	OwnerFieldNationalID,
	OwnerFieldEmail,
}

// Национальность обязательна только для физического лица.
var naturalCommonRequired = []OwnerField{
	OwnerFieldNationality,
}

var legalRequired = []OwnerField{
	OwnerFieldCompanyName,
	OwnerFieldCompanyTaxID,
	OwnerFieldConstitutionDate,
	OwnerFieldRepFirstName,
	OwnerFieldRepPaternalLastName,
	OwnerFieldRepNationalID,
	OwnerFieldRepEmail,
	OwnerFieldRepPhone,
}

// ValidateOwners проверяет весь список собственников и возвращает все найденные ошибки сразу.
// Пустая карта - список валиден.
func ValidateOwners(owners []Owner) ErrorMap {
	errs := make(ErrorMap)

	// 1. Обязательные поля и формат.
	for _, o := range owners {
		validateOwnerFields(o, errs)
	}

	// 2. Уникальность RUT и email среди собственников.
	validateUniqueness(owners, errs)

	// 3. Сумма долей, только для двух и более собственников.
	if len(owners) >= 2 {
		sum := decimal.Zero
		for _, o := range owners {
			if o.OwnershipPercentage != nil {
				sum = sum.Add(*o.OwnershipPercentage)
			}
		}
		if !sum.Equal(hundred) {
			errs.Add(ErrKeyOwnershipPercentage,
				fmt.Sprintf("ownership percentages must sum to exactly 100, got %s", sum.String()))
		}
	}

	// 4. Обязательные документы.
	for _, o := range owners {
		for _, slot := range RequiredDocuments(o.Type()) {
			if !slot.Required {
				continue
			}
			if current, ok := o.Document(slot.Type); !ok || !current.Uploaded() {
				errs.Add(DocumentErrorKey(o.ID, slot.Type), fmt.Sprintf("%s is required", slot.Label))
			}
		}
	}

	// 5. Количество собственников.
	switch {
	case len(owners) == 0:
		errs.Add(ErrKeyOwners, "at least one owner is required")
	case len(owners) > MaxOwners:
		errs.Add(ErrKeyOwners, fmt.Sprintf("at most %d owners are allowed", MaxOwners))
	}

	return errs
}

func validateOwnerFields(o Owner, errs ErrorMap) {
	key := func(f OwnerField) string { return OwnerErrorKey(o.ID, string(f)) }
	requireAll := func(fields []OwnerField, value func(OwnerField) string) {
		for _, f := range fields {
			if isBlank(value(f)) {
				errs.Add(key(f), requiredMessage(f))
			}
		}
	}
	checkEmail := func(f OwnerField, email string) {
		if isBlank(email) {
			return
		}
		if err := fieldValidator.Var(strings.TrimSpace(email), "email"); err != nil {
			errs.Add(key(f), fmt.Sprintf("%s is not a valid e-mail address", f))
		}
	}

	switch v := o.Variant.(type) {
	case NaturalPerson:
		requireAll(naturalRequired, func(f OwnerField) string { return *naturalFieldPtr(&v, f) })
		requireAll(naturalCommonRequired, func(f OwnerField) string { return *commonFieldPtr(&o, f) })
		checkEmail(OwnerFieldEmail, v.Email)

	case LegalEntity:
		requireAll(legalRequired, func(f OwnerField) string { return *legalFieldPtr(&v, f) })
		switch v.ConstitutionType {
		case ConstitutionSameDay:
			if isBlank(v.VerificationCode) {
				errs.Add(key(OwnerFieldVerificationCode), requiredMessage(OwnerFieldVerificationCode))
			}
		case ConstitutionTraditional:
			if isBlank(v.NotaryName) {
				errs.Add(key(OwnerFieldNotaryName), requiredMessage(OwnerFieldNotaryName))
			}
			if isBlank(v.RepertoryNumber) {
				errs.Add(key(OwnerFieldRepertoryNumber), requiredMessage(OwnerFieldRepertoryNumber))
			}
		case ConstitutionUnset:
			errs.Add(key(OwnerFieldConstitutionType), requiredMessage(OwnerFieldConstitutionType))
		default:
			errs.Add(key(OwnerFieldConstitutionType), fmt.Sprintf("unknown constitution type %q", v.ConstitutionType))
		}
		checkEmail(OwnerFieldCompanyEmail, v.CompanyEmail)
		checkEmail(OwnerFieldRepEmail, v.Representative.Email)

	default:
		errs.Add(key(OwnerFieldType), requiredMessage(OwnerFieldType))
	}

	requireAll(commonRequired, func(f OwnerField) string { return *commonFieldPtr(&o, f) })

	if p := o.OwnershipPercentage; p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
		errs.Add(key(OwnerFieldOwnershipPercentage), "ownership_percentage must be between 0 and 100")
	}
}

func validateUniqueness(owners []Owner, errs ErrorMap) {
	seenIdentity := make(map[string]int)
	seenEmail := make(map[string]int)

	for i, o := range owners {
		identityField, emailField := OwnerFieldNationalID, OwnerFieldEmail
		if o.Type() == OwnerTypeLegal {
			identityField, emailField = OwnerFieldCompanyTaxID, OwnerFieldCompanyEmail
		}

		if id := NormalizeRUT(o.IdentityKey()); id != "" {
			if first, dup := seenIdentity[id]; dup {
				errs.Add(OwnerErrorKey(o.ID, string(identityField)),
					fmt.Sprintf("RUT is already used by owner #%d", first+1))
			} else {
				seenIdentity[id] = i
			}
		}

		if email := foldEmail(o.ContactEmail()); email != "" {
			if first, dup := seenEmail[email]; dup {
				errs.Add(OwnerErrorKey(o.ID, string(emailField)),
					fmt.Sprintf("e-mail is already used by owner #%d", first+1))
			} else {
				seenEmail[email] = i
			}
		}
	}
}

// Caser хранит состояние, поэтому создается на каждый вызов.
func foldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// NormalizeRUT убирает точки, дефисы и пробелы и приводит к верхнему регистру.
// Контрольная цифра не проверяется.
func NormalizeRUT(rut string) string {
	var b strings.Builder
	for _, r := range rut {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
