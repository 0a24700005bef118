package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TypePolicy описывает поведение полей объекта для одного типа:
// какие поля обязательны, какие очищаются и какие получают фиксированное значение.
type TypePolicy struct {
	Required []PropertyField
	Cleared  []PropertyField
	Forced   map[PropertyField]string
}

// Applicable сообщает, может ли пользователь редактировать поле при этом типе.
func (tp TypePolicy) Applicable(f PropertyField) bool {
	if _, forced := tp.Forced[f]; forced {
		return false
	}
	for _, c := range tp.Cleared {
		if c == f {
			return false
		}
	}
	return true
}

func (tp TypePolicy) IsRequired(f PropertyField) bool {
	for _, r := range tp.Required {
		if r == f {
			return true
		}
	}
	return false
}

var residentialRequired = []PropertyField{
	FieldBedrooms, FieldBathrooms, FieldUsableArea, FieldTotalArea, FieldDescription, FieldPrice,
}

// PropertyTypePolicies - матрица условных полей по типу объекта.
var PropertyTypePolicies = map[PropertyType]TypePolicy{
	PropertyTypeHouse: {
		Required: residentialRequired,
		Cleared:  []PropertyField{FieldParcelNumber},
	},
	PropertyTypeApartment: {
		Required: residentialRequired,
		Cleared:  []PropertyField{FieldParcelNumber},
	},
	PropertyTypeOffice: {
		Required: residentialRequired,
		Cleared:  []PropertyField{FieldParcelNumber},
		Forced:   map[PropertyField]string{FieldHasTerrace: FlagNo},
	},
	PropertyTypeParking: {
		Required: []PropertyField{FieldParkingLocation, FieldDescription, FieldPrice},
		Cleared: []PropertyField{
			FieldUsableArea, FieldTotalArea,
			FieldStorageArea, FieldStorageLocation, FieldStorageNumber,
			FieldParkingCount, FieldParcelNumber,
		},
		Forced: map[PropertyField]string{
			FieldBedrooms:   "0",
			FieldBathrooms:  "0",
			FieldHasTerrace: FlagNo,
			FieldHasStorage: FlagNo,
		},
	},
	PropertyTypeStorage: {
		Required: []PropertyField{FieldTotalArea, FieldStorageNumber, FieldPrice},
		Cleared:  []PropertyField{FieldUsableArea, FieldParcelNumber},
		Forced: map[PropertyField]string{
			FieldBedrooms:   "0",
			FieldBathrooms:  "0",
			FieldHasTerrace: FlagNo,
		},
	},
	PropertyTypeLand: {
		Required: []PropertyField{FieldTotalArea, FieldDescription, FieldPrice},
		Cleared: []PropertyField{
			FieldUsableArea, FieldStorageArea, FieldStorageLocation, FieldStorageNumber,
		},
		Forced: map[PropertyField]string{
			FieldBedrooms:   "0",
			FieldBathrooms:  "0",
			FieldHasStorage: FlagNo,
		},
	},
}

// ApplyPropertyType переключает тип объекта и приводит поля к политике нового типа.
// Значения, зафиксированные предыдущим типом, сбрасываются, если новый тип их не фиксирует.
// Функция чистая и идемпотентна.
func ApplyPropertyType(record PropertyRecord, newType PropertyType) (PropertyRecord, error) {
	policy, ok := PropertyTypePolicies[newType]
	if !ok {
		return record, fmt.Errorf("%w: %q", ErrUnknownPropertyType, newType)
	}

	if prev, ok := PropertyTypePolicies[record.PropertyType]; ok && record.PropertyType != newType {
		for f := range prev.Forced {
			if _, stillForced := policy.Forced[f]; !stillForced {
				*record.fieldPtr(f) = ""
			}
		}
	}

	record.PropertyType = newType
	for _, f := range policy.Cleared {
		*record.fieldPtr(f) = ""
	}
	for f, v := range policy.Forced {
		*record.fieldPtr(f) = v
	}
	return record, nil
}

var (
	parkingLocationPattern = regexp.MustCompile(`^[\p{L}\p{N} _.\-]+$`)
	integerFields          = map[PropertyField]bool{
		FieldBedrooms:     true,
		FieldBathrooms:    true,
		FieldParkingCount: true,
	}
	flagFields = []PropertyField{FieldHasTerrace, FieldHasStorage}
)

// ValidateProperty проверяет запись объекта по матрице типа. Пустая карта - запись валидна.
func ValidateProperty(record PropertyRecord) ErrorMap {
	errs := make(ErrorMap)

	policy, ok := PropertyTypePolicies[record.PropertyType]
	if !ok {
		errs.Add(ErrKeyPropertyType, fmt.Sprintf("unknown property type %q", record.PropertyType))
		return errs
	}

	for _, f := range policy.Required {
		if isBlank(*record.fieldPtr(f)) {
			errs.Add(string(f), requiredMessage(f))
		}
	}

	// Поля, которые должны были быть очищены или зафиксированы политикой.
	for _, f := range policy.Cleared {
		if *record.fieldPtr(f) != "" {
			errs.Add(string(f), fmt.Sprintf("%s does not apply to %s", f, record.PropertyType))
		}
	}
	for f, v := range policy.Forced {
		if *record.fieldPtr(f) != v {
			errs.Add(string(f), fmt.Sprintf("%s must be %q for %s", f, v, record.PropertyType))
		}
	}

	for _, f := range numericFields {
		raw := *record.fieldPtr(f)
		if isBlank(raw) {
			continue
		}
		if _, err := ParseNonNegative(raw, integerFields[f]); err != nil {
			errs.Add(string(f), fmt.Sprintf("%s: %v", f, err))
		}
	}

	for _, f := range flagFields {
		v := *record.fieldPtr(f)
		if v != "" && v != FlagYes && v != FlagNo {
			errs.Add(string(f), fmt.Sprintf("%s must be %q or %q", f, FlagYes, FlagNo))
		}
	}

	if record.PropertyType == PropertyTypeParking && !isBlank(record.ParkingLocation) &&
		!parkingLocationPattern.MatchString(record.ParkingLocation) {
		errs.Add(string(FieldParkingLocation),
			"parking_location may contain only letters, digits, spaces, '-', '_' and '.'")
	}

	if record.ListingType != ListingTypeRent && record.ListingType != ListingTypeSale {
		errs.Add(string(FieldListingType), fmt.Sprintf("listing_type must be %q or %q", ListingTypeRent, ListingTypeSale))
	}
	for _, f := range []PropertyField{FieldAddressStreet, FieldAddressNumber, FieldAddressRegion, FieldAddressCommune} {
		if isBlank(*record.fieldPtr(f)) {
			errs.Add(string(f), requiredMessage(f))
		}
	}

	if (record.Latitude == nil) != (record.Longitude == nil) {
		errs.Add("coordinates", "latitude and longitude must be provided together")
	} else if record.HasCoordinates() {
		if *record.Latitude < -90 || *record.Latitude > 90 || *record.Longitude < -180 || *record.Longitude > 180 {
			errs.Add("coordinates", "coordinates are out of range")
		}
	}

	return errs
}

// Границы записи числа формы. Значения за их пределами отклоняются до любой арифметики.
const (
	maxNumberLength   = 32
	maxNumberScale    = 8
	maxNumberExponent = 9
)

var errNumberOutOfRange = errors.New("number is out of range")

// parseDecimal разбирает число с запятой или точкой и проверяет длину и порядок.
func parseDecimal(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if len(normalized) > maxNumberLength {
		return decimal.Zero, errNumberOutOfRange
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp < -maxNumberScale || exp > maxNumberExponent {
		return decimal.Zero, errNumberOutOfRange
	}
	return d, nil
}

// ParseNonNegative разбирает числовое значение формы. Допускается запятая как десятичный разделитель.
func ParseNonNegative(raw string, integer bool) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if errors.Is(err, errNumberOutOfRange) {
		return decimal.Zero, fmt.Errorf("%q is out of range", raw)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%q must not be negative", raw)
	}
	if integer && !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("%q must be a whole number", raw)
	}
	return d, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func requiredMessage(field any) string {
	return fmt.Sprintf("%s is required", field)
}
