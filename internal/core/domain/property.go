package domain

import "fmt"

// PropertyType - тип объекта недвижимости. Ровно один тип активен в каждый момент.
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "Casa"
	PropertyTypeApartment PropertyType = "Departamento"
	PropertyTypeOffice    PropertyType = "Oficina"
	PropertyTypeParking   PropertyType = "Estacionamiento"
	PropertyTypeStorage   PropertyType = "Bodega"
	PropertyTypeLand      PropertyType = "Parcela"
)

// PropertyTypes перечисляет типы в порядке, в котором их показывает форма.
var PropertyTypes = []PropertyType{
	PropertyTypeHouse,
	PropertyTypeApartment,
	PropertyTypeOffice,
	PropertyTypeParking,
	PropertyTypeStorage,
	PropertyTypeLand,
}

func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(s)
	if _, ok := PropertyTypePolicies[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPropertyType, s)
	}
	return t, nil
}

type ListingType string

const (
	ListingTypeRent ListingType = "arriendo"
	ListingTypeSale ListingType = "venta"
)

// Значения флагов "есть терраса" / "есть кладовая" в форме.
const (
	FlagYes = "Sí"
	FlagNo  = "No"
)

// PropertyField - ключ поля объекта. Используется и как ключ ошибки валидации.
type PropertyField string

const (
	FieldBedrooms        PropertyField = "bedrooms"
	FieldBathrooms       PropertyField = "bathrooms"
	FieldUsableArea      PropertyField = "usable_area"
	FieldTotalArea       PropertyField = "total_area"
	FieldHasTerrace      PropertyField = "has_terrace"
	FieldHasStorage      PropertyField = "has_storage"
	FieldStorageArea     PropertyField = "storage_area"
	FieldStorageLocation PropertyField = "storage_location"
	FieldStorageNumber   PropertyField = "storage_number"
	FieldParkingCount    PropertyField = "parking_count"
	FieldParkingLocation PropertyField = "parking_location"
	FieldParcelNumber    PropertyField = "parcel_number"
	FieldPrice           PropertyField = "price"
	FieldCommonExpenses  PropertyField = "common_expenses"
	FieldDescription     PropertyField = "description"

	FieldListingType    PropertyField = "listing_type"
	FieldAddressStreet  PropertyField = "address_street"
	FieldAddressNumber  PropertyField = "address_number"
	FieldAddressUnit    PropertyField = "address_unit"
	FieldAddressRegion  PropertyField = "address_region"
	FieldAddressCommune PropertyField = "address_commune"
)

// numericFields - поля, которые при непустом значении должны быть неотрицательным числом.
var numericFields = []PropertyField{
	FieldBedrooms,
	FieldBathrooms,
	FieldUsableArea,
	FieldTotalArea,
	FieldStorageArea,
	FieldParkingCount,
	FieldPrice,
	FieldCommonExpenses,
}

type PropertyAddress struct {
	Street  string
	Number  string
	Unit    string
	Region  string
	Commune string
}

// PropertyRecord - характеристики публикуемого объекта в строковом виде формы.
type PropertyRecord struct {
	PropertyType PropertyType
	ListingType  ListingType

	Bedrooms        string
	Bathrooms       string
	UsableArea      string
	TotalArea       string
	HasTerrace      string
	HasStorage      string
	StorageArea     string
	StorageLocation string
	StorageNumber   string
	ParkingCount    string
	ParkingLocation string
	ParcelNumber    string
	Price           string
	CommonExpenses  string
	Description     string

	Address   PropertyAddress
	Latitude  *float64
	Longitude *float64
}

// NewPropertyRecord возвращает пустую запись с примененной политикой типа.
func NewPropertyRecord(t PropertyType) (PropertyRecord, error) {
	return ApplyPropertyType(PropertyRecord{ListingType: ListingTypeRent}, t)
}

// Field возвращает значение поля по ключу.
func (p PropertyRecord) Field(f PropertyField) (string, error) {
	ptr := p.fieldPtr(f)
	if ptr == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownPropertyField, f)
	}
	return *ptr, nil
}

// WithField возвращает копию записи с измененным полем.
// Сама проверка применимости поля к типу выполняется в Draft.SetPropertyField.
func (p PropertyRecord) WithField(f PropertyField, value string) (PropertyRecord, error) {
	if f == FieldListingType {
		lt := ListingType(value)
		if lt != ListingTypeRent && lt != ListingTypeSale {
			return p, fmt.Errorf("%w: listing type %q", ErrFieldNotApplicable, value)
		}
		p.ListingType = lt
		return p, nil
	}
	ptr := p.fieldPtr(f)
	if ptr == nil {
		return p, fmt.Errorf("%w: %q", ErrUnknownPropertyField, f)
	}
	*ptr = value
	return p, nil
}

func (p *PropertyRecord) fieldPtr(f PropertyField) *string {
	switch f {
	case FieldBedrooms:
		return &p.Bedrooms
	case FieldBathrooms:
		return &p.Bathrooms
	case FieldUsableArea:
		return &p.UsableArea
	case FieldTotalArea:
		return &p.TotalArea
	case FieldHasTerrace:
		return &p.HasTerrace
	case FieldHasStorage:
		return &p.HasStorage
	case FieldStorageArea:
		return &p.StorageArea
	case FieldStorageLocation:
		return &p.StorageLocation
	case FieldStorageNumber:
		return &p.StorageNumber
	case FieldParkingCount:
		return &p.ParkingCount
	case FieldParkingLocation:
		return &p.ParkingLocation
	case FieldParcelNumber:
		return &p.ParcelNumber
	case FieldPrice:
		return &p.Price
	case FieldCommonExpenses:
		return &p.CommonExpenses
	case FieldDescription:
		return &p.Description
	case FieldAddressStreet:
		return &p.Address.Street
	case FieldAddressNumber:
		return &p.Address.Number
	case FieldAddressUnit:
		return &p.Address.Unit
	case FieldAddressRegion:
		return &p.Address.Region
	case FieldAddressCommune:
		return &p.Address.Commune
	}
	return nil
}

// HasCoordinates сообщает, заданы ли обе координаты.
func (p PropertyRecord) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
