package postgres_adapter

import (
	"context"
	"fmt"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"github.com/shopspring/decimal"
)

// Точность geohash ~153x153 метра, как у поиска по соседним объектам.
const geohashPrecision = 7

// PostgresPropertyRepository сохраняет публикуемые объекты в таблицу properties.
type PostgresPropertyRepository struct {
	db dbExecutor
}

func NewPostgresPropertyRepository(db dbExecutor) (*PostgresPropertyRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database executor cannot be nil")
	}
	return &PostgresPropertyRepository{db: db}, nil
}

func (r *PostgresPropertyRepository) SaveProperty(ctx context.Context, publisherID uuid.UUID, record domain.PropertyRecord) (uuid.UUID, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":     "PostgresPropertyRepository",
		"method":        "SaveProperty",
		"publisher_id":  publisherID,
		"property_type": record.PropertyType,
	})

	numeric := make(map[domain.PropertyField]*decimal.Decimal, 8)
	for _, f := range []domain.PropertyField{
		domain.FieldBedrooms, domain.FieldBathrooms, domain.FieldUsableArea, domain.FieldTotalArea,
		domain.FieldStorageArea, domain.FieldParkingCount, domain.FieldPrice, domain.FieldCommonExpenses,
	} {
		raw, _ := record.Field(f)
		v, err := nullableNumeric(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("field %s is not numeric: %w", f, err)
		}
		numeric[f] = v
	}

	var geo *string
	if record.HasCoordinates() {
		h := geohash.EncodeWithPrecision(*record.Latitude, *record.Longitude, geohashPrecision)
		geo = &h
	}

	query := `
		INSERT INTO properties (
			publisher_id, property_type, listing_type,
			bedrooms, bathrooms, usable_area, total_area,
			has_terrace, has_storage, storage_area, storage_location, storage_number,
			parking_count, parking_location, parcel_number, price, common_expenses, description,
			address_street, address_number, address_unit, address_region, address_commune,
			latitude, longitude, geohash
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		publisherID, string(record.PropertyType), string(record.ListingType),
		numeric[domain.FieldBedrooms], numeric[domain.FieldBathrooms],
		numeric[domain.FieldUsableArea], numeric[domain.FieldTotalArea],
		nullableText(record.HasTerrace), nullableText(record.HasStorage), numeric[domain.FieldStorageArea],
		nullableText(record.StorageLocation), nullableText(record.StorageNumber),
		numeric[domain.FieldParkingCount], nullableText(record.ParkingLocation), nullableText(record.ParcelNumber),
		numeric[domain.FieldPrice], numeric[domain.FieldCommonExpenses], nullableText(record.Description),
		record.Address.Street, record.Address.Number, nullableText(record.Address.Unit),
		record.Address.Region, record.Address.Commune,
		record.Latitude, record.Longitude, geo,
	).Scan(&id)
	if err != nil {
		repoLogger.Error("Failed to insert property", err, nil)
		return uuid.Nil, fmt.Errorf("failed to insert property: %w", err)
	}

	repoLogger.Debug("Property saved.", port.Fields{"property_id": id})
	return id, nil
}
