package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// ErrDuplicateOwner - собственник с тем же RUT уже привязан к объекту.
var ErrDuplicateOwner = errors.New("owner is already registered for this property")

// PostgresOwnerRepository хранит собственников, их доли и документы.
type PostgresOwnerRepository struct {
	db dbExecutor
}

func NewPostgresOwnerRepository(db dbExecutor) (*PostgresOwnerRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database executor cannot be nil")
	}
	return &PostgresOwnerRepository{db: db}, nil
}

// SaveOwner сохраняет собственника. Данные варианта (физлицо/юрлицо) хранятся в jsonb.
func (r *PostgresOwnerRepository) SaveOwner(ctx context.Context, propertyID uuid.UUID, owner domain.Owner) (uuid.UUID, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":      "PostgresOwnerRepository",
		"method":         "SaveOwner",
		"property_id":    propertyID,
		"draft_owner_id": owner.ID,
		"owner_type":     owner.Type(),
	})

	details, err := json.Marshal(toOwnerDetails(owner))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode owner details: %w", err)
	}

	query := `
		INSERT INTO owners (
			property_id, owner_type, identity_key, display_name, email, nationality,
			address_street, address_number, address_unit, address_region, address_commune,
			address_unit_type, address_apartment_number, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	a := owner.Address
	var id uuid.UUID
	err = r.db.QueryRow(ctx, query,
		propertyID, string(owner.Type()), domain.NormalizeRUT(owner.IdentityKey()), owner.DisplayName(), owner.ContactEmail(),
		nullableText(owner.Nationality),
		a.Street, a.Number, nullableText(a.Unit), a.Region, a.Commune,
		nullableText(a.UnitType), nullableText(a.ApartmentNumber), details,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			repoLogger.Warn("Owner identity already registered for property.", nil)
			return uuid.Nil, fmt.Errorf("%w: %s", ErrDuplicateOwner, owner.IdentityKey())
		}
		repoLogger.Error("Failed to insert owner", err, nil)
		return uuid.Nil, fmt.Errorf("failed to insert owner: %w", err)
	}

	repoLogger.Debug("Owner saved.", port.Fields{"owner_id": id})
	return id, nil
}

func (r *PostgresOwnerRepository) SaveOwnershipRelationship(ctx context.Context, propertyID, ownerID uuid.UUID, percentage decimal.Decimal) error {
	query := `
		INSERT INTO property_ownerships (property_id, owner_id, ownership_percentage)
		VALUES ($1, $2, $3)
		ON CONFLICT (property_id, owner_id) DO UPDATE SET ownership_percentage = EXCLUDED.ownership_percentage`

	if _, err := r.db.Exec(ctx, query, propertyID, ownerID, percentage); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to save ownership relationship", err, port.Fields{
			"component":   "PostgresOwnerRepository",
			"property_id": propertyID,
			"owner_id":    ownerID,
		})
		return fmt.Errorf("failed to save ownership relationship: %w", err)
	}
	return nil
}

// AttachDocument привязывает загруженный файл к собственнику. Повторная загрузка того же типа заменяет ссылку.
func (r *PostgresOwnerRepository) AttachDocument(ctx context.Context, ownerID uuid.UUID, docType domain.DocumentType, file domain.StoredFile) error {
	query := `
		INSERT INTO owner_documents (owner_id, document_type, url, storage_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, document_type) DO UPDATE SET
			url = EXCLUDED.url,
			storage_path = EXCLUDED.storage_path,
			uploaded_at = now()`

	tag, err := r.db.Exec(ctx, query, ownerID, string(docType), file.URL, nullableText(file.Path))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, ownerID)
		}
		return fmt.Errorf("failed to attach document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		contextkeys.LoggerFromContext(ctx).Warn("Document attach affected no rows.", port.Fields{
			"owner_id":      ownerID,
			"document_type": docType,
		})
	}
	return nil
}

func (r *PostgresOwnerRepository) FindOwnerType(ctx context.Context, propertyID, ownerID uuid.UUID) (domain.OwnerType, error) {
	query := `SELECT owner_type FROM owners WHERE property_id = $1 AND id = $2`

	var raw string
	if err := r.db.QueryRow(ctx, query, propertyID, ownerID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, ownerID)
		}
		return "", fmt.Errorf("failed to query owner type: %w", err)
	}
	return domain.ParseOwnerType(raw)
}

// ownerDetails - jsonb-представление данных варианта.
type ownerDetails struct {
	Natural *naturalDetails `json:"natural,omitempty"`
	Legal   *legalDetails   `json:"juridica,omitempty"`
}

type naturalDetails struct {
	FirstName             string `json:"first_name"`
	PaternalLastName      string `json:"paternal_last_name"`
	MaternalLastName      string `json:"maternal_last_name,omitempty"`
	NationalID            string `json:"national_id"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone,omitempty"`
	MaritalPropertyRegime string `json:"marital_property_regime,omitempty"`
}

type representativeDetails struct {
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name,omitempty"`
	NationalID       string `json:"national_id"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
}

type legalDetails struct {
	CompanyName      string                `json:"company_name"`
	CompanyTaxID     string                `json:"company_tax_id"`
	BusinessPurpose  string                `json:"business_purpose,omitempty"`
	CompanyEmail     string                `json:"company_email,omitempty"`
	CompanyPhone     string                `json:"company_phone,omitempty"`
	ConstitutionType string                `json:"constitution_type"`
	ConstitutionDate string                `json:"constitution_date"`
	VerificationCode string                `json:"verification_code,omitempty"`
	NotaryName       string                `json:"notary_name,omitempty"`
	RepertoryNumber  string                `json:"repertory_number,omitempty"`
	Representative   representativeDetails `json:"representative"`
}

func toOwnerDetails(o domain.Owner) ownerDetails {
	if n, ok := o.Natural(); ok {
		d := naturalDetails(n)
		return ownerDetails{Natural: &d}
	}
	if l, ok := o.Legal(); ok {
		return ownerDetails{Legal: &legalDetails{
			CompanyName:      l.CompanyName,
			CompanyTaxID:     l.CompanyTaxID,
			BusinessPurpose:  l.BusinessPurpose,
			CompanyEmail:     l.CompanyEmail,
			CompanyPhone:     l.CompanyPhone,
			ConstitutionType: string(l.ConstitutionType),
			ConstitutionDate: l.ConstitutionDate,
			VerificationCode: l.VerificationCode,
			NotaryName:       l.NotaryName,
			RepertoryNumber:  l.RepertoryNumber,
			Representative:   representativeDetails(l.Representative),
		}}
	}
	return ownerDetails{}
}
