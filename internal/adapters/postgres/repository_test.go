package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type call struct {
	sql  string
	args []any
}

type fakeExecutor struct {
	calls    []call
	rowValue any
	rowErr   error
	execErr  error
	affected int64
}

func (f *fakeExecutor) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if f.affected == 0 {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeExecutor) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql: sql, args: args})
	return fakeRow{scan: func(dest ...any) error {
		if f.rowErr != nil {
			return f.rowErr
		}
		switch d := dest[0].(type) {
		case *uuid.UUID:
			*d = f.rowValue.(uuid.UUID)
		case *string:
			*d = f.rowValue.(string)
		}
		return nil
	}}
}

func TestNewRepositories_NilExecutor(t *testing.T) {
	_, err := NewPostgresPropertyRepository(nil)
	assert.Error(t, err)
	_, err = NewPostgresOwnerRepository(nil)
	assert.Error(t, err)
}

func TestSaveProperty(t *testing.T) {
	id := uuid.New()
	db := &fakeExecutor{rowValue: id}
	repo, err := NewPostgresPropertyRepository(db)
	require.NoError(t, err)

	lat, lon := -33.4489, -70.6693
	record, err := domain.NewPropertyRecord(domain.PropertyTypeApartment)
	require.NoError(t, err)
	record.Bedrooms = "2"
	record.UsableArea = "58,5"
	record.Price = "650000"
	record.Address = domain.PropertyAddress{Street: "Av. Matta", Number: "1020", Region: "Metropolitana", Commune: "Santiago"}
	record.Latitude, record.Longitude = &lat, &lon

	got, err := repo.SaveProperty(context.Background(), uuid.New(), record)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.Len(t, db.calls, 1)
	args := db.calls[0].args
	require.Len(t, args, 26)
	assert.Equal(t, "Departamento", args[1])
	assert.Equal(t, "2", args[3].(*decimal.Decimal).String())
	assert.Equal(t, "58.5", args[5].(*decimal.Decimal).String())
	assert.Nil(t, args[14], "blank parcel number is stored as NULL")
	geo := args[25].(*string)
	require.NotNil(t, geo)
	assert.Len(t, *geo, geohashPrecision)
}

func TestSaveProperty_WithoutCoordinatesHasNoGeohash(t *testing.T) {
	db := &fakeExecutor{rowValue: uuid.New()}
	repo, _ := NewPostgresPropertyRepository(db)
	record, _ := domain.NewPropertyRecord(domain.PropertyTypeStorage)

	_, err := repo.SaveProperty(context.Background(), uuid.New(), record)
	require.NoError(t, err)

	assert.Nil(t, db.calls[0].args[25])
}

func TestSaveProperty_InsertError(t *testing.T) {
	db := &fakeExecutor{rowErr: errors.New("connection refused")}
	repo, _ := NewPostgresPropertyRepository(db)
	record, _ := domain.NewPropertyRecord(domain.PropertyTypeHouse)

	_, err := repo.SaveProperty(context.Background(), uuid.New(), record)
	assert.ErrorContains(t, err, "connection refused")
}

func naturalOwner(t *testing.T) domain.Owner {
	t.Helper()
	o, err := domain.NewOwner(domain.OwnerTypeNatural)
	require.NoError(t, err)
	for f, v := range map[domain.OwnerField]string{
		domain.OwnerFieldFirstName:        "Ana",
		domain.OwnerFieldPaternalLastName: "Rojas",
		domain.OwnerFieldNationalID:       "11.111.111-1",
		domain.OwnerFieldEmail:            "ana@example.cl",
		domain.OwnerFieldAddressStreet:    "Av. Matta",
	} {
		o, err = domain.SetOwnerField(o, f, v)
		require.NoError(t, err)
	}
	return o
}

func TestSaveOwner(t *testing.T) {
	id := uuid.New()
	db := &fakeExecutor{rowValue: id}
	repo, _ := NewPostgresOwnerRepository(db)

	got, err := repo.SaveOwner(context.Background(), uuid.New(), naturalOwner(t))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	args := db.calls[0].args
	assert.Equal(t, "natural", args[1])
	assert.Equal(t, "111111111", args[2])

	var details map[string]map[string]any
	require.NoError(t, json.Unmarshal(args[13].([]byte), &details))
	assert.Equal(t, "Ana", details["natural"]["first_name"])
	assert.NotContains(t, details, "juridica")
}

func TestSaveOwner_UniqueViolation(t *testing.T) {
	db := &fakeExecutor{rowErr: &pgconn.PgError{Code: "23505"}}
	repo, _ := NewPostgresOwnerRepository(db)

	_, err := repo.SaveOwner(context.Background(), uuid.New(), naturalOwner(t))

	assert.ErrorIs(t, err, ErrDuplicateOwner)
}

func TestToOwnerDetails_Legal(t *testing.T) {
	o, err := domain.NewOwner(domain.OwnerTypeLegal)
	require.NoError(t, err)
	o, err = domain.SetOwnerField(o, domain.OwnerFieldConstitutionType, string(domain.ConstitutionSameDay))
	require.NoError(t, err)
	o, err = domain.SetOwnerField(o, domain.OwnerFieldVerificationCode, "ABC123")
	require.NoError(t, err)
	o, err = domain.SetOwnerField(o, domain.OwnerFieldRepPhone, "+56911112222")
	require.NoError(t, err)

	d := toOwnerDetails(o)

	require.NotNil(t, d.Legal)
	assert.Nil(t, d.Natural)
	assert.Equal(t, "empresa_en_un_dia", d.Legal.ConstitutionType)
	assert.Equal(t, "ABC123", d.Legal.VerificationCode)
	assert.Equal(t, "+56911112222", d.Legal.Representative.Phone)
}

func TestSaveOwnershipRelationship(t *testing.T) {
	db := &fakeExecutor{affected: 1}
	repo, _ := NewPostgresOwnerRepository(db)

	err := repo.SaveOwnershipRelationship(context.Background(), uuid.New(), uuid.New(), decimal.RequireFromString("37.5"))
	require.NoError(t, err)
	assert.Equal(t, "37.5", db.calls[0].args[2].(decimal.Decimal).String())

	db.execErr = errors.New("deadlock")
	assert.Error(t, repo.SaveOwnershipRelationship(context.Background(), uuid.New(), uuid.New(), decimal.Zero))
}

func TestAttachDocument(t *testing.T) {
	db := &fakeExecutor{affected: 1}
	repo, _ := NewPostgresOwnerRepository(db)
	file := domain.StoredFile{URL: "https://cdn.example.cl/a.pdf", Path: "uploads/a.pdf"}

	require.NoError(t, repo.AttachDocument(context.Background(), uuid.New(), domain.DocNationalID, file))
	assert.Equal(t, "cedula_identidad", db.calls[0].args[1])

	db.execErr = &pgconn.PgError{Code: "23503"}
	err := repo.AttachDocument(context.Background(), uuid.New(), domain.DocNationalID, file)
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
}

func TestFindOwnerType(t *testing.T) {
	db := &fakeExecutor{rowValue: "juridica"}
	repo, _ := NewPostgresOwnerRepository(db)

	got, err := repo.FindOwnerType(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerTypeLegal, got)

	db.rowErr = pgx.ErrNoRows
	_, err = repo.FindOwnerType(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
}
