package usecase

import (
	"context"
	"errors"
	"testing"

	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakePropertyRepo struct {
	saved []domain.PropertyRecord
	id    uuid.UUID
	err   error
}

func (f *fakePropertyRepo) SaveProperty(ctx context.Context, publisherID uuid.UUID, record domain.PropertyRecord) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.saved = append(f.saved, record)
	if f.id == uuid.Nil {
		f.id = uuid.New()
	}
	return f.id, nil
}

type savedRelation struct {
	ownerID    uuid.UUID
	percentage decimal.Decimal
}

type attachedDoc struct {
	ownerID uuid.UUID
	docType domain.DocumentType
	file    domain.StoredFile
}

type fakeOwnerRepo struct {
	owners    []domain.Owner
	relations []savedRelation
	attached  []attachedDoc
	types     map[uuid.UUID]domain.OwnerType

	failOnOwner int // 1-based номер вызова SaveOwner, который вернет ошибку
	attachErr   error
}

func (f *fakeOwnerRepo) SaveOwner(ctx context.Context, propertyID uuid.UUID, owner domain.Owner) (uuid.UUID, error) {
	if f.failOnOwner == len(f.owners)+1 {
		return uuid.Nil, errors.New("connection reset")
	}
	f.owners = append(f.owners, owner)
	return uuid.New(), nil
}

func (f *fakeOwnerRepo) SaveOwnershipRelationship(ctx context.Context, propertyID, ownerID uuid.UUID, percentage decimal.Decimal) error {
	f.relations = append(f.relations, savedRelation{ownerID: ownerID, percentage: percentage})
	return nil
}

func (f *fakeOwnerRepo) AttachDocument(ctx context.Context, ownerID uuid.UUID, docType domain.DocumentType, file domain.StoredFile) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached = append(f.attached, attachedDoc{ownerID: ownerID, docType: docType, file: file})
	return nil
}

func (f *fakeOwnerRepo) FindOwnerType(ctx context.Context, propertyID, ownerID uuid.UUID) (domain.OwnerType, error) {
	t, ok := f.types[ownerID]
	if !ok {
		return "", domain.ErrOwnerNotFound
	}
	return t, nil
}

type fakeUploads struct {
	calls   int
	failFor map[domain.DocumentType]bool
}

func (f *fakeUploads) Upload(ctx context.Context, ownerOrPropertyID string, docType domain.DocumentType, file domain.PendingFile) (domain.StoredFile, error) {
	f.calls++
	if f.failFor[docType] {
		return domain.StoredFile{}, errors.New("bucket unavailable")
	}
	path := "uploads/" + ownerOrPropertyID + "/" + string(docType) + "/" + file.FileName
	return domain.StoredFile{URL: "https://cdn.example.cl/" + path, Path: path}, nil
}

func (f *fakeUploads) Owns(file domain.StoredFile) bool {
	return file.URL == "https://cdn.example.cl/"+file.Path
}

type fakeNotifier struct {
	results []domain.PublicationResult
	err     error
}

func (f *fakeNotifier) NotifyPropertyPublished(ctx context.Context, result domain.PublicationResult) error {
	f.results = append(f.results, result)
	return f.err
}

func validDraft(t *testing.T, ownerTypes ...domain.OwnerType) domain.Draft {
	t.Helper()
	d, err := domain.NewDraft()
	require.NoError(t, err)
	d.Owners = nil

	require.NoError(t, d.SetPropertyType(domain.PropertyTypeApartment))
	for f, v := range map[domain.PropertyField]string{
		domain.FieldBedrooms:       "2",
		domain.FieldBathrooms:      "1",
		domain.FieldUsableArea:     "58",
		domain.FieldTotalArea:      "64",
		domain.FieldPrice:          "650000",
		domain.FieldDescription:    "Departamento cerca del metro",
		domain.FieldAddressStreet:  "Av. Matta",
		domain.FieldAddressNumber:  "1020",
		domain.FieldAddressRegion:  "Metropolitana",
		domain.FieldAddressCommune: "Santiago",
	} {
		require.NoError(t, d.SetPropertyField(f, v))
	}

	for i, ot := range ownerTypes {
		o, err := d.AddOwner(ot)
		require.NoError(t, err)
		fields := map[domain.OwnerField]string{
			domain.OwnerFieldAddressStreet:   "Av. Matta",
			domain.OwnerFieldAddressNumber:   "1020",
			domain.OwnerFieldAddressRegion:   "Metropolitana",
			domain.OwnerFieldAddressCommune:  "Santiago",
			domain.OwnerFieldAddressUnitType: "departamento",
		}
		rut := []string{"11.111.111-1", "22.222.222-2", "33.333.333-3"}[i]
		email := []string{"uno@example.cl", "dos@example.cl", "tres@example.cl"}[i]
		if ot == domain.OwnerTypeNatural {
			fields[domain.OwnerFieldFirstName] = "Ana"
			fields[domain.OwnerFieldPaternalLastName] = "Rojas"
			fields[domain.OwnerFieldNationalID] = rut
			fields[domain.OwnerFieldEmail] = email
			fields[domain.OwnerFieldNationality] = "Chilena"
		} else {
			require.NoError(t, d.UpdateOwnerField(o.ID, domain.OwnerFieldConstitutionType, string(domain.ConstitutionTraditional)))
			fields[domain.OwnerFieldCompanyName] = "Inmobiliaria Sur Ltda."
			fields[domain.OwnerFieldCompanyTaxID] = rut
			fields[domain.OwnerFieldCompanyEmail] = email
			fields[domain.OwnerFieldConstitutionDate] = "2015-03-02"
			fields[domain.OwnerFieldNotaryName] = "Notaría Pérez"
			fields[domain.OwnerFieldRepertoryNumber] = "4411-2015"
			fields[domain.OwnerFieldRepFirstName] = "Luis"
			fields[domain.OwnerFieldRepPaternalLastName] = "Mora"
			fields[domain.OwnerFieldRepNationalID] = "9.999.999-9"
			fields[domain.OwnerFieldRepEmail] = "luis@sur.cl"
			fields[domain.OwnerFieldRepPhone] = "+56922223333"
		}
		for f, v := range fields {
			require.NoError(t, d.UpdateOwnerField(o.ID, f, v), "field %s", f)
		}
		for _, slot := range domain.RequiredDocuments(ot) {
			if slot.Required {
				require.NoError(t, d.AttachDocument(o.ID, slot.Type, domain.PendingFile{
					FileName: string(slot.Type) + ".pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4"),
				}))
			}
		}
	}
	return *d
}

func setPercentages(t *testing.T, d *domain.Draft, values ...string) {
	t.Helper()
	for i, v := range values {
		require.NoError(t, d.UpdateOwnerField(d.Owners[i].ID, domain.OwnerFieldOwnershipPercentage, v))
	}
}
