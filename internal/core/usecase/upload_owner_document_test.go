package usecase

import (
	"context"
	"errors"
	"testing"

	"property-publishing-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadOwnerDocument(t *testing.T) {
	ownerID := uuid.New()
	propertyID := uuid.New()
	pdf := domain.PendingFile{FileName: "escritura.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.7")}

	tests := []struct {
		name    string
		owners  *fakeOwnerRepo
		uploads *fakeUploads
		docType domain.DocumentType
		file    domain.PendingFile
		wantErr error
	}{
		{
			name:    "legal owner deed",
			owners:  &fakeOwnerRepo{types: map[uuid.UUID]domain.OwnerType{ownerID: domain.OwnerTypeLegal}},
			uploads: &fakeUploads{},
			docType: domain.DocConstitutionDeed,
			file:    pdf,
		},
		{
			name:    "unknown owner",
			owners:  &fakeOwnerRepo{},
			uploads: &fakeUploads{},
			docType: domain.DocConstitutionDeed,
			file:    pdf,
			wantErr: domain.ErrOwnerNotFound,
		},
		{
			name:    "document of another variant",
			owners:  &fakeOwnerRepo{types: map[uuid.UUID]domain.OwnerType{ownerID: domain.OwnerTypeNatural}},
			uploads: &fakeUploads{},
			docType: domain.DocConstitutionDeed,
			file:    pdf,
			wantErr: domain.ErrDocumentNotApplicable,
		},
		{
			name:    "empty file",
			owners:  &fakeOwnerRepo{types: map[uuid.UUID]domain.OwnerType{ownerID: domain.OwnerTypeLegal}},
			uploads: &fakeUploads{},
			docType: domain.DocConstitutionDeed,
			file:    domain.PendingFile{FileName: "vacio.pdf"},
			wantErr: domain.ErrEmptyFile,
		},
		{
			name:    "too large",
			owners:  &fakeOwnerRepo{types: map[uuid.UUID]domain.OwnerType{ownerID: domain.OwnerTypeLegal}},
			uploads: &fakeUploads{},
			docType: domain.DocConstitutionDeed,
			file:    domain.PendingFile{FileName: "big.pdf", Content: make([]byte, 65)},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:    "storage failure",
			owners:  &fakeOwnerRepo{types: map[uuid.UUID]domain.OwnerType{ownerID: domain.OwnerTypeLegal}},
			uploads: &fakeUploads{failFor: map[domain.DocumentType]bool{domain.DocConstitutionDeed: true}},
			docType: domain.DocConstitutionDeed,
			file:    pdf,
			wantErr: domain.ErrUploadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewUploadOwnerDocumentUseCase(tt.owners, tt.uploads, 64)

			stored, err := uc.Execute(context.Background(), propertyID, ownerID, tt.docType, tt.file)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, tt.owners.attached)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stored.Path, ownerID.String())
			require.Len(t, tt.owners.attached, 1)
			assert.Equal(t, stored, tt.owners.attached[0].file)
		})
	}
}

func TestUploadOwnerDocument_AttachFailure(t *testing.T) {
	ownerID := uuid.New()
	owners := &fakeOwnerRepo{
		types:     map[uuid.UUID]domain.OwnerType{ownerID: domain.OwnerTypeNatural},
		attachErr: errors.New("constraint violation"),
	}
	uc := NewUploadOwnerDocumentUseCase(owners, &fakeUploads{}, 0)

	_, err := uc.Execute(context.Background(), uuid.New(), ownerID, domain.DocNationalID,
		domain.PendingFile{FileName: "cedula.pdf", Content: []byte("x")})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUploadFailed)
}
