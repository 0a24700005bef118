package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"
	"property-publishing-service/internal/core/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)         {}
func (nopLogger) Warn(string, port.Fields)         {}
func (nopLogger) Error(string, error, port.Fields) {}
func (nopLogger) Debug(string, port.Fields)        {}
func (l nopLogger) WithFields(port.Fields) port.LoggerPort {
	return l
}

type fakePublishUC struct {
	draft     domain.Draft
	publisher uuid.UUID
	result    *domain.PublicationResult
	err       error
}

func (f *fakePublishUC) Execute(ctx context.Context, publisherID uuid.UUID, draft domain.Draft) (*domain.PublicationResult, error) {
	f.draft = draft
	f.publisher = publisherID
	return f.result, f.err
}

type fakeUploadUC struct {
	file   domain.PendingFile
	stored domain.StoredFile
	err    error
}

func (f *fakeUploadUC) Execute(ctx context.Context, propertyID, ownerID uuid.UUID, docType domain.DocumentType, file domain.PendingFile) (domain.StoredFile, error) {
	f.file = file
	return f.stored, f.err
}

type testAPI struct {
	router  http.Handler
	publish *fakePublishUC
	upload  *fakeUploadUC
}

func newTestAPI() *testAPI {
	api := &testAPI{publish: &fakePublishUC{}, upload: &fakeUploadUC{}}
	api.router = NewRouter(
		NewDraftHandler(usecase.NewValidateDraftUseCase()),
		NewPublicationHandler(api.publish, api.upload, 1024),
		[]string{"*"},
		nopLogger{},
	)
	return api
}

func (api *testAPI) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil && headers["Content-Type"] == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGetOwnerTemplate(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/owners/template?owner_type=natural", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	owner := decode[OwnerDTO](t, rec)
	assert.NotEmpty(t, owner.ID)
	assert.NotNil(t, owner.Natural)
	assert.Nil(t, owner.Legal)
	require.Len(t, owner.Documents, 1)
	assert.Equal(t, "cedula_identidad", owner.Documents[0].Type)
	assert.True(t, owner.Documents[0].Required)

	rec = api.do(t, http.MethodGet, "/api/v1/owners/template?owner_type=sociedad", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRequiredDocuments(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/owners/required-documents?owner_type=juridica", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decode[[]DocumentDTO](t, rec)
	require.Len(t, docs, 3)
	assert.False(t, docs[1].Required, "power of attorney is optional")
}

func TestGetDraftTemplate(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/drafts/template", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[DraftDTO](t, rec)
	assert.Equal(t, "Casa", draft.Property.PropertyType)
	assert.Equal(t, "arriendo", draft.Property.ListingType)
	require.Len(t, draft.Owners, 1)
	assert.Equal(t, "natural", draft.Owners[0].OwnerType)
}

func TestChangeOwnerType(t *testing.T) {
	api := newTestAPI()
	body := []byte(`{
		"owner": {"id": "o1", "owner_type": "natural", "address": {"street": "Av. Matta"},
		          "natural": {"first_name": "Ana"}},
		"owner_type": "juridica"
	}`)

	rec := api.do(t, http.MethodPost, "/api/v1/owners/change-type", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	owner := decode[OwnerDTO](t, rec)
	assert.Equal(t, "o1", owner.ID)
	assert.Equal(t, "juridica", owner.OwnerType)
	assert.Equal(t, "Av. Matta", owner.Address.Street)
	assert.Nil(t, owner.Natural)
	require.NotNil(t, owner.Legal)
	assert.Len(t, owner.Documents, 3)

	rec = api.do(t, http.MethodPost, "/api/v1/owners/change-type", []byte(`{"owner_type": "juridica"}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyPropertyType(t *testing.T) {
	api := newTestAPI()
	body := []byte(`{"property": {"property_type": "Casa", "bedrooms": "3", "usable_area": "120"}, "property_type": "Estacionamiento"}`)

	rec := api.do(t, http.MethodPost, "/api/v1/properties/apply-type", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[PropertyDTO](t, rec)
	assert.Equal(t, "Estacionamiento", p.PropertyType)
	assert.Equal(t, "0", p.Bedrooms)
	assert.Empty(t, p.UsableArea)

	body = []byte(`{"property": {"property_type": "Casa"}, "property_type": "Castillo"}`)
	rec = api.do(t, http.MethodPost, "/api/v1/properties/apply-type", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPropertyTypes(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/properties/types", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	policies := decode[[]PropertyTypePolicyDTO](t, rec)
	require.Len(t, policies, len(domain.PropertyTypes))
	assert.Equal(t, "Casa", policies[0].PropertyType)
	assert.Equal(t, "0", policies[3].Forced["bedrooms"])
}

func TestValidateDraft(t *testing.T) {
	api := newTestAPI()
	body := []byte(`{
		"property": {"property_type": "Casa"},
		"owners": [
			{"id": "a", "owner_type": "natural", "ownership_percentage": 60},
			{"id": "b", "owner_type": "natural", "ownership_percentage": "30"}
		]
	}`)

	rec := api.do(t, http.MethodPost, "/api/v1/properties/validate", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ValidationResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Errors, domain.ErrKeyOwnershipPercentage)
	assert.Contains(t, resp.Errors, string(domain.FieldBedrooms))
	assert.Contains(t, resp.Errors, domain.OwnerErrorKey("a", string(domain.OwnerFieldFirstName)))
	require.Len(t, resp.Draft.Owners, 2)
	assert.Equal(t, PercentageDTO("60"), resp.Draft.Owners[0].OwnershipPercentage)
}

func TestValidateDraft_DocumentReferences(t *testing.T) {
	key := "uploads/" + uuid.NewString() + "/cedula_identidad/x_cedula.pdf"
	cases := []struct {
		name     string
		url      string
		path     string
		accepted bool
	}{
		{"upload result", "https://cdn.example.cl/" + key, key, true},
		{"blank url", " ", "", false},
		{"made up url", "https://cdn.example.cl/cedula.pdf", "cedula.pdf", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestAPI()
			body, err := json.Marshal(map[string]any{
				"property": map[string]any{"property_type": "Casa"},
				"owners": []map[string]any{{
					"id": "a", "owner_type": "natural",
					"documents": []map[string]any{{"type": "cedula_identidad", "url": tc.url, "path": tc.path}},
				}},
			})
			require.NoError(t, err)

			rec := api.do(t, http.MethodPost, "/api/v1/properties/validate", body, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[ValidationResponse](t, rec)

			docKey := domain.DocumentErrorKey("a", domain.DocNationalID)
			if tc.accepted {
				assert.NotContains(t, resp.Errors, docKey)
			} else {
				assert.Contains(t, resp.Errors, docKey)
			}
		})
	}
}

func TestValidateDraft_ExtremePercentage(t *testing.T) {
	api := newTestAPI()
	body := []byte(`{"property": {"property_type": "Casa"}, "owners": [{"owner_type": "natural", "ownership_percentage": "1e-300000000"}]}`)

	rec := api.do(t, http.MethodPost, "/api/v1/properties/validate", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateDraft_SchemaViolation(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/api/v1/properties/validate", []byte(`{"property": {"property_type": "Casa"}}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/properties/validate", []byte(`{"property":`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateDraft_UnknownDocumentType(t *testing.T) {
	api := newTestAPI()
	body := []byte(`{"property": {"property_type": "Casa"}, "owners": [{"owner_type": "natural", "documents": [{"type": "pasaporte"}]}]}`)

	rec := api.do(t, http.MethodPost, "/api/v1/properties/validate", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const publishBody = `{
	"property": {"property_type": "Departamento"},
	"owners": [{"id": "o1", "owner_type": "natural", "ownership_percentage": null}]
}`

func TestPublishProperty_RequiresUser(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/api/v1/properties", []byte(publishBody), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/properties", []byte(publishBody), map[string]string{"X-User-ID": "42"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishProperty_JSON(t *testing.T) {
	api := newTestAPI()
	user := uuid.New()
	propertyID := uuid.New()
	api.publish.result = &domain.PublicationResult{
		PropertyID:   propertyID,
		PropertyType: domain.PropertyTypeApartment,
		ListingType:  domain.ListingTypeRent,
		Owners: []domain.PublishedOwner{
			{DraftOwnerID: "o1", OwnerID: uuid.New(), OwnerType: domain.OwnerTypeNatural, Percentage: decimal.NewFromInt(100)},
		},
		FailedUploads: []domain.DocumentUploadFailure{{OwnerID: uuid.New(), DocumentType: domain.DocNationalID, Reason: "timeout"}},
		PublishedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	rec := api.do(t, http.MethodPost, "/api/v1/properties", []byte(publishBody), map[string]string{"X-User-ID": user.String()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, user, api.publish.publisher)
	assert.Equal(t, domain.PropertyTypeApartment, api.publish.draft.Property.PropertyType)
	require.Len(t, api.publish.draft.Owners, 1)
	assert.Nil(t, api.publish.draft.Owners[0].OwnershipPercentage)

	resp := decode[PublicationResponse](t, rec)
	assert.Equal(t, propertyID, resp.PropertyID)
	assert.Equal(t, "100", resp.Owners[0].OwnershipPercentage)
	require.Len(t, resp.FailedUploads, 1)
	assert.Equal(t, "timeout", resp.FailedUploads[0].Reason)
}

func TestPublishProperty_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", &domain.ValidationError{Errors: domain.ErrorMap{"owners": "at least one owner is required"}}, http.StatusUnprocessableEntity},
		{"partial", &domain.PartialPublicationError{PropertyID: uuid.New(), FailedOwnerID: "o1", Err: errors.New("db")}, http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.publish.err = tt.err

			rec := api.do(t, http.MethodPost, "/api/v1/properties", []byte(publishBody), map[string]string{"X-User-ID": uuid.NewString()})

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestPublishProperty_ValidationErrorBody(t *testing.T) {
	api := newTestAPI()
	api.publish.err = &domain.ValidationError{Errors: domain.ErrorMap{"price": "price is required"}}

	rec := api.do(t, http.MethodPost, "/api/v1/properties", []byte(publishBody), map[string]string{"X-User-ID": uuid.NewString()})

	resp := decode[ValidationErrorResponse](t, rec)
	assert.Equal(t, "price is required", resp.Errors["price"])
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestPublishProperty_MultipartAttachesFiles(t *testing.T) {
	api := newTestAPI()
	api.publish.result = &domain.PublicationResult{PropertyID: uuid.New()}
	body, contentType := multipartBody(t,
		map[string]string{draftFormField: publishBody},
		map[string][]byte{"owner_o1_cedula_identidad": []byte("%PDF-1.7")},
	)

	rec := api.do(t, http.MethodPost, "/api/v1/properties", body.Bytes(), map[string]string{
		"X-User-ID":    uuid.NewString(),
		"Content-Type": contentType,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	slot, ok := api.publish.draft.Owners[0].Document(domain.DocNationalID)
	require.True(t, ok)
	require.NotNil(t, slot.Pending)
	assert.Equal(t, []byte("%PDF-1.7"), slot.Pending.Content)
	assert.Equal(t, "owner_o1_cedula_identidad.pdf", slot.Pending.FileName)
}

func TestPublishProperty_MultipartRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string][]byte
		wantCode int
	}{
		{"unknown owner", map[string][]byte{"owner_zz_cedula_identidad": []byte("x")}, http.StatusBadRequest},
		{"not applicable document", map[string][]byte{"owner_o1_escritura_constitucion": []byte("x")}, http.StatusBadRequest},
		{"unexpected field", map[string][]byte{"avatar": []byte("x")}, http.StatusBadRequest},
		{"too large", map[string][]byte{"owner_o1_cedula_identidad": make([]byte, 2048)}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			body, contentType := multipartBody(t, map[string]string{draftFormField: publishBody}, tt.files)

			rec := api.do(t, http.MethodPost, "/api/v1/properties", body.Bytes(), map[string]string{
				"X-User-ID":    uuid.NewString(),
				"Content-Type": contentType,
			})

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestUploadOwnerDocument(t *testing.T) {
	path := "/api/v1/properties/" + uuid.NewString() + "/owners/" + uuid.NewString() + "/documents/cedula_identidad"
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{"stored", path, nil, http.StatusCreated},
		{"owner not found", path, domain.ErrOwnerNotFound, http.StatusNotFound},
		{"storage down", path, domain.ErrUploadFailed, http.StatusBadGateway},
		{"not applicable", path, domain.ErrDocumentNotApplicable, http.StatusBadRequest},
		{"bad property id", "/api/v1/properties/x/owners/" + uuid.NewString() + "/documents/cedula_identidad", nil, http.StatusBadRequest},
		{"unknown document", "/api/v1/properties/" + uuid.NewString() + "/owners/" + uuid.NewString() + "/documents/pasaporte", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.upload.err = tt.err
			api.upload.stored = domain.StoredFile{URL: "https://cdn.example.cl/x.pdf", Path: "uploads/x.pdf"}
			body, contentType := multipartBody(t, nil, map[string][]byte{uploadFormField: []byte("%PDF")})

			rec := api.do(t, http.MethodPost, tt.path, body.Bytes(), map[string]string{
				"X-User-ID":    uuid.NewString(),
				"Content-Type": contentType,
			})

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusCreated {
				resp := decode[StoredFileResponse](t, rec)
				assert.Equal(t, "uploads/x.pdf", resp.Path)
				assert.Equal(t, []byte("%PDF"), api.upload.file.Content)
			}
		})
	}
}

func TestParseFileField(t *testing.T) {
	id, docType, ok := parseFileField("owner_3f1c2a0e_cedula_representante")
	require.True(t, ok)
	assert.Equal(t, "3f1c2a0e", id)
	assert.Equal(t, domain.DocRepresentativeIdentity, docType)

	_, _, ok = parseFileField("owner__cedula_identidad")
	assert.False(t, ok)
	_, _, ok = parseFileField("owner_o1_pasaporte")
	assert.False(t, ok)
}

func TestPercentageDTO_Unmarshal(t *testing.T) {
	var owner OwnerDTO
	require.NoError(t, json.Unmarshal([]byte(`{"ownership_percentage": 12.5}`), &owner))
	assert.Equal(t, PercentageDTO("12.5"), owner.OwnershipPercentage)
	require.NoError(t, json.Unmarshal([]byte(`{"ownership_percentage": "33,3"}`), &owner))
	assert.Equal(t, PercentageDTO("33,3"), owner.OwnershipPercentage)
	require.NoError(t, json.Unmarshal([]byte(`{"ownership_percentage": null}`), &owner))
	assert.Equal(t, PercentageDTO(""), owner.OwnershipPercentage)
}

func TestLoggerMiddleware_TraceID(t *testing.T) {
	api := newTestAPI()
	trace := uuid.NewString()

	rec := api.do(t, http.MethodGet, "/healthz", nil, map[string]string{"X-Trace-ID": trace})
	assert.Equal(t, trace, rec.Header().Get("X-Trace-ID"))

	rec = api.do(t, http.MethodGet, "/healthz", nil, map[string]string{"X-Trace-ID": "not-a-uuid"})
	_, err := uuid.Parse(rec.Header().Get("X-Trace-ID"))
	assert.NoError(t, err)
}
