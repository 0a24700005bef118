package rest

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/contracts"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"
	"property-publishing-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Имя части multipart с JSON черновика; файлы передаются частями owner_<id>_<тип документа>.
const (
	draftFormField   = "draft"
	ownerFilePrefix  = "owner_"
	uploadFormField  = "file"
	multipartMemory  = 32 << 20
	documentsPerForm = 4
)

var documentTypes = []domain.DocumentType{
	domain.DocNationalID,
	domain.DocConstitutionDeed,
	domain.DocPowerOfAttorney,
	domain.DocRepresentativeIdentity,
}

type PublicationHandler struct {
	publishUC      usecases_port.PublishPropertyPort
	uploadUC       usecases_port.UploadOwnerDocumentPort
	uploadMaxBytes int64
}

func NewPublicationHandler(
	publishUC usecases_port.PublishPropertyPort,
	uploadUC usecases_port.UploadOwnerDocumentPort,
	uploadMaxBytes int64,
) *PublicationHandler {
	return &PublicationHandler{publishUC: publishUC, uploadUC: uploadUC, uploadMaxBytes: uploadMaxBytes}
}

// PublishProperty обрабатывает POST /api/v1/properties.
// Принимает JSON черновика или multipart с частью "draft" и файлами документов.
func (h *PublicationHandler) PublishProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "PublishProperty"})

	userID, ok := contextkeys.UserIDFromContext(r.Context())
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}
	handlerLogger := logger.WithFields(port.Fields{"user_id": userID})

	draft, err := h.readDraft(w, r)
	if err != nil {
		handlerLogger.Warn("Invalid publish request", port.Fields{"error": err.Error()})
		if errors.Is(err, domain.ErrFileTooLarge) {
			WriteJSONError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	handlerLogger.Info("Processing request to publish property", port.Fields{"owner_count": len(draft.Owners)})
	result, err := h.publishUC.Execute(r.Context(), userID, draft)
	if err != nil {
		writeDomainError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, toPublicationResponse(result))
}

func (h *PublicationHandler) readDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req DraftDTO
		if err := decodeValidatedJSON(w, r, contracts.PropertyDraftRequest, &req); err != nil {
			return domain.Draft{}, err
		}
		return toDomainDraft(req)
	}

	limit := h.uploadMaxBytes*int64(domain.MaxOwners*documentsPerForm) + maxJSONBodyBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return domain.Draft{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	var req DraftDTO
	if err := decodeValidated([]byte(r.FormValue(draftFormField)), contracts.PropertyDraftRequest, &req); err != nil {
		return domain.Draft{}, err
	}
	draft, err := toDomainDraft(req)
	if err != nil {
		return domain.Draft{}, err
	}

	for field, headers := range r.MultipartForm.File {
		ownerID, docType, ok := parseFileField(field)
		if !ok || len(headers) == 0 {
			return domain.Draft{}, fmt.Errorf("unexpected file field %q", field)
		}
		file, err := h.readFile(headers[0])
		if err != nil {
			return domain.Draft{}, fmt.Errorf("file %q: %w", field, err)
		}
		if err := draft.AttachDocument(ownerID, docType, file); err != nil {
			return domain.Draft{}, fmt.Errorf("file %q: %w", field, err)
		}
	}
	return draft, nil
}

func (h *PublicationHandler) readFile(fh *multipart.FileHeader) (domain.PendingFile, error) {
	if h.uploadMaxBytes > 0 && fh.Size > h.uploadMaxBytes {
		return domain.PendingFile{}, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.PendingFile{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.PendingFile{}, err
	}
	return domain.PendingFile{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// parseFileField разбирает имя части owner_<id>_<тип документа>.
func parseFileField(field string) (string, domain.DocumentType, bool) {
	rest, ok := strings.CutPrefix(field, ownerFilePrefix)
	if !ok {
		return "", "", false
	}
	for _, t := range documentTypes {
		if id, found := strings.CutSuffix(rest, "_"+string(t)); found && id != "" {
			return id, t, true
		}
	}
	return "", "", false
}

// UploadOwnerDocument обрабатывает POST /api/v1/properties/{propertyID}/owners/{ownerID}/documents/{documentType}
func (h *PublicationHandler) UploadOwnerDocument(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UploadOwnerDocument"})

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID format")
		return
	}
	ownerID, err := uuid.Parse(chi.URLParam(r, "ownerID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid owner ID format")
		return
	}
	docType, err := domain.ParseDocumentType(chi.URLParam(r, "documentType"))
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	handlerLogger := logger.WithFields(port.Fields{
		"property_id":   propertyID,
		"owner_id":      ownerID,
		"document_type": docType,
	})

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes+maxJSONBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		handlerLogger.Warn("Invalid multipart form", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	part, fh, err := r.FormFile(uploadFormField)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "File part \"file\" is missing")
		return
	}
	part.Close()
	file, err := h.readFile(fh)
	if err != nil {
		writeDomainError(w, handlerLogger, err)
		return
	}

	stored, err := h.uploadUC.Execute(r.Context(), propertyID, ownerID, docType, file)
	if err != nil {
		writeDomainError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, StoredFileResponse{
		DocumentType: string(docType),
		URL:          stored.URL,
		Path:         stored.Path,
	})
}
