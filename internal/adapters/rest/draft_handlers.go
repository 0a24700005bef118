package rest

import (
	"net/http"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/contracts"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"
	"property-publishing-service/internal/core/port/usecases_port"
)

// DraftHandler обслуживает форму черновика: шаблоны, смену типов и проверку.
// Ничего не сохраняет.
type DraftHandler struct {
	validateUC usecases_port.ValidateDraftPort
}

func NewDraftHandler(validateUC usecases_port.ValidateDraftPort) *DraftHandler {
	return &DraftHandler{validateUC: validateUC}
}

// GetDraftTemplate обрабатывает GET /api/v1/drafts/template
func (h *DraftHandler) GetDraftTemplate(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetDraftTemplate"})

	draft, err := domain.NewDraft()
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toDraftDTO(*draft))
}

// GetOwnerTemplate обрабатывает GET /api/v1/owners/template?owner_type=
func (h *DraftHandler) GetOwnerTemplate(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetOwnerTemplate"})

	ownerType, err := domain.ParseOwnerType(r.URL.Query().Get("owner_type"))
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	owner, err := domain.NewOwner(ownerType)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toOwnerDTO(owner))
}

// GetRequiredDocuments обрабатывает GET /api/v1/owners/required-documents?owner_type=
func (h *DraftHandler) GetRequiredDocuments(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetRequiredDocuments"})

	ownerType, err := domain.ParseOwnerType(r.URL.Query().Get("owner_type"))
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	slots := domain.RequiredDocuments(ownerType)
	docs := make([]DocumentDTO, 0, len(slots))
	for _, s := range slots {
		docs = append(docs, toDocumentDTO(s))
	}
	RespondWithJSON(w, http.StatusOK, docs)
}

// ChangeOwnerType обрабатывает POST /api/v1/owners/change-type
func (h *DraftHandler) ChangeOwnerType(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ChangeOwnerType"})

	var req OwnerTypeChangeRequest
	if err := decodeValidatedJSON(w, r, contracts.OwnerTypeChangeRequest, &req); err != nil {
		logger.Warn("Invalid owner type change request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner, err := toDomainOwner(req.Owner)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	newType, err := domain.ParseOwnerType(req.OwnerType)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	changed, err := domain.ChangeOwnerType(owner, newType)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toOwnerDTO(changed))
}

// GetPropertyTypes обрабатывает GET /api/v1/properties/types
func (h *DraftHandler) GetPropertyTypes(w http.ResponseWriter, r *http.Request) {
	policies := make([]PropertyTypePolicyDTO, 0, len(domain.PropertyTypes))
	for _, t := range domain.PropertyTypes {
		policies = append(policies, toPolicyDTO(t, domain.PropertyTypePolicies[t]))
	}
	RespondWithJSON(w, http.StatusOK, policies)
}

// ApplyPropertyType обрабатывает POST /api/v1/properties/apply-type
func (h *DraftHandler) ApplyPropertyType(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ApplyPropertyType"})

	var req PropertyTypeChangeRequest
	if err := decodeValidatedJSON(w, r, contracts.PropertyTypeChangeRequest, &req); err != nil {
		logger.Warn("Invalid property type change request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	newType, err := domain.ParsePropertyType(req.PropertyType)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	record, err := domain.ApplyPropertyType(toDomainProperty(req.Property), newType)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyDTO(record))
}

// ValidateDraft обрабатывает POST /api/v1/properties/validate.
// Ошибки валидации возвращаются со статусом 200: это результат проверки, а не сбой запроса.
func (h *DraftHandler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ValidateDraft"})

	var req DraftDTO
	if err := decodeValidatedJSON(w, r, contracts.PropertyDraftRequest, &req); err != nil {
		logger.Warn("Invalid draft request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := toDomainDraft(req)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	normalized, errs := h.validateUC.Execute(r.Context(), draft)
	if errs == nil {
		errs = domain.ErrorMap{}
	}
	RespondWithJSON(w, http.StatusOK, ValidationResponse{
		Valid:  errs.Empty(),
		Errors: errs,
		Draft:  toDraftDTO(normalized),
	})
}
