package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"property-publishing-service/internal/contracts"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"
)

const maxJSONBodyBytes = 1 << 20

// decodeValidatedJSON читает тело, проверяет его JSON-схемой и декодирует в dst.
func decodeValidatedJSON(w http.ResponseWriter, r *http.Request, schema string, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	return decodeValidated(body, schema, dst)
}

func decodeValidated(body []byte, schema string, dst interface{}) error {
	if err := contracts.Validate(schema, contracts.Version1, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// badRequestErrors - ошибки домена, вызванные некорректным вводом.
var badRequestErrors = []error{
	domain.ErrUnknownPropertyType,
	domain.ErrUnknownOwnerType,
	domain.ErrUnknownConstitution,
	domain.ErrUnknownPropertyField,
	domain.ErrUnknownOwnerField,
	domain.ErrFieldNotApplicable,
	domain.ErrInvalidPercentage,
	domain.ErrUnknownDocumentType,
	domain.ErrDocumentNotApplicable,
	domain.ErrEmptyFile,
	domain.ErrOwnerLimitReached,
}

// writeDomainError переводит ошибку use case в HTTP-ответ.
func writeDomainError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		RespondWithJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "draft validation failed",
			Errors: validationErr.Errors,
		})
		return
	}

	var partialErr *domain.PartialPublicationError
	if errors.As(err, &partialErr) {
		logger.Error("Publication stopped after partial save", err, nil)
		RespondWithJSON(w, http.StatusInternalServerError, PartialPublicationResponse{
			Error:         "property was saved but not all owners could be registered",
			PropertyID:    partialErr.PropertyID,
			SavedOwners:   toPublishedOwnerDTOs(partialErr.SavedOwners),
			FailedOwnerID: partialErr.FailedOwnerID,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrOwnerNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrFileTooLarge):
		WriteJSONError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, domain.ErrUploadFailed):
		logger.Error("Upload service failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Failed to store the document")
		return
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	logger.Error("Unhandled error", err, nil)
	WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
}
