package domain

import (
	"errors"
	"fmt"
)

// Ошибки, которые ядро возвращает наружу. Адаптеры сопоставляют их с HTTP-статусами.
var (
	ErrUnknownPropertyType  = errors.New("unknown property type")
	ErrUnknownOwnerType     = errors.New("unknown owner type")
	ErrUnknownConstitution  = errors.New("unknown constitution type")
	ErrUnknownPropertyField = errors.New("unknown property field")
	ErrUnknownOwnerField    = errors.New("unknown owner field")
	ErrFieldNotApplicable   = errors.New("field is not applicable")
	ErrInvalidPercentage    = errors.New("invalid ownership percentage")

	ErrOwnerLimitReached = errors.New("owner limit reached")
	ErrOwnerNotFound     = errors.New("owner not found")

	ErrUnknownDocumentType   = errors.New("unknown document type")
	ErrDocumentNotApplicable = errors.New("document type does not apply to owner")
	ErrEmptyFile             = errors.New("file is empty")
	ErrFileTooLarge          = errors.New("file is too large")
	ErrUploadFailed          = errors.New("document upload failed")
)

// ValidationError несет полный набор ошибок валидации черновика.
// Возвращается use case'ом публикации, когда ErrorMap не пуст.
type ValidationError struct {
	Errors ErrorMap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("draft validation failed with %d error(s)", len(e.Errors))
}
