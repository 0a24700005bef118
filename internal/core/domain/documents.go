package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

type DocumentType string

const (
	DocNationalID             DocumentType = "cedula_identidad"
	DocConstitutionDeed       DocumentType = "escritura_constitucion"
	DocPowerOfAttorney        DocumentType = "poder_representante"
	DocRepresentativeIdentity DocumentType = "cedula_representante"
)

var documentLabels = map[DocumentType]string{
	DocNationalID:             "Cédula de identidad",
	DocConstitutionDeed:       "Escritura de constitución",
	DocPowerOfAttorney:        "Poder del representante legal",
	DocRepresentativeIdentity: "Cédula de identidad del representante legal",
}

func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if _, ok := documentLabels[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDocumentType, s)
	}
	return t, nil
}

func (t DocumentType) Label() string {
	return documentLabels[t]
}

// PendingFile - файл, выбранный пользователем, но еще не отправленный в хранилище.
type PendingFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// StoredFile - результат загрузки в хранилище.
type StoredFile struct {
	URL  string
	Path string
}

// DocumentSlot - место под один документ собственника.
// Required выводится из типа собственника и никогда не задается пользователем.
type DocumentSlot struct {
	Type     DocumentType
	Label    string
	Required bool
	Pending  *PendingFile
	URL      string
	Path     string
}

func (d DocumentSlot) Uploaded() bool {
	return d.Pending != nil || strings.TrimSpace(d.URL) != ""
}

const documentKeyRoot = "uploads"

// DocumentObjectKey строит ключ объекта в хранилище: uploads/<id>/<тип документа>/<имя>.
func DocumentObjectKey(ownerOrPropertyID string, t DocumentType, name string) string {
	return path.Join(documentKeyRoot, ownerOrPropertyID, string(t), name)
}

// IsStoredDocument сообщает, мог ли файл быть получен при загрузке документа типа t:
// ключ имеет вид DocumentObjectKey, а URL - http(s)-адрес, заканчивающийся этим ключом.
func IsStoredDocument(f StoredFile, t DocumentType) bool {
	parts := strings.Split(f.Path, "/")
	if len(parts) != 4 || parts[0] != documentKeyRoot || parts[2] != string(t) {
		return false
	}
	for _, segment := range []string{parts[1], parts[3]} {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}

	u, err := url.Parse(f.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	return strings.HasSuffix(u.Path, "/"+f.Path)
}

// RequiredDocuments возвращает набор слотов для типа собственника.
// Для неизвестного типа возвращается пустой набор.
func RequiredDocuments(t OwnerType) []DocumentSlot {
	switch t {
	case OwnerTypeNatural:
		return []DocumentSlot{
			newSlot(DocNationalID, true),
		}
	case OwnerTypeLegal:
		return []DocumentSlot{
			newSlot(DocConstitutionDeed, true),
			newSlot(DocPowerOfAttorney, false),
			newSlot(DocRepresentativeIdentity, true),
		}
	}
	return nil
}

// DocumentApplies сообщает, входит ли тип документа в набор для типа собственника.
func DocumentApplies(t OwnerType, doc DocumentType) bool {
	for _, slot := range RequiredDocuments(t) {
		if slot.Type == doc {
			return true
		}
	}
	return false
}

// MergeDocuments перестраивает слоты под тип собственника:
// слоты нового набора забирают состояние загрузки из существующих слотов того же типа,
// уже загруженные слоты других типов сохраняются как необязательные.
// Незаполненные неприменимые слоты отбрасываются.
func MergeDocuments(existing []DocumentSlot, t OwnerType) []DocumentSlot {
	merged := RequiredDocuments(t)
	used := make(map[DocumentType]bool, len(merged))

	for i := range merged {
		used[merged[i].Type] = true
		for _, old := range existing {
			if old.Type == merged[i].Type && old.Uploaded() {
				merged[i].Pending = old.Pending
				merged[i].URL = old.URL
				merged[i].Path = old.Path
				break
			}
		}
	}

	for _, old := range existing {
		if used[old.Type] || !old.Uploaded() {
			continue
		}
		used[old.Type] = true
		old.Required = false
		if old.Label == "" {
			old.Label = old.Type.Label()
		}
		merged = append(merged, old)
	}
	return merged
}

func newSlot(t DocumentType, required bool) DocumentSlot {
	return DocumentSlot{Type: t, Label: t.Label(), Required: required}
}
