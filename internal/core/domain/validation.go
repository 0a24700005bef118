package domain

import (
	"fmt"
	"sort"
)

// Глобальные ключи ошибок, не привязанные к конкретному собственнику.
const (
	ErrKeyOwners              = "owners"
	ErrKeyOwnershipPercentage = "ownership_percentage_total"
	ErrKeyPropertyType        = "property_type"
)

// ErrorMap - плоская карта "ключ поля -> сообщение".
// Пустая карта означает, что проверка пройдена.
type ErrorMap map[string]string

// Add записывает сообщение, если по ключу еще нет ошибки. Первая ошибка побеждает.
func (m ErrorMap) Add(key, msg string) {
	if _, exists := m[key]; exists {
		return
	}
	m[key] = msg
}

// Merge переносит ошибки из other, не перезаписывая уже существующие.
func (m ErrorMap) Merge(other ErrorMap) {
	for k, v := range other {
		m.Add(k, v)
	}
}

func (m ErrorMap) Empty() bool {
	return len(m) == 0
}

// Keys возвращает ключи в отсортированном порядке (для стабильных логов и ответов).
func (m ErrorMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OwnerErrorKey строит ключ ошибки вида owner_<id>_<field>.
func OwnerErrorKey(ownerID, field string) string {
	return fmt.Sprintf("owner_%s_%s", ownerID, field)
}

// DocumentErrorKey строит ключ ошибки вида owner_<id>_document_<type>.
func DocumentErrorKey(ownerID string, docType DocumentType) string {
	return fmt.Sprintf("owner_%s_document_%s", ownerID, docType)
}
