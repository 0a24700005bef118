package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"property-publishing-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Имена и версии схем, которые использует сервис.
const (
	PropertyPublishedEvent    = "PropertyPublishedEvent"
	PropertyDraftRequest      = "PropertyDraftRequest"
	OwnerTypeChangeRequest    = "OwnerTypeChangeRequest"
	PropertyTypeChangeRequest = "PropertyTypeChangeRequest"

	Version1 = "1.0.0"
)

// schemaRoots - каталоги SchemasFS и суффикс, который получает имя схемы из каждого.
var schemaRoots = map[string]string{
	"events":   "Event",
	"requests": "Request",
}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true

	// Сначала регистрируем все файлы как ресурсы, чтобы работали $ref между схемами.
	var paths []string
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			file, err := schemas.SchemasFS.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				return fmt.Errorf("add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
			continue
		}
		if key := generateKeyFromPath(path); key != "" {
			compiledSchemas[key] = schema
		}
	}
}

// generateKeyFromPath преобразует путь "events/property-published/v1.json"
// в ключ "PropertyPublishedEvent/1.0.0".
func generateKeyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 3 {
		return ""
	}
	suffix, ok := schemaRoots[parts[0]]
	if !ok || !strings.HasPrefix(parts[2], "v") {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	version := strings.TrimPrefix(parts[2], "v") + ".0.0"
	return name.String() + "/" + version
}

// Validate проверяет JSON-документ по схеме name/version.
func Validate(name, version string, body []byte) error {
	key := name + "/" + version
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' version '%s' not found", name, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// ValidateEvent проверяет исходящее событие перед публикацией.
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	return Validate(eventType, eventVersion, body)
}
