// Package schema generates JSON schemas for tool input and output types.
package schema

import (
	"reflect"
	"strings"

	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
)

// Generate builds a JSON schema from a reflect.Type. It supports the shapes
// tool arguments actually take: structs of scalars, slices, maps and nested
// structs. Pointer fields and fields tagged omitempty are optional.
func Generate(t reflect.Type) *tool.Schema {
	if t == nil {
		return &tool.Schema{Type: "object"}
	}
	return generate(t)
}

func generate(t reflect.Type) *tool.Schema {
	switch t.Kind() {
	case reflect.Ptr:
		return generate(t.Elem())
	case reflect.String:
		return &tool.Schema{Type: "string"}
	case reflect.Bool:
		return &tool.Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{Type: "array", Items: generate(t.Elem())}
	case reflect.Map:
		return &tool.Schema{Type: "object"}
	case reflect.Struct:
		return generateStruct(t)
	default:
		// Interfaces and anything else degrade to an untyped object.
		return &tool.Schema{Type: "object"}
	}
}

func generateStruct(t reflect.Type) *tool.Schema {
	schema := &tool.Schema{Type: "object"}
	properties := map[string]*tool.Schema{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := parseJSONTag(field)
		if skip {
			continue
		}

		fieldSchema := generate(field.Type)
		applyFieldTag(field.Tag.Get("jsonschema"), fieldSchema)
		properties[name] = fieldSchema

		if field.Type.Kind() != reflect.Ptr && !omitEmpty {
			required = append(required, name)
		}
	}

	if len(properties) > 0 {
		schema.Properties = properties
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

func parseJSONTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	name = field.Name
	jsonTag := field.Tag.Get("json")
	if jsonTag == "-" {
		return "", false, true
	}
	if jsonTag == "" {
		return name, false, false
	}
	parts := strings.Split(jsonTag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// applyFieldTag interprets a `jsonschema` struct tag of the form
// "description=...,enum=a,enum=b" and folds it into the field schema.
func applyFieldTag(tag string, schema *tool.Schema) {
	if tag == "" {
		return
	}
	for _, part := range strings.Split(tag, ",") {
		switch {
		case strings.HasPrefix(part, "description="):
			schema.Description = strings.TrimPrefix(part, "description=")
		case strings.HasPrefix(part, "enum="):
			schema.Enum = append(schema.Enum, strings.TrimPrefix(part, "enum="))
		}
	}
}
