// Package openapi derives field descriptors from OpenAPI documents, letting
// hosts bootstrap the predictor's field metadata from the same contracts
// that describe their forms.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// preferred request media types, most specific first.
var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// DescriptorsFromData parses an OpenAPI document and returns descriptors for
// the request body fields of the named operation, sorted by field name.
func DescriptorsFromData(ctx context.Context, data []byte, operationID string) ([]form.FieldDescriptor, error) {
	if ctx == nil {
		return nil, errors.New("openapi: context is required")
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	if operationID == "" {
		return nil, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	schema := requestSchema(operation.RequestBody)
	if schema == nil || len(schema.Properties) == 0 {
		return nil, fmt.Errorf("openapi: operation %q has no request fields", operationID)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	descriptors := make([]form.FieldDescriptor, 0, len(schema.Properties))
	for name, property := range schema.Properties {
		if property == nil || property.Value == nil {
			continue
		}
		descriptors = append(descriptors, descriptorFrom(name, property.Value, required[name]))
	}
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })
	return descriptors, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestSchema(requestBody *openapi3.RequestBodyRef) *openapi3.Schema {
	if requestBody == nil || requestBody.Value == nil {
		return nil
	}
	content := requestBody.Value.Content
	for _, mediaType := range mediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func descriptorFrom(name string, schema *openapi3.Schema, required bool) form.FieldDescriptor {
	desc := form.FieldDescriptor{
		Name:     name,
		Kind:     fieldKind(name, schema),
		Required: required,
		Pattern:  schema.Pattern,
	}
	if schema.MinLength != 0 {
		desc.MinLength = int(schema.MinLength)
	}
	if schema.MaxLength != nil {
		desc.MaxLength = int(*schema.MaxLength)
	}
	return desc
}

// fieldKind maps schema type/format plus name heuristics onto the field
// kind enum.
func fieldKind(name string, schema *openapi3.Schema) form.FieldKind {
	switch schema.Format {
	case "email":
		return form.FieldKindEmail
	case "date", "date-time":
		return form.FieldKindDate
	case "uri", "url":
		return form.FieldKindURL
	case "password":
		return form.FieldKindPassword
	}

	switch firstType(schema.Type) {
	case "integer", "number":
		return form.FieldKindNumber
	case "boolean":
		return form.FieldKindSelect
	}

	if len(schema.Enum) > 0 {
		return form.FieldKindSelect
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "email"):
		return form.FieldKindEmail
	case strings.Contains(lower, "phone"), strings.Contains(lower, "mobile"):
		return form.FieldKindPhone
	case strings.Contains(lower, "address"):
		return form.FieldKindAddress
	case strings.Contains(lower, "url"), strings.Contains(lower, "website"):
		return form.FieldKindURL
	default:
		return form.FieldKindText
	}
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
