// Package validation checks host configuration: documents against the
// generated JSON Schema, decoded structs against their validate tags.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/superfaceai/one-sdk-sub004/application/schema"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

const hostConfigResource = "host-config.json"

// SchemaValidator implements ports.DocumentValidator with a compiled JSON
// Schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
	name   string
}

// NewSchemaValidator compiles raw as the schema for documents of the given
// type name.
func NewSchemaValidator(name string, raw []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, &sdkerrors.SchemaError{Type: name, Err: fmt.Errorf("failed to add schema resource: %w", err)}
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, &sdkerrors.SchemaError{Type: name, Err: fmt.Errorf("invalid schema: %w", err)}
	}
	return &SchemaValidator{schema: sch, name: name}, nil
}

// NewHostConfigValidator validates host configuration documents.
func NewHostConfigValidator() (ports.DocumentValidator, error) {
	raw, err := schema.HostConfigSchema()
	if err != nil {
		return nil, &sdkerrors.SchemaError{Type: "HostConfig", Err: err}
	}
	return NewSchemaValidator(hostConfigResource, raw)
}

// Validate checks doc against the schema. The first failing location is
// reported as the field of the returned ConfigError.
func (v *SchemaValidator) Validate(doc map[string]any) error {
	if doc == nil {
		doc = map[string]any{}
	}
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &sdkerrors.SchemaError{Type: v.name, Err: err}
	}
	leaf := deepestCause(ve)
	return &sdkerrors.ConfigError{
		Field: strings.TrimPrefix(leaf.InstanceLocation, "/"),
		Err:   errors.New(leaf.Message),
	}
}

func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// validate is a package-level singleton; creating a validator per call is
// expensive.
var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs the validate tags of s. Field names in the returned
// ConfigError are the JSON paths of the offending fields.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &sdkerrors.ConfigError{Err: err}
	}
	fe := verrs[0]
	return &sdkerrors.ConfigError{
		Field: fieldPath(fe.Namespace()),
		Err:   fmt.Errorf("failed on the '%s' rule", ruleOf(fe)),
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}
