// Package contracts validates request bodies against the embedded JSON
// schemas before they are decoded into models.
package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	Listing        = "listing"
	ListingUpdate  = "listing_update"
	TourBooking    = "tour_booking"
	Favorite       = "favorite"
	ProfileUpdate  = "profile_update"
	Register       = "register"
	Login          = "login"
	PasswordForgot = "password_forgot"
	PasswordReset  = "password_reset"
)

const baseURL = "https://property-tours.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var compiled = map[string]*jsonschema.Schema{}

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	files, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		log.Fatalf("listing schemas: %v", err)
	}
	for _, file := range files {
		raw, err := schemaFS.ReadFile(file)
		if err != nil {
			log.Fatalf("reading schema %s: %v", file, err)
		}
		if err := compiler.AddResource(baseURL+path.Base(file), bytes.NewReader(raw)); err != nil {
			log.Fatalf("adding schema %s: %v", file, err)
		}
	}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".json")
		schema, err := compiler.Compile(baseURL + path.Base(file))
		if err != nil {
			log.Fatalf("compiling schema %s: %v", file, err)
		}
		compiled[name] = schema
	}
}

// ValidationError describes why a request body was rejected.
type ValidationError struct {
	Schema  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Schema, e.Message)
}

// Validate checks body against the named schema. A body that does not
// conform, or is not JSON, yields a *ValidationError.
func Validate(name string, body []byte) error {
	schema, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Schema: name, Message: "request body is not valid JSON"}
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ValidationError{Schema: name, Message: describe(ve)}
		}
		return fmt.Errorf("validating %s: %w", name, err)
	}
	return nil
}

// describe reports the first leaf cause as "field: reason".
func describe(ve *jsonschema.ValidationError) string {
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if loc == "" {
		return leaf.Message
	}
	return strings.ReplaceAll(loc, "/", ".") + ": " + leaf.Message
}
