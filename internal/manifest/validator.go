package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/repository.schema.json
var repositorySchemaBytes []byte

//go:embed schema/instance.schema.json
var instanceSchemaBytes []byte

var (
	compileOnce      sync.Once
	repositorySchema *jsonschema.Schema
	instanceSchema   *jsonschema.Schema
	compileErr       error
	printer          = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/files", "/instances/server/location")
	Message string // Human-readable error message
}

// Summary joins all issues into a single line for error wrapping.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if issue.Path != "" {
			parts = append(parts, issue.Path+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return strings.Join(parts, "; ")
}

// compileSchemas compiles both embedded JSON Schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for name, raw := range map[string][]byte{
			"repository.schema.json": repositorySchemaBytes,
			"instance.schema.json":   instanceSchemaBytes,
		} {
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("unmarshaling schema %s: %w", name, err)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("adding schema resource %s: %w", name, err)
				return
			}
		}
		if repositorySchema, compileErr = c.Compile("repository.schema.json"); compileErr != nil {
			compileErr = fmt.Errorf("compiling repository schema: %w", compileErr)
			return
		}
		if instanceSchema, compileErr = c.Compile("instance.schema.json"); compileErr != nil {
			compileErr = fmt.Errorf("compiling instance schema: %w", compileErr)
		}
	})
	return compileErr
}

// ValidateRepository validates raw JSON bytes against the repository schema.
// The error return is for schema compilation or undecodable input;
// validation issues are returned in the ValidationResult.
func ValidateRepository(data []byte) (*ValidationResult, error) {
	if err := compileSchemas(); err != nil {
		return nil, err
	}
	return validate(repositorySchema, data)
}

// ValidateInstance validates raw JSON bytes against the instance schema.
func ValidateInstance(data []byte) (*ValidationResult, error) {
	if err := compileSchemas(); err != nil {
		return nil, err
	}
	return validate(instanceSchema, data)
}

func validate(schema *jsonschema.Schema, data []byte) (*ValidationResult, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Issues: []ValidationIssue{{Message: "document is not valid JSON: " + err.Error()}},
		}, nil
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// extractIssues walks the error tree and returns leaf-level issues with
// specific property information.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return issues
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := ""
		if len(ve.InstanceLocation) > 0 {
			path = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}
		*issues = append(*issues, ValidationIssue{Path: path, Message: msg})
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}
