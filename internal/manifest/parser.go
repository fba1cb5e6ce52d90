package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalid marks a malformed or incomplete manifest document. Callers can
// match it with errors.Is.
var ErrInvalid = errors.New("invalid manifest")

// ParseRepository validates and unmarshals a repository manifest document.
// A document that fails schema validation is rejected wholesale.
func ParseRepository(data []byte) (*Repository, error) {
	result, err := ValidateRepository(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, result.Summary())
	}

	var repo Repository
	if err := json.Unmarshal(data, &repo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if repo.SchemaVersion == 0 {
		repo.SchemaVersion = 1
	}
	return &repo, nil
}

// ParseInstance validates and unmarshals an instance manifest document.
func ParseInstance(data []byte) (*Instance, error) {
	result, err := ValidateInstance(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, result.Summary())
	}

	var inst Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &inst, nil
}
