package volstate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DomainOverride lists edges to add to and remove from one domain table.
type DomainOverride struct {
	Add    []Transition `yaml:"add"`
	Remove []Transition `yaml:"remove"`
}

// Overrides maps domain names to their edge overrides.
//
//	volume:
//	  remove:
//	    - {from: error_extending, to: available}
//	  add:
//	    - {from: error_restoring, to: available}
type Overrides map[string]DomainOverride

// LoadOverrides decodes a YAML override document. Domain names are checked
// here so that typos fail early; states are checked when the registry is built.
func LoadOverrides(r io.Reader) (Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return Overrides{}, nil
		}
		return nil, errors.Join(ErrInvalidRegistry, fmt.Errorf("decode overrides: %w", err))
	}
	for name := range o {
		if _, err := ParseDomain(name); err != nil {
			return nil, errors.Join(ErrInvalidRegistry, err)
		}
	}
	return o, nil
}

// LoadOverridesFile reads overrides from path.
func LoadOverridesFile(path string) (Overrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open overrides file: %w", err)
	}
	defer f.Close()
	return LoadOverrides(f)
}
