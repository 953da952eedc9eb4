package mapping

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/csvreader/conversion"
)

// Overrides replaces member declarations and types without recompiling,
// e.g. when a supplier renames a column. The YAML form is:
//
//	members:
//	  ID:
//	    title: Identifier
//	  Price:
//	    index: 4
//	    type: "?float"
type Overrides struct {
	Members map[string]MemberOverride `yaml:"members"`
}

// MemberOverride holds the replacement for one member. Index and Title
// replace all existing declarations; an entry with neither unmaps the
// member. Giving both makes Build fail with ErrMultipleMappingDeclarations.
type MemberOverride struct {
	Index *int    `yaml:"index,omitempty"`
	Title *string `yaml:"title,omitempty"`
	// Type replaces the target type, "?" prefix for nullable
	Type string `yaml:"type,omitempty"`
}

// LoadOverrides loads and parses a YAML override file from the given path.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override file %s: %w", path, err)
	}

	return ParseOverrides(data)
}

// ParseOverrides parses YAML data into Overrides.
func ParseOverrides(data []byte) (*Overrides, error) {
	var o Overrides

	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse override YAML: %w", err)
	}

	return &o, nil
}

// ApplyOverrides returns a copy of members with o applied.
// Overrides naming an unknown member fail with ErrUnknownMember.
func ApplyOverrides[T any](members []Member[T], o *Overrides) ([]Member[T], error) {
	out := slices.Clone(members)
	if o == nil {
		return out, nil
	}

	names := make([]string, 0, len(o.Members))
	for name := range o.Members {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		i := slices.IndexFunc(out, func(m Member[T]) bool { return m.Name == name })
		if i < 0 {
			return nil, &Error{
				Code:    ErrUnknownMember,
				Member:  recordTypeName[T]() + "." + name,
				Message: fmt.Sprintf("Override for unknown member %s.%s.", recordTypeName[T](), name),
			}
		}

		mo := o.Members[name]
		var decls []Declaration
		if mo.Index != nil {
			decls = append(decls, Index(*mo.Index))
		}
		if mo.Title != nil {
			decls = append(decls, Title(*mo.Title))
		}
		out[i].Declarations = decls

		if mo.Type != "" {
			out[i].Type = conversion.ParseTargetType(mo.Type)
		}
	}
	return out, nil
}
