package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

//go:embed action.yml
var actionYAML []byte

// Input declares one action input.
type Input struct {
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

// Output declares one action output.
type Output struct {
	Description string `yaml:"description"`
}

// Schema is the action metadata: its inputs and outputs.
type Schema struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Inputs      map[string]Input  `yaml:"inputs"`
	Outputs     map[string]Output `yaml:"outputs"`
}

// ParseSchema parses action metadata.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse action schema: %w", err)
	}
	if len(s.Inputs) == 0 {
		return nil, fmt.Errorf("action schema declares no inputs")
	}
	return &s, nil
}

var defaultSchema = func() *Schema {
	s, err := ParseSchema(actionYAML)
	if err != nil {
		panic(err)
	}
	return s
}()

// DefaultSchema returns the embedded action schema.
func DefaultSchema() *Schema {
	return defaultSchema
}

// Names returns the input names in sorted order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Inputs))
	for name := range s.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FlagName maps an input name to its command-line flag.
func FlagName(input string) string {
	return strings.ReplaceAll(input, "_", "-")
}

// EnvName maps an input name to the variable the runner sets for it.
func EnvName(input string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(input, " ", "_"))
}

// Required returns the names of the required inputs in sorted order.
func (s *Schema) Required() []string {
	var names []string
	for _, name := range s.Names() {
		if s.Inputs[name].Required {
			names = append(names, name)
		}
	}
	return names
}

// RegisterFlags adds one string flag per named input, or per input when no
// names are given. Flags have no default so that Changed tells an explicit
// value apart from the schema default.
func (s *Schema) RegisterFlags(flags *pflag.FlagSet, names ...string) {
	if len(names) == 0 {
		names = s.Names()
	}
	for _, name := range names {
		in, ok := s.Inputs[name]
		if !ok {
			panic(fmt.Sprintf("config: no input named %q", name))
		}
		usage := in.Description
		if in.Default != "" {
			usage += fmt.Sprintf(" (default %q)", in.Default)
		}
		flags.String(FlagName(name), "", usage)
	}
}
