package signature

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Type is the value type of a field
type Type string

const (
	TypeString Type = "str"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
	TypeList   Type = "list"
	TypeDict   Type = "dict"
)

// Field is one named input or output of a signature
type Field struct {
	Name string
	Type Type
	// Annotation is the declared type as written, e.g. "list[str]". Empty
	// when it is just the type tag.
	Annotation  string
	Description string
	// Prefix is a lead-in phrase shown when the field has no description.
	Prefix string
	// Schema is the JSON schema of list and dict values with structured elements.
	Schema map[string]any
}

// TypeName returns the annotation, or the type tag when there is none
func (f Field) TypeName() string {
	if f.Annotation != "" {
		return f.Annotation
	}
	if f.Type == "" {
		return string(TypeString)
	}
	return string(f.Type)
}

// Desc returns the description, falling back to the prefix
func (f Field) Desc() string {
	if f.Description != "" {
		return f.Description
	}
	return f.Prefix
}

// Signature is the declarative description of a task
type Signature struct {
	Instructions string
	Inputs       []Field
	Outputs      []Field
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// New builds and validates a signature. Empty instructions are replaced by DefaultInstructions.
func New(instructions string, inputs, outputs []Field) (Signature, error) {
	sig := Signature{
		Instructions: instructions,
		Inputs:       append([]Field(nil), inputs...),
		Outputs:      append([]Field(nil), outputs...),
	}
	for i := range sig.Inputs {
		if sig.Inputs[i].Type == "" {
			sig.Inputs[i].Type = TypeString
		}
	}
	for i := range sig.Outputs {
		if sig.Outputs[i].Type == "" {
			sig.Outputs[i].Type = TypeString
		}
	}
	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	if strings.TrimSpace(sig.Instructions) == "" {
		sig.Instructions = sig.DefaultInstructions()
	}
	return sig, nil
}

// Validate checks field names and types
func (s Signature) Validate() error {
	if len(s.Outputs) == 0 {
		return errors.New("signature must have at least one output field")
	}

	seen := make(map[string]bool, len(s.Inputs)+len(s.Outputs))
	check := func(f Field) error {
		if !identifierRe.MatchString(f.Name) {
			return fmt.Errorf("invalid field name %q", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case TypeString, TypeInt, TypeFloat, TypeBool, TypeList, TypeDict:
			return nil
		}
		return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
	}

	for _, f := range s.Inputs {
		if err := check(f); err != nil {
			return err
		}
	}
	for _, f := range s.Outputs {
		if err := check(f); err != nil {
			return err
		}
	}
	return nil
}

// InputNames returns the names of the input fields, in order
func (s Signature) InputNames() []string {
	return names(s.Inputs)
}

// OutputNames returns the names of the output fields, in order
func (s Signature) OutputNames() []string {
	return names(s.Outputs)
}

// Input returns the input field with the given name
func (s Signature) Input(name string) (Field, bool) {
	return find(s.Inputs, name)
}

// Output returns the output field with the given name
func (s Signature) Output(name string) (Field, bool) {
	return find(s.Outputs, name)
}

// DefaultInstructions describes the task from the field names alone
func (s Signature) DefaultInstructions() string {
	return fmt.Sprintf("Given the fields %s, produce the fields %s.",
		quoteNames(s.Inputs), quoteNames(s.Outputs))
}

// PrependOutput returns a copy of s with f as its first output
func (s Signature) PrependOutput(f Field) Signature {
	if f.Type == "" {
		f.Type = TypeString
	}
	out := s.clone()
	out.Outputs = append([]Field{f}, out.Outputs...)
	return out
}

// AppendInput returns a copy of s with f as its last input
func (s Signature) AppendInput(f Field) Signature {
	if f.Type == "" {
		f.Type = TypeString
	}
	out := s.clone()
	out.Inputs = append(out.Inputs, f)
	return out
}

// WithInstructions returns a copy of s with different instructions
func (s Signature) WithInstructions(instructions string) Signature {
	out := s.clone()
	out.Instructions = instructions
	return out
}

// String renders the signature in shorthand form
func (s Signature) String() string {
	render := func(fields []Field) string {
		parts := make([]string, len(fields))
		for i, f := range fields {
			if f.Type == TypeString && f.Annotation == "" {
				parts[i] = f.Name
			} else {
				parts[i] = f.Name + ": " + f.TypeName()
			}
		}
		return strings.Join(parts, ", ")
	}
	return render(s.Inputs) + " -> " + render(s.Outputs)
}

func (s Signature) clone() Signature {
	return Signature{
		Instructions: s.Instructions,
		Inputs:       append([]Field(nil), s.Inputs...),
		Outputs:      append([]Field(nil), s.Outputs...),
	}
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func find(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func quoteNames(fields []Field) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = "`" + f.Name + "`"
	}
	return strings.Join(quoted, ", ")
}
