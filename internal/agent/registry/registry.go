// Package registry holds the static catalog of structured-output shapes
// ("tools"), one per UI widget kind, plus the mapping from tool name to the
// component identifier the client renders. Pure data, loaded once at start.
package registry

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// FieldType is the closed set of node types a parameter tree may use.
type FieldType string

const (
	FieldObject  FieldType = "object"
	FieldArray   FieldType = "array"
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
)

var validFieldTypes = map[FieldType]bool{
	FieldObject:  true,
	FieldArray:   true,
	FieldString:  true,
	FieldInteger: true,
	FieldNumber:  true,
	FieldBoolean: true,
}

// FieldSpec is one node in a parameter tree.
type FieldSpec struct {
	Type       FieldType
	Desc       string
	Enum       []string
	Items      *FieldSpec
	Properties map[string]*FieldSpec
	Required   []string
}

// ToolSpec describes one structured-output shape the dispatch model may
// populate, and the UI component its payload maps to.
type ToolSpec struct {
	Name      string
	Desc      string
	Component string
	Params    map[string]*FieldSpec
	Required  []string
}

// Registry is the immutable tool catalog.
type Registry struct {
	specs  []ToolSpec
	byName map[string]ToolSpec
}

// New builds the registry from the static widget table and validates its
// internal consistency. Construction failure means a programming error in
// the table; callers should treat it as fatal at startup.
func New() (*Registry, error) {
	return newFromSpecs(widgetSpecs)
}

func newFromSpecs(specs []ToolSpec) (*Registry, error) {
	r := &Registry{
		specs:  specs,
		byName: make(map[string]ToolSpec, len(specs)),
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("tool spec with empty name")
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", s.Name)
		}
		if err := validateTree(s.Name, s.Params, s.Required); err != nil {
			return nil, err
		}
		r.byName[s.Name] = s
	}
	return r, nil
}

// validateTree checks that every required field exists in properties and
// that node types are well formed, recursively.
func validateTree(path string, props map[string]*FieldSpec, required []string) error {
	for _, req := range required {
		if _, ok := props[req]; !ok {
			return fmt.Errorf("%s: required field %q missing from properties", path, req)
		}
	}
	for name, f := range props {
		if err := validateField(path+"."+name, f); err != nil {
			return err
		}
	}
	return nil
}

func validateField(path string, f *FieldSpec) error {
	if f == nil {
		return fmt.Errorf("%s: nil field spec", path)
	}
	if !validFieldTypes[f.Type] {
		return fmt.Errorf("%s: invalid field type %q", path, f.Type)
	}
	if len(f.Enum) > 0 && f.Type != FieldString {
		return fmt.Errorf("%s: enum on non-string field", path)
	}
	switch f.Type {
	case FieldArray:
		if f.Items == nil {
			return fmt.Errorf("%s: array field without items", path)
		}
		if err := validateField(path+"[]", f.Items); err != nil {
			return err
		}
	case FieldObject:
		if err := validateTree(path, f.Properties, f.Required); err != nil {
			return err
		}
	}
	return nil
}

// List returns every registered ToolSpec.
func (r *Registry) List() []ToolSpec {
	out := make([]ToolSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Has reports whether the named tool is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// ComponentTypeFor maps a tool name to its UI component tag. Unknown names
// fall back to the raw tool name so unmapped tools degrade to a
// pass-through label rather than a hard failure.
func (r *Registry) ComponentTypeFor(toolName string) string {
	if s, ok := r.byName[toolName]; ok && s.Component != "" {
		return s.Component
	}
	return toolName
}

// ToolInfos lowers every ToolSpec into the eino representation bound to the
// dispatch model. Provider SDK quirks past this point are the provider
// adapter's problem.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.specs))
	for _, s := range r.specs {
		infos = append(infos, &schema.ToolInfo{
			Name:        s.Name,
			Desc:        s.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(lowerParams(s.Params, s.Required)),
		})
	}
	return infos
}

func lowerParams(props map[string]*FieldSpec, required []string) map[string]*schema.ParameterInfo {
	req := make(map[string]bool, len(required))
	for _, name := range required {
		req[name] = true
	}
	out := make(map[string]*schema.ParameterInfo, len(props))
	for name, f := range props {
		out[name] = lowerField(f, req[name])
	}
	return out
}

func lowerField(f *FieldSpec, required bool) *schema.ParameterInfo {
	p := &schema.ParameterInfo{
		Type:     dataType(f.Type),
		Desc:     f.Desc,
		Enum:     f.Enum,
		Required: required,
	}
	switch f.Type {
	case FieldArray:
		p.ElemInfo = lowerField(f.Items, false)
	case FieldObject:
		p.SubParams = lowerParams(f.Properties, f.Required)
	}
	return p
}

func dataType(t FieldType) schema.DataType {
	switch t {
	case FieldObject:
		return schema.Object
	case FieldArray:
		return schema.Array
	case FieldInteger:
		return schema.Integer
	case FieldNumber:
		return schema.Number
	case FieldBoolean:
		return schema.Boolean
	default:
		return schema.String
	}
}
