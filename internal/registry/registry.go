// Package registry classifies the definitions of an XML bean configuration
// file by element type and answers queries over them.
//
// Loading is two stages: every top-level element becomes a generic
// Definition (name, attributes, properties), then each definition is tagged
// with a closed Type derived from its element name. The indexes are built
// once at load time; a Registry is read-only afterwards.
package registry

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// ErrNotFound is returned by Definition for a name that is neither a
// definition nor an alias.
var ErrNotFound = errors.New("definition not found")

// Type classifies a definition.
type Type uint8

const (
	Unknown Type = iota
	Bean
	Alias
	Import
	List
	Map
	Properties
	ComponentScan
	PropertyPlaceholder
)

var typeNames = [...]string{
	Unknown:             "unknown",
	Bean:                "bean",
	Alias:               "alias",
	Import:              "import",
	List:                "list",
	Map:                 "map",
	Properties:          "properties",
	ComponentScan:       "component-scan",
	PropertyPlaceholder: "property-placeholder",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// ParseType maps a type name as printed by Type.String back to the Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown definition type %q", s)
}

// typeOf classifies an element by its local name, ignoring the namespace
// prefix (context:, util:, ...).
func typeOf(local string) Type {
	switch local {
	case "bean":
		return Bean
	case "alias":
		return Alias
	case "import":
		return Import
	case "list", "set":
		return List
	case "map":
		return Map
	case "properties":
		return Properties
	case "component-scan":
		return ComponentScan
	case "property-placeholder":
		return PropertyPlaceholder
	}
	return Unknown
}

// Definition is one classified configuration element.
type Definition struct {
	Name    string
	Type    Type
	Element string // local element name, e.g. "component-scan"
	// Attributes are the element's own attributes by local name.
	Attributes map[string]string
	// Properties are the element's configured values: <property> children
	// of a bean, entries of a map or properties element, items of a list
	// keyed by position.
	Properties map[string]string
}

// IsPropertyEqualTo reports whether the property key is set to value.
func (d *Definition) IsPropertyEqualTo(key, value string) bool {
	v, ok := d.Properties[key]
	return ok && v == value
}

// Registry holds the definitions of one configuration file.
type Registry struct {
	defs   []*Definition
	byName map[string]*Definition
	byType map[Type]map[string]*Definition
}

// LoadFile reads and classifies the definitions of an XML file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Load reads and classifies the definitions of an XML configuration. The
// root element holds the definitions; nested <beans> elements (profiles)
// contribute theirs in document order.
func Load(r io.Reader) (*Registry, error) {
	var root element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	reg := &Registry{
		byName: make(map[string]*Definition),
		byType: make(map[Type]map[string]*Definition),
	}
	reg.add(root.Children)
	return reg, nil
}

func (r *Registry) add(elems []element) {
	for i := range elems {
		e := &elems[i]
		if e.XMLName.Local == "beans" {
			r.add(e.Children)
			continue
		}
		d := define(e, len(r.defs))
		r.defs = append(r.defs, d)
		// A later definition overrides an earlier one of the same name.
		if prev, ok := r.byName[d.Name]; ok {
			delete(r.byType[prev.Type], d.Name)
		}
		r.byName[d.Name] = d
		if r.byType[d.Type] == nil {
			r.byType[d.Type] = make(map[string]*Definition)
		}
		r.byType[d.Type][d.Name] = d
	}
}

func define(e *element, index int) *Definition {
	d := &Definition{
		Type:       typeOf(e.XMLName.Local),
		Element:    e.XMLName.Local,
		Attributes: make(map[string]string, len(e.Attrs)),
		Properties: make(map[string]string),
	}
	for _, a := range e.Attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		d.Attributes[a.Name.Local] = a.Value
	}
	d.Name = nameOf(d, e, index)

	switch d.Type {
	case Bean:
		for i := range e.Children {
			c := &e.Children[i]
			if c.XMLName.Local == "property" {
				d.Properties[c.attr("name")] = valueOf(c)
			}
		}
	case Map:
		for i := range e.Children {
			if c := &e.Children[i]; c.XMLName.Local == "entry" {
				d.Properties[c.attr("key")] = valueOf(c)
			}
		}
	case Properties:
		for i := range e.Children {
			if c := &e.Children[i]; c.XMLName.Local == "prop" {
				d.Properties[c.attr("key")] = strings.TrimSpace(c.Text)
			}
		}
	case List:
		n := 0
		for i := range e.Children {
			d.Properties[strconv.Itoa(n)] = valueOf(&e.Children[i])
			n++
		}
	}
	return d
}

// nameOf picks the name a definition is registered under. Anonymous beans
// get "class#index" like Spring's generated names.
func nameOf(d *Definition, e *element, index int) string {
	switch d.Type {
	case Alias:
		if a := e.attr("alias"); a != "" {
			return a
		}
	case Import:
		if res := e.attr("resource"); res != "" {
			return res
		}
	case ComponentScan:
		if pkg := e.attr("base-package"); pkg != "" {
			return pkg
		}
	case PropertyPlaceholder:
		if loc := e.attr("location"); loc != "" {
			return loc
		}
	}
	if id := e.attr("id"); id != "" {
		return id
	}
	if names := strings.FieldsFunc(e.attr("name"), func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	}); len(names) > 0 {
		return names[0]
	}
	base := e.XMLName.Local
	if class := e.attr("class"); class != "" {
		base = class
	}
	return base + "#" + strconv.Itoa(index)
}

// valueOf reads the value of a <property>, <entry> or collection item:
// a value or ref attribute, a nested <value>/<ref>/<idref>, or the text.
func valueOf(e *element) string {
	if v := e.attr("value"); v != "" {
		return v
	}
	if ref := e.attr("ref"); ref != "" {
		return ref
	}
	if len(e.Children) == 1 {
		c := &e.Children[0]
		switch c.XMLName.Local {
		case "value":
			return strings.TrimSpace(c.Text)
		case "ref", "idref":
			if b := c.attr("bean"); b != "" {
				return b
			}
			return c.attr("local")
		case "null":
			return ""
		case "bean":
			return c.attr("class")
		}
	}
	switch e.XMLName.Local {
	case "ref", "idref":
		return e.attr("bean")
	}
	return strings.TrimSpace(e.Text)
}

// Definitions returns every definition in document order, overridden ones
// included.
func (r *Registry) Definitions() []*Definition {
	return append([]*Definition(nil), r.defs...)
}

// DefinitionsByType returns the definitions of type t by name. The map is
// a copy.
func (r *Registry) DefinitionsByType(t Type) map[string]*Definition {
	out := make(map[string]*Definition, len(r.byType[t]))
	for name, d := range r.byType[t] {
		out[name] = d
	}
	return out
}

// Definition returns the definition registered under name. An alias
// resolves to the definition it names when that exists.
func (r *Registry) Definition(name string) (*Definition, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	seen := map[string]bool{name: true}
	for d.Type == Alias {
		target, ok := r.byName[d.Attributes["name"]]
		if !ok || seen[target.Name] {
			break
		}
		seen[target.Name] = true
		d = target
	}
	return d, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Select evaluates a JSONPath expression over the registry, seen as a list
// of objects with the keys name, type, element, attributes and properties.
// For example $[?(@.type == 'bean')].properties.url.
func (r *Registry) Select(path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}
	return x.Get(r.generic()), nil
}

func (r *Registry) generic() []any {
	out := make([]any, 0, len(r.byName))
	for _, d := range r.defs {
		if r.byName[d.Name] != d {
			continue
		}
		out = append(out, map[string]any{
			"name":       d.Name,
			"type":       d.Type.String(),
			"element":    d.Element,
			"attributes": stringMap(d.Attributes),
			"properties": stringMap(d.Properties),
		})
	}
	return out
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
