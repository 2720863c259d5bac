// Package recipes holds the built-in rewrite rules and builds them from
// their configuration.
package recipes

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/recipe"
)

type constructor func(name string, opts options) (*recipe.Recipe, error)

var registry = map[string]constructor{
	"change-type":                      newChangeType,
	"change-package":                   newChangePackage,
	"replace-constructor-with-factory": newFactory,
	"adapter-to-interface":             newAdapterToInterface,
	"unchain-and":                      newUnchainAnd,
}

// Types lists the recipe types Build accepts.
func Types() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Build creates the recipe a configuration entry describes.
func Build(spec api.RecipeSpec) (*recipe.Recipe, error) {
	ctor, ok := registry[spec.Type]
	if !ok {
		return nil, fmt.Errorf("recipe %q: unknown type %q", spec.Name, spec.Type)
	}
	name := spec.Name
	if name == "" {
		name = spec.Type
	}
	r, err := ctor(name, options{spec.Options})
	if err != nil {
		return nil, fmt.Errorf("recipe %q: %w", name, err)
	}
	return r, nil
}

// BuildAll creates every recipe of a configuration, in order.
func BuildAll(specs []api.RecipeSpec) ([]*recipe.Recipe, error) {
	out := make([]*recipe.Recipe, 0, len(specs))
	for _, spec := range specs {
		r, err := Build(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

type options struct{ m map[string]string }

func (o options) required(key string) (string, error) {
	v := o.m[key]
	if v == "" {
		return "", fmt.Errorf("missing option %q", key)
	}
	return v, nil
}

func (o options) get(key string) string { return o.m[key] }

func (o options) flag(key string) (bool, error) {
	v, ok := o.m[key]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("option %q: %w", key, err)
	}
	return b, nil
}
