package api

// DefaultMaxPasses bounds the convergence loop when a config does not set max_passes.
const DefaultMaxPasses = 3

// Config represents the root configuration of a rewrite run.
// It names the recipes to apply and the type universe to resolve against.
type Config struct {
	// Version of the recast config schema.
	Version string `json:"version" toml:"version"`
	// MaxPasses bounds the number of full passes over all files.
	MaxPasses int `json:"max_passes,omitempty" toml:"max_passes"`
	// Jobs bounds per-file parallelism within a pass. Zero means GOMAXPROCS.
	Jobs int `json:"jobs,omitempty" toml:"jobs"`
	// SkipValidation disables the post-rewrite re-parse of changed files.
	SkipValidation bool `json:"skip_validation,omitempty" toml:"skip_validation"`
	// Classpath is a JSON classpath description or a sqlite type index (.db).
	Classpath string `json:"classpath,omitempty" toml:"classpath"`
	// Recipes run in order, each over every file, once per pass.
	Recipes []RecipeSpec `json:"recipes" toml:"recipes"`
}

// RecipeSpec selects a built-in recipe and configures it.
type RecipeSpec struct {
	// Name labels markers and diagnostics. Defaults to Type.
	Name string `json:"name,omitempty" toml:"name"`
	// Type is the built-in recipe, e.g. "change-type".
	Type string `json:"type" toml:"type"`
	// Options are recipe-specific settings.
	Options map[string]string `json:"options,omitempty" toml:"options"`
}

// Classpath describes the types visible to the sources being rewritten.
type Classpath struct {
	Types []TypeDecl `json:"types"`
}

// TypeDecl is one class, interface or enum.
type TypeDecl struct {
	// Name is the fully-qualified name, e.g. "java.util.ArrayList".
	Name string `json:"name"`
	// Kind is "class", "interface", "enum" or "annotation".
	Kind string `json:"kind,omitempty"`
	// Supertypes lists the superclass first (if any), then interfaces.
	Supertypes []string     `json:"supertypes,omitempty"`
	Methods    []MethodDecl `json:"methods,omitempty"`
	Fields     []FieldDecl  `json:"fields,omitempty"`
}

// MethodDecl is a method or constructor. Constructors use the name "<constructor>".
type MethodDecl struct {
	Name    string   `json:"name"`
	Params  []string `json:"params,omitempty"`
	Returns string   `json:"returns,omitempty"`
	Static  bool     `json:"static,omitempty"`
}

// FieldDecl is a field with its declared type.
type FieldDecl struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Static bool   `json:"static,omitempty"`
}
