package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/recast/internal/registry"
)

type beansOptions struct {
	typ   string
	name  string
	where []string
	query string
}

func newBeansCmd() *cobra.Command {
	opts := &beansOptions{}
	cmd := &cobra.Command{
		Use:   "beans [file.xml]",
		Short: "Classify and query the definitions of an XML bean configuration",
		Long: `Beans loads an XML bean configuration and lists its definitions with their
classified type. Definitions can be filtered by type and by property value,
looked up by name or alias, or queried with a JSONPath expression such as

  recast beans app.xml --select "$[?(@.type == 'bean')].properties.url"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadFile(args[0])
			if err != nil {
				return err
			}
			return queryBeans(cmd.OutOrStdout(), reg, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.typ, "type", "t", "", "only definitions of this type (bean, alias, list, ...)")
	f.StringVarP(&opts.name, "name", "n", "", "show the definition registered under this name or alias")
	f.StringArrayVar(&opts.where, "where", nil, "only definitions with property key=value (repeatable)")
	f.StringVar(&opts.query, "select", "", "evaluate a JSONPath expression over the definitions")
	return cmd
}

func queryBeans(w io.Writer, reg *registry.Registry, opts *beansOptions) error {
	if opts.query != "" {
		results, err := reg.Select(opts.query)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	if opts.name != "" {
		d, err := reg.Definition(opts.name)
		if err != nil {
			return err
		}
		printDefinition(w, d)
		return nil
	}

	var types []registry.Type
	if opts.typ != "" {
		t, err := registry.ParseType(opts.typ)
		if err != nil {
			return err
		}
		types = append(types, t)
	} else {
		for t := registry.Unknown; t <= registry.PropertyPlaceholder; t++ {
			types = append(types, t)
		}
	}
	var defs []*registry.Definition
	for _, t := range types {
		for _, d := range reg.DefinitionsByType(t) {
			defs = append(defs, d)
		}
	}

	conds := make([][2]string, 0, len(opts.where))
	for _, c := range opts.where {
		k, v, ok := strings.Cut(c, "=")
		if !ok {
			return fmt.Errorf("--where %q: want key=value", c)
		}
		conds = append(conds, [2]string{k, v})
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	for _, d := range defs {
		if !matchesAll(d, conds) {
			continue
		}
		detail := d.Attributes["class"]
		if d.Type == registry.Alias {
			detail = "-> " + d.Attributes["name"]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Type, detail)
	}
	return nil
}

func matchesAll(d *registry.Definition, conds [][2]string) bool {
	for _, c := range conds {
		if !d.IsPropertyEqualTo(c[0], c[1]) {
			return false
		}
	}
	return true
}

func printDefinition(w io.Writer, d *registry.Definition) {
	_, _ = fmt.Fprintf(w, "name:     %s\ntype:     %s\nelement:  %s\n", d.Name, d.Type, d.Element)
	printSorted(w, "attribute", d.Attributes)
	printSorted(w, "property", d.Properties)
}

func printSorted(w io.Writer, label string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%-9s %s = %s\n", label+":", k, m[k])
	}
}
