package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/pipeline"
	"github.com/agentic-research/recast/internal/recipes"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/agentic-research/recast/internal/writeback"
)

type runOptions struct {
	dir       string
	config    string
	write     bool
	diff      bool
	force     bool
	maxPasses int
	jobs      int
	since     string
	verbose   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Apply the configured recipes to source files",
		Long: `Run loads the recipes named in the config, parses every supported source
file under the given paths (default: the working directory) and applies the
recipes pass after pass until nothing changes or the pass limit is reached.

Without --write nothing is modified on disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipes(cmd, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.dir, "chdir", "C", ".", "run as if started in this directory")
	f.StringVarP(&opts.config, "config", "c", "recast.json", "run config (.json or .toml)")
	f.BoolVarP(&opts.write, "write", "w", false, "write changed files back")
	f.BoolVarP(&opts.diff, "diff", "d", false, "print a unified diff of every change")
	f.BoolVar(&opts.force, "force", false, "also write files that failed validation")
	f.IntVar(&opts.maxPasses, "max-passes", 0, "override the config's pass limit")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "files processed at once (default GOMAXPROCS)")
	f.StringVar(&opts.since, "since", "", "only files changed since this git revision")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "also report references that could not be resolved")
	return cmd
}

func runRecipes(cmd *cobra.Command, opts *runOptions, args []string) error {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfgPath := opts.config
	if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(opts.dir, cfgPath)
	}
	cfg, err := api.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-passes") {
		if opts.maxPasses <= 0 {
			return fmt.Errorf("--max-passes must be positive, got %d", opts.maxPasses)
		}
		cfg.MaxPasses = opts.maxPasses
	}
	if cmd.Flags().Changed("jobs") {
		if opts.jobs < 0 {
			return fmt.Errorf("--jobs must not be negative, got %d", opts.jobs)
		}
		cfg.Jobs = opts.jobs
	}

	rs, err := recipes.BuildAll(cfg.Recipes)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		return errors.New("config names no recipes")
	}

	var types typeres.Resolver
	if cfg.Classpath != "" {
		r, closeTypes, err := typeres.Open(cfg.Classpath)
		if err != nil {
			return fmt.Errorf("load classpath: %w", err)
		}
		defer func() { _ = closeTypes() }()
		types = r
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	if opts.since != "" {
		changed, err := ingest.GitChangedFiles(ctx, opts.dir, opts.since)
		if err != nil {
			return err
		}
		roots = underRoots(changed, roots)
		if len(roots) == 0 {
			_, _ = fmt.Fprintf(stderr, "No files changed since %s.\n", opts.since)
			return nil
		}
	}

	fsys := osfs.New(opts.dir)
	sources, err := ingest.LoadSources(fsys, roots...)
	if err != nil {
		return err
	}
	inputs := make([]pipeline.Input, len(sources))
	for i, s := range sources {
		inputs[i] = pipeline.Input{Path: s.Path, Text: s.Text}
	}

	engine := &pipeline.Engine{
		Recipes:   rs,
		Frontend:  ingest.NewFrontend(types),
		MaxPasses: cfg.MaxPasses,
		Jobs:      cfg.Jobs,
	}
	if !cfg.SkipValidation {
		engine.Validate = func(path string, text []byte) error {
			return writeback.Validate(text, path)
		}
	}

	start := time.Now()
	res, runErr := engine.Run(ctx, inputs)
	if res == nil {
		return runErr
	}
	printDiagnostics(stderr, res.Diagnostics, opts.verbose)

	paths := make([]string, 0, len(res.Changed))
	for p := range res.Changed {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	written, held := 0, 0
	for _, p := range paths {
		before := string(sourceText(sources, p))
		after := string(writeback.FormatGo([]byte(before), []byte(res.Changed[p]), p))
		if opts.diff {
			d, err := writeback.Diff(p, before, after)
			if err != nil {
				return fmt.Errorf("diff %s: %w", p, err)
			}
			_, _ = io.WriteString(stdout, d)
		}
		if !opts.write {
			continue
		}
		if res.Unsafe[p] && !opts.force {
			held++
			_, _ = fmt.Fprintf(stderr, "%s %s: failed validation, not written\n", color.RedString("held"), p)
			for _, e := range writeback.ASTErrors([]byte(after), p) {
				_, _ = fmt.Fprintf(stderr, "  %s\n", e.Error())
			}
			continue
		}
		if err := writeback.WriteFile(fsys, p, []byte(after)); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		written++
	}

	summary := fmt.Sprintf("%d of %d file(s) changed in %d pass(es) (%v)",
		len(paths), len(inputs), res.Passes, time.Since(start).Round(time.Millisecond))
	if opts.write {
		summary += fmt.Sprintf(", %d written", written)
		if held > 0 {
			summary += fmt.Sprintf(", %d held back", held)
		}
	}
	_, _ = fmt.Fprintln(stderr, summary)
	return runErr
}

func sourceText(sources []ingest.Source, path string) []byte {
	i := sort.Search(len(sources), func(i int) bool { return sources[i].Path >= path })
	if i < len(sources) && sources[i].Path == path {
		return sources[i].Text
	}
	return nil
}

// underRoots keeps the changed files that lie under one of roots.
func underRoots(changed, roots []string) []string {
	var out []string
	for _, p := range changed {
		for _, r := range roots {
			r = filepath.ToSlash(filepath.Clean(r))
			if r == "." || p == r || strings.HasPrefix(p, r+"/") {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	noteColor    = color.New(color.FgCyan)
)

func printDiagnostics(w io.Writer, diags []pipeline.Diagnostic, verbose bool) {
	for _, d := range diags {
		c := warningColor
		switch d.Kind {
		case pipeline.UnresolvedReferenceSkip:
			if !verbose {
				continue
			}
			c = noteColor
		case pipeline.ParseError, pipeline.ValidationFailure, pipeline.NonConvergence:
			c = errorColor
		}
		_, _ = c.Fprintln(w, d.String())
	}
}
