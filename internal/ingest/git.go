package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
)

// GitChangedFiles lists the files that differ from base in the repository
// at repoPath, plus untracked files, restricted to supported languages.
// Paths are relative to the repository root.
func GitChangedFiles(ctx context.Context, repoPath, base string) ([]string, error) {
	changed, err := gitLines(ctx, repoPath, "diff", "--name-only", "--diff-filter=ACMR", base, "--")
	if err != nil {
		return nil, err
	}
	untracked, err := gitLines(ctx, repoPath, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range append(changed, untracked...) {
		p = path.Clean(p)
		if seen[p] {
			continue
		}
		if _, _, ok := LanguageForPath(p); !ok {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

func gitLines(ctx context.Context, repoPath string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	var lines []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return lines, nil
}
