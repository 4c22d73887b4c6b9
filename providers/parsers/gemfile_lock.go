package parsers

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gemhub/gemhub-core/providers/fetchers"
	"github.com/gemhub/gemhub-core/providers/versioneer"
)

// NewGemfileLockParser constructs Gemfile.lock files parser.
// If 'filename' parameter is an empty string - 'Gemfile.lock' will be used instead.
func NewGemfileLockParser(fetcher fetchers.FileFetcher, filename string) LockParser {
	if filename == "" {
		return &GemfileLockParser{fetcher: fetcher, SourceName: "Gemfile.lock"}
	}
	return &GemfileLockParser{fetcher: fetcher, SourceName: filename}
}

// GemfileLockParser represents concrete Gemfile.lock parser implementation.
type GemfileLockParser struct {
	fetcher fetchers.FileFetcher
	// SourceName is the source filename (e.g. 'Gemfile.lock')
	SourceName string
}

// BundledWith returns the version recorded in the lockfile's 'BUNDLED WITH'
// section. Lockfiles written before that section existed yield (nil, nil).
func (g GemfileLockParser) BundledWith(ctx context.Context) (versioneer.Version, error) {
	b, err := g.content(ctx)
	if err != nil {
		return nil, err
	}

	raw := parseBundledWith(b)
	if raw == "" {
		return nil, nil
	}

	version, err := versioneer.NewGemVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid BUNDLED WITH version %q: %w", raw, err)
	}
	return version, nil
}

// Requirements method returns the top-level locked gems from the 'GEM/specs' section.
func (g GemfileLockParser) Requirements(ctx context.Context) ([]Requirement, error) {
	b, err := g.content(ctx)
	if err != nil {
		return nil, err
	}

	res := []Requirement{}
	for name, version := range parseLockedSpecs(b) {
		res = append(res, Requirement{Name: name, Version: version})
	}
	return res, nil
}

// Constraints method returns dependencies from the 'DEPENDENCIES' section.
func (g GemfileLockParser) Constraints(ctx context.Context) ([]Constraint, error) {
	b, err := g.content(ctx)
	if err != nil {
		return nil, err
	}

	res := []Constraint{}
	for name, constraint := range parseDependencies(b) {
		res = append(res, Constraint{Name: name, Version: constraint})
	}
	return res, nil
}

func (g GemfileLockParser) content(ctx context.Context) ([]byte, error) {
	b, err := g.fetcher.FileContent(ctx, g.SourceName)
	if err != nil {
		if err == fetchers.ErrFileNotFound {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("unable to fetch lockfile from the source: %w", err)
	}
	return b, nil
}

// parseBundledWith extracts the version from the BUNDLED WITH section:
// the first non-empty indented line that follows the header.
func parseBundledWith(fileContent []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(fileContent))
	inSection := false
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, " ") {
			inSection = strings.TrimSpace(line) == "BUNDLED WITH"
			continue
		}
		if inSection {
			if v := strings.TrimSpace(line); v != "" {
				return v
			}
		}
	}
	return ""
}

// parseLockedSpecs contains 'GEM/specs' section parsing logic.
//
// Only top-level entries (4-space indent, 'name (version)') are returned;
// deeper-indented lines are transitive dependency declarations.
func parseLockedSpecs(fileContent []byte) map[string]string {
	result := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(fileContent))
	inGem, inSpecs := false, false
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, " ") {
			inGem = strings.TrimSpace(line) == "GEM"
			inSpecs = false
			continue
		}
		if !inGem {
			continue
		}
		if strings.TrimSpace(line) == "specs:" {
			inSpecs = true
			continue
		}
		if !inSpecs || !strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "      ") {
			continue
		}
		name, version, ok := splitNameVersion(line)
		if !ok {
			continue
		}
		result[name] = version
	}
	return result
}

// parseDependencies contains 'DEPENDENCIES' section parsing logic.
//
// Entries look like 'rails (~> 7.0)' or bare 'rake'; a bare entry gets the
// match-everything constraint '>= 0'. A '!' suffix marks gems sourced
// outside the default remote and is stripped.
func parseDependencies(fileContent []byte) map[string]string {
	result := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(fileContent))
	inSection := false
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, " ") {
			inSection = strings.TrimSpace(line) == "DEPENDENCIES"
			continue
		}
		if !inSection {
			continue
		}
		name, constraint, ok := splitNameVersion(line)
		if !ok {
			trimmed := strings.TrimSuffix(strings.TrimSpace(line), "!")
			if trimmed == "" {
				continue
			}
			name, constraint = trimmed, ">= 0"
		}
		result[strings.TrimSuffix(name, "!")] = constraint
	}
	return result
}

// splitNameVersion parses a 'name (version)' lockfile entry.
func splitNameVersion(line string) (name, version string, ok bool) {
	trimmed := strings.TrimSpace(line)
	open := strings.IndexByte(trimmed, '(')
	if open < 1 || !strings.HasSuffix(trimmed, ")") {
		return "", "", false
	}
	name = strings.TrimSpace(trimmed[:open])
	version = strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	if name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}
