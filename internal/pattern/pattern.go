// Package pattern expands file name wildcards into sorted lists of paths.
//
// Patterns support '*' (any run of characters), '?' (exactly one character)
// and bracket expressions such as '[abc]', '[a-c]' and '[!a]'. Only the final
// path element may contain wildcards, and matching is anchored to the whole
// file name and case-sensitive:
//
//   - "eit/efz20040301.0?0010_s.fits" matches every frame of that hour
//   - "eit/efz20040301.0[2-6]0010_s.fits" matches frames 2 through 6
package pattern

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ErrInvalidPattern is returned for malformed patterns, such as an unterminated '['
var ErrInvalidPattern = errors.New("invalid pattern")

const metaChars = "*?["

// HasMeta reports whether s contains any wildcard characters
func HasMeta(s string) bool {
	return strings.ContainsAny(s, metaChars)
}

// Compile validates a file name pattern and compiles it
func Compile(name string) (glob.Glob, error) {
	// filepath.Match catches malformed patterns that glob.Compile may accept
	if _, err := filepath.Match(name, "test"); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, name, err)
	}

	// braces are literal in file names but alternation in gobwas/glob
	quoted := strings.NewReplacer("{", `\{`, "}", `\}`).Replace(name)
	compiled, err := glob.Compile(quoted)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, name, err)
	}
	return compiled, nil
}

// Expand returns the sorted paths of the directory entries matching p.
// A missing or empty directory, or a pattern with no matches, yields an empty slice.
func Expand(p string) ([]string, error) {
	dir, name := filepath.Split(p)
	if HasMeta(dir) {
		return nil, fmt.Errorf("%w %q: wildcards are only supported in the file name", ErrInvalidPattern, p)
	}
	if name == "" {
		return nil, fmt.Errorf("%w %q: missing file name", ErrInvalidPattern, p)
	}

	compiled, err := Compile(name)
	if err != nil {
		return nil, err
	}

	listDir := dir
	if listDir == "" {
		listDir = "."
	}

	entries, err := os.ReadDir(listDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", listDir, err)
	}

	matches := make([]string, 0, len(entries))
	for _, entry := range entries {
		entryName := entry.Name()
		// hidden files only match patterns that name the dot explicitly
		if strings.HasPrefix(entryName, ".") && !strings.HasPrefix(name, ".") {
			continue
		}
		if compiled.Match(entryName) {
			matches = append(matches, filepath.Join(dir, entryName))
		}
	}

	slices.Sort(matches)
	return matches, nil
}
