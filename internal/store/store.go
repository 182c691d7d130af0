// Package store persists finalized tracks and lists what a folder
// already holds. It decides filenames, not locations: callers pick the
// folder.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// Store is the filesystem-backed persistence collaborator.
type Store struct{}

// New returns a Store rooted at the process working directory; every
// call takes an explicit folder.
func New() *Store {
	return &Store{}
}

// Write persists bytes under folder/filename, creating the folder if
// needed, and returns the full path.
func (s *Store) Write(folder, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating folder %s: %w", folder, err)
	}
	path := filepath.Join(folder, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// List returns the paths in folder whose names start with prefix and
// end with one of the allowed extensions (e.g. ".wav"). Results are
// sorted by name.
func (s *Store) List(folder, prefix string, allowedExtensions []string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		if !hasAllowedExtension(name, allowedExtensions) {
			continue
		}
		out = append(out, filepath.Join(folder, name))
	}
	sort.Strings(out)
	return out, nil
}

func hasAllowedExtension(name string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// TrackFilename builds the canonical per-track filename:
// {session}_{sanitizedDisplayName}_{first6OfTrackID}.{ext}. Every
// character outside [A-Za-z0-9] in the display name becomes an
// underscore.
func TrackFilename(sessionName, displayName, shortID, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		sessionName,
		SanitizeName(displayName),
		shortID,
		strings.TrimPrefix(ext, "."),
	)
}

// SanitizeName replaces every character outside [A-Za-z0-9] with '_'.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}
