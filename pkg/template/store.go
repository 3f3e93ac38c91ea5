// Package template manages installed templates under the data directory,
// one directory per template holding a single file.tmpl.
package template

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"tmpl/pkg/interp"
)

type Store struct {
	Dir         string
	RegistryURL string
	Client      *http.Client
	Progress    interp.Progress
	// Out receives listings shown while choosing a local template.
	Out io.Writer
}

var _ TemplateStore = (*Store)(nil)

func NewStore(dir, registryURL string) *Store {
	return &Store{
		Dir:         dir,
		RegistryURL: registryURL,
		Client:      &http.Client{Timeout: 60 * time.Second},
		Out:         io.Discard,
	}
}

// ValidateName rejects names that are empty, contain whitespace or would
// escape the templates directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	case strings.ContainsAny(name, " \t\r\n"):
		return fmt.Errorf("%w: '%s' cannot contain spaces", ErrInvalidName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: '%s' cannot contain path separators", ErrInvalidName, name)
	}
	return nil
}

func (s *Store) templatePath(name string) string {
	return filepath.Join(s.Dir, name, FileName)
}

func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.templatePath(name))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.templatePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", s.notInstalled(name)
		}
		return "", fmt.Errorf("failed to read template '%s': %w", name, err)
	}
	return string(data), nil
}

func (s *Store) notInstalled(name string) error {
	if hints := s.Suggest(name); len(hints) > 0 {
		return fmt.Errorf("template '%s': %w (did you mean '%s'?)", name, ErrNotInstalled, hints[0])
	}
	return fmt.Errorf("template '%s': %w", name, ErrNotInstalled)
}

// List returns installed templates sorted by name. A missing templates
// directory is an empty list.
func (s *Store) List() ([]TemplateInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	var infos []TemplateInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := s.templatePath(e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		infos = append(infos, TemplateInfo{
			Name:        e.Name(),
			Path:        path,
			Size:        info.Size(),
			InstalledAt: info.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *Store) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !s.Exists(name) {
		return fmt.Errorf("template '%s': %w", name, ErrNotInstalled)
	}
	if err := os.RemoveAll(filepath.Join(s.Dir, name)); err != nil {
		return fmt.Errorf("failed to remove template '%s': %w", name, err)
	}
	return nil
}

// Suggest returns installed names close to name, best match first.
func (s *Store) Suggest(name string) []string {
	infos, err := s.List()
	if err != nil || len(infos) == 0 {
		return nil
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}

	type candidate struct {
		name     string
		distance int
	}
	var found []candidate
	seen := make(map[string]bool)
	ranks := fuzzy.RankFindFold(name, names)
	sort.Sort(ranks)
	for _, r := range ranks {
		found = append(found, candidate{r.Target, r.Distance})
		seen[r.Target] = true
	}
	for _, n := range names {
		if seen[n] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(n)); d <= 2 {
			found = append(found, candidate{n, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].distance < found[j].distance })

	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.name
	}
	return out
}

// save writes r to the template's file through a temporary file so a
// failed transfer never leaves a partial template behind.
func (s *Store) save(name string, r io.Reader) (string, error) {
	dir := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create template directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create template file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write template: %w", err)
	}

	dest := s.templatePath(name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to install template: %w", err)
	}
	return dest, nil
}

func (s *Store) progress() interp.Progress {
	if s.Progress == nil {
		return nopProgress{}
	}
	return s.Progress
}

type nopProgress struct{}

func (nopProgress) Start(string) interp.Task { return nopTask{} }

type nopTask struct{}

func (nopTask) Stop(error) {}
