package template

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/memory"

	"tmpl/pkg/interp"
)

// Install downloads <registry>/<name>/file.tmpl and returns the installed
// path.
func (s *Store) Install(ctx context.Context, name string) (dest string, err error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return "", err
	}

	task := s.progress().Start(fmt.Sprintf("Downloading template '%s'", name))
	defer func() { task.Stop(err) }()

	u := strings.TrimSuffix(s.RegistryURL, "/") + "/" + url.PathEscape(name) + "/" + FileName
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w '%s': %v", ErrDownloadFailed, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w '%s': %s", ErrDownloadFailed, name, resp.Status)
	}

	return s.save(name, resp.Body)
}

// InstallLocal copies a .tmpl file from dir. With several candidates the
// user picks one by number; the user then names the template, defaulting
// to the file's stem. It returns the chosen name.
func (s *Store) InstallLocal(dir string, prompter interp.Prompter) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".tmpl" {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoLocalTemplates, dir)
	}

	selected := files[0]
	if len(files) > 1 {
		fmt.Fprintln(s.Out, "Available templates:")
		for i, f := range files {
			fmt.Fprintf(s.Out, "  %d. %s\n", i+1, f)
		}
		answer, err := prompter.Ask("Select template number", "1")
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || n < 1 || n > len(files) {
			return "", fmt.Errorf("%w: %s", ErrInvalidSelection, answer)
		}
		selected = files[n-1]
	}

	name, err := prompter.Ask("Enter name for this template", strings.TrimSuffix(selected, ".tmpl"))
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return "", err
	}

	f, err := os.Open(filepath.Join(dir, selected))
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", selected, err)
	}
	defer f.Close()

	if _, err := s.save(name, f); err != nil {
		return "", err
	}
	return name, nil
}

// IsSource reports whether arg names a git repository or a local
// directory rather than a registry template.
func IsSource(arg string) bool {
	for _, prefix := range []string{"https://", "http://", "git@", "ssh://", "file://"} {
		if strings.HasPrefix(arg, prefix) {
			return true
		}
	}
	if strings.HasSuffix(arg, ".git") {
		return true
	}
	if arg == "." {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && info.IsDir()
}

// DeriveName is the default template name for a source: its last path
// element without a .git suffix.
func DeriveName(source string) string {
	source = strings.TrimRight(filepath.ToSlash(source), "/")
	return strings.TrimSuffix(path.Base(source), ".git")
}

// InstallSource installs the template found at the root of a local
// directory or a shallow clone of a git repository. file.tmpl is preferred,
// otherwise the first .tmpl file by name is used.
func (s *Store) InstallSource(ctx context.Context, source, name string) (installed string, err error) {
	if name == "" {
		name = DeriveName(source)
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}

	task := s.progress().Start(fmt.Sprintf("Fetching template from %s", source))
	defer func() { task.Stop(err) }()

	fs, err := openSource(ctx, source)
	if err != nil {
		return "", err
	}
	file, err := findTemplateFile(fs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", source, err)
	}

	f, err := fs.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	if _, err := s.save(name, f); err != nil {
		return "", err
	}
	return name, nil
}

func openSource(ctx context.Context, source string) (billy.Filesystem, error) {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return osfs.New(source), nil
	}

	fs := memfs.New()
	_, err := git.CloneContext(ctx, memory.NewStorage(), fs, &git.CloneOptions{
		URL:   source,
		Depth: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", source, err)
	}
	return fs, nil
}

func findTemplateFile(fs billy.Filesystem) (string, error) {
	if info, err := fs.Stat(FileName); err == nil && !info.IsDir() {
		return FileName, nil
	}

	entries, err := fs.ReadDir("/")
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tmpl") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", ErrNoTemplateFile
	}
	sort.Strings(names)
	return names[0], nil
}
