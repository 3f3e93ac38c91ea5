package template

import (
	"context"
	"errors"
	"time"
)

// FileName is the name of the template file inside each template directory.
const FileName = "file.tmpl"

var (
	ErrNotInstalled     = errors.New("template not installed")
	ErrInvalidName      = errors.New("invalid template name")
	ErrNoLocalTemplates = errors.New("no .tmpl files found")
	ErrInvalidSelection = errors.New("invalid template selection")
	ErrNoTemplateFile   = errors.New("no .tmpl file in source")
	ErrDownloadFailed   = errors.New("failed to download template")
)

type TemplateInfo struct {
	Name        string
	Path        string
	Size        int64
	InstalledAt time.Time
}

// Loader returns the directive text of an installed template.
type Loader interface {
	Load(name string) (string, error)
}

type TemplateStore interface {
	Loader
	Install(ctx context.Context, name string) (string, error)
	Remove(name string) error
	List() ([]TemplateInfo, error)
}
