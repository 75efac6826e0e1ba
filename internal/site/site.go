// Package site renders week views into a static website.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"weekly-meals/internal/aggregate"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed all:assets
var assetsFS embed.FS

const (
	indexTemplate = "index.html"
	weekTemplate  = "week.html"
)

// Renderer writes the index page, one page per week and the static assets.
type Renderer struct {
	assetsDir string
	distDir   string
	index     *template.Template
	week      *template.Template
}

// Result counts what a render produced.
type Result struct {
	Pages  int
	Assets int
}

// NewRenderer loads the page templates. A template present in templatesDir
// replaces the built-in one of the same name; an empty templatesDir uses the
// built-ins only.
func NewRenderer(templatesDir, assetsDir, distDir string) (*Renderer, error) {
	index, err := loadTemplate(templatesDir, indexTemplate)
	if err != nil {
		return nil, err
	}
	week, err := loadTemplate(templatesDir, weekTemplate)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		assetsDir: assetsDir,
		distDir:   distDir,
		index:     index,
		week:      week,
	}, nil
}

func loadTemplate(dir, name string) (*template.Template, error) {
	var src []byte
	var err error

	if dir != "" {
		src, err = os.ReadFile(filepath.Join(dir, name))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}
	if src == nil {
		src, err = templatesFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in template %s: %w", name, err)
		}
	}

	tmpl, err := template.New(name).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Render recreates the dist directory from views, which are expected newest
// first.
func (r *Renderer) Render(views []aggregate.WeekView) (Result, error) {
	var res Result

	if err := os.RemoveAll(r.distDir); err != nil {
		return res, fmt.Errorf("failed to clear %s: %w", r.distDir, err)
	}
	if err := os.MkdirAll(r.distDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create %s: %w", r.distDir, err)
	}

	if err := r.renderPage(r.index, filepath.Join(r.distDir, "index.html"), struct {
		Weeks []aggregate.WeekView
	}{views}); err != nil {
		return res, err
	}
	res.Pages++
	slog.Info("built page", "path", "index.html")

	for _, v := range views {
		rel := filepath.Join("week", v.StartDate, "index.html")
		if err := r.renderPage(r.week, filepath.Join(r.distDir, rel), v); err != nil {
			return res, err
		}
		res.Pages++
		slog.Info("built page", "path", rel)
	}

	n, err := r.copyAssets()
	if err != nil {
		return res, err
	}
	res.Assets = n
	slog.Info("copied assets", "files", n)

	return res, nil
}

func (r *Renderer) renderPage(tmpl *template.Template, path string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// copyAssets copies the configured assets directory, falling back to the
// built-in assets when it does not exist.
func (r *Renderer) copyAssets() (int, error) {
	var src fs.FS
	if info, err := os.Stat(r.assetsDir); err == nil && info.IsDir() {
		src = os.DirFS(r.assetsDir)
	} else {
		sub, err := fs.Sub(assetsFS, "assets")
		if err != nil {
			return 0, fmt.Errorf("failed to open built-in assets: %w", err)
		}
		src = sub
	}
	return copyTree(src, filepath.Join(r.distDir, "assets"))
}

func copyTree(src fs.FS, dest string) (int, error) {
	count := 0
	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		in, err := src.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		count++
		return out.Close()
	})
	if err != nil {
		return count, fmt.Errorf("failed to copy assets: %w", err)
	}
	return count, nil
}
