package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer guarda um conjunto de templates por e-mail, todos sobre o mesmo layout.
// Cada arquivo define "subject" e "body".
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	return newRenderer(templatesFS)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	layout, err := template.ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler layout de email: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler template %s: %w", file, err)
		}
		r.templates[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return r, nil
}

// Render devolve o assunto (texto puro) e o HTML completo.
func (r *Renderer) Render(name string, data any) (string, string, error) {
	t, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("template de email desconhecido: %s", name)
	}

	var subject bytes.Buffer
	if err := t.ExecuteTemplate(&subject, "subject", data); err != nil {
		return "", "", fmt.Errorf("erro ao processar assunto de %s: %w", name, err)
	}

	var body bytes.Buffer
	if err := t.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", "", fmt.Errorf("erro ao processar template %s: %w", name, err)
	}

	return strings.TrimSpace(html.UnescapeString(subject.String())), body.String(), nil
}

// Names lista os templates carregados.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
