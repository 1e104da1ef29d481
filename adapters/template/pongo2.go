package reporttemplate

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Pongo2Executor holds compiled pongo2 templates by name.
type Pongo2Executor struct {
	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

var _ TemplateExecutor = (*Pongo2Executor)(nil)

// NewPongo2Executor creates an empty executor.
func NewPongo2Executor() *Pongo2Executor {
	return &Pongo2Executor{templates: make(map[string]*pongo2.Template)}
}

// Register compiles source and stores it under name, replacing any previous template.
func (e *Pongo2Executor) Register(name, source string) error {
	if name == "" {
		return errors.New("template name is required")
	}
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return fmt.Errorf("compile template %q: %w", name, err)
	}
	e.mu.Lock()
	e.templates[name] = tpl
	e.mu.Unlock()
	return nil
}

// ExecuteTemplate renders a named template into w. Map data is exposed as
// top-level variables; anything else is available as "data".
func (e *Pongo2Executor) ExecuteTemplate(w io.Writer, name string, data any) error {
	if e == nil {
		return errors.New("pongo2 executor is nil")
	}
	e.mu.RLock()
	tpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not registered", name)
	}

	var ctx pongo2.Context
	switch value := data.(type) {
	case pongo2.Context:
		ctx = value
	case map[string]any:
		ctx = pongo2.Context(value)
	default:
		ctx = pongo2.Context{"data": data}
	}
	return tpl.ExecuteWriter(ctx, w)
}
