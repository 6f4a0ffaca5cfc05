// Package statuspage renders and persists the operator-facing page naming
// the currently active on-call holder.
package statuspage

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// defaultTemplate mirrors the operator page of the historical system: a
// minimal HTML document with the holder's contact details.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head><title>On-call now</title></head>
<body>
<h1>On-call now</h1>
<p><strong>{{.Name}}</strong></p>
<p>Phone: {{.Phone}}</p>
<p>Email: <a href="mailto:{{.Email}}">{{.Email}}</a></p>
<p>From {{.Start.Format "2006-01-02"}} until {{.End.Format "2006-01-02"}}</p>
</body>
</html>
`

// Contact is the record rendered onto the status page.
type Contact struct {
	Name  string
	Phone string
	Email string
	Start time.Time
	End   time.Time
}

// Publisher writes the rendered status page to a well-known location.
type Publisher struct {
	path string
	tmpl *template.Template
}

// NewPublisher returns a publisher that writes to path using the built-in
// page template.
func NewPublisher(path string) *Publisher {
	return &Publisher{
		path: path,
		tmpl: template.Must(template.New("statuspage").Parse(defaultTemplate)),
	}
}

// NewPublisherFromFile returns a publisher using a custom template file
// instead of the built-in one.
func NewPublisherFromFile(path, templatePath string) (*Publisher, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("statuspage: parse template %s: %w", templatePath, err)
	}
	return &Publisher{path: path, tmpl: tmpl}, nil
}

// Publish renders the contact record and atomically replaces the page file.
func (p *Publisher) Publish(ctx context.Context, contact Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, contact); err != nil {
		return fmt.Errorf("statuspage: render page: %w", err)
	}

	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*")
	if err != nil {
		return fmt.Errorf("statuspage: create temp page in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(buf.Bytes())
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if writeErr != nil {
			return fmt.Errorf("statuspage: write page: %w", writeErr)
		}
		return fmt.Errorf("statuspage: close page: %w", closeErr)
	}

	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("statuspage: replace page %s: %w", p.path, err)
	}
	return nil
}
