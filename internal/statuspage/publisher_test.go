package statuspage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func contact() Contact {
	return Contact{
		Name:  "Alice Anderson",
		Phone: "+49 170 0000001",
		Email: "alice@example.com",
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "oncall_now.html")
	require.NoError(t, NewPublisher(path).Publish(context.Background(), contact()))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(body)
	require.Contains(t, page, "Alice Anderson")
	require.Contains(t, page, "+49 170 0000001")
	require.Contains(t, page, "mailto:alice@example.com")
	require.Contains(t, page, "2024-01-01")
	require.Contains(t, page, "2024-01-31")
}

func TestPublish_OverwritesPreviousPage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "oncall_now.html")
	publisher := NewPublisher(path)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, contact()))

	next := contact()
	next.Name = "Bob Baker"
	next.Email = "bob@example.com"
	require.NoError(t, publisher.Publish(ctx, next))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(body), "Bob Baker")
	require.NotContains(t, string(body), "Alice Anderson")
}

func TestPublish_EscapesContactFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "oncall_now.html")
	hostile := contact()
	hostile.Name = "<script>alert(1)</script>"
	require.NoError(t, NewPublisher(path).Publish(context.Background(), hostile))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(body), "<script>")
}

func TestNewPublisherFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	templatePath := filepath.Join(dir, "page.tmpl")
	require.NoError(t, os.WriteFile(templatePath, []byte("holder: {{.Name}} ({{.Phone}})"), 0o644))

	pagePath := filepath.Join(dir, "oncall_now.html")
	publisher, err := NewPublisherFromFile(pagePath, templatePath)
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), contact()))

	body, err := os.ReadFile(pagePath)
	require.NoError(t, err)
	require.Equal(t, "holder: Alice Anderson (+49 170 0000001)", string(body))
}

func TestNewPublisherFromFile_MissingTemplate(t *testing.T) {
	t.Parallel()

	_, err := NewPublisherFromFile(filepath.Join(t.TempDir(), "page.html"), filepath.Join(t.TempDir(), "absent.tmpl"))
	require.Error(t, err)
}
