package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/tutor/pkg/extract"
)

// mockRunner is a test double for the pdftotext command.
type mockRunner struct {
	output []byte
	err    error

	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func TestTextFromPDF(t *testing.T) {
	runner := &mockRunner{output: []byte("Extracted page one.\n\nExtracted page two.")}
	extractor := extract.NewWithRunner(runner)

	text, err := extractor.Text(context.Background(), "/docs/book.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Extracted page one.\n\nExtracted page two.", text)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"/docs/book.pdf", "-"}, runner.args)
}

func TestTextFromPDFCommandFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	extractor := extract.NewWithRunner(runner)

	_, err := extractor.Text(context.Background(), "/docs/broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestTextFromHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.html")
	html := `<html><head><style>body { color: red; }</style></head>
<body><h1>Guide</h1><script>alert("ignored")</script>
<p>The   first    paragraph.</p><p>The second paragraph.</p></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(html), 0644))

	extractor := extract.New()
	text, err := extractor.Text(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, text, "Guide")
	assert.Contains(t, text, "The first paragraph.")
	assert.Contains(t, text, "The second paragraph.")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
}

func TestTextFromPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Plain notes content."), 0644))

	extractor := extract.New()
	text, err := extractor.Text(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Plain notes content.", text)
}

func TestTextUnsupportedType(t *testing.T) {
	extractor := extract.New()

	_, err := extractor.Text(context.Background(), "/docs/image.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document type")
}
