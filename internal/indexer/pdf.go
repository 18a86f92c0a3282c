package indexer

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText reads the plain text of a PDF file.
func ExtractPDFText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %q: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text from %q: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("failed to read pdf text from %q: %w", path, err)
	}
	return buf.String(), nil
}

// ChunkPlainText splits extracted plain text into size-bounded chunks, all
// attributed to the document title since PDFs carry no heading structure
// we can rely on.
func (c *MarkdownChunker) ChunkPlainText(content, filename string) (string, []Chunk) {
	title := titleFromFilename(filename)
	if len(content) == 0 {
		return title, nil
	}
	chunks := c.applySizeConstraints([]Chunk{{Section: "# " + title, Text: content}})
	return title, chunks
}
