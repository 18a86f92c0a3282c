package indexer

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	minChunkRunes = 50
	maxChunkRunes = 700 // keeps chunks inside a 512-token embedding window
)

// Chunk is one indexable slice of a document. Section is the heading path
// the text sits under, rendered like "# Title > ## Subheading".
type Chunk struct {
	Index   int
	Section string
	Text    string
}

// MarkdownChunker splits markdown into heading-aligned chunks using a
// goldmark AST walk, so tables and code blocks stay intact.
type MarkdownChunker struct {
	parser goldmark.Markdown
}

func NewMarkdownChunker() *MarkdownChunker {
	return &MarkdownChunker{
		parser: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Chunk parses content and returns the document title plus its chunks.
// The title is the first level-1 heading, falling back to the first level-2
// heading and then to the filename.
func (c *MarkdownChunker) Chunk(content []byte, filename string) (string, []Chunk, error) {
	if len(content) == 0 {
		return titleFromFilename(filename), nil, nil
	}

	doc := c.parser.Parser().Parse(text.NewReader(content))
	title := extractTitle(doc, content, filename)
	chunks := c.collectChunks(doc, content, title)
	chunks = c.applySizeConstraints(chunks)
	return title, chunks, nil
}

func extractTitle(doc ast.Node, content []byte, filename string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1 && firstH1 == "":
			firstH1 = nodeText(heading, content)
			return ast.WalkStop, nil
		case heading.Level == 2 && firstH2 == "":
			firstH2 = nodeText(heading, content)
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

type headingFrame struct {
	level int
	text  string
}

// collectChunks walks the AST, starting a new chunk at every heading and
// accumulating the text nodes underneath it. Content before the first
// heading is attributed to the document title.
func (c *MarkdownChunker) collectChunks(doc ast.Node, content []byte, docTitle string) []Chunk {
	var chunks []Chunk
	var current *Chunk
	var stack []headingFrame

	appendText := func(s string) {
		if current == nil {
			current = &Chunk{Index: len(chunks), Section: "# " + docTitle}
		}
		current.Text += s
	}
	breakLine := func() {
		if current != nil && current.Text != "" && !strings.HasSuffix(current.Text, "\n") {
			current.Text += "\n"
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingFrame{level: node.Level, text: nodeText(node, content)})

			if current != nil && current.Text != "" {
				chunks = append(chunks, *current)
			}
			current = &Chunk{Index: len(chunks), Section: headingPath(stack)}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			appendText(string(node.Segment.Value(content)))

		case *ast.String:
			appendText(string(node.Value))

		case *ast.CodeBlock, *ast.FencedCodeBlock:
			breakLine()
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				appendText(string(seg.Value(content)))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem:
			breakLine()

		default:
			kind := n.Kind().String()
			if kind == "TableRow" || kind == "TableHeader" {
				breakLine()
				appendText(tableRowText(n, content))
				appendText("\n")
				return ast.WalkSkipChildren, nil
			}
			if kind == "Table" {
				breakLine()
			}
		}
		return ast.WalkContinue, nil
	})

	if current != nil && current.Text != "" {
		chunks = append(chunks, *current)
	}
	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{Section: "# " + docTitle, Text: string(content)})
	}
	return chunks
}

func headingPath(stack []headingFrame) string {
	parts := make([]string, len(stack))
	for i, frame := range stack {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", frame.level), frame.text)
	}
	return strings.Join(parts, " > ")
}

func nodeText(n ast.Node, content []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			builder.Write(v.Segment.Value(content))
		case *ast.String:
			builder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}

func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind().String() == "TableCell" {
			cells = append(cells, nodeText(node, content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(cells, " | ")
}

// applySizeConstraints merges undersized chunks forward and splits oversized
// ones. Two adjacent chunks under the same heading path merge first, which
// reunites text that a table or code block interrupted.
func (c *MarkdownChunker) applySizeConstraints(chunks []Chunk) []Chunk {
	var result []Chunk

	for i := 0; i < len(chunks); i++ {
		current := chunks[i]

		for i+1 < len(chunks) {
			next := chunks[i+1]
			sameSection := current.Section == next.Section && current.Section != ""
			tooSmall := utf8.RuneCountInString(current.Text) < minChunkRunes
			if !sameSection && !tooSmall {
				break
			}
			merged := current.Text + "\n\n" + next.Text
			if utf8.RuneCountInString(merged) > maxChunkRunes {
				break
			}
			current.Text = merged
			i++
		}

		if utf8.RuneCountInString(current.Text) > maxChunkRunes {
			result = append(result, splitChunk(current)...)
		} else {
			result = append(result, current)
		}
	}

	for i := range result {
		result[i].Index = i
	}
	return result
}

// splitChunk cuts an oversized chunk, preferring paragraph breaks, then
// line breaks, then sentence ends, before hard-splitting at the limit.
func splitChunk(chunk Chunk) []Chunk {
	runes := []rune(chunk.Text)
	var splits []Chunk

	start := 0
	for start < len(runes) {
		end := start + maxChunkRunes
		if end >= len(runes) {
			splits = append(splits, Chunk{Section: chunk.Section, Text: string(runes[start:])})
			break
		}

		window := string(runes[start:end])
		cut := end
		if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
			cut = start + utf8.RuneCountInString(window[:idx+2])
		} else if idx := strings.LastIndex(window, "\n"); idx >= 0 {
			cut = start + utf8.RuneCountInString(window[:idx+1])
		} else if idx := strings.LastIndex(window, ". "); idx >= 0 {
			cut = start + utf8.RuneCountInString(window[:idx+2])
		}

		splits = append(splits, Chunk{Section: chunk.Section, Text: string(runes[start:cut])})
		start = cut
	}

	return splits
}
