package mail

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

var ErrUnknownBodyFormat = errors.New("unknown body format")

// Campaign authors are trusted admins, so inline HTML in markdown is kept.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
		goldmarkHTML.WithUnsafe(),
	),
)

// RenderBody turns a composed campaign body into HTML.
func RenderBody(content, format string) (string, error) {
	switch format {
	case FormatHTML, "":
		return content, nil
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownBodyFormat, format)
	}
}
