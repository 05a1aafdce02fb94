package document

import (
	"bytes"
	"errors"
	"fmt"
	"mime"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedContent is returned for documents that are neither text nor html
var ErrUnsupportedContent = errors.New("unsupported document content")

const (
	htmlMIME = "text/html"
	textMIME = "text/plain"
)

// HTML2MDParser converts html content into markdown
type HTML2MDParser struct {
	opts []converter.ConvertOptionFunc
}

func NewHTML2MDParser(opts ...converter.ConvertOptionFunc) *HTML2MDParser {
	return &HTML2MDParser{
		opts: opts,
	}
}

func (h *HTML2MDParser) Parse(content []byte) ([]byte, error) {
	return htmltomarkdown.ConvertReader(bytes.NewReader(content), h.opts...)
}

var defaultHTMLParser = NewHTML2MDParser()

// Normalize detects the content type of content and returns it as text.
// Html is converted to markdown, other text is kept as is, anything else is rejected.
// declared is the content type reported by the source, it may be empty.
func Normalize(content []byte, declared string) ([]byte, string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return content, textMIME, nil
	}
	mtype := mimetype.Detect(content)
	switch {
	case mtype.Is(htmlMIME) || (isText(mtype) && isDeclaredHTML(declared)):
		md, err := defaultHTMLParser.Parse(content)
		if err != nil {
			return nil, htmlMIME, fmt.Errorf("convert html: %w", err)
		}
		return md, htmlMIME, nil
	case isText(mtype):
		return content, mtype.String(), nil
	}
	return nil, mtype.String(), fmt.Errorf("%w: %s", ErrUnsupportedContent, mtype.String())
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(textMIME) {
			return true
		}
	}
	return false
}

func isDeclaredHTML(declared string) bool {
	if declared == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	return err == nil && mediaType == htmlMIME
}
