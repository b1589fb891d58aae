package blog

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/woxQAQ/hellofriend/pkg/protocol"
)

//go:embed templates/blog.html
var templateFS embed.FS

var blogTemplate = template.Must(template.ParseFS(templateFS, "templates/blog.html"))

// pageData is what the template sees. Main is already HTML.
type pageData struct {
	Title       string
	Timestamp   string
	Main        template.HTML
	ContentInfo string
}

// Renderer turns posts into HTML pages.
type Renderer struct {
	minifier *minify.M
}

// NewRenderer creates a renderer. With minifyOutput set, pages are minified
// before they are returned.
func NewRenderer(minifyOutput bool) *Renderer {
	r := &Renderer{}
	if minifyOutput {
		m := minify.New()
		m.Add("text/html", &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
		})
		r.minifier = m
	}
	return r
}

// Render executes the page template for post.
func (r *Renderer) Render(post *protocol.Post) ([]byte, error) {
	data := pageData{
		Title:       post.Title,
		Timestamp:   post.Timestamp,
		Main:        renderMarkdown(post.Main),
		ContentInfo: post.ContentInfo,
	}

	var buf bytes.Buffer
	if err := blogTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}

	if r.minifier == nil {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := r.minifier.Minify("text/html", &out, &buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// renderMarkdown renders a post body. Posts come from the server's own
// posts directory and are trusted.
func renderMarkdown(src string) template.HTML {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(src))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})

	return template.HTML(markdown.Render(doc, renderer))
}
