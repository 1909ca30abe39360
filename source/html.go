// CLAUDE:SUMMARY Converts a fetched HTML page to markdown: select the readme body, sanitize, convert.
package source

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// contentClass marks the rendered readme on GitHub pages.
const contentClass = "markdown-body"

type htmlConverter struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

func newHTMLConverter() *htmlConverter {
	return &htmlConverter{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// markdown reduces page to its main content and converts it. Relative links
// are resolved against pageURL.
func (h *htmlConverter) markdown(page, pageURL string) (string, error) {
	fragment, err := selectContent(page)
	if err != nil {
		return "", err
	}
	clean := h.policy.Sanitize(fragment)
	md, err := h.conv.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// selectContent returns the outer HTML of the first element carrying the
// markdown-body class, else <body>, else the whole document.
func selectContent(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	node := findNode(doc, func(n *html.Node) bool { return hasClass(n, contentClass) })
	if node == nil {
		node = findNode(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	}
	if node == nil {
		return page, nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// isHTML reports whether a payload is an HTML page rather than markdown.
// Markdown files that merely start with inline HTML (<div>, <p>) are not.
func isHTML(contentType string, body []byte) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
