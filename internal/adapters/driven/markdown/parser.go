// Package markdown flattens markdown documents into heading, list and link
// events using blackfriday.
package markdown

import (
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.MarkdownParser = (*Parser)(nil)

// Parser is a blackfriday backed driven.MarkdownParser. Bare URLs are
// autolinked, so they surface as links too.
type Parser struct {
	extensions blackfriday.Extensions
}

// NewParser creates a parser with the common GitHub-flavoured extensions.
func NewParser() *Parser {
	return &Parser{extensions: blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs}
}

// Parse walks the document tree in order. It never fails; the error is part
// of the port for parsers that can.
func (p *Parser) Parse(src []byte) ([]driven.MarkdownNode, error) {
	root := blackfriday.New(blackfriday.WithExtensions(p.extensions)).Parse(src)

	var nodes []driven.MarkdownNode
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Heading:
			if entering {
				nodes = append(nodes, driven.MarkdownNode{
					Kind:  driven.MarkdownHeading,
					Level: node.HeadingData.Level,
					Text:  textOf(node),
				})
			}
		case blackfriday.List:
			kind := driven.MarkdownListEnd
			if entering {
				kind = driven.MarkdownListStart
			}
			nodes = append(nodes, driven.MarkdownNode{Kind: kind})
		case blackfriday.Link:
			if entering {
				nodes = append(nodes, driven.MarkdownNode{
					Kind: driven.MarkdownLink,
					URL:  strings.TrimSpace(string(node.LinkData.Destination)),
					Text: textOf(node),
				})
			}
		}
		return blackfriday.GoToNext
	})
	return nodes, nil
}

// textOf concatenates the literal text below node.
func textOf(node *blackfriday.Node) string {
	var b strings.Builder
	node.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if entering && (n.Type == blackfriday.Text || n.Type == blackfriday.Code) {
			b.Write(n.Literal)
		}
		return blackfriday.GoToNext
	})
	return strings.TrimSpace(b.String())
}
