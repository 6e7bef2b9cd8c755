package driven

// MarkdownNodeKind is the kind of a flattened markdown node.
type MarkdownNodeKind int

const (
	// MarkdownHeading carries heading text and level.
	MarkdownHeading MarkdownNodeKind = iota

	// MarkdownListStart opens a list block.
	MarkdownListStart

	// MarkdownListEnd closes the most recent list block.
	MarkdownListEnd

	// MarkdownLink carries a link URL and its text.
	MarkdownLink
)

// MarkdownNode is one event of a markdown document walk.
type MarkdownNode struct {
	Kind  MarkdownNodeKind
	Level int
	Text  string
	URL   string
}

// MarkdownParser turns markdown source into nodes in document order.
type MarkdownParser interface {
	Parse(src []byte) ([]MarkdownNode, error)
}
