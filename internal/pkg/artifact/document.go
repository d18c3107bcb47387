package artifact

import (
	"bytes"
	"encoding/json"
)

// The document tree mirrors the TipTap JSON the editor frontend consumes.
// The node and mark vocabulary is closed: anything outside it is rejected by
// ValidateDocument. The renderer downstream assumes a validated tree.

const (
	NodeDoc         = "doc"
	NodeHeading     = "heading"
	NodeParagraph   = "paragraph"
	NodeBulletList  = "bulletList"
	NodeOrderedList = "orderedList"
	NodeListItem    = "listItem"
	NodeCodeBlock   = "codeBlock"
	NodeHardBreak   = "hardBreak"
	NodeTable       = "table"
	NodeTableRow    = "tableRow"
	NodeTableHeader = "tableHeader"
	NodeTableCell   = "tableCell"
	NodeText        = "text"
)

const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkCode      = "code"
	MarkHighlight = "highlight"
)

// OpeningMarker is the canary sentence the prompt instructs the model to put
// into the first paragraph, highlighted. Checked by HasOpeningMarker.
const OpeningMarker = "test successful"

// Node is one node of the document tree. Which fields must be set depends on
// Type; ValidateDocument enforces the per-kind rules.
type Node struct {
	Type    string `json:"type"`
	Attrs   *Attrs `json:"attrs,omitempty"`
	Marks   []Mark `json:"marks,omitempty"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// Attrs carries the union of all node attributes. Only the fields belonging
// to the node's kind may be set.
type Attrs struct {
	Level     int    `json:"level,omitempty"`
	TextAlign string `json:"textAlign,omitempty"`
	Language  string `json:"language,omitempty"`
}

type Mark struct {
	Type string `json:"type"`
}

// Serialize renders the tree back to JSON. Serialize then ValidateDocument
// round-trips any valid tree.
func (n *Node) Serialize() ([]byte, error) {
	return json.Marshal(n)
}

// ValidateDocument parses raw model output into a document tree and checks it
// against the structural contract. It returns a *ParseError when raw is not
// JSON, a *SchemaError when the shape is wrong, and the root node otherwise.
func ValidateDocument(raw []byte) (*Node, error) {
	if !json.Valid(raw) {
		var probe any
		err := json.Unmarshal(raw, &probe)
		return nil, &ParseError{Err: err}
	}

	// Strict decode: unknown keys anywhere in the tree (including inside
	// attrs) are shape violations, not parse failures.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var root Node
	if err := dec.Decode(&root); err != nil {
		return nil, schemaErrorf(NodeDoc, "cannot decode document: %v", err)
	}

	if root.Type != NodeDoc {
		return nil, schemaErrorf(NodeDoc, "top-level type must be %q, got %q", NodeDoc, root.Type)
	}
	if err := validateNode(&root, NodeDoc, 0); err != nil {
		return nil, err
	}
	return &root, nil
}

// HasOpeningMarker reports whether the first node is a paragraph whose first
// text child is highlighted and reads exactly the opening marker. The marker
// is advisory: its absence is logged by the caller, never fatal.
func HasOpeningMarker(doc *Node) bool {
	if doc == nil || len(doc.Content) == 0 {
		return false
	}
	first := doc.Content[0]
	if first.Type != NodeParagraph || len(first.Content) == 0 {
		return false
	}
	text := first.Content[0]
	if text.Type != NodeText || text.Text != OpeningMarker {
		return false
	}
	for _, m := range text.Marks {
		if m.Type == MarkHighlight {
			return true
		}
	}
	return false
}
