package artifact

import "fmt"

// maxDepth bounds the recursive walk. Real documents nest a handful of
// levels; anything deeper is adversarial or broken output.
const maxDepth = 200

var allowedMarks = map[string]bool{
	MarkBold:      true,
	MarkItalic:    true,
	MarkUnderline: true,
	MarkCode:      true,
	MarkHighlight: true,
}

var allowedAlignments = map[string]bool{
	"left":   true,
	"center": true,
	"right":  true,
}

// blockKinds are the node kinds allowed directly under doc, listItem and
// table cells.
var blockKinds = map[string]bool{
	NodeHeading:     true,
	NodeParagraph:   true,
	NodeBulletList:  true,
	NodeOrderedList: true,
	NodeCodeBlock:   true,
	NodeTable:       true,
}

// inlineKinds are the node kinds allowed inside heading and paragraph.
var inlineKinds = map[string]bool{
	NodeText:      true,
	NodeHardBreak: true,
}

func validateNode(n *Node, path string, depth int) error {
	if depth > maxDepth {
		return schemaErrorf(path, "nesting exceeds maximum depth %d", maxDepth)
	}

	switch n.Type {
	case NodeDoc:
		if depth != 0 {
			return schemaErrorf(path, "doc node is only allowed at the root")
		}
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		return validateChildren(n, path, depth, blockKinds, "block node")

	case NodeHeading:
		if n.Attrs == nil {
			return schemaErrorf(path, "heading requires attrs")
		}
		if n.Attrs.Level < 1 || n.Attrs.Level > 3 {
			return schemaErrorf(path, "heading level must be 1-3, got %d", n.Attrs.Level)
		}
		if !allowedAlignments[n.Attrs.TextAlign] {
			return schemaErrorf(path, "heading textAlign must be left/center/right, got %q", n.Attrs.TextAlign)
		}
		if n.Attrs.Language != "" {
			return schemaErrorf(path, "heading does not take a language attribute")
		}
		return validateChildren(n, path, depth, inlineKinds, "inline node")

	case NodeParagraph:
		if n.Attrs == nil {
			return schemaErrorf(path, "paragraph requires attrs")
		}
		if !allowedAlignments[n.Attrs.TextAlign] {
			return schemaErrorf(path, "paragraph textAlign must be left/center/right, got %q", n.Attrs.TextAlign)
		}
		if n.Attrs.Level != 0 || n.Attrs.Language != "" {
			return schemaErrorf(path, "paragraph only takes a textAlign attribute")
		}
		return validateChildren(n, path, depth, inlineKinds, "inline node")

	case NodeBulletList, NodeOrderedList:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		return validateChildren(n, path, depth, map[string]bool{NodeListItem: true}, "listItem")

	case NodeListItem:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		kinds := map[string]bool{
			NodeParagraph:   true,
			NodeCodeBlock:   true,
			NodeBulletList:  true,
			NodeOrderedList: true,
		}
		return validateChildren(n, path, depth, kinds, "paragraph, codeBlock or nested list")

	case NodeCodeBlock:
		if n.Attrs == nil || n.Attrs.Language == "" {
			return schemaErrorf(path, "codeBlock requires a language attribute")
		}
		if n.Attrs.Level != 0 || n.Attrs.TextAlign != "" {
			return schemaErrorf(path, "codeBlock only takes a language attribute")
		}
		if len(n.Content) != 1 {
			return schemaErrorf(path, "codeBlock must hold exactly one text child, got %d", len(n.Content))
		}
		child := &n.Content[0]
		childPath := childPath(path, 0)
		if child.Type != NodeText {
			return schemaErrorf(childPath, "codeBlock child must be text, got %q", child.Type)
		}
		if len(child.Marks) > 0 {
			return schemaErrorf(childPath, "codeBlock text must not carry marks")
		}
		return validateNode(child, childPath, depth+1)

	case NodeTable:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		return validateChildren(n, path, depth, map[string]bool{NodeTableRow: true}, "tableRow")

	case NodeTableRow:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		kinds := map[string]bool{NodeTableHeader: true, NodeTableCell: true}
		return validateChildren(n, path, depth, kinds, "tableHeader or tableCell")

	case NodeTableHeader, NodeTableCell:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		return validateChildren(n, path, depth, blockKinds, "block node")

	case NodeHardBreak:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		if len(n.Content) > 0 || n.Text != "" || len(n.Marks) > 0 {
			return schemaErrorf(path, "hardBreak must be a bare leaf")
		}
		return nil

	case NodeText:
		if err := requireNoAttrs(n, path); err != nil {
			return err
		}
		if n.Text == "" {
			return schemaErrorf(path, "text node must carry non-empty text")
		}
		if len(n.Content) > 0 {
			return schemaErrorf(path, "text node must not have children")
		}
		seen := map[string]bool{}
		for _, m := range n.Marks {
			if !allowedMarks[m.Type] {
				return schemaErrorf(path, "mark %q is not allowed", m.Type)
			}
			if seen[m.Type] {
				return schemaErrorf(path, "duplicate mark %q", m.Type)
			}
			seen[m.Type] = true
		}
		return nil

	default:
		return schemaErrorf(path, "unknown node type %q", n.Type)
	}
}

// validateChildren enforces non-empty content, the kind-nesting rule, and
// recurses into every child.
func validateChildren(n *Node, path string, depth int, allowed map[string]bool, want string) error {
	if len(n.Content) == 0 {
		return schemaErrorf(path, "%s must have non-empty content", n.Type)
	}
	if n.Text != "" {
		return schemaErrorf(path, "%s must not carry text", n.Type)
	}
	if len(n.Marks) > 0 {
		return schemaErrorf(path, "%s must not carry marks", n.Type)
	}
	for i := range n.Content {
		child := &n.Content[i]
		cp := childPath(path, i)
		if !allowed[child.Type] {
			return schemaErrorf(cp, "%s may only contain %s, got %q", n.Type, want, child.Type)
		}
		if err := validateNode(child, cp, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func requireNoAttrs(n *Node, path string) error {
	if n.Attrs != nil {
		return schemaErrorf(path, "%s does not take attributes", n.Type)
	}
	return nil
}

func childPath(parent string, i int) string {
	return fmt.Sprintf("%s.content[%d]", parent, i)
}
