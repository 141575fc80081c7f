package tree

// RootKey is the key of the invisible root node returned by Build.
const RootKey = "root"

// Node is a single entry in the navigation tree. A node can be a folder, a
// document leaf, or both when one identifier is a path prefix of another.
type Node struct {
	Key        string  `json:"key" yaml:"key"`
	Label      string  `json:"label" yaml:"label"`
	Path       string  `json:"path" yaml:"path"`
	IsLeaf     bool    `json:"is_leaf" yaml:"is_leaf"`
	ExternalID string  `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Children   []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Record is one entry of the input feed: a raw identifier and the id of the
// backend document it points at.
type Record struct {
	Identifier string
	ExternalID string
}

// child returns the direct child labelled label, or nil.
func (n *Node) child(label string) *Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// clone returns a shallow copy of n with its own children slice.
func (n *Node) clone() *Node {
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		copy(cp.Children, n.Children)
	}
	return &cp
}
