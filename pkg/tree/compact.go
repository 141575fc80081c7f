package tree

// Compact collapses chains of single-child folders below and including node
// into one node whose label joins the chain with "/". A lone leaf child is
// never merged into its parent, and a node that is itself a leaf is never
// merged into its child. The input is left untouched.
func Compact(node *Node) *Node {
	if node == nil {
		return nil
	}

	if !node.IsLeaf && len(node.Children) == 1 && !node.Children[0].IsLeaf {
		child := Compact(node.Children[0])
		merged := &Node{
			Key:      node.Key,
			Label:    node.Label + "/" + child.Label,
			Path:     child.Path,
			IsLeaf:   child.IsLeaf,
			Children: child.Children,
		}
		if merged.IsLeaf {
			merged.ExternalID = child.ExternalID
		}
		return merged
	}

	out := node.clone()
	for i, c := range out.Children {
		out.Children[i] = Compact(c)
	}
	return out
}

// CompactRoot compacts each direct child of root. The root itself is kept.
func CompactRoot(root *Node) *Node {
	if root == nil {
		return nil
	}
	out := root.clone()
	for i, c := range out.Children {
		out.Children[i] = Compact(c)
	}
	return out
}
