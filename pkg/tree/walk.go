package tree

// Walk visits every node below root depth-first, parents before children.
// The root itself is not visited. Returning false from fn skips the node's
// children.
func Walk(root *Node, fn func(n *Node, parent *Node, depth int) bool) {
	if root == nil {
		return
	}
	walk(root.Children, nil, 0, fn)
}

func walk(nodes []*Node, parent *Node, depth int, fn func(*Node, *Node, int) bool) {
	for _, n := range nodes {
		if fn(n, parent, depth) {
			walk(n.Children, n, depth+1, fn)
		}
	}
}

// Find returns the node with the given key, or nil.
func Find(root *Node, key string) *Node {
	if root == nil {
		return nil
	}
	if root.Key == key {
		return root
	}
	var found *Node
	Walk(root, func(n *Node, _ *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Key == key {
			found = n
			return false
		}
		return true
	})
	return found
}

// LeafIDs returns the external ids of n and every leaf below it, in
// depth-first order. Leaves without an id are skipped.
func LeafIDs(n *Node) []string {
	var ids []string
	var collect func(*Node)
	collect = func(n *Node) {
		if n.IsLeaf && n.ExternalID != "" {
			ids = append(ids, n.ExternalID)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	if n != nil {
		collect(n)
	}
	return ids
}

// Count returns the number of nodes below root and how many of them are leaves.
func Count(root *Node) (nodes, leaves int) {
	Walk(root, func(n *Node, _ *Node, _ int) bool {
		nodes++
		if n.IsLeaf {
			leaves++
		}
		return true
	})
	return nodes, leaves
}
