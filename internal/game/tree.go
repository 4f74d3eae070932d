package game

import "time"

// Node is one visited page in a player's navigation tree, rooted at the
// round's source article. Children are ordered by first visit; no two
// siblings share a pathname. The unexported pathname mirrors Article and is
// the identity used for lookups, so redirect repair has to rewrite both.
type Node struct {
	Article  string    `json:"article"`
	When     time.Time `json:"when"`
	Children []*Node   `json:"children"`

	path string
}

func newNode(article *Article, when time.Time) *Node {
	return &Node{
		Article:  article.URL,
		When:     when,
		Children: []*Node{},
		path:     article.Path,
	}
}

// findAll returns every node in the tree (including n itself) whose pathname
// matches. A page reachable along more than one explored path appears once
// per occurrence, and each occurrence is a legitimate parent for new visits.
func (n *Node) findAll(pathname string) []*Node {
	var matches []*Node
	if n.path == pathname {
		matches = append(matches, n)
	}
	for _, child := range n.Children {
		matches = append(matches, child.findAll(pathname)...)
	}
	return matches
}

// childByPath returns the direct child with the given pathname, or nil.
func (n *Node) childByPath(pathname string) *Node {
	for _, child := range n.Children {
		if child.path == pathname {
			return child
		}
	}
	return nil
}

// shortestPath returns the minimum number of clicks from the source needed to
// reach destinationPath anywhere in the tree, or -1 when no explored path
// reaches it. The root is the source itself and is excluded.
func shortestPath(root *Node, destinationPath string) int {
	return shortestIn(root.Children, destinationPath, 1)
}

func shortestIn(nodes []*Node, destinationPath string, depth int) int {
	best := -1
	for _, n := range nodes {
		if n.path == destinationPath {
			// No deeper result can beat a match at this level.
			return depth
		}
		if c := shortestIn(n.Children, destinationPath, depth+1); c != -1 && (best == -1 || c < best) {
			best = c
		}
	}
	return best
}
