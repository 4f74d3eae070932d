package game

import (
	"testing"
	"time"
)

func art(path string) *Article {
	return &Article{URL: "https://en.wikipedia.org" + path, Path: path}
}

// chain adds a linear path of children under n and returns the deepest node.
func chain(n *Node, paths ...string) *Node {
	for _, p := range paths {
		child := newNode(art(p), time.Now())
		n.Children = append(n.Children, child)
		n = child
	}
	return n
}

func TestShortestPathTakesGlobalMinimum(t *testing.T) {
	root := newNode(art("/wiki/Source"), time.Now())

	// The destination occurs at depths 3, 2 and 5 in separate branches.
	chain(root, "/wiki/A", "/wiki/B", "/wiki/Dest")
	chain(root, "/wiki/C", "/wiki/Dest")
	chain(root, "/wiki/D", "/wiki/E", "/wiki/F", "/wiki/G", "/wiki/Dest")

	if got := shortestPath(root, "/wiki/Dest"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestShortestPathNotFound(t *testing.T) {
	root := newNode(art("/wiki/Source"), time.Now())
	chain(root, "/wiki/A", "/wiki/B")

	if got := shortestPath(root, "/wiki/Dest"); got != -1 {
		t.Fatalf("expected -1 sentinel, got %d", got)
	}
}

func TestShortestPathExcludesRoot(t *testing.T) {
	root := newNode(art("/wiki/Source"), time.Now())
	if got := shortestPath(root, "/wiki/Source"); got != -1 {
		t.Fatalf("the source itself is never the destination, got %d", got)
	}
}

func TestFindAllMatchesEveryOccurrence(t *testing.T) {
	root := newNode(art("/wiki/Source"), time.Now())
	chain(root, "/wiki/A", "/wiki/X")
	chain(root, "/wiki/B", "/wiki/X")

	if got := len(root.findAll("/wiki/X")); got != 2 {
		t.Fatalf("expected 2 occurrences, got %d", got)
	}
	if got := len(root.findAll("/wiki/Source")); got != 1 {
		t.Fatalf("expected the root itself to match, got %d", got)
	}
	if got := len(root.findAll("/wiki/Missing")); got != 0 {
		t.Fatalf("expected no matches, got %d", got)
	}
}

func TestChildByPathIsDirectOnly(t *testing.T) {
	root := newNode(art("/wiki/Source"), time.Now())
	chain(root, "/wiki/A", "/wiki/X")

	if root.childByPath("/wiki/A") == nil {
		t.Fatal("direct child should be found")
	}
	if root.childByPath("/wiki/X") != nil {
		t.Fatal("grandchildren must not count as children")
	}
}
