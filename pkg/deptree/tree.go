package deptree

import (
	"iter"

	"github.com/google/uuid"
)

// Node is one evaluated rule with the rules of its rockspec beneath it.
type Node struct {
	Name       string  `json:"name"`
	Rule       string  `json:"rule"`
	Status     Status  `json:"status"`
	Version    string  `json:"version,omitempty"`
	Arch       string  `json:"arch,omitempty"`
	InManifest bool    `json:"in_manifest"`
	FileExists bool    `json:"file_exists"`
	PURL       string  `json:"purl"`
	Error      string  `json:"error,omitempty"`
	Children   []*Node `json:"children,omitempty"`
}

// NewNode converts an event into a leaf node.
func NewNode(ev Event) *Node {
	n := &Node{
		Name:       ev.Rule.Name,
		Rule:       ev.Rule.String(),
		Status:     ev.Status,
		Version:    ev.Version.String(),
		InManifest: ev.InManifest,
		FileExists: ev.FileExists,
		PURL:       ev.PURL(),
	}
	if ev.Resolved() {
		n.Arch = ev.Arch
	}
	if ev.Err != nil {
		n.Error = ev.Err.Error()
	}
	return n
}

// Tree is a collected walk.
type Tree struct {
	ID       string  `json:"id"`
	Package  string  `json:"package"`
	Version  string  `json:"version"`
	PURL     string  `json:"purl"`
	Children []*Node `json:"dependencies"`
}

// Stats counts the nodes of a tree.
type Stats struct {
	Nodes    int `json:"nodes"`
	Failures int `json:"failures"`
}

// Stats walks t and counts nodes and failed ones.
func (t *Tree) Stats() Stats {
	var s Stats
	var visit func([]*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			s.Nodes++
			if !n.Status.OK() {
				s.Failures++
			}
			visit(n.Children)
		}
	}
	visit(t.Children)
	return s
}

// Collect drains a walk into a Tree rooted at pkg@ver. Events must arrive
// depth-first, as [Resolver.Walk] yields them.
func Collect(pkg, ver string, events iter.Seq2[Event, error]) (*Tree, error) {
	t := &Tree{
		ID:      uuid.NewString(),
		Package: pkg,
		Version: ver,
		PURL:    PURL(pkg, ver),
	}

	// path[d] holds the last node seen at depth d+1.
	var path []*Node
	for ev, err := range events {
		if err != nil {
			return t, err
		}
		n := NewNode(ev)
		level := max(ev.Depth-1, 0)
		if level > len(path) {
			level = len(path)
		}
		path = append(path[:level], n)
		if level == 0 {
			t.Children = append(t.Children, n)
		} else {
			parent := path[level-1]
			parent.Children = append(parent.Children, n)
		}
	}
	return t, nil
}
