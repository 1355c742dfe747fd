package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rocks-admin/pkg/deptree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the checked arch and its manifest/file flags to labels.
	Detailed bool
}

type edge struct {
	from, to string
	dashed   bool
}

type builder struct {
	opts     Options
	nodes    map[string]string // id -> attributes
	order    []string
	edges    []edge
	seen     map[edge]bool
	resolved map[string]string // package name -> id
}

// ToDOT converts a tree to Graphviz DOT source.
func ToDOT(t *deptree.Tree, opts Options) string {
	b := &builder{
		opts:     opts,
		nodes:    make(map[string]string),
		seen:     make(map[edge]bool),
		resolved: make(map[string]string),
	}
	root := t.Package + "@" + t.Version
	b.addNode(root, fmt.Sprintf("label=%q, penwidth=2", root))
	b.resolved[t.Package] = root
	b.visit(root, t.Children)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
	for _, id := range b.order {
		fmt.Fprintf(&buf, "  %q [%s];\n", id, b.nodes[id])
	}
	buf.WriteString("\n")
	for _, e := range b.edges {
		if e.dashed {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.from, e.to)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func (b *builder) visit(parent string, nodes []*deptree.Node) {
	for _, n := range nodes {
		switch n.Status {
		case deptree.StatusSelfCycle, deptree.StatusCycle:
			if id, ok := b.resolved[n.Name]; ok {
				b.addEdge(edge{from: parent, to: id, dashed: true})
				continue
			}
		}

		id := n.Name + " (" + string(n.Status) + ")"
		if n.Version != "" {
			id = n.Name + "@" + n.Version
			b.resolved[n.Name] = id
		}
		b.addNode(id, b.attrs(id, n))
		b.addEdge(edge{from: parent, to: id})
		b.visit(id, n.Children)
	}
}

func (b *builder) addNode(id, attrs string) {
	if _, ok := b.nodes[id]; ok {
		return
	}
	b.nodes[id] = attrs
	b.order = append(b.order, id)
}

func (b *builder) addEdge(e edge) {
	if b.seen[e] {
		return
	}
	b.seen[e] = true
	b.edges = append(b.edges, e)
}

func (b *builder) attrs(id string, n *deptree.Node) string {
	label := id
	if b.opts.Detailed && n.Arch != "" {
		label += fmt.Sprintf("\n%s: manifest(%s)/file(%s)", n.Arch, mark(n.InManifest), mark(n.FileExists))
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Status == deptree.StatusExcluded:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case !n.Status.OK():
		attrs = append(attrs, "fillcolor=mistyrose", "color=firebrick")
	}
	return strings.Join(attrs, ", ")
}

func mark(ok bool) string {
	if ok {
		return deptree.Mark
	}
	return deptree.Unmark
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the diagram scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
