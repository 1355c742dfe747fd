// Package nodelink renders a resolved dependency tree as a node-link
// diagram.
//
// A package selected at the same version on several branches is drawn once.
// Cycle annotations become dashed edges back to the package they close on,
// failed rules are filled red and excluded packages are dashed grey.
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz].
package nodelink
