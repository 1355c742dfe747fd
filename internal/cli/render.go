package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/rocks-admin/pkg/deptree"
	"github.com/matzehuels/rocks-admin/pkg/render/nodelink"
)

// Output formats of the deptree command.
const (
	formatText = "text" // streamed indented listing
	formatJSON = "json" // collected tree
	formatDOT  = "dot"  // Graphviz source
	formatSVG  = "svg"  // Graphviz-rendered diagram
)

var validFormats = []string{formatText, formatJSON, formatDOT, formatSVG}

func validateFormat(f string) error {
	if !slices.Contains(validFormats, f) {
		return fmt.Errorf("invalid format: %s (must be one of %s)", f, strings.Join(validFormats, ", "))
	}
	return nil
}

// renderTree encodes a collected tree in one of the non-streaming formats.
func renderTree(ctx context.Context, t *deptree.Tree, format string, detailed bool) ([]byte, error) {
	logger := loggerFromContext(ctx)

	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatDOT:
		return []byte(nodelink.ToDOT(t, nodelink.Options{Detailed: detailed})), nil
	case formatSVG:
		logger.Info("Rendering node-link SVG")
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(t, nodelink.Options{Detailed: detailed}))
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// openOutput returns stdout when path is empty, else a new file.
func openOutput(stdout io.Writer, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeOutput writes data to path (or stdout) and reports generated files.
func writeOutput(ctx context.Context, stdout io.Writer, path string, data []byte) error {
	out, err := openOutput(stdout, path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if path != "" {
		loggerFromContext(ctx).Infof("Generated %s", path)
	}
	return nil
}
