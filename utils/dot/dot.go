// Package dot models Graphviz graphs. Graphs are written in the dot
// language, rendered to images with go-graphviz, or shown with xdot.
package dot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Attrs are the attributes of a graph element, printed sorted by key.
type Attrs map[string]string

func (a Attrs) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, a[k])
	}
	return strings.Join(parts, ", ")
}

// with overlays o onto a copy of a.
func (a Attrs) with(o Attrs) Attrs {
	res := make(Attrs, len(a)+len(o))
	for k, v := range a {
		res[k] = v
	}
	for k, v := range o {
		res[k] = v
	}
	return res
}

type Node struct {
	ID    string
	Attrs Attrs
}

type Edge struct {
	From, To *Node
	Attrs    Attrs
}

// Cluster draws its nodes in a common box.
type Cluster struct {
	ID    string
	Attrs Attrs
	Nodes []*Node
}

type Graph struct {
	Title    string
	Clusters []*Cluster
	Nodes    []*Node
	Edges    []*Edge
	// Attrs apply to the whole graph, EdgeDefaults to every edge.
	Attrs        Attrs
	EdgeDefaults Attrs
}

var (
	graphDefaults = Attrs{
		"fontname":  "Arial",
		"fontsize":  "14",
		"labeljust": "l",
		"pad":       "0.0",
		"rankdir":   "LR",
	}
	nodeDefaults = Attrs{
		"fillcolor": "honeydew",
		"fontname":  "Verdana",
		"margin":    "0.05,0.0",
		"shape":     "box",
		"style":     "filled",
	}
)

func (g *Graph) NumNodes() int {
	n := len(g.Nodes)
	for _, c := range g.Clusters {
		n += len(c.Nodes)
	}
	return n
}

func element(w io.Writer, indent, id string, attrs Attrs) {
	if len(attrs) == 0 {
		fmt.Fprintf(w, "%s%s;\n", indent, id)
		return
	}
	fmt.Fprintf(w, "%s%s [%s];\n", indent, id, attrs)
}

// WriteDot prints the graph in the dot language.
func (g *Graph) WriteDot(w io.Writer) error {
	bw := bufio.NewWriter(w)

	attrs := graphDefaults.with(g.Attrs)
	if g.Title != "" {
		attrs["label"] = g.Title
	}

	fmt.Fprintln(bw, "digraph AbstractStates {")
	element(bw, "\t", "graph", attrs)
	element(bw, "\t", "node", nodeDefaults)
	if len(g.EdgeDefaults) > 0 {
		element(bw, "\t", "edge", g.EdgeDefaults)
	}

	for _, c := range g.Clusters {
		fmt.Fprintf(bw, "\n\tsubgraph %q {\n", "cluster_"+c.ID)
		if len(c.Attrs) > 0 {
			element(bw, "\t\t", "graph", c.Attrs)
		}
		for _, n := range c.Nodes {
			element(bw, "\t\t", fmt.Sprintf("%q", n.ID), n.Attrs)
		}
		fmt.Fprintln(bw, "\t}")
	}

	if len(g.Nodes) > 0 {
		fmt.Fprintln(bw)
	}
	for _, n := range g.Nodes {
		element(bw, "\t", fmt.Sprintf("%q", n.ID), n.Attrs)
	}

	if len(g.Edges) > 0 {
		fmt.Fprintln(bw)
	}
	for _, e := range g.Edges {
		element(bw, "\t", fmt.Sprintf("%q -> %q", e.From.ID, e.To.ID), e.Attrs)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// Render writes the graph to prefix.dot and an image in the given format
// to prefix.<format>. Returns the path of the image.
func (g *Graph) Render(prefix, format string) (string, error) {
	if prefix == "" {
		prefix = filepath.Join(os.TempDir(), "absnum_export")
	}

	var buf bytes.Buffer
	if err := g.WriteDot(&buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(prefix+".dot", buf.Bytes(), 0644); err != nil {
		return "", err
	}

	gv := graphviz.New()
	defer gv.Close()

	parsed, err := graphviz.ParseBytes(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("parsing dot graph: %w", err)
	}
	defer parsed.Close()

	img := prefix + "." + format
	if err := gv.RenderFilename(parsed, graphviz.Format(format), img); err != nil {
		return "", fmt.Errorf("rendering %s: %w", img, err)
	}
	return img, nil
}

// Show opens the graph in xdot and blocks until it is closed.
func (g *Graph) Show() {
	xdot, err := exec.LookPath("xdot")
	if err != nil {
		log.Fatalln("unable to find program 'xdot', please install it or check your PATH")
	}

	f, err := os.CreateTemp("", "absnum.*.dot")
	if err != nil {
		log.Fatalln(err)
	}
	defer os.Remove(f.Name())

	if err := g.WriteDot(f); err != nil {
		f.Close()
		log.Fatalln(err)
	} else if err := f.Close(); err != nil {
		log.Fatalln(err)
	}

	log.Printf("Graph has %d nodes and %d edges.\n", g.NumNodes(), len(g.Edges))
	log.Println("Starting xdot...")

	if err := exec.Command(xdot, f.Name()).Run(); err != nil {
		log.Printf("Command finished with error: %v", err)
	}
}
