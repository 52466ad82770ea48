package visual

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"
	"text/template"

	sdg "github.com/yangshenyi/SDG4Go"
	"github.com/yangshenyi/SDG4Go/pdg"
)

const debug_flag = false

func logf(f string, a ...interface{}) {
	if debug_flag {
		log.Printf(f, a...)
	}
}

// Options selects what PrintOutput draws.
type Options struct {
	Title string
	// Slice, if set, restricts the output to the backwards slice of
	// this node.
	Slice *sdg.SdgNodeID
	// NoControl omits CONTROL edges.
	NoControl bool
}

type dotAttrs map[string]string

func (a dotAttrs) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, a[k]))
	}
	return strings.Join(parts, " ")
}

type dotNode struct {
	ID    string
	Attrs dotAttrs
}

// dotCluster groups the nodes of one PDG.
type dotCluster struct {
	ID    string
	Nodes []*dotNode
	Attrs dotAttrs
}

type dotEdge struct {
	From, To *dotNode
	Attrs    dotAttrs
}

type dotGraph struct {
	Title    string
	Clusters []*dotCluster
	Edges    []*dotEdge
	Options  map[string]string
}

const tmplGraph = `digraph sdg {
	label="{{.Title}}";
	rankdir={{.Options.rankdir}};
	node [shape={{.Options.nodeshape}} style="{{.Options.nodestyle}}" fontname="Helvetica" fontsize=10];
{{range .Clusters}}
	subgraph "cluster_{{.ID}}" {
		{{.Attrs}}
{{- range .Nodes}}
		"{{.ID}}" [{{.Attrs}}];
{{- end}}
	}
{{end}}
{{- range .Edges}}
	"{{.From.ID}}" -> "{{.To.ID}}" [{{.Attrs}}];
{{- end}}
}
`

var graphTemplate = template.Must(template.New("dot").Parse(tmplGraph))

func (g *dotGraph) WriteDot(w *bytes.Buffer) error {
	return graphTemplate.Execute(w, g)
}

var edgeStyles = map[pdg.EdgeKind]dotAttrs{
	pdg.Control: {"style": "dashed", "color": "gray40"},
	pdg.Data:    {"color": "black"},
	pdg.Member:  {"style": "dotted", "arrowhead": "odot"},
}

var nodeColors = map[pdg.NodeKind]string{
	pdg.Entry:     "lightblue",
	pdg.Statement: "moccasin",
	pdg.In:        "#E0FFE1",
	pdg.Out:       "#adedad",
}

// escape makes s safe inside a quoted DOT string. Attribute values
// are quoted by dotAttrs.
func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// PrintOutput renders g in DOT format: one cluster per integrated PDG,
// edge styles by kind. Edges between PDGs connect the clusters.
func PrintOutput(g *sdg.Sdg, opts Options) ([]byte, error) {
	keep := func(sdg.SdgNodeID) bool { return true }
	if opts.Slice != nil {
		slice, err := g.BackwardsSlice(*opts.Slice)
		if err != nil {
			return nil, err
		}
		in := make(map[sdg.SdgNodeID]bool, len(slice))
		for _, id := range slice {
			in[id] = true
		}
		keep = func(id sdg.SdgNodeID) bool { return in[id] }
		logf("slice of %v: %d nodes", *opts.Slice, len(slice))
	}

	clusters := make(map[int]*dotCluster)
	nodeMap := make(map[sdg.SdgNodeID]*dotNode)
	for _, id := range g.Nodes() {
		if !keep(id) {
			continue
		}
		c, ok := clusters[id.Pdg]
		if !ok {
			c = &dotCluster{
				ID: fmt.Sprint(id.Pdg),
				Attrs: dotAttrs{
					"label":     fmt.Sprintf("transition %d", id.Pdg),
					"style":     "filled",
					"fillcolor": "lightyellow",
					"penwidth":  "0.8",
				},
			}
			clusters[id.Pdg] = c
		}
		attrs := dotAttrs{
			"label":     id.Local.String(),
			"fillcolor": nodeColors[id.Local.Kind],
		}
		if opts.Slice != nil && id == *opts.Slice {
			attrs["penwidth"] = "2"
		}
		n := &dotNode{ID: escape(id.String()), Attrs: attrs}
		c.Nodes = append(c.Nodes, n)
		nodeMap[id] = n
	}

	var edges []*dotEdge
	count := 0
	for _, e := range g.Edges() {
		count++
		if opts.NoControl && e.Kind == pdg.Control {
			continue
		}
		from, ok1 := nodeMap[e.From]
		to, ok2 := nodeMap[e.To]
		if !ok1 || !ok2 {
			continue
		}
		attrs := make(dotAttrs)
		for k, v := range edgeStyles[e.Kind] {
			attrs[k] = v
		}
		if e.From.Pdg != e.To.Pdg {
			attrs["color"] = "saddlebrown"
			attrs["penwidth"] = "1.5"
		}
		attrs["tooltip"] = e.String()
		edges = append(edges, &dotEdge{From: from, To: to, Attrs: attrs})
	}
	logf("%d/%d edges", len(edges), count)

	ids := make([]int, 0, len(clusters))
	for n := range clusters {
		ids = append(ids, n)
	}
	sort.Ints(ids)
	dot := &dotGraph{
		Title: escape(opts.Title),
		Edges: edges,
		Options: map[string]string{
			"nodeshape": "box",
			"nodestyle": "filled,rounded",
			"rankdir":   "TB",
		},
	}
	for _, n := range ids {
		dot.Clusters = append(dot.Clusters, clusters[n])
	}

	var buf bytes.Buffer
	if err := dot.WriteDot(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderImage runs the Graphviz dot tool on a DOT graph and writes the
// image to outfname.format.
func RenderImage(outfname, format string, dot []byte) (string, error) {
	path, err := exec.LookPath("dot")
	if err != nil {
		return "", fmt.Errorf("graphviz not found: %w", err)
	}
	img := fmt.Sprintf("%s.%s", outfname, format)
	cmd := exec.Command(path, fmt.Sprintf("-T%s", format), "-o", img)
	cmd.Stdin = bytes.NewReader(dot)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
