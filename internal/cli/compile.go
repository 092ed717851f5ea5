package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/cache"
	"github.com/woozymasta/umat/compiler"
	"github.com/woozymasta/umat/graph"
	"github.com/woozymasta/umat/internal/config"
)

// compileReport is the printed result of one compiled reference.
type compileReport struct {
	Ref    string                  `json:"ref" yaml:"ref"`
	Output *compiler.SocketOutputs `json:"output" yaml:"output"`
	Sample *sample                 `json:"sample,omitempty" yaml:"sample,omitempty"`
	Nodes  []graph.KindCount       `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Graph  *graph.Graph            `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// sample is the output evaluated at one point.
type sample struct {
	Time  float64    `json:"time" yaml:"time"`
	UV    [2]float64 `json:"uv" yaml:"uv,flow"`
	Color graph.Vec  `json:"color" yaml:"color,flow"`
	Alpha float64    `json:"alpha" yaml:"alpha"`
}

// compileOptions are the flags of compile and watch.
type compileOptions struct {
	graph bool
	uv    []float64
}

func (o *compileOptions) bind(cmd *cobra.Command) {
	cmd.Flags().Float64("time", 0, "scene time in seconds used to sample the output color")
	cmd.Flags().BoolVar(&o.graph, "graph", false, "include the full node graph")
	cmd.Flags().Float64SliceVar(&o.uv, "uv", []float64{0.5, 0.5}, "UV coordinate sampled on the primary UV set")
}

func newCompileCmd() *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile <ref>...",
		Short: "Compile materials into shading graphs",
		Long: `Compile one or more material references and print the socket outputs,
node statistics and the output color sampled at --time and --uv.

References are compiled concurrently (--jobs) through a shared cache and
printed in argument order.`,
		Example: `  umat compile "Shader'TestPkg.Wall'"
  umat compile --time 1.5 --graph -o json "FinalBlend'TestPkg.Glass'"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			if e.cfg.Output == config.OutputProps {
				return errPropsOutput
			}
			c, err := e.openCache()
			if err != nil {
				return err
			}

			reports, err := compileAll(cmd.Context(), e, c, refs, opts)
			if err != nil {
				return err
			}

			st := c.Stats()
			e.log.Debug("compile finished", "refs", len(refs), "hits", st.Hits, "misses", st.Misses, "records", st.Size)

			return printReports(cmd.OutOrStdout(), e.cfg.Output, reports)
		},
	}
	opts.bind(cmd)

	return cmd
}

// compileAll compiles refs with at most cfg.Jobs in flight.
func compileAll(ctx context.Context, e *env, c *cache.Cache, refs []umat.Reference, opts compileOptions) ([]*compileReport, error) {
	comp := e.newCompiler(c)
	reports := make([]*compileReport, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.Jobs, 1))
	for i, ref := range refs {
		g.Go(func() error {
			res, err := comp.CompileRef(ctx, ref)
			if err != nil {
				return fmt.Errorf("compile %s: %w", ref, err)
			}
			r, err := newReport(ref, res, e.cfg.Time, opts)
			if err != nil {
				return fmt.Errorf("sample %s: %w", ref, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func newReport(ref umat.Reference, res *compiler.Result, t float64, opts compileOptions) (*compileReport, error) {
	r := &compileReport{Ref: ref.String(), Output: res.Output, Nodes: res.Graph.Counts()}
	if opts.graph {
		r.Graph = res.Graph
	}
	if res.Output == nil {
		return r, nil
	}

	s, err := sampleOutput(res, t, opts.uv)
	if err != nil {
		return nil, err
	}
	r.Sample = s
	return r, nil
}

// sampleOutput evaluates the color and alpha sockets. Unset color is black
// and unset alpha is opaque.
func sampleOutput(res *compiler.Result, t float64, uv []float64) (*sample, error) {
	s := &sample{Time: t, Alpha: 1}
	if len(uv) >= 2 {
		s.UV = [2]float64{uv[0], uv[1]}
	}

	ctx := graph.EvalContext{
		Time:        t,
		WallTime:    t,
		UV:          map[string][2]float64{graph.PrimaryUVSet: s.UV},
		VertexColor: graph.Vec{1, 1, 1, 1},
	}

	if res.Output.Color.Valid() {
		v, err := graph.Evaluate(res.Graph, res.Output.Color, ctx)
		if err != nil {
			return nil, err
		}
		s.Color = v
	}
	if res.Output.Alpha.Valid() {
		v, err := graph.Evaluate(res.Graph, res.Output.Alpha, ctx)
		if err != nil {
			return nil, err
		}
		s.Alpha = v[0]
	}
	return s, nil
}

// printReports writes YAML reports as a document stream and JSON as one array.
func printReports(w io.Writer, format string, reports []*compileReport) error {
	if format == config.OutputJSON {
		return writeDoc(w, format, reports)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return enc.Close()
}
