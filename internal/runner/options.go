package runner

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/projectdiscovery/goflags"

	"github.com/landa/character-clusterer/internal/cluster"
	"github.com/landa/character-clusterer/internal/config"
)

// Options holds the command line of the clusterer CLI.
type Options struct {
	GlyphFiles goflags.StringSlice // JSON/YAML glyph files
	Images     goflags.StringSlice // page images to OCR
	Demo       bool                // cluster the built-in demo page

	Threshold     float64
	VerticalScale float64
	MaxIterations int
	Metric        string
	TopEdge       string

	JSON      bool
	RenderDir string
	LabelsDir string

	Config      string
	Watch       bool
	Concurrency int
	Debug       bool

	// set records the clustering flags given explicitly; only those override the config.
	set map[string]bool
}

// float64Value adapts a float64 field to flag.Value; goflags has no float flag.
type float64Value float64

func newFloat64Value(p *float64, value float64) *float64Value {
	*p = value
	return (*float64Value)(p)
}

func (f *float64Value) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = float64Value(v)
	return nil
}

func (f *float64Value) String() string { return strconv.FormatFloat(float64(*f), 'g', -1, 64) }

// ParseFlags parses the command line.
func ParseFlags() (*Options, error) {
	return parseFlags(os.Args[1:])
}

// newFlagSet defines the command line on opts.
func newFlagSet(opts *Options) *goflags.FlagSet {
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Group character bounding boxes into words by agglomerative clustering.`)
	flagSet.SetConfigFilePath(config.DefaultPath())

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&opts.GlyphFiles, "glyphs", "g", nil, "glyph files to cluster (json, yaml)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringSliceVarP(&opts.Images, "image", "i", nil, "page images to OCR and cluster", goflags.CommaSeparatedStringSliceOptions),
		flagSet.BoolVar(&opts.Demo, "demo", false, "cluster the built-in demo page"),
	)

	flagSet.CreateGroup("clustering", "Clustering",
		flagSet.VarP(newFloat64Value(&opts.Threshold, cluster.DefaultThreshold), "threshold", "t", "largest distance at which two clusters are merged"),
		flagSet.VarP(newFloat64Value(&opts.VerticalScale, cluster.DefaultVerticalScale), "vertical-scale", "vs", "weight of vertical separation relative to horizontal"),
		flagSet.IntVarP(&opts.MaxIterations, "max-iterations", "mi", cluster.DefaultMaxIterations, "cap on merge iterations"),
		flagSet.StringVarP(&opts.Metric, "metric", "m", cluster.MetricEdge, "distance metric (edge, center)"),
		flagSet.StringVarP(&opts.TopEdge, "top-edge", "te", cluster.DefaultTopEdge.String(), "cluster top edge (min-bottom, min-top)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVar(&opts.JSON, "json", false, "write results as JSON lines"),
		flagSet.StringVarP(&opts.RenderDir, "render", "r", "", "directory to write a PNG rendering per input"),
		flagSet.StringVarP(&opts.LabelsDir, "labels", "l", "", "directory to write labeled glyph files"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&opts.Config, "config", "", `config file (default '$HOME/.config/character-clusterer/config.yaml')`),
		flagSet.BoolVarP(&opts.Watch, "watch", "w", false, "re-cluster inputs whenever they change"),
		flagSet.IntVarP(&opts.Concurrency, "concurrency", "c", runtime.GOMAXPROCS(0), "inputs processed in parallel"),
		flagSet.BoolVar(&opts.Debug, "debug", false, "log every merge"),
	)
	return flagSet
}

// parseFlags parses args. The goflags config file is the clusterer config file
// (config.DefaultPath); clustering values configured there reach the runner
// through config.LoadOrDefault, and only explicit flags override them.
func parseFlags(args []string) (*Options, error) {
	goflags.DisableAutoConfigMigration = true

	// goflags merges file values into every flag still at its default, including
	// flags given explicitly with the default value, so the explicit command line
	// is read first on a set that never touches the file.
	explicit := &Options{}
	cli := newFlagSet(explicit)
	cli.CommandLine.Init(cli.CommandLine.Name(), flag.ContinueOnError)
	cli.CommandLine.SetOutput(io.Discard)
	// Errors and -h are reported by the full parse below.
	_ = cli.CommandLine.Parse(args)

	opts := &Options{}
	flagSet := newFlagSet(opts)
	if err := flagSet.Parse(args...); err != nil {
		return nil, fmt.Errorf("could not read flags: %w", err)
	}

	opts.set = make(map[string]bool)
	cli.CommandLine.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	// Short aliases register as their own flags.
	for short, long := range map[string]string{"t": "threshold", "vs": "vertical-scale", "mi": "max-iterations", "m": "metric", "te": "top-edge"} {
		if opts.set[short] {
			opts.set[long] = true
		}
	}
	opts.Threshold = explicit.Threshold
	opts.VerticalScale = explicit.VerticalScale
	opts.MaxIterations = explicit.MaxIterations
	opts.Metric = explicit.Metric
	opts.TopEdge = explicit.TopEdge

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks that there is something to do.
func (o *Options) Validate() error {
	if len(o.GlyphFiles) == 0 && len(o.Images) == 0 && !o.Demo {
		return fmt.Errorf("no input: use -glyphs, -image or -demo")
	}
	if o.Watch && len(o.GlyphFiles) == 0 && len(o.Images) == 0 {
		return fmt.Errorf("-watch needs file inputs")
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", o.Concurrency)
	}
	return nil
}

// apply overrides cfg with the clustering flags given on the command line.
func (o *Options) apply(cfg *config.Config) {
	if o.set["threshold"] {
		cfg.Threshold = o.Threshold
	}
	if o.set["vertical-scale"] {
		cfg.VerticalScale = o.VerticalScale
	}
	if o.set["max-iterations"] {
		cfg.MaxIterations = o.MaxIterations
	}
	if o.set["metric"] {
		cfg.Metric = o.Metric
	}
	if o.set["top-edge"] {
		cfg.TopEdge = o.TopEdge
	}
	if o.Debug {
		cfg.LogLevel = "debug"
	}
}
