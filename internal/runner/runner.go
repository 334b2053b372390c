// Package runner implements the clusterer command line: it loads glyph inputs,
// clusters them in parallel, writes the words, and optionally keeps re-running
// when inputs change.
package runner

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/landa/character-clusterer/internal/cluster"
	"github.com/landa/character-clusterer/internal/config"
	"github.com/landa/character-clusterer/internal/glyphfile"
	"github.com/landa/character-clusterer/internal/imaging"
	"github.com/landa/character-clusterer/internal/ocr"
	"github.com/landa/character-clusterer/internal/sample"
	"github.com/landa/character-clusterer/internal/watcher"
)

// Kind tells where an input's glyphs come from.
type Kind int

const (
	KindGlyphFile Kind = iota
	KindImage
	KindDemo
)

// Input is one unit of work.
type Input struct {
	Name string
	Path string
	Kind Kind
}

// Word is one clustered word in a report.
type Word struct {
	Group  int          `json:"group"`
	Text   string       `json:"text"`
	Bounds cluster.Rect `json:"bounds"`
}

// Report is the outcome of clustering one input.
type Report struct {
	Input      string          `json:"input"`
	Words      []Word          `json:"words"`
	Glyphs     []cluster.Glyph `json:"glyphs,omitempty"`
	Iterations int             `json:"iterations"`
	Converged  bool            `json:"converged"`
}

// Runner clusters inputs with a fixed configuration.
type Runner struct {
	opts   *Options
	cfg    *config.Config
	copts  cluster.Options
	cache  *imaging.ImageCache
	logger zerolog.Logger

	mu  sync.Mutex // serializes writes to out
	out io.Writer
}

// New loads the configuration named by opts, applies the command line overrides
// and validates the result. The logger is filtered to the configured level.
func New(opts *Options, out io.Writer, logger zerolog.Logger) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(opts.Config)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	copts, err := cfg.ClusterOptions()
	if err != nil {
		return nil, err
	}
	if err := opts.MkdirOutputs(); err != nil {
		return nil, err
	}

	return &Runner{
		opts:   opts,
		cfg:    cfg,
		copts:  copts,
		cache:  imaging.NewImageCache(),
		logger: logger.Level(cfg.Level()),
		out:    out,
	}, nil
}

// Inputs lists the work named by the options, glyph files first.
func (r *Runner) Inputs() []Input {
	var inputs []Input
	for _, p := range r.opts.GlyphFiles {
		inputs = append(inputs, Input{Name: p, Path: p, Kind: KindGlyphFile})
	}
	for _, p := range r.opts.Images {
		inputs = append(inputs, Input{Name: p, Path: p, Kind: KindImage})
	}
	if r.opts.Demo {
		inputs = append(inputs, Input{Name: "demo", Kind: KindDemo})
	}
	return inputs
}

// Run processes every input once, then keeps watching when Watch is set.
// Independent inputs run in parallel; reports are written in input order.
func (r *Runner) Run(ctx context.Context) error {
	inputs := r.Inputs()
	reports := make([]*Report, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := r.Process(in)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rep := range reports {
		if err := r.write(rep); err != nil {
			return err
		}
	}

	if !r.opts.Watch {
		return nil
	}
	return r.watch(ctx, inputs)
}

func (r *Runner) watch(ctx context.Context, inputs []Input) error {
	byPath := make(map[string]Input)
	var paths []string
	for _, in := range inputs {
		if in.Path == "" {
			continue
		}
		abs, err := filepath.Abs(in.Path)
		if err != nil {
			return err
		}
		byPath[abs] = in
		paths = append(paths, abs)
	}

	w, err := watcher.New(paths, func(path string) {
		in, ok := byPath[path]
		if !ok {
			return
		}
		if in.Kind == KindImage {
			r.cache.Evict(in.Path)
			r.logger.Debug().Str("input", in.Name).Int("cached", r.cache.Len()).Msg("evicted image")
		}
		rep, err := r.Process(in)
		if err != nil {
			r.logger.Error().Err(err).Str("input", in.Name).Msg("re-cluster failed")
			return
		}
		if err := r.write(rep); err != nil {
			r.logger.Error().Err(err).Msg("failed to write report")
		}
	}, r.logger)
	if err != nil {
		return err
	}

	r.logger.Info().Int("files", len(paths)).Msg("watching for changes")
	return w.Run(ctx)
}

// Process clusters one input from scratch and writes the optional rendering and
// labeled glyph file.
func (r *Runner) Process(in Input) (*Report, error) {
	glyphs, base, err := r.load(in)
	if err != nil {
		return nil, err
	}

	logger := r.logger.With().Str("input", in.Name).Logger()
	opts := r.copts
	opts.Logger = &logger

	labeled, res := cluster.Words(glyphs, opts)

	rep := &Report{
		Input:      in.Name,
		Words:      make([]Word, 0, len(res.Clusters)),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for i, c := range res.Clusters {
		rep.Words = append(rep.Words, Word{Group: i + 1, Text: c.Text(), Bounds: c.Bounds()})
	}
	if r.opts.JSON {
		rep.Glyphs = labeled
	}

	logger.Info().
		Int("glyphs", len(glyphs)).
		Int("words", len(rep.Words)).
		Int("iterations", res.Iterations).
		Msg("clustered")

	if r.opts.RenderDir != "" {
		path := filepath.Join(r.opts.RenderDir, outputName(in)+".png")
		ro := imaging.RenderOptions{Width: r.cfg.Render.Width, Height: r.cfg.Render.Height, Scale: r.cfg.Render.Scale}
		if err := imaging.SaveRendering(path, base, labeled, ro); err != nil {
			return nil, err
		}
	}
	if r.opts.LabelsDir != "" {
		path := filepath.Join(r.opts.LabelsDir, outputName(in)+".labeled.json")
		if err := glyphfile.Save(path, labeled); err != nil {
			return nil, err
		}
	}

	return rep, nil
}

// load returns the glyphs of in and, for images, the page to render over.
func (r *Runner) load(in Input) ([]cluster.Glyph, image.Image, error) {
	switch in.Kind {
	case KindGlyphFile:
		glyphs, err := glyphfile.Load(in.Path)
		return glyphs, nil, err
	case KindImage:
		img, err := r.cache.Load(in.Path)
		if err != nil {
			return nil, nil, err
		}
		glyphs, err := ocr.ExtractGlyphs(img, ocr.Options{
			Language:      r.cfg.OCR.Language,
			MinConfidence: r.cfg.OCR.MinConfidence,
			Binarize:      r.cfg.OCR.Binarize,
			Upscale:       r.cfg.OCR.Upscale,
		})
		return glyphs, img, err
	case KindDemo:
		return sample.Demo(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown input kind %d", in.Kind)
	}
}

func (r *Runner) write(rep *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.JSON {
		return json.NewEncoder(r.out).Encode(rep)
	}
	for _, w := range rep.Words {
		if _, err := fmt.Fprintf(r.out, "%s\t%d\t%s\n", rep.Input, w.Group, w.Text); err != nil {
			return err
		}
	}
	return nil
}

func outputName(in Input) string {
	if in.Kind == KindDemo {
		return "demo"
	}
	base := filepath.Base(in.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MkdirOutputs creates the render and labels directories when they are set.
func (o *Options) MkdirOutputs() error {
	for _, dir := range []string{o.RenderDir, o.LabelsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
