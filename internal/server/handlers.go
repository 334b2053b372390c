package server

import (
	"fmt"
	"image"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/landa/character-clusterer/internal/cluster"
	"github.com/landa/character-clusterer/internal/imaging"
	"github.com/landa/character-clusterer/internal/ocr"
	"github.com/landa/character-clusterer/internal/sample"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "glyph_cluster", "image_ocr_glyphs").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Clustering
	case "glyph_cluster":
		return s.handleGlyphCluster(args)
	case "glyph_distance":
		return s.handleGlyphDistance(args)
	case "glyph_sample":
		return s.handleGlyphSample(args)

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// OCR and rendering
	case "image_ocr_glyphs":
		return s.handleImageOCRGlyphs(args)
	case "image_ocr_words":
		return s.handleImageOCRWords(args)
	case "image_cluster_words":
		return s.handleImageClusterWords(args)
	case "image_render_clusters":
		return s.handleImageRenderClusters(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Clustering Handlers ===

// clusterArgs are the optional tuning overrides shared by the clustering tools.
// Unset fields fall back to the server configuration.
type clusterArgs struct {
	Threshold     *float64 `json:"threshold"`
	VerticalScale *float64 `json:"vertical_scale"`
	MaxIterations *int     `json:"max_iterations"`
	Metric        *string  `json:"metric"`
	TopEdge       *string  `json:"top_edge"`
}

// options merges the overrides into a copy of the server configuration.
func (s *Server) options(a clusterArgs) (cluster.Options, error) {
	cfg := *s.cfg
	if a.Threshold != nil {
		cfg.Threshold = *a.Threshold
	}
	if a.VerticalScale != nil {
		cfg.VerticalScale = *a.VerticalScale
	}
	if a.MaxIterations != nil {
		cfg.MaxIterations = *a.MaxIterations
	}
	if a.Metric != nil {
		cfg.Metric = *a.Metric
	}
	if a.TopEdge != nil {
		cfg.TopEdge = *a.TopEdge
	}
	return cfg.ClusterOptions()
}

// WordResult describes one word found by the clustering.
type WordResult struct {
	Group  int             `json:"group"`
	Text   string          `json:"text"`
	Bounds cluster.Rect    `json:"bounds"`
	Glyphs []cluster.Glyph `json:"glyphs"`
}

// ClusterResult is returned by glyph_cluster and image_cluster_words.
type ClusterResult struct {
	RunID      string          `json:"run_id"`
	Clusters   []WordResult    `json:"clusters"`
	Glyphs     []cluster.Glyph `json:"glyphs"`
	Iterations int             `json:"iterations"`
	Merges     int             `json:"merges"`
	Converged  bool            `json:"converged"`
}

// runClustering runs a labeled clustering of glyphs and logs the run under a fresh id.
func (s *Server) runClustering(glyphs []cluster.Glyph, a clusterArgs) (*ClusterResult, error) {
	opts, err := s.options(a)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Logger()
	opts.Logger = &logger

	labeled, res := cluster.Words(glyphs, opts)

	clusters := make([]WordResult, 0, len(res.Clusters))
	for i, c := range res.Clusters {
		clusters = append(clusters, WordResult{
			Group:  i + 1,
			Text:   c.Text(),
			Bounds: c.Bounds(),
			Glyphs: c,
		})
	}

	logger.Info().
		Int("glyphs", len(glyphs)).
		Int("words", len(clusters)).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Msg("clustered")

	return &ClusterResult{
		RunID:      runID,
		Clusters:   clusters,
		Glyphs:     labeled,
		Iterations: res.Iterations,
		Merges:     res.Merges,
		Converged:  res.Converged,
	}, nil
}

type glyphClusterArgs struct {
	Glyphs []cluster.Glyph `json:"glyphs"`
	clusterArgs
}

func (s *Server) handleGlyphCluster(args json.RawMessage) (interface{}, error) {
	var a glyphClusterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.runClustering(a.Glyphs, a.clusterArgs)
}

type glyphDistanceArgs struct {
	A             []cluster.Glyph `json:"a"`
	B             []cluster.Glyph `json:"b"`
	VerticalScale *float64        `json:"vertical_scale"`
	Metric        *string         `json:"metric"`
	TopEdge       *string         `json:"top_edge"`
}

// DistanceResult is returned by glyph_distance.
type DistanceResult struct {
	Distance   float64 `json:"distance"`
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
	Metric     string  `json:"metric"`
}

func (s *Server) handleGlyphDistance(args json.RawMessage) (interface{}, error) {
	var a glyphDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.A) == 0 || len(a.B) == 0 {
		return nil, fmt.Errorf("both a and b must contain at least one glyph")
	}

	opts, err := s.options(clusterArgs{VerticalScale: a.VerticalScale, Metric: a.Metric, TopEdge: a.TopEdge})
	if err != nil {
		return nil, err
	}

	ca, cb := cluster.Cluster(a.A), cluster.Cluster(a.B)
	result := &DistanceResult{Distance: opts.Metric.Distance(ca, cb)}
	if cm, ok := opts.Metric.(cluster.ComponentMetric); ok {
		result.Horizontal, result.Vertical = cm.Components(ca, cb)
	}
	switch opts.Metric.(type) {
	case cluster.CenterMetric:
		result.Metric = cluster.MetricCenter
	default:
		result.Metric = cluster.MetricEdge
	}
	return result, nil
}

type glyphSampleArgs struct {
	Rows []sample.Line `json:"rows"`
}

// SampleResult is returned by glyph_sample.
type SampleResult struct {
	Glyphs []cluster.Glyph `json:"glyphs"`
	Count  int             `json:"count"`
}

func (s *Server) handleGlyphSample(args json.RawMessage) (interface{}, error) {
	var a glyphSampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	glyphs := sample.Demo()
	if len(a.Rows) > 0 {
		glyphs = sample.Page(a.Rows)
	}
	return &SampleResult{Glyphs: glyphs, Count: len(glyphs)}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === OCR and Rendering Handlers ===

type ocrArgs struct {
	Path          string          `json:"path"`
	Language      string          `json:"language"`
	MinConfidence *float64        `json:"min_confidence"`
	Region        *imaging.Region `json:"region"`
}

func (s *Server) ocrOptions(a ocrArgs) ocr.Options {
	opts := ocr.Options{
		Language:      s.cfg.OCR.Language,
		MinConfidence: s.cfg.OCR.MinConfidence,
		Binarize:      s.cfg.OCR.Binarize,
		Upscale:       s.cfg.OCR.Upscale,
		Region:        a.Region,
	}
	if a.Language != "" {
		opts.Language = a.Language
	}
	if a.MinConfidence != nil {
		opts.MinConfidence = *a.MinConfidence
	}
	return opts
}

// OCRGlyphsResult is returned by image_ocr_glyphs.
type OCRGlyphsResult struct {
	Glyphs []cluster.Glyph `json:"glyphs"`
	Count  int             `json:"count"`
}

func (s *Server) handleImageOCRGlyphs(args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	glyphs, err := ocr.ExtractGlyphsFromFile(s.cache, a.Path, s.ocrOptions(a))
	if err != nil {
		return nil, err
	}
	return &OCRGlyphsResult{Glyphs: glyphs, Count: len(glyphs)}, nil
}

// OCRWordsResult is returned by image_ocr_words.
type OCRWordsResult struct {
	Words []ocr.Word `json:"words"`
	Count int        `json:"count"`
}

func (s *Server) handleImageOCRWords(args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	words, err := ocr.ExtractWordsFromFile(s.cache, a.Path, s.ocrOptions(a))
	if err != nil {
		return nil, err
	}
	return &OCRWordsResult{Words: words, Count: len(words)}, nil
}

type imageClusterWordsArgs struct {
	ocrArgs
	clusterArgs
}

func (s *Server) handleImageClusterWords(args json.RawMessage) (interface{}, error) {
	var a imageClusterWordsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	glyphs, err := ocr.ExtractGlyphsFromFile(s.cache, a.Path, s.ocrOptions(a.ocrArgs))
	if err != nil {
		return nil, err
	}
	return s.runClustering(glyphs, a.clusterArgs)
}

type imageRenderClustersArgs struct {
	Glyphs []cluster.Glyph `json:"glyphs"`
	Path   string          `json:"path"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Scale  float64         `json:"scale"`
}

func (s *Server) handleImageRenderClusters(args json.RawMessage) (interface{}, error) {
	var a imageRenderClustersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := imaging.RenderOptions{
		Width:  s.cfg.Render.Width,
		Height: s.cfg.Render.Height,
		Scale:  s.cfg.Render.Scale,
	}
	if a.Width > 0 {
		opts.Width = a.Width
	}
	if a.Height > 0 {
		opts.Height = a.Height
	}
	if a.Scale > 0 {
		opts.Scale = a.Scale
	}

	var base image.Image
	if a.Path != "" {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		base = img
	}
	return imaging.RenderClusters(base, a.Glyphs, opts)
}
