package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var glyphListSchema = map[string]interface{}{
	"type":        "array",
	"description": "Glyphs: {rect: {left, top, width, height}, value, confidence?, group?}",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"rect": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"left":   map[string]interface{}{"type": "number"},
					"top":    map[string]interface{}{"type": "number"},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
				"required": []string{"left", "top", "width", "height"},
			},
			"value":      map[string]interface{}{"type": "string"},
			"confidence": map[string]interface{}{"type": "number"},
			"group":      map[string]interface{}{"type": "integer"},
		},
		"required": []string{"rect"},
	},
}

var regionSchema = map[string]interface{}{
	"type":        "object",
	"description": "Optional region {x1, y1, x2, y2}; (x2, y2) exclusive. Defaults to the whole image",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

// tuningProperties are the clustering overrides accepted by the clustering tools.
func tuningProperties() map[string]interface{} {
	return map[string]interface{}{
		"threshold": map[string]interface{}{
			"type":        "number",
			"description": "Largest distance at which two clusters are merged. Defaults to the server configuration (20)",
		},
		"vertical_scale": map[string]interface{}{
			"type":        "number",
			"description": "Weight of vertical separation relative to horizontal. Default 3.0",
		},
		"max_iterations": map[string]interface{}{
			"type":        "integer",
			"description": "Cap on merge iterations. Default 1000",
		},
		"metric": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"edge", "center"},
			"description": "Distance metric: edge-to-edge gaps (edge) or glyph centers (center)",
		},
		"top_edge": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"min-bottom", "min-top"},
			"description": "How a cluster's top edge is computed. min-bottom reproduces the classic behaviour",
		},
	}
}

func ocrProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty,
		"language": map[string]interface{}{
			"type":        "string",
			"description": "Tesseract language code. Default eng",
		},
		"min_confidence": map[string]interface{}{
			"type":        "number",
			"description": "Drop symbols recognized below this confidence (0.0 to 1.0)",
		},
		"region": regionSchema,
	}
}

func mergeProperties(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Clustering
		{
			Name:        "glyph_cluster",
			Description: "Group character bounding boxes into words by agglomerative clustering. Returns the words with their text and bounds, and the glyphs labeled with word ids.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": mergeProperties(
					map[string]interface{}{"glyphs": glyphListSchema},
					tuningProperties(),
				),
				"required": []string{"glyphs"},
			},
		},
		{
			Name:        "glyph_distance",
			Description: "Compute the distance between two glyph groups, with its horizontal and vertical parts. Useful for choosing a threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a":              glyphListSchema,
					"b":              glyphListSchema,
					"vertical_scale": tuningProperties()["vertical_scale"],
					"metric":         tuningProperties()["metric"],
					"top_edge":       tuningProperties()["top_edge"],
				},
				"required": []string{"a", "b"},
			},
		},
		{
			Name:        "glyph_sample",
			Description: "Generate synthetic glyphs (30x40 boxes advancing 35 px). Without rows, returns the built-in demo page.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rows": map[string]interface{}{
						"type":        "array",
						"description": "Rows of text to lay out: {text, x, y}",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"text": map[string]interface{}{"type": "string"},
								"x":    map[string]interface{}{"type": "number"},
								"y":    map[string]interface{}{"type": "number"},
							},
							"required": []string{"text", "x", "y"},
						},
					},
				},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty},
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty},
				"required":   []string{"path"},
			},
		},

		// OCR and rendering
		{
			Name:        "image_ocr_glyphs",
			Description: "Recognize single characters in an image and return one glyph per character box, ready for glyph_cluster.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": ocrProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_ocr_words",
			Description: "Return Tesseract's own word boxes for an image, to compare against the words produced by image_cluster_words.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": ocrProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_cluster_words",
			Description: "Recognize characters in an image and group them into words in one step.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": mergeProperties(ocrProperties(), tuningProperties()),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_render_clusters",
			Description: "Draw glyph boxes colored by word group, over an image or a blank canvas, and return base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"glyphs": glyphListSchema,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Optional image to draw over. Defaults to a white canvas",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas width when no image is given. Default 1000",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas height when no image is given. Default 800",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the output. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"glyphs"},
			},
		},
	}
}
