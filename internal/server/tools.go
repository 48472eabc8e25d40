package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pairProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer"},
		"minItems":    2,
		"maxItems":    2,
		"description": description,
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// geometryProperties are shared by the tools that build a placement engine.
func geometryProperties() map[string]interface{} {
	return map[string]interface{}{
		"window_size":    pairProperty("Image size [height, width] in pixels. Default [227, 227]"),
		"grid_size":      pairProperty("Grid [rows, cols]. Default [5, 5]"),
		"border_size":    pairProperty("Border [height, width] kept free of items. Optional"),
		"item_bbox_size": pairProperty("Item bounding box [height, width]. Default [30, 30]"),
		"jitter":         intProperty("Maximum positional jitter in pixels. Default 5"),
		"seed":           intProperty("Random seed. 0 or absent means time-based"),
	}
}

func merge(props ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, p := range props {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Planning
		{
			Name:        "stims_plan",
			Description: "Plan item placements for one set size on a grid and report whether the requested number of unique displays is feasible (distinct cell combinations times jitter pairs).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(geometryProperties(), map[string]interface{}{
					"set_size":   intProperty("Items per display"),
					"num_images": intProperty("Number of displays to plan"),
					"unique": map[string]interface{}{
						"type":        "boolean",
						"description": "Require every display to differ in cells or jitter. Default true",
						"default":     true,
					},
					"max_assignments": intProperty("Maximum number of planned displays to return. Default 10"),
				}),
				"required": []string{"set_size", "num_images"},
			},
		},

		// Rendering
		{
			Name:        "stims_preview",
			Description: "Render a single visual search display and return it as base64-encoded PNG together with its metadata (target/distractor centers, grid_as_char, item boxes).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(geometryProperties(), map[string]interface{}{
					"flavor":     stringProperty("rectangle, rectangle_conjunction, number, tl or xo"),
					"set_size":   intProperty("Items in the display"),
					"num_target": intProperty("Number of targets. Default 1"),
					"free_field": map[string]interface{}{
						"type":        "boolean",
						"description": "Place items anywhere instead of on the grid",
					},
					"min_center_dist":      intProperty("Minimum distance between item centers in free-field mode"),
					"target_color":         stringProperty("Color name or #RRGGBB"),
					"distractor_color":     stringProperty("Color name or #RRGGBB"),
					"alt_distractor_color": stringProperty("Color of the 'o' distractors of the xo flavor"),
					"background_color":     stringProperty("Color name or #RRGGBB. Default black"),
					"target_number":        intProperty("Digit of the number flavor target (2 or 5)"),
					"distractor_number":    intProperty("Digit of the number flavor distractors (2 or 5)"),
					"target_rotation":      intProperty("Rotation of the tl target in degrees, 1-359"),
					"show_grid": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw numbered grid cells over the display",
					},
					"save_path": stringProperty("Optional path to also write the PNG and its .meta.json"),
				}),
				"required": []string{"flavor", "set_size"},
			},
		},
		{
			Name:        "stims_make",
			Description: "Generate a complete dataset from a YAML config: images, .meta.json files and the CSV ledger. Fails without leaving partial files for a group whose uniqueness request is infeasible.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config_path": stringProperty("Absolute path to the YAML config"),
					"output_dir":  stringProperty("Override the config's output_dir"),
				},
				"required": []string{"config_path"},
			},
		},

		// Inspection
		{
			Name:        "stims_audit",
			Description: "Check every image of a generated dataset against its metadata: item count, colors, bar orientation and, where OCR is available, digit identity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config_path": stringProperty("Absolute path to the YAML config the dataset was made from"),
					"csv_path":    stringProperty("Ledger to audit. Default <output_dir>/<csv_filename>"),
					"dump_dir":    stringProperty("Optional directory for enlarged crops of mismatched items"),
				},
				"required": []string{"config_path"},
			},
		},
		{
			Name:        "stims_inspect",
			Description: "Report an image's dimensions, the items found on it, its dominant colors and optionally the colors at given pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             stringProperty("Absolute path to the image file"),
					"background_color": stringProperty("Background color of the image. Default black"),
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Optional pixels to sample",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     intProperty("X coordinate"),
								"y":     intProperty("Y coordinate"),
								"label": stringProperty("Optional label echoed in the result"),
							},
							"required": []string{"x", "y"},
						},
					},
					"colors":           intProperty("Number of dominant colors to return. Default 3"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stims_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use this to zoom into single items.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProperty("Absolute path to the image file"),
					"x1":   intProperty("Left edge X coordinate (0-based)"),
					"y1":   intProperty("Top edge Y coordinate (0-based)"),
					"x2":   intProperty("Right edge X coordinate (exclusive)"),
					"y2":   intProperty("Bottom edge Y coordinate (exclusive)"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 4.0 to enlarge). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
