package server

import "github.com/ironsheep/layout-tools-mcp/internal/pagexml"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var (
	pageProperty = map[string]any{
		"type":        "integer",
		"minimum":     0,
		"description": "Page number within the session book (0-based)",
	}

	versionProperty = map[string]any{
		"type":        "string",
		"enum":        pagexml.Versions(),
		"description": "PAGE schema version. Defaults to the configured version",
	}

	xmlProperty = map[string]any{
		"type":            "string",
		"contentEncoding": "base64",
		"description":     "Base64-encoded XML document",
	}

	pointSchema = object(map[string]any{
		"x": map[string]any{"type": "number"},
		"y": map[string]any{"type": "number"},
	}, "x", "y")

	polygonSchema = object(map[string]any{
		"id":         map[string]any{"type": "string"},
		"type":       map[string]any{"type": "string"},
		"points":     map[string]any{"type": "array", "items": pointSchema},
		"isRelative": map[string]any{"type": "boolean"},
	}, "id", "points")

	segmentationSchema = object(map[string]any{
		"page":         map[string]any{"type": "integer"},
		"segments":     map[string]any{"type": "object", "additionalProperties": polygonSchema},
		"status":       map[string]any{"type": "string"},
		"readingOrder": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	}, "page", "segments")

	settingsSchema = object(map[string]any{
		"book":         map[string]any{"type": "integer"},
		"parameters":   map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "integer"}},
		"regions":      map[string]any{"type": "object"},
		"pages":        map[string]any{"type": "object"},
		"imageSegType": map[string]any{"type": "string", "enum": []string{"", "NONE", "CONTOUR_ONLY", "STRAIGHT_RECT", "ROTATED_RECT"}},
		"combine":      map[string]any{"type": "boolean"},
	}, "book")
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Books and Session
		{
			Name:        "layout_list_books",
			Description: "List the books found under the configured resource path with their pages.",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "layout_init",
			Description: "Open a book. Later page operations refer to this book until layout_clear.",
			InputSchema: object(map[string]any{
				"book_id": map[string]any{
					"type":        "integer",
					"description": "Book id as listed by layout_list_books",
				},
			}, "book_id"),
		},
		{
			Name:        "layout_clear",
			Description: "Close the open book and forget all session state.",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "layout_status",
			Description: "Report whether a book is open and the parameters of the last segmentation.",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "layout_default_settings",
			Description: "Return default segmentation settings for a book: parameters, region rules and empty page edits.",
			InputSchema: object(map[string]any{
				"book_id": map[string]any{
					"type":        "integer",
					"description": "Optional book id. Defaults to the open book",
				},
			}),
		},

		// Segmentation
		{
			Name:        "layout_segment_page",
			Description: "Segment one page into typed regions with a reading order. Status is SUCCESS, also for a cached PAGE document next to the image, or MISSINGFILE when the image is absent.",
			InputSchema: object(map[string]any{
				"page":     pageProperty,
				"settings": settingsSchema,
				"allow_local_results": map[string]any{
					"type":        "boolean",
					"description": "Reuse a cached result if present. Defaults to the configured value",
				},
			}, "page"),
		},
		{
			Name:        "layout_merge",
			Description: "Merge several regions of a page into one region that follows the page ink. The result takes the type of the first region.",
			InputSchema: object(map[string]any{
				"page": pageProperty,
				"polygons": map[string]any{
					"type":     "array",
					"items":    polygonSchema,
					"minItems": 1,
				},
			}, "page", "polygons"),
		},
		{
			Name:        "layout_render_preview",
			Description: "Draw the regions of a segmentation over the page image and return it as base64-encoded PNG.",
			InputSchema: object(map[string]any{
				"page":         pageProperty,
				"segmentation": segmentationSchema,
				"show_labels": map[string]any{
					"type":        "boolean",
					"description": "Number regions by reading order. Default true",
					"default":     true,
				},
			}, "page", "segmentation"),
		},

		// Export
		{
			Name:        "layout_prepare_export",
			Description: "Stage a page segmentation for layout_page_xml or layout_save_page_xml.",
			InputSchema: object(map[string]any{
				"segmentation": segmentationSchema,
			}, "segmentation"),
		},
		{
			Name:        "layout_page_xml",
			Description: "Encode the staged segmentation as a PAGE XML document.",
			InputSchema: object(map[string]any{
				"version": versionProperty,
			}),
		},
		{
			Name:        "layout_save_page_xml",
			Description: "Write the staged segmentation as a PAGE XML file into a directory.",
			InputSchema: object(map[string]any{
				"dir": map[string]any{
					"type":        "string",
					"description": "Target directory, created if missing",
				},
				"version": versionProperty,
			}, "dir"),
		},
		{
			Name:        "layout_prepare_settings",
			Description: "Stage settings for layout_settings_xml.",
			InputSchema: object(map[string]any{
				"settings": settingsSchema,
			}, "settings"),
		},
		{
			Name:        "layout_settings_xml",
			Description: "Encode the staged settings as a settings XML document.",
			InputSchema: object(map[string]any{}),
		},

		// Import
		{
			Name:        "layout_read_settings",
			Description: "Read a settings XML document into settings for the open book.",
			InputSchema: object(map[string]any{
				"xml_base64": xmlProperty,
			}, "xml_base64"),
		},
		{
			Name:        "layout_read_page_xml",
			Description: "Read a PAGE XML document as the segmentation of a page, including its reading order.",
			InputSchema: object(map[string]any{
				"xml_base64": xmlProperty,
				"page":       pageProperty,
			}, "xml_base64", "page"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"tools": GetToolDefinitions(),
		},
	}
}
