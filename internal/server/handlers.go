package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/layout-tools-mcp/internal/facade"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
	"github.com/ironsheep/layout-tools-mcp/internal/translate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "layout_init", "layout_segment_page").
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
// Arguments that do not match the tool's input schema return -32602; tool
// execution errors return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if err := s.validateArgs(params.Name, params.Arguments); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Books and Session
	case "layout_list_books":
		return s.handleListBooks()
	case "layout_init":
		return s.handleInit(args)
	case "layout_clear":
		return s.handleClear()
	case "layout_status":
		return s.handleStatus()
	case "layout_default_settings":
		return s.handleDefaultSettings(args)

	// Segmentation
	case "layout_segment_page":
		return s.handleSegmentPage(ctx, args)
	case "layout_merge":
		return s.handleMerge(args)
	case "layout_render_preview":
		return s.handleRenderPreview(args)

	// Export
	case "layout_prepare_export":
		return s.handlePrepareExport(args)
	case "layout_page_xml":
		return s.handlePageXML(args)
	case "layout_save_page_xml":
		return s.handleSavePageXML(args)
	case "layout_prepare_settings":
		return s.handlePrepareSettings(args)
	case "layout_settings_xml":
		return s.handleSettingsXML()

	// Import
	case "layout_read_settings":
		return s.handleReadSettings(args)
	case "layout_read_page_xml":
		return s.handleReadPageXML(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id any, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Books and Session Handlers ===

// BookInfo describes one book of the store.
type BookInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Pages int    `json:"pages"`
	Dir   string `json:"dir"`
}

func (s *Server) handleListBooks() (any, error) {
	_, store := s.config()
	entries, err := store.List()
	if err != nil {
		return nil, err
	}
	out := make([]BookInfo, len(entries))
	for i, e := range entries {
		out[i] = BookInfo{ID: e.Book.ID, Name: e.Book.Name, Pages: len(e.Book.Pages), Dir: e.Dir}
	}
	return map[string]any{"books": out}, nil
}

type bookArgs struct {
	BookID *int `json:"book_id"`
}

func (s *Server) handleInit(args json.RawMessage) (any, error) {
	var a bookArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.BookID == nil {
		return nil, errors.New("book_id is required")
	}
	_, store := s.config()
	entry, err := store.Get(*a.BookID)
	if err != nil {
		return nil, err
	}

	s.session.Clear()
	s.session.Init(entry.Book, entry.Dir)
	s.logger.Info("opened book", "id", entry.Book.ID, "name", entry.Book.Name, "pages", len(entry.Book.Pages))
	return map[string]any{
		"book":          entry.Book,
		"resource_path": entry.Dir,
	}, nil
}

func (s *Server) handleClear() (any, error) {
	s.session.Clear()
	return map[string]any{"cleared": true}, nil
}

// StatusResult reports the session state.
type StatusResult struct {
	Initialized  bool            `json:"initialized"`
	Book         *model.Book     `json:"book,omitempty"`
	ResourcePath string          `json:"resource_path,omitempty"`
	Settings     *model.Settings `json:"settings,omitempty"`
	ImageWidth   int             `json:"image_width,omitempty"`
	ImageHeight  int             `json:"image_height,omitempty"`
	ScaleFactor  float64         `json:"scale_factor,omitempty"`
}

func (s *Server) handleStatus() (any, error) {
	st := StatusResult{
		Initialized:  s.session.IsInit(),
		Book:         s.session.Book(),
		ResourcePath: s.session.ResourcePath(),
	}
	if p := s.session.Parameters(); p != nil {
		st.Settings = translate.ParametersToSettings(p, st.Book)
		st.ImageWidth, st.ImageHeight, st.ScaleFactor = p.ImageWidth, p.ImageHeight, p.ScaleFactor
	}
	return st, nil
}

func (s *Server) handleDefaultSettings(args json.RawMessage) (any, error) {
	var a bookArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	book := s.session.Book()
	if a.BookID != nil {
		_, store := s.config()
		entry, err := store.Get(*a.BookID)
		if err != nil {
			return nil, err
		}
		book = entry.Book
	}
	if book == nil {
		return nil, fmt.Errorf("%w: pass book_id or call layout_init", facade.ErrNotInitialized)
	}
	return s.session.DefaultSettings(book), nil
}

// === Segmentation Handlers ===

type segmentPageArgs struct {
	Page              int             `json:"page"`
	Settings          *model.Settings `json:"settings"`
	AllowLocalResults *bool           `json:"allow_local_results"`
}

func (s *Server) handleSegmentPage(ctx context.Context, args json.RawMessage) (any, error) {
	var a segmentPageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, _ := s.config()
	allowLocal := cfg.AllowLocalResults
	if a.AllowLocalResults != nil {
		allowLocal = *a.AllowLocalResults
	}

	settings := a.Settings
	if settings == nil {
		settings = s.sessionSettings()
	}
	return s.session.SegmentPage(ctx, settings, a.Page, allowLocal)
}

// sessionSettings returns the settings in effect for the open book: those
// of the last segmentation, or the defaults.
func (s *Server) sessionSettings() *model.Settings {
	book := s.session.Book()
	if book == nil {
		// SegmentPage reports the missing session.
		return model.NewSettings(0)
	}
	if p := s.session.Parameters(); p != nil {
		return translate.ParametersToSettings(p, book)
	}
	return s.session.DefaultSettings(book)
}

type mergeArgs struct {
	Page     int             `json:"page"`
	Polygons []model.Polygon `json:"polygons"`
}

func (s *Server) handleMerge(args json.RawMessage) (any, error) {
	var a mergeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.session.Merge(a.Polygons, a.Page)
}

type renderPreviewArgs struct {
	Page         int                     `json:"page"`
	Segmentation *model.PageSegmentation `json:"segmentation"`
	ShowLabels   *bool                   `json:"show_labels"`
}

func (s *Server) handleRenderPreview(args json.RawMessage) (any, error) {
	var a renderPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	showLabels := true
	if a.ShowLabels != nil {
		showLabels = *a.ShowLabels
	}
	return s.session.RenderPreview(a.Page, a.Segmentation, showLabels)
}

// === Export Handlers ===

// DocumentResult carries an encoded XML document.
type DocumentResult struct {
	FileName  string `json:"file_name"`
	XMLBase64 string `json:"xml_base64"`
}

func documentResult(exp facade.Export) (any, error) {
	if exp.Data == nil {
		return nil, fmt.Errorf("failed to encode %s", exp.FileName)
	}
	return DocumentResult{
		FileName:  exp.FileName,
		XMLBase64: base64.StdEncoding.EncodeToString(exp.Data),
	}, nil
}

type segmentationArgs struct {
	Segmentation *model.PageSegmentation `json:"segmentation"`
}

func (s *Server) handlePrepareExport(args json.RawMessage) (any, error) {
	var a segmentationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.PrepareExport(a.Segmentation); err != nil {
		return nil, err
	}
	return map[string]any{"prepared": true, "page": a.Segmentation.Page}, nil
}

type versionArgs struct {
	Version string `json:"version"`
	Dir     string `json:"dir"`
}

func (s *Server) version(v string) string {
	if v != "" {
		return v
	}
	cfg, _ := s.config()
	return cfg.PageXMLVersion
}

func (s *Server) handlePageXML(args json.RawMessage) (any, error) {
	var a versionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	exp, err := s.session.PageXML(s.version(a.Version))
	if err != nil {
		return nil, err
	}
	return documentResult(exp)
}

func (s *Server) handleSavePageXML(args json.RawMessage) (any, error) {
	var a versionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, err := s.session.SavePageXMLLocal(a.Dir, s.version(a.Version))
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": path}, nil
}

type settingsArgs struct {
	Settings *model.Settings `json:"settings"`
}

func (s *Server) handlePrepareSettings(args json.RawMessage) (any, error) {
	var a settingsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.PrepareSettings(a.Settings); err != nil {
		return nil, err
	}
	return map[string]any{"prepared": true}, nil
}

func (s *Server) handleSettingsXML() (any, error) {
	exp, err := s.session.SettingsXML()
	if err != nil {
		return nil, err
	}
	return documentResult(exp)
}

// === Import Handlers ===

type readDocumentArgs struct {
	XMLBase64 string `json:"xml_base64"`
	Page      int    `json:"page"`
}

func (a readDocumentArgs) decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.XMLBase64)
	if err != nil {
		return nil, fmt.Errorf("xml_base64 is not valid base64: %w", err)
	}
	return data, nil
}

func (s *Server) handleReadSettings(args json.RawMessage) (any, error) {
	var a readDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := a.decode()
	if err != nil {
		return nil, err
	}
	return s.session.ReadSettings(data)
}

func (s *Server) handleReadPageXML(args json.RawMessage) (any, error) {
	var a readDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := a.decode()
	if err != nil {
		return nil, err
	}
	return s.session.ReadPageXML(data, a.Page)
}

