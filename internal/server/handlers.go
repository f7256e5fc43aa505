package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
	"github.com/ironsheep/stroke-tools-mcp/internal/mapping"
	"github.com/ironsheep/stroke-tools-mcp/internal/ocr"
	"github.com/ironsheep/stroke-tools-mcp/internal/pipeline"
	"github.com/ironsheep/stroke-tools-mcp/internal/preview"
	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "workspace_rectify").
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
		s.log.Info("tool failed", "tool", params.Name, "error", err)
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
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Workspace
	case "workspace_config":
		return s.handleWorkspaceConfig(args)
	case "workspace_detect_markers":
		return s.handleDetectMarkers(args)
	case "workspace_rectify":
		return s.handleRectify(args)
	case "workspace_crop_corner":
		return s.handleCropCorner(args)
	case "workspace_line_mask":
		return s.handleLineMask(args)
	case "workspace_extract_strokes":
		return s.handleExtractStrokes(args)
	case "workspace_render_strokes":
		return s.handleRenderStrokes(args)
	case "workspace_preview":
		return s.handlePreview(args)
	case "workspace_check_labels":
		return s.handleCheckLabels(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Tools without arguments may be
// called with none at all.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type pathArgs struct {
	Path string `json:"path"`
}

// frame loads the photo named by a tool's path argument.
func (s *Server) frame(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.cache.Load(path)
}

// extractor builds a pipeline for the configured workspace with tuning.
func (s *Server) extractor(tuning workspace.Tuning) (*pipeline.Extractor, error) {
	if s.detector == nil {
		return nil, s.detectorErr
	}
	return pipeline.New(s.cfg.Workspace, tuning, s.detector, pipeline.WithLogger(s.log))
}

// === Basic Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	// A retaken photo often reuses the same path.
	s.cache.Evict(a.Path)
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	// image.Rect would swap reversed coordinates; they are an error here.
	r := image.Rectangle{Min: image.Pt(a.X1, a.Y1), Max: image.Pt(a.X2, a.Y2)}
	return imaging.Crop(img, r, a.Scale)
}

type imageEdgeDetectArgs struct {
	Path          string  `json:"path"`
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	t := s.cfg.Tuning
	if a.ThresholdLow == 0 {
		a.ThresholdLow = t.CannyLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = t.CannyHigh
	}
	if a.ThresholdHigh < a.ThresholdLow {
		return nil, fmt.Errorf("threshold_high (%g) must not be below threshold_low (%g)", a.ThresholdHigh, a.ThresholdLow)
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, t.BlurKernel, t.BlurSigma, a.ThresholdLow, a.ThresholdHigh)
}

// === Workspace Handlers ===

type configResult struct {
	Config         workspace.Config `json:"config"`
	Scale          mapping.Scale    `json:"scale"`
	DetectorReady  bool             `json:"detector_ready"`
	DetectorError  string           `json:"detector_error,omitempty"`
	DictionarySize int              `json:"dictionary_size,omitempty"`
}

func (s *Server) handleWorkspaceConfig(_ json.RawMessage) (interface{}, error) {
	scale, err := mapping.ScaleFor(s.cfg.Workspace)
	if err != nil {
		return nil, err
	}
	res := &configResult{
		Config:        s.cfg,
		Scale:         scale,
		DetectorReady: s.detector != nil,
	}
	if s.detectorErr != nil {
		res.DetectorError = s.detectorErr.Error()
	}
	if ad, ok := s.detector.(*detection.ArucoDetector); ok {
		res.DictionarySize = ad.Dictionary().Len()
	}
	return res, nil
}

type markerInfo struct {
	ID       int               `json:"id"`
	Role     *workspace.Role   `json:"role,omitempty"`
	Centroid geometry.Point    `json:"centroid"`
	Corners  [4]geometry.Point `json:"corners"`
}

type missingMarker struct {
	Role workspace.Role `json:"role"`
	ID   int            `json:"id"`
}

type detectMarkersResult struct {
	Markers  []markerInfo         `json:"markers"`
	Complete bool                 `json:"complete"`
	Corners  *detection.CornerSet `json:"corners,omitempty"`
	Missing  []missingMarker      `json:"missing,omitempty"`
}

func (s *Server) handleDetectMarkers(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.detector == nil {
		return nil, s.detectorErr
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	markers, err := s.detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("marker detection failed: %w", err)
	}

	res := &detectMarkersResult{Markers: make([]markerInfo, 0, len(markers))}
	for _, m := range markers {
		info := markerInfo{ID: m.ID, Centroid: m.Centroid(), Corners: m.Corners}
		if role, ok := s.cfg.Workspace.Markers.RoleOf(m.ID); ok {
			info.Role = &role
		}
		res.Markers = append(res.Markers, info)
	}

	corners, _, err := detection.Localize(markers, s.cfg.Workspace)
	var mme *detection.MissingMarkersError
	switch {
	case err == nil:
		res.Complete = true
		res.Corners = &corners
	case errors.As(err, &mme):
		for i, role := range mme.Missing {
			res.Missing = append(res.Missing, missingMarker{Role: role, ID: mme.IDs[i]})
		}
	default:
		return nil, err
	}
	return res, nil
}

type rectifyArgs struct {
	Path          string  `json:"path"`
	GridSpacingMM float64 `json:"grid_spacing_mm"`
	GridColor     string  `json:"grid_color"`
}

type rectifyResult struct {
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Corners     detection.CornerSet `json:"corners"`
	Homography  geometry.Homography `json:"homography"`
	ImageBase64 string              `json:"image_base64"`
	MimeType    string              `json:"mime_type"`
}

func (s *Server) handleRectify(args json.RawMessage) (interface{}, error) {
	var a rectifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.GridColor == "" {
		a.GridColor = "#FF000080"
	}
	e, err := s.extractor(s.cfg.Tuning)
	if err != nil {
		return nil, err
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	rect, err := e.Rectify(img)
	if err != nil {
		return nil, err
	}

	res := &rectifyResult{
		Width:      rect.Frame.Bounds().Dx(),
		Height:     rect.Frame.Bounds().Dy(),
		Corners:    rect.Corners,
		Homography: rect.Homography,
		MimeType:   "image/png",
	}
	if a.GridSpacingMM > 0 {
		spec := s.cfg.Workspace
		grid, err := imaging.GridOverlay(rect.Frame, a.GridSpacingMM, spec.WidthMM, spec.HeightMM, true, a.GridColor)
		if err != nil {
			return nil, err
		}
		res.ImageBase64 = grid.ImageBase64
		return res, nil
	}
	if res.ImageBase64, err = imaging.EncodePNGBase64(rect.Frame); err != nil {
		return nil, err
	}
	return res, nil
}

type cropCornerArgs struct {
	Path   string  `json:"path"`
	Corner string  `json:"corner"`
	Size   int     `json:"size"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleCropCorner(args json.RawMessage) (interface{}, error) {
	var a cropCornerArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	role, err := workspace.ParseRole(a.Corner)
	if err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = 200
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	e, err := s.extractor(s.cfg.Tuning)
	if err != nil {
		return nil, err
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	rect, err := e.Rectify(img)
	if err != nil {
		return nil, err
	}
	return imaging.CropCorner(rect.Frame, role, a.Size, a.Scale)
}

type lineMaskResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	LinePixels  int    `json:"line_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleLineMask(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	e, err := s.extractor(s.cfg.Tuning)
	if err != nil {
		return nil, err
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	rect, err := e.Rectify(img)
	if err != nil {
		return nil, err
	}

	mask := imaging.ExtractLineMask(rect.Frame, e.Tuning())
	encoded, err := imaging.EncodePNGBase64(mask.Gray())
	if err != nil {
		return nil, err
	}
	return &lineMaskResult{
		Width:       mask.Width,
		Height:      mask.Height,
		LinePixels:  mask.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

type extractArgs struct {
	Path          string              `json:"path"`
	PathOrder     workspace.PathOrder `json:"path_order"`
	IncludePixels bool                `json:"include_pixels"`
}

type extractResult struct {
	FrameID      string                   `json:"frame_id"`
	StrokeCount  int                      `json:"stroke_count"`
	Warning      string                   `json:"warning,omitempty"`
	Scale        mapping.Scale            `json:"scale"`
	Summary      *mapping.Summary         `json:"summary"`
	Strokes      []mapping.PhysicalStroke `json:"strokes_mm"`
	PixelStrokes []trace.Stroke           `json:"strokes_px,omitempty"`
}

// extract runs the full pipeline on the photo at path.
func (s *Server) extract(path string, order workspace.PathOrder) (*pipeline.Extractor, *pipeline.Result, error) {
	tuning := s.cfg.Tuning
	if order != "" {
		tuning.PathOrder = order
	}
	e, err := s.extractor(tuning)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.frame(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := e.Extract(img)
	if err != nil {
		return nil, nil, err
	}
	return e, res, nil
}

func (s *Server) handleExtractStrokes(args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	e, res, err := s.extract(a.Path, a.PathOrder)
	if err != nil {
		return nil, err
	}

	out := &extractResult{
		FrameID:     res.FrameID.String(),
		StrokeCount: len(res.Strokes),
		Scale:       e.Scale(),
		Summary:     mapping.Measure(res.Physical),
		Strokes:     res.Physical,
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
	}
	if a.IncludePixels {
		out.PixelStrokes = res.Strokes
	}
	return out, nil
}

type renderStrokesArgs struct {
	Path   string `json:"path"`
	Labels *bool  `json:"labels"`
}

func (s *Server) handleRenderStrokes(args json.RawMessage) (interface{}, error) {
	var a renderStrokesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	labels := a.Labels == nil || *a.Labels
	_, res, err := s.extract(a.Path, "")
	if err != nil {
		return nil, err
	}
	return imaging.RenderStrokes(res.Frame, res.Strokes, labels)
}

type previewArgs struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Connect bool   `json:"connect"`
}

type previewResult struct {
	FrameID     string `json:"frame_id"`
	Format      string `json:"format"`
	MimeType    string `json:"mime_type"`
	StrokeCount int    `json:"stroke_count"`
	PointCount  int    `json:"point_count"`
	DataBase64  string `json:"data_base64"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	var order workspace.PathOrder
	if a.Connect {
		order = workspace.WalkOrder
	}
	_, res, err := s.extract(a.Path, order)
	if err != nil {
		return nil, err
	}

	spec := s.cfg.Workspace
	p, err := preview.Render(res.Physical, spec.WidthMM, spec.HeightMM, preview.Options{
		Format:  a.Format,
		Connect: a.Connect,
		Title:   res.FrameID.String(),
	})
	if err != nil {
		return nil, err
	}
	return &previewResult{
		FrameID:     res.FrameID.String(),
		Format:      p.Format,
		MimeType:    p.MimeType,
		StrokeCount: p.StrokeCount,
		PointCount:  p.PointCount,
		DataBase64:  base64.StdEncoding.EncodeToString(p.Data),
	}, nil
}

type checkLabelsResult struct {
	Labels []ocr.MarkerLabel `json:"labels"`
	Report *ocr.LabelReport  `json:"report"`
}

func (s *Server) handleCheckLabels(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.detector == nil {
		return nil, s.detectorErr
	}
	img, err := s.frame(a.Path)
	if err != nil {
		return nil, err
	}
	markers, err := s.detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("marker detection failed: %w", err)
	}
	labels, err := ocr.ReadMarkerLabels(img, markers, s.reader)
	if err != nil {
		return nil, err
	}
	return &checkLabelsResult{
		Labels: labels,
		Report: ocr.CheckLabels(labels, s.cfg.Workspace),
	}, nil
}
