package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/snapclip-mcp/internal/camera"
	"github.com/ironsheep/snapclip-mcp/internal/canvas"
	"github.com/ironsheep/snapclip-mcp/internal/engine"
	snapimaging "github.com/ironsheep/snapclip-mcp/internal/imaging"
	"github.com/ironsheep/snapclip-mcp/internal/ocr"
)

// DefaultDownloadName is the file name used when exporting without a path.
const DefaultDownloadName = "snapclip.png"

// frameTimeout bounds frame acquisition and vision requests.
var frameTimeout = 90 * time.Second

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "snap_freeze_frame", "snap_pointer").
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
		s.debugf("tool %s failed: %v", params.Name, err)
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
	// Capture
	case "snap_freeze_frame":
		return s.handleFreezeFrame(args)
	case "snap_set_display":
		return s.handleSetDisplay(args)

	// Gesture
	case "snap_pointer":
		return s.handlePointer(args)
	case "snap_points":
		return s.handlePoints(args)

	// Lifecycle
	case "snap_reset":
		return s.Reset(), nil
	case "snap_reinitialize":
		return s.handleReinitialize(args)
	case "snap_state":
		return s.Status(), nil

	// Output
	case "snap_export":
		return s.handleExport(args)
	case "snap_ocr":
		return s.handleOCR(args)
	case "snap_detect_text_regions":
		return s.handleDetectTextRegions(args)
	case "snap_vision":
		return s.handleVision(args)

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Capture Handlers ===

type freezeFrameArgs struct {
	Path        string             `json:"path"`
	ImageBase64 string             `json:"image_base64"`
	Facing  string             `json:"facing"`
	Display *engine.DisplayBox `json:"display"`
	Refresh bool               `json:"refresh"`
}

type freezeFrameResult struct {
	engine.Status
	Frame *snapimaging.FrameInfo `json:"frame,omitempty"`
}

func (s *Server) handleFreezeFrame(args json.RawMessage) (interface{}, error) {
	var a freezeFrameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if (a.Path == "") == (a.ImageBase64 == "") {
		return nil, fmt.Errorf("exactly one of path or image_base64 is required")
	}
	facing := s.engine.Config().PreferredFacing
	if a.Facing != "" {
		f, err := camera.ParseFacing(a.Facing)
		if err != nil {
			return nil, err
		}
		facing = f
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source != nil {
		s.source.Stop()
	}
	var src camera.Source
	if a.Path != "" {
		if a.Refresh {
			s.cache.Evict(a.Path)
		}
		src = camera.NewFileSource(s.cache, a.Path, facing)
	} else {
		img, err := decodeFrame(a.ImageBase64)
		if err != nil {
			return nil, err
		}
		src = camera.StillSource{Image: img}
	}
	s.source = src

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	frame, err := src.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", camera.Describe(err), err)
	}

	size := frame.Bounds().Size()
	s.mount(size.X, size.Y)

	switch {
	case a.Display != nil:
		s.engine.SetDisplayBox(*a.Display)
		s.autoDisplay = false
	case s.autoDisplay || !s.hasDisplay():
		s.engine.SetDisplayBox(engine.DisplayBox{Width: float64(size.X), Height: float64(size.Y)})
		s.autoDisplay = true
	}

	s.engine.FreezeFrame(frame)

	// the captured picture is all we need from the device
	src.Stop()
	s.source = nil

	s.debugf("froze %dx%d frame (%s camera)", size.X, size.Y, facing)
	result := freezeFrameResult{Status: s.engine.Status()}
	if a.Path != "" {
		if info, err := snapimaging.LoadFrameInfo(s.cache, a.Path); err == nil {
			result.Frame = info
		}
	}
	return result, nil
}

// decodeFrame decodes a base64 image, with or without a data: URL prefix.
func decodeFrame(data string) (image.Image, error) {
	if i := strings.Index(data, ";base64,"); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid image_base64: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid image_base64: %w", err)
	}
	return img, nil
}

func (s *Server) hasDisplay() bool {
	_, ok := s.engine.DisplayBox()
	return ok
}

func (s *Server) handleSetDisplay(args json.RawMessage) (interface{}, error) {
	var box engine.DisplayBox
	if err := json.Unmarshal(args, &box); err != nil {
		return nil, err
	}
	if box.Width < 0 || box.Height < 0 {
		return nil, fmt.Errorf("display width and height must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetDisplayBox(box)
	s.autoDisplay = false
	return s.engine.Status(), nil
}

// === Gesture Handlers ===

type pointerArgs struct {
	Type    string           `json:"type"`
	ClientX float64          `json:"client_x"`
	ClientY float64          `json:"client_y"`
	Touches []engine.Contact `json:"touches"`
}

type pointerAction int

const (
	pointerDown pointerAction = iota
	pointerMove
	pointerUp
)

// parsePointerType maps DOM event names onto an action and input kind.
func parsePointerType(t string) (pointerAction, engine.InputKind, error) {
	switch strings.ToLower(t) {
	case "mousedown":
		return pointerDown, engine.Mouse, nil
	case "mousemove":
		return pointerMove, engine.Mouse, nil
	case "mouseup":
		return pointerUp, engine.Mouse, nil
	case "touchstart":
		return pointerDown, engine.Touch, nil
	case "touchmove":
		return pointerMove, engine.Touch, nil
	case "touchend":
		return pointerUp, engine.Touch, nil
	}
	return 0, 0, fmt.Errorf("unknown pointer event type %q", t)
}

func (s *Server) handlePointer(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	action, kind, err := parsePointerType(a.Type)
	if err != nil {
		return nil, err
	}
	ev := engine.PointerEvent{
		Kind:    kind,
		ClientX: a.ClientX,
		ClientY: a.ClientY,
		Touches: a.Touches,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch action {
	case pointerDown:
		s.engine.PointerDown(ev)
	case pointerMove:
		s.engine.PointerMove(ev)
	case pointerUp:
		s.engine.PointerUp(ev)
	}
	return s.engine.Status(), nil
}

type pointsResult struct {
	State  string         `json:"state"`
	Points engine.Polygon `json:"points"`
}

func (s *Server) handlePoints(args json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := s.engine.Points()
	if pts == nil {
		pts = engine.Polygon{}
	}
	return pointsResult{State: s.engine.State().String(), Points: pts}, nil
}

// === Lifecycle Handlers ===

func (s *Server) handleReinitialize(args json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != nil {
		s.source.Stop()
		s.source = nil
	}
	s.engine.Reinitialize()
	s.cache.Clear()
	return s.engine.Status(), nil
}

// === Output Handlers ===

type exportArgs struct {
	CropToContent bool    `json:"crop_to_content"`
	Scale         float64 `json:"scale"`
	Path          string  `json:"path"`
}

type exportResult struct {
	*snapimaging.ExportResult
	Path string `json:"path,omitempty"`
}

// export encodes the surface under the lock.
func (s *Server) export(opts snapimaging.ExportOptions) (*snapimaging.ExportResult, error) {
	s.mu.Lock()
	surface := s.engine.Surface()
	if opts.CropToContent && opts.Region.Empty() {
		opts.Region = s.engine.ClipBounds()
	}
	s.mu.Unlock()
	if surface == nil {
		return nil, engine.ErrNoSurface
	}
	return snapimaging.Export(surface, opts)
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.export(snapimaging.ExportOptions{CropToContent: a.CropToContent, Scale: a.Scale})
	if err != nil {
		return nil, err
	}

	out := exportResult{ExportResult: res}
	if a.Path != "" {
		path := a.Path
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, DefaultDownloadName)
		}
		if err := os.WriteFile(path, res.PNG, 0644); err != nil {
			return nil, fmt.Errorf("failed to write export: %w", err)
		}
		out.Path = path
	}
	return out, nil
}

type ocrArgs struct {
	Language      string  `json:"language"`
	CropToContent bool    `json:"crop_to_content"`
	Grayscale     bool    `json:"grayscale"`
	Contrast      float64 `json:"contrast"`
	Threshold     uint8   `json:"threshold"`
	Annotate      bool    `json:"annotate"`
	BoxColor      string  `json:"box_color"`
}

type ocrResult struct {
	*ocr.OCRResult
	AnnotatedBase64 string `json:"annotated_base64,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
}

func (s *Server) handleOCR(args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.export(snapimaging.ExportOptions{CropToContent: a.CropToContent})
	if err != nil {
		return nil, err
	}

	opts := s.ocrOptions(a.Language, ocr.PreprocessOptions{
		Grayscale: a.Grayscale,
		Contrast:  a.Contrast,
		Threshold: a.Threshold,
	})
	text, err := ocr.Recognize(res.PNG, opts)
	if err != nil {
		return nil, err
	}

	out := ocrResult{OCRResult: text}
	// report boxes in surface coordinates when the export was cropped
	for i := range out.Regions {
		out.Regions[i].Bounds = out.Regions[i].Bounds.Offset(res.OffsetX, res.OffsetY)
	}

	if a.Annotate {
		col, err := annotationColor(a.BoxColor)
		if err != nil {
			return nil, err
		}
		img, err := imaging.Decode(bytes.NewReader(res.PNG))
		if err != nil {
			return nil, fmt.Errorf("failed to decode export: %w", err)
		}
		local := make([]ocr.TextRegion, len(out.Regions))
		for i, r := range out.Regions {
			local[i] = r
			local[i].Bounds = r.Bounds.Offset(-res.OffsetX, -res.OffsetY)
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, ocr.AnnotateBoxes(img, local, col, 2), imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode annotation: %w", err)
		}
		out.AnnotatedBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
		out.MimeType = "image/png"
	}
	return out, nil
}

func annotationColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	return canvas.ParseColor(s)
}

type detectTextRegionsArgs struct {
	Language      string  `json:"language"`
	MinConfidence float64 `json:"min_confidence"`
	Method        string  `json:"method"` // tesseract | edges
}

func (s *Server) handleDetectTextRegions(args json.RawMessage) (interface{}, error) {
	var a detectTextRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MinConfidence == 0 {
		a.MinConfidence = 0.5
	}
	switch a.Method {
	case "", "tesseract":
		res, err := s.export(snapimaging.ExportOptions{})
		if err != nil {
			return nil, err
		}
		return ocr.DetectTextRegions(res.PNG, a.MinConfidence, s.ocrOptions(a.Language, ocr.PreprocessOptions{}))
	case "edges":
		s.mu.Lock()
		surface := s.engine.Surface()
		s.mu.Unlock()
		if surface == nil {
			return nil, engine.ErrNoSurface
		}
		return ocr.DetectTextRegionsByEdges(surface, a.MinConfidence), nil
	}
	return nil, fmt.Errorf("unknown detection method %q (want tesseract or edges)", a.Method)
}

type visionArgs struct {
	Prompt        string `json:"prompt"`
	CropToContent *bool  `json:"crop_to_content"`
}

func (s *Server) handleVision(args json.RawMessage) (interface{}, error) {
	var a visionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	crop := true
	if a.CropToContent != nil {
		crop = *a.CropToContent
	}
	res, err := s.export(snapimaging.ExportOptions{CropToContent: crop})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	return s.vision.Extract(ctx, res.DataURL(), a.Prompt)
}
