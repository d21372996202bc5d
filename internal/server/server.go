package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"sync"

	"github.com/ironsheep/snapclip-mcp/internal/camera"
	"github.com/ironsheep/snapclip-mcp/internal/canvas"
	"github.com/ironsheep/snapclip-mcp/internal/config"
	"github.com/ironsheep/snapclip-mcp/internal/engine"
	"github.com/ironsheep/snapclip-mcp/internal/imaging"
	"github.com/ironsheep/snapclip-mcp/internal/ocr"
	"github.com/ironsheep/snapclip-mcp/internal/vision"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Server handles MCP protocol communication
type Server struct {
	cfg    *config.Config
	cache  *imaging.FrameCache
	vision *vision.Client
	debug  bool

	// mu guards the engine and the camera source. Tool calls and the HTTP
	// side door both go through it.
	mu     sync.Mutex
	engine *engine.Engine
	source camera.Source

	// autoDisplay is set while the display box is the default one derived
	// from the frame size rather than one supplied by the client.
	autoDisplay bool
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server with an Idle engine and no surface. A nil cfg uses
// config.Default().
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Server{
		cfg:    cfg,
		cache:  imaging.NewFrameCache(),
		vision: cfg.VisionClient(),
		debug:  cfg.Debug(),
		engine: engine.New(nil, cfg.Engine()),
	}
}

// Run serves MCP over stdin and stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w
// until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Frames and exported images can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	s.stopSource()
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.debugf("request %v: %s", req.ID, req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "snapclip-mcp",
				"version": Version,
			},
		},
	}
}

func (s *Server) debugf(format string, args ...interface{}) {
	if s.debug {
		log.Printf("[debug] "+format, args...)
	}
}

// Status returns the engine summary.
func (s *Server) Status() engine.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Status()
}

// ExportPNG encodes the current surface.
func (s *Server) ExportPNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ExportPixels()
}

// Reset restores the snapshot and returns the new status.
func (s *Server) Reset() engine.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
	return s.engine.Status()
}

// mount gives the engine a surface of the given size, replacing the current
// one only when the size differs. A new surface starts Idle.
func (s *Server) mount(w, h int) {
	if s.engine.Size() == image.Pt(w, h) {
		return
	}
	s.debugf("mounting %dx%d surface", w, h)
	s.engine.Mount(canvas.NewRasterContext(w, h))
}

func (s *Server) stopSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != nil {
		s.source.Stop()
		s.source = nil
	}
}

// ocrOptions merges per-call settings over the configured OCR defaults.
func (s *Server) ocrOptions(language string, pre ocr.PreprocessOptions) ocr.Options {
	if language == "" {
		language = s.cfg.OCR.Language
	}
	return ocr.Options{
		Language:       language,
		TessdataPrefix: s.cfg.OCR.TessdataPrefix,
		Preprocess:     pre,
	}
}
