package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ironsheep/snapclip-mcp/internal/config"
	"github.com/ironsheep/snapclip-mcp/internal/httpapi"
	"github.com/ironsheep/snapclip-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("snapclip-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("snapclip-mcp - MCP server for freezing a camera frame and clipping it to a traced polygon")
			fmt.Println()
			fmt.Println("Usage: snapclip-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SNAPCLIP_CONFIG=<file>            YAML configuration file")
			fmt.Println("  SNAPCLIP_LOG_LEVEL=debug          Enable debug logging")
			fmt.Println("  SNAPCLIP_FACING=environment|user  Preferred camera")
			fmt.Println("  SNAPCLIP_ENABLE_TOUCH=true|false  Accept touch events")
			fmt.Println("  SNAPCLIP_PREVIEW_COLOR=green      Live stroke color")
			fmt.Println("  SNAPCLIP_PREVIEW_WIDTH=2          Live stroke width")
			fmt.Println("  SNAPCLIP_HTTP_ADDR=:8765          Serve /surface.png for download")
			fmt.Println("  SNAPCLIP_OCR_LANGUAGE=eng         Tesseract language")
			fmt.Println("  SNAPCLIP_VISION_URL=<url>         Chat completions endpoint")
			fmt.Println("  SNAPCLIP_VISION_MODEL=<model>     Vision model name")
			fmt.Println("  OPENAI_API_KEY=<key>              Vision API key")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Snapclip MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	server.Version = Version
	srv := server.New(cfg)

	if cfg.HTTP.Addr != "" {
		httpSrv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(srv, log.Default()),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("Serving surface on http://%s/surface.png", cfg.HTTP.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
			}
		}()
		defer httpSrv.Close()
	}

	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
