// Package mcpserver exposes the VM operations as MCP tools over stdio or
// streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Bibi40k/vsphere-mcp/configs"
	"github.com/Bibi40k/vsphere-mcp/pkg/vcenter"
	"github.com/Bibi40k/vsphere-mcp/pkg/vmops"
)

// Operations is the set of VM operations served as tools.
type Operations interface {
	ListVMs(ctx context.Context) ([]string, error)
	FindVMByMAC(ctx context.Context, mac string) (string, error)
	CreateVM(ctx context.Context, req vmops.CreateRequest) (string, error)
	CloneVM(ctx context.Context, template, newName string) (string, error)
	DeleteVM(ctx context.Context, name string) (string, error)
	PowerOn(ctx context.Context, name string) (string, error)
	PowerOff(ctx context.Context, name string) (string, error)
	GetVMStats(ctx context.Context, name string) (*vmops.VMStats, error)
	ListDatastores(ctx context.Context) ([]vcenter.DatastoreInfo, error)
	ListNetworks(ctx context.Context) ([]vcenter.NetworkInfo, error)
}

var _ Operations = (*vmops.Manager)(nil)

// Options configure a Server. Zero values fall back to configs.Defaults.
type Options struct {
	Name    string
	Version string
	Logger  *slog.Logger
}

// Server wraps an MCP server with the VM tools registered.
type Server struct {
	ops Operations
	mcp *server.MCPServer
	log *slog.Logger
}

// New creates a Server and registers every tool.
func New(ops Operations, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = configs.Defaults.Server.Name
	}
	if opts.Version == "" {
		opts.Version = configs.Defaults.Server.Version
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{ops: ops, log: log}
	s.mcp = server.NewMCPServer(opts.Name, opts.Version,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(s.logCalls),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// logCalls tags each tool call with a request ID and logs its outcome.
// Handler panics are turned into errors by the recovery middleware, which
// runs inside this one.
func (s *Server) logCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := s.log.With("request_id", uuid.NewString(), "tool", req.Params.Name)
		start := time.Now()
		log.Debug("Tool call started")

		res, err := next(ctx, req)

		elapsed := time.Since(start)
		switch {
		case err != nil:
			log.Error("Tool call failed", "elapsed", elapsed, "error", err)
		case res != nil && res.IsError:
			log.Warn("Tool call returned error", "elapsed", elapsed, "message", resultText(res))
		default:
			log.Info("Tool call completed", "elapsed", elapsed)
		}
		return res, err
	}
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until ctx is done
// or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))

	s.log.Info("Serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// HTTPOptions configure the streamable HTTP transport.
type HTTPOptions struct {
	Addr            string
	EndpointPath    string
	ShutdownTimeout time.Duration
}

// Handler returns the streamable HTTP handler mounted at path.
func (s *Server) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(path)))
	return mux
}

// ServeHTTP serves streamable HTTP on opts.Addr until ctx is done, then
// shuts down gracefully within opts.ShutdownTimeout.
func (s *Server) ServeHTTP(ctx context.Context, opts HTTPOptions) error {
	if opts.EndpointPath == "" {
		opts.EndpointPath = configs.Defaults.Server.EndpointPath
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = configs.Defaults.Server.ShutdownTimeout()
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	return s.serveListener(ctx, ln, opts)
}

func (s *Server) serveListener(ctx context.Context, ln net.Listener, opts HTTPOptions) error {
	srv := &http.Server{
		Handler:           s.Handler(opts.EndpointPath),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Serving MCP over streamable HTTP", "addr", ln.Addr().String(), "path", opts.EndpointPath)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http transport: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down MCP HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http transport: %w", err)
	}
	return nil
}

func resultText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			return tc.Text
		}
	}
	return ""
}
