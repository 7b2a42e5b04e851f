package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/binding"
	"github.com/jonwraymond/toolscript/ops"
	"github.com/jonwraymond/toolscript/runner"
)

func (c *cli) serveCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	poolSize := fs.Int("pool", c.cfg.PoolSize, "number of script sessions")
	metricsAddr := fs.String("metrics", c.cfg.MetricsAddr, "listen address for /metrics and /healthz; empty disables")
	timeout := fs.Duration("timeout", c.cfg.Timeout, "abort a run after this long; 0 means no limit")
	opsFlag := fs.String("ops", strings.Join(c.cfg.HostOps, ","), "comma-separated host op groups")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := runner.NewMetrics(reg)

	b, err := c.builder(strings.Split(*opsFlag, ","), metrics)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}
	pool, err := runner.NewPool(b, *poolSize)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer func() { _ = pool.Close() }()

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           newMetricsRouter(reg, pool),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			c.logger.Info("metrics listening", zap.String("addr", *metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	server := newMCPServer(pool, *timeout, c.logger)
	c.logger.Info("serving MCP over stdio", zap.Int("pool", *poolSize))
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// newMetricsRouter serves Prometheus metrics and pool health.
func newMetricsRouter(reg *prometheus.Registry, pool *runner.Pool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		stats := pool.Stats()
		status := http.StatusOK
		if stats.Closed {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})
	return router
}

type runScriptInput struct {
	Body string         `json:"body" jsonschema:"JavaScript to run; the value of the last expression is returned"`
	Vars map[string]any `json:"vars,omitempty" jsonschema:"values bound as constants, keyed by variable name"`
}

type consoleLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type runScriptOutput struct {
	Value      string        `json:"value"`
	Console    []consoleLine `json:"console,omitempty"`
	OpCalls    []string      `json:"opCalls,omitempty"`
	SessionID  string        `json:"sessionId"`
	DurationMs int64         `json:"durationMs"`
}

type searchOpsInput struct {
	Query string `json:"query" jsonschema:"free-text search over op names, descriptions and tags"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

type searchOpsOutput struct {
	Ops []ops.Summary `json:"ops"`
}

type describeOpInput struct {
	Name string `json:"name" jsonschema:"op name"`
}

// mcpHandler serves MCP tool calls from a runner pool.
type mcpHandler struct {
	pool    *runner.Pool
	timeout time.Duration
	logger  *zap.Logger
}

// newMCPServer exposes run_script, search_ops and describe_op. Handler
// errors are reported to the client as tool errors.
func newMCPServer(pool *runner.Pool, timeout time.Duration, logger *zap.Logger) *mcp.Server {
	h := &mcpHandler{pool: pool, timeout: timeout, logger: logger}
	server := mcp.NewServer(&mcp.Implementation{Name: "toolscript", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "run_script",
		Description: "Run a JavaScript snippet. Host ops are available as global functions " +
			"and through ops.call; vars are bound as constants. Returns the rendered value " +
			"of the last expression.",
	}, h.runScript)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_ops",
		Description: "Search the host ops available to run_script.",
	}, h.searchOps)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_op",
		Description: "Show the signature and documentation of one host op.",
	}, h.describeOp)
	return server
}

func (h *mcpHandler) runScript(ctx context.Context, _ *mcp.CallToolRequest, in runScriptInput) (*mcp.CallToolResult, runScriptOutput, error) {
	runCtx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.pool.Execute(runCtx, runner.Request{Body: in.Body, Bindings: binding.FromMap(in.Vars)})
	if err != nil {
		h.logger.Debug("run_script failed", zap.Error(err))
		return nil, runScriptOutput{}, err
	}

	out := runScriptOutput{
		Value:      res.Value,
		SessionID:  res.SessionID,
		DurationMs: res.Duration.Milliseconds(),
	}
	for _, e := range res.Console {
		out.Console = append(out.Console, consoleLine{Level: e.Level, Message: e.Message})
	}
	for _, c := range res.OpCalls {
		out.OpCalls = append(out.OpCalls, c.Op)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Value}},
	}, out, nil
}

func (h *mcpHandler) searchOps(ctx context.Context, _ *mcp.CallToolRequest, in searchOpsInput) (*mcp.CallToolResult, searchOpsOutput, error) {
	r, err := h.pool.Acquire(ctx)
	if err != nil {
		return nil, searchOpsOutput{}, err
	}
	defer func() { _ = h.pool.Release(r) }()

	hits, err := r.Ops().Search(in.Query, in.Limit)
	if err != nil {
		return nil, searchOpsOutput{}, err
	}
	if hits == nil {
		hits = []ops.Summary{}
	}
	names := make([]string, len(hits))
	for i, hit := range hits {
		names[i] = hit.Name
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: strings.Join(names, "\n")}},
	}, searchOpsOutput{Ops: hits}, nil
}

func (h *mcpHandler) describeOp(ctx context.Context, _ *mcp.CallToolRequest, in describeOpInput) (*mcp.CallToolResult, ops.Doc, error) {
	r, err := h.pool.Acquire(ctx)
	if err != nil {
		return nil, ops.Doc{}, err
	}
	defer func() { _ = h.pool.Release(r) }()

	doc, err := r.Ops().Describe(in.Name)
	if err != nil {
		return nil, ops.Doc{}, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: doc.Signature + "\n" + doc.Description}},
	}, doc, nil
}
