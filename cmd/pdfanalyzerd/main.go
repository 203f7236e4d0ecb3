package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/sultanMIB/pdf-ui/internal/async"
	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/export"
	"github.com/sultanMIB/pdf-ui/internal/ingest"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/pdf"
	"github.com/sultanMIB/pdf-ui/internal/pipeline"
	"github.com/sultanMIB/pdf-ui/internal/schema"
	"github.com/sultanMIB/pdf-ui/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	lex, err := lexicon.Load(cfg.Analysis.LexiconPath)
	if err != nil {
		logger.Error("failed to load lexicon", "path", cfg.Analysis.LexiconPath, "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limits := pipeline.DefaultLimits()
	limits.RawTextRunes = cfg.Analysis.RawTextLimit
	limits.Tables = cfg.Analysis.MaxTables
	limits.Entities = cfg.Analysis.MaxEntities

	processor := pipeline.New(logger, lex, pdf.Config{
		Normalization: cfg.Analysis.Normalization,
		IsolatePages:  cfg.Analysis.IsolatePages,
		ColumnGap:     cfg.Analysis.ColumnGap,
		MaxPages:      cfg.Analysis.MaxPages,
	}, pipeline.WithLimits(limits))

	queue := async.NewAnalysisQueue(processor, logger,
		async.WithWorkers(cfg.Analysis.Workers),
		async.WithQueueSize(cfg.Analysis.QueueSize),
		async.WithProcessTimeout(cfg.Analysis.Timeout),
	)
	stager := ingest.NewStager(cfg.Upload.Dir, logger)

	var httpOpts []server.HTTPOption
	if cfg.Server.ValidateResponses {
		compiled, err := schema.Compile(schema.ResultSchema(lex, limits))
		if err != nil {
			logger.Error("failed to compile result schema", "error", err)
			os.Exit(1)
		}
		httpOpts = append(httpOpts, server.WithResponseSchema(compiled))
	}
	httpSrv := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: server.NewHTTPServer(server.HTTPConfig{
			StaticDir:      cfg.Server.StaticDir,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			CORSOrigins:    cfg.Server.CORSOrigins,
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
		}, lex, queue, stager, export.NewService(logger), logger, httpOpts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("pdfanalyzerd http listening", "addr", cfg.Server.HTTPAddr, "static_dir", cfg.Server.StaticDir)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		// room for the largest accepted upload plus framing
		maxMsg := int(cfg.Server.MaxUploadBytes) + 64<<10
		grpcSrv, _ = server.NewGRPCServer(server.NewAnalyzerService(queue, stager, logger), logger,
			grpc.MaxRecvMsgSize(maxMsg),
			grpc.MaxSendMsgSize(maxMsg),
		)
		go func() {
			logger.Info("pdfanalyzerd grpc listening", "addr", cfg.Server.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	queue.Shutdown(shutdownCtx)
}

func newLogger(cfg common.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
