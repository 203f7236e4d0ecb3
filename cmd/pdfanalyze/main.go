package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/schollz/progressbar/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/export"
	"github.com/sultanMIB/pdf-ui/internal/ingest"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/pdf"
	"github.com/sultanMIB/pdf-ui/internal/pipeline"
	"github.com/sultanMIB/pdf-ui/internal/schema"
	"github.com/sultanMIB/pdf-ui/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

const maxRemoteMsg = 64 << 20

type analyzeFunc func(ctx context.Context, path string, data []byte) (entity.AnalysisResult, error)

type outcome struct {
	File   string                `json:"file"`
	Result entity.AnalysisResult `json:"result"`
	err    error
}

func main() {
	var (
		jsonOut  = flag.Bool("json", false, "print results as JSON instead of a summary")
		xlsxDir  = flag.String("xlsx", "", "write the tables of each file to <dir>/<name>-tables.xlsx")
		validate = flag.Bool("validate", false, "check every result against the result schema")
		remote   = flag.String("remote", "", "gRPC address of a pdfanalyzerd to analyze with instead of in-process")
		lexPath  = flag.String("lexicon", "", "YAML lexicon overriding the built-in labels and vocabularies")
		verbose  = flag.Bool("v", false, "debug logging on stderr")
	)
	flag.Usage = func() {
		printError("usage: pdfanalyze [flags] <file.pdf|dir>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	lex, err := lexicon.Load(*lexPath)
	if err != nil {
		printError("Error: load lexicon: %v\n", err)
		os.Exit(1)
	}

	files, err := ingest.CollectPDFs(flag.Args(), true)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var analyze analyzeFunc
	if *remote != "" {
		conn, err := grpc.NewClient(*remote,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(maxRemoteMsg), grpc.MaxCallRecvMsgSize(maxRemoteMsg)),
		)
		if err != nil {
			printError("Error: connect %s: %v\n", *remote, err)
			os.Exit(1)
		}
		defer func() { _ = conn.Close() }()
		analyze = remoteAnalyzer(conn)
	} else {
		analyze = localAnalyzer(pipeline.New(logger, lex, pdf.DefaultConfig()))
	}

	var compiled *jsonschema.Schema
	if *validate {
		compiled, err = schema.Compile(schema.ResultSchema(lex, pipeline.DefaultLimits()))
		if err != nil {
			printError("Error: compile schema: %v\n", err)
			os.Exit(1)
		}
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(color.BlueString("analyzing")),
			progressbar.OptionShowCount(),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
		)
	}

	exporter := export.NewService(logger)
	outcomes := make([]outcome, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		o := analyzeOne(ctx, lex, analyze, path)
		if o.err == nil && compiled != nil {
			o.err = validateResult(compiled, o.Result)
		}
		if o.err == nil && *xlsxDir != "" && o.Result.Success {
			o.err = writeTables(ctx, exporter, *xlsxDir, path, o.Result.Tables)
		}
		outcomes = append(outcomes, o)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	failed := 0
	for _, o := range outcomes {
		if o.err != nil || !o.Result.Success {
			failed++
		}
	}

	if *jsonOut {
		if err := printJSON(outcomes); err != nil {
			printError("Error: encode results: %v\n", err)
			os.Exit(1)
		}
	} else {
		for _, o := range outcomes {
			printSummary(o)
		}
		fmt.Println()
		color.New(color.Bold).Printf("%d file(s), %d ok, %d failed\n", len(outcomes), len(outcomes)-failed, failed)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func localAnalyzer(p *pipeline.Processor) analyzeFunc {
	return func(ctx context.Context, _ string, data []byte) (entity.AnalysisResult, error) {
		return p.Analyze(ctx, data), nil
	}
}

func remoteAnalyzer(conn grpc.ClientConnInterface) analyzeFunc {
	return func(ctx context.Context, _ string, data []byte) (entity.AnalysisResult, error) {
		if id := common.RequestIDFromContext(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", id)
		}
		return server.AnalyzeRemote(ctx, conn, data)
	}
}

// analyzeOne applies the same upload checks as the HTTP endpoint before
// running the analysis.
func analyzeOne(ctx context.Context, lex *lexicon.Lexicon, analyze analyzeFunc, path string) outcome {
	o := outcome{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		o.err = err
		return o
	}
	if err := ingest.ValidateUpload(ingest.Upload{Present: true, Filename: filepath.Base(path), Data: data}); err != nil {
		o.Result = entity.Failure(server.UploadMessage(lex, err))
		return o
	}
	ctx = common.WithFilename(common.WithRequestID(ctx, uuid.NewString()), filepath.Base(path))
	o.Result, o.err = analyze(ctx, path, data)
	return o
}

func validateResult(compiled *jsonschema.Schema, res entity.AnalysisResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := schema.ValidateJSON(compiled, b); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func writeTables(ctx context.Context, exporter *export.Service, dir, path string, tables []entity.Table) error {
	b, err := exporter.TablesXLSX(ctx, tables)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return os.WriteFile(filepath.Join(dir, base+"-tables.xlsx"), b, 0o644)
}

// printJSON prints a single result as is and several as {file, result} lines.
func printJSON(outcomes []outcome) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if len(outcomes) == 1 && outcomes[0].err == nil {
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes[0].Result)
	}
	for _, o := range outcomes {
		if o.err != nil {
			o.Result = entity.Failure(o.err.Error())
		}
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(o outcome) {
	switch {
	case o.err != nil:
		color.Red("✗ %s: %v", o.File, o.err)
		return
	case !o.Result.Success:
		color.Red("✗ %s: %s", o.File, o.Result.Error)
		return
	}
	r := o.Result
	color.Green("✓ %s", o.File)
	fmt.Printf("  pages: %d  size: %s KB  title: %s  author: %s\n",
		r.Metadata.PageCount, r.Metadata.FileSizeKB, r.Metadata.Title, r.Metadata.Author)
	fmt.Printf("  type: %s  language: %s  tables: %d  entities: %d\n",
		r.SemanticAnalysis.DocumentType, r.SemanticAnalysis.Language, len(r.Tables), len(r.Entities))
	if len(r.SemanticAnalysis.Topics) > 0 {
		color.Cyan("  topics: %s", strings.Join(r.SemanticAnalysis.Topics, "، "))
	}
}
