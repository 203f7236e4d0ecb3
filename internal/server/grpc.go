package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/ingest"
)

const (
	AnalyzerServiceName = "pdfanalyzer.v1.AnalyzerService"
	analyzeMethod       = "/" + AnalyzerServiceName + "/Analyze"
	requestIDMetadata   = "x-request-id"
)

// AnalyzerServer takes raw PDF bytes and answers with the analysis record
// as a Struct shaped like the HTTP JSON body.
type AnalyzerServer interface {
	Analyze(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error)
}

// AnalyzerServiceDesc describes the service without generated stubs; the
// request and response are well-known types.
var AnalyzerServiceDesc = grpc.ServiceDesc{
	ServiceName: AnalyzerServiceName,
	HandlerType: (*AnalyzerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: analyzeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pdfanalyzer/v1/analyzer.proto",
}

func analyzeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyzerServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: analyzeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AnalyzerServer).Analyze(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterAnalyzerServer(s grpc.ServiceRegistrar, srv AnalyzerServer) {
	s.RegisterService(&AnalyzerServiceDesc, srv)
}

// AnalyzerService is the gRPC counterpart of POST /analyze.
type AnalyzerService struct {
	analyzer Submitter
	stager   *ingest.Stager
	logger   *slog.Logger
}

func NewAnalyzerService(analyzer Submitter, stager *ingest.Stager, logger *slog.Logger) *AnalyzerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzerService{analyzer: analyzer, stager: stager, logger: logger}
}

func (s *AnalyzerService) Analyze(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	log := common.LoggerFrom(ctx, s.logger)
	if len(in.GetValue()) == 0 {
		return nil, common.InvalidArgumentError("pdf payload is required")
	}

	path, cleanup, err := s.stager.Stage(ctx, in.GetValue())
	if err != nil {
		log.Error("grpc.analyze.stage_failed", "err", err)
		return nil, common.InternalErrorf("stage upload: %v", err)
	}
	defer cleanup()

	res, err := s.analyzer.Submit(ctx, path)
	if err != nil {
		log.Error("grpc.analyze.failed", "err", err)
		return nil, common.ToStatus(err)
	}
	out, err := ResultToStruct(res)
	if err != nil {
		log.Error("grpc.analyze.encode_failed", "err", err)
		return nil, common.InternalErrorf("encode result: %v", err)
	}
	log.Info("grpc.analyze.ok", "success", res.Success, "bytes", len(in.GetValue()))
	return out, nil
}

// ResultToStruct converts the JSON form of res into a Struct.
func ResultToStruct(res entity.AnalysisResult) (*structpb.Struct, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// StructToResult is the inverse of ResultToStruct.
func StructToResult(st *structpb.Struct) (entity.AnalysisResult, error) {
	var res entity.AnalysisResult
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(b, &res); err != nil {
		return res, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}

// requestIDInterceptor tags the context with the caller's x-request-id, or a
// new one, and logs each call.
func requestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDMetadata); len(vals) > 0 {
				id = vals[0]
			}
		}
		if id == "" {
			id = newRequestID()
		}
		ctx = common.WithRequestID(ctx, id)
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc.call.failed", "method", info.FullMethod, "request_id", id, "err", err)
		} else {
			logger.Debug("grpc.call.ok", "method", info.FullMethod, "request_id", id)
		}
		return resp, err
	}
}

// NewGRPCServer builds a server with the analyzer, health and reflection
// services registered. The health status starts as SERVING.
func NewGRPCServer(svc AnalyzerServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(requestIDInterceptor(logger)))
	s := grpc.NewServer(opts...)
	RegisterAnalyzerServer(s, svc)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(AnalyzerServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(s)
	return s, hs
}

// AnalyzeRemote sends data to a running analyzer over conn.
func AnalyzeRemote(ctx context.Context, conn grpc.ClientConnInterface, data []byte) (entity.AnalysisResult, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, analyzeMethod, wrapperspb.Bytes(data), out); err != nil {
		return entity.AnalysisResult{}, err
	}
	return StructToResult(out)
}
