package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/ingest"
)

func dialBufconn(t *testing.T, sub Submitter) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	stager := ingest.NewStager(filepath.Join(t.TempDir(), "uploads"), nil)
	srv, _ := NewGRPCServer(NewAnalyzerService(sub, stager, nil), nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPC_Analyze(t *testing.T) {
	sub := &fakeSubmitter{res: okResult()}
	conn := dialBufconn(t, sub)

	res, err := AnalyzeRemote(context.Background(), conn, []byte("%PDF-1.4 remote"))
	require.NoError(t, err)

	want := okResult()
	assert.True(t, res.Success)
	assert.Equal(t, want.Metadata, res.Metadata)
	assert.Equal(t, want.RawText, res.RawText)
	assert.Equal(t, want.Tables, res.Tables)
	assert.Equal(t, want.SemanticAnalysis.DocumentType, res.SemanticAnalysis.DocumentType)
	assert.Empty(t, res.Entities)

	require.Len(t, sub.seen, 1)
	assert.Equal(t, []byte("%PDF-1.4 remote"), sub.seen[0])
}

func TestGRPC_EmptyPayload(t *testing.T) {
	conn := dialBufconn(t, &fakeSubmitter{res: okResult()})

	_, err := AnalyzeRemote(context.Background(), conn, nil)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_SubmitErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrTimeout, codes.DeadlineExceeded},
		{common.ErrQueueClosed, codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			conn := dialBufconn(t, &fakeSubmitter{err: tt.err})
			_, err := AnalyzeRemote(context.Background(), conn, []byte("%PDF"))
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGRPC_Health(t *testing.T) {
	conn := dialBufconn(t, &fakeSubmitter{})
	client := grpc_health_v1.NewHealthClient(conn)

	for _, svc := range []string{"", AnalyzerServiceName} {
		resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestResultStructRoundTrip(t *testing.T) {
	st, err := ResultToStruct(okResult())
	require.NoError(t, err)
	assert.Contains(t, st.AsMap(), "basicInfo")

	back, err := StructToResult(st)
	require.NoError(t, err)
	assert.Equal(t, okResult().ProcessingTime, back.ProcessingTime)
}
