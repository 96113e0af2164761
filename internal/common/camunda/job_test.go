package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

var testSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["jobId"],
	"properties": {
		"jobId": {"type": "integer", "minimum": 1}
	}
}`)

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: variables}}
}

func TestDecode(t *testing.T) {
	var in struct {
		JobID int64 `json:"jobId"`
	}
	require.NoError(t, Decode(newJob(`{"jobId": 42}`), &in))
	assert.Equal(t, int64(42), in.JobID)

	err := Decode(newJob(`{"jobId": "forty"}`), &in)
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
}

func TestRunnerValidate(t *testing.T) {
	r := NewRunner("check-job-expiration", time.Second, testSchema, nil, logger.NewTestLogger(t))

	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{"valid", `{"jobId": 7}`, false},
		{"extra keys allowed", `{"jobId": 7, "processVar": "x"}`, false},
		{"missing", `{}`, true},
		{"zero id", `{"jobId": 0}`, true},
		{"not json", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(tt.variables)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}

	assert.NoError(t, NewRunner("x", time.Second, nil, nil, logger.NewTestLogger(t)).Validate(`{`))
}

func TestWithRetry(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := WithRetry(context.Background(), rc, "complete job", func(ctx context.Context) error {
		calls++
		return stderrors.New("NOT_FOUND: job 1 not activated")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent errors are not retried")

	calls = 0
	err = WithRetry(context.Background(), rc, "complete job", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return stderrors.New("rpc error: code = Unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

// recordingGateway captures the job commands the runner sends and the state
// of the context each one was sent on.
type recordingGateway struct {
	pb.GatewayClient

	completed, failed, thrown int
	ctxErrs                   []error
	failRetries               int32
	thrownCode                string
}

func (g *recordingGateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.completed++
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	return &pb.CompleteJobResponse{}, ctx.Err()
}

func (g *recordingGateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.failed++
	g.failRetries = in.Retries
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	return &pb.FailJobResponse{}, ctx.Err()
}

func (g *recordingGateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.thrown++
	g.thrownCode = in.ErrorCode
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	return &pb.ThrowErrorResponse{}, ctx.Err()
}

func noRetry(context.Context, error) bool { return false }

type gatewayJobClient struct {
	gateway *recordingGateway
}

func (c gatewayJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c gatewayJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c gatewayJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

func TestRunnerRun_ReportsAfterDeadline(t *testing.T) {
	tests := []struct {
		name        string
		retries     int32
		wantFailed  int
		wantThrown  int
		wantRetries int32
	}{
		{"retries left fails the job", 3, 1, 0, 2},
		{"last attempt throws", 1, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &recordingGateway{}
			r := NewRunner("check-job-expiration", 20*time.Millisecond, testSchema, nil, logger.NewTestLogger(t))

			job := newJob(`{"jobId": 7}`)
			job.Retries = tt.retries
			r.Run(gatewayJobClient{gateway: gw}, job, func(ctx context.Context, _ entities.Job) (interface{}, error) {
				<-ctx.Done()
				return nil, errors.NewQueryTimeoutError("get job")
			})

			assert.Equal(t, tt.wantFailed, gw.failed)
			assert.Equal(t, tt.wantThrown, gw.thrown)
			assert.Zero(t, gw.completed)
			if tt.wantFailed > 0 {
				assert.Equal(t, tt.wantRetries, gw.failRetries)
			}
			if tt.wantThrown > 0 {
				assert.Equal(t, "QUERY_TIMEOUT", gw.thrownCode)
			}
			for _, err := range gw.ctxErrs {
				assert.NoError(t, err, "command sent on an expired context")
			}
		})
	}
}

func TestRunnerRun_CompletesAfterDeadline(t *testing.T) {
	gw := &recordingGateway{}
	r := NewRunner("send-notification", 10*time.Millisecond, nil, nil, logger.NewTestLogger(t))

	r.Run(gatewayJobClient{gateway: gw}, newJob(`{}`), func(ctx context.Context, _ entities.Job) (interface{}, error) {
		<-ctx.Done()
		return map[string]interface{}{"status": "sent"}, nil
	})

	assert.Equal(t, 1, gw.completed)
	require.Len(t, gw.ctxErrs, 1)
	assert.NoError(t, gw.ctxErrs[0])
}
