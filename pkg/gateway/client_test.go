package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/storagegateway"
	"github.com/aws/smithy-go"
)

// fakeAPI lets each test script the underlying service behavior.
type fakeAPI struct {
	listTapes         func(*storagegateway.ListTapesInput) (*storagegateway.ListTapesOutput, error)
	listGateways      func(*storagegateway.ListGatewaysInput) (*storagegateway.ListGatewaysOutput, error)
	describeTapes     func(*storagegateway.DescribeTapesInput) (*storagegateway.DescribeTapesOutput, error)
	deleteTape        func(*storagegateway.DeleteTapeInput) (*storagegateway.DeleteTapeOutput, error)
	deleteTapeArchive func(*storagegateway.DeleteTapeArchiveInput) (*storagegateway.DeleteTapeArchiveOutput, error)
}

func (f *fakeAPI) ListTapes(ctx context.Context, params *storagegateway.ListTapesInput, optFns ...func(*storagegateway.Options)) (*storagegateway.ListTapesOutput, error) {
	if f.listTapes == nil {
		return &storagegateway.ListTapesOutput{}, nil
	}
	return f.listTapes(params)
}

func (f *fakeAPI) ListGateways(ctx context.Context, params *storagegateway.ListGatewaysInput, optFns ...func(*storagegateway.Options)) (*storagegateway.ListGatewaysOutput, error) {
	if f.listGateways == nil {
		return &storagegateway.ListGatewaysOutput{}, nil
	}
	return f.listGateways(params)
}

func (f *fakeAPI) DescribeTapes(ctx context.Context, params *storagegateway.DescribeTapesInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DescribeTapesOutput, error) {
	if f.describeTapes == nil {
		return &storagegateway.DescribeTapesOutput{}, nil
	}
	return f.describeTapes(params)
}

func (f *fakeAPI) DeleteTape(ctx context.Context, params *storagegateway.DeleteTapeInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DeleteTapeOutput, error) {
	if f.deleteTape == nil {
		return &storagegateway.DeleteTapeOutput{}, nil
	}
	return f.deleteTape(params)
}

func (f *fakeAPI) DeleteTapeArchive(ctx context.Context, params *storagegateway.DeleteTapeArchiveInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DeleteTapeArchiveOutput, error) {
	if f.deleteTapeArchive == nil {
		return &storagegateway.DeleteTapeArchiveOutput{}, nil
	}
	return f.deleteTapeArchive(params)
}

// recordingObserver captures the per-call trace.
type recordingObserver struct {
	operations []string
	attempts   []int
	errs       []error
}

func (o *recordingObserver) ObserveCall(operation string, attempts int, err error) {
	o.operations = append(o.operations, operation)
	o.attempts = append(o.attempts, attempts)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) ObserveResolutionProbe(hit bool) {}

// testPolicy removes real time from the retry loop: no jitter, no sleep,
// but every requested delay is recorded.
func testPolicy(maxAttempts int, sleeps *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      func(d time.Duration) time.Duration { return d },
		Sleep: func(ctx context.Context, d time.Duration) error {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			return nil
		},
	}
}

func throttled() error {
	return &smithy.GenericAPIError{Code: "ThrottlingException", Message: "rate exceeded"}
}

func TestClientRetriesThrottlingThenSucceeds(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		listTapes: func(*storagegateway.ListTapesInput) (*storagegateway.ListTapesOutput, error) {
			calls++
			if calls < 3 {
				return nil, throttled()
			}
			return &storagegateway.ListTapesOutput{}, nil
		},
	}

	var sleeps []time.Duration
	obs := &recordingObserver{}
	client := NewClient(api, testPolicy(5, &sleeps), nil, obs)

	_, err := client.ListTapes(context.Background(), &storagegateway.ListTapesInput{})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	// Exponential backoff: 2s before the second try, 4s before the third.
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), sleeps)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, sleeps[i], want[i])
		}
	}

	if len(obs.attempts) != 1 || obs.attempts[0] != 3 {
		t.Errorf("expected one observed call with 3 attempts, got %v", obs.attempts)
	}
	if obs.errs[0] != nil {
		t.Errorf("expected observed success, got %v", obs.errs[0])
	}
}

func TestClientExhaustsRetryBudget(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		listTapes: func(*storagegateway.ListTapesInput) (*storagegateway.ListTapesOutput, error) {
			calls++
			return nil, throttled()
		},
	}

	var sleeps []time.Duration
	client := NewClient(api, testPolicy(5, &sleeps), nil, nil)

	_, err := client.ListTapes(context.Background(), &storagegateway.ListTapesInput{})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var te *ThrottledError
	if !errors.As(err, &te) {
		t.Fatalf("expected ThrottledError, got %T: %v", err, err)
	}
	if te.Attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", te.Attempts)
	}
	if calls != 5 {
		t.Errorf("expected 5 calls, got %d", calls)
	}
	if len(sleeps) != 4 {
		t.Errorf("expected 4 backoff sleeps, got %d", len(sleeps))
	}
}

func TestClientDoesNotRetryTerminalErrors(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		deleteTape: func(*storagegateway.DeleteTapeInput) (*storagegateway.DeleteTapeOutput, error) {
			calls++
			return nil, &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"}
		},
	}

	client := NewClient(api, testPolicy(5, nil), nil, nil)

	_, err := client.DeleteTape(context.Background(), &storagegateway.DeleteTapeInput{
		GatewayARN: aws.String("arn:aws:storagegateway:us-east-1:123456789012:gateway/sgw-1"),
		TapeARN:    aws.String("arn:aws:storagegateway:us-east-1:123456789012:tape/VTL001"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call for a terminal error, got %d", calls)
	}
	if !IsPermissionError(err) {
		t.Errorf("expected PermissionError, got %T: %v", err, err)
	}
}

func TestClientStopsWhenContextCanceledDuringBackoff(t *testing.T) {
	api := &fakeAPI{
		listTapes: func(*storagegateway.ListTapesInput) (*storagegateway.ListTapesOutput, error) {
			return nil, throttled()
		},
	}

	policy := testPolicy(5, nil)
	policy.Sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	client := NewClient(api, policy, nil, nil)

	_, err := client.ListTapes(context.Background(), &storagegateway.ListTapesInput{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetryDelayCapping(t *testing.T) {
	p := RetryPolicy{
		BaseDelay: 2 * time.Second,
		MaxDelay:  30 * time.Second,
		Jitter:    func(d time.Duration) time.Duration { return d },
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // 32s capped
		{6, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := p.delay(tt.attempt); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDefaultJitterBounds(t *testing.T) {
	p := RetryPolicy{}
	d := 8 * time.Second
	for i := 0; i < 100; i++ {
		j := p.jitter(d)
		if j < d/2 || j > d {
			t.Fatalf("jitter out of [d/2, d] bounds: %v", j)
		}
	}
}
