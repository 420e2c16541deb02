package research

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestWithTimeoutReturnsValueInTime(t *testing.T) {
	got := WithTimeout(context.Background(), time.Second, -1, func(context.Context) int {
		return 42
	})
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestWithTimeoutFallsBackOnExpiry(t *testing.T) {
	got := WithTimeout(context.Background(), 20*time.Millisecond, "fallback", func(ctx context.Context) string {
		<-ctx.Done()
		return "too late"
	})
	if got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestWithTimeoutZeroLimitRunsInline(t *testing.T) {
	got := WithTimeout(context.Background(), 0, "fallback", func(context.Context) string {
		return "ran"
	})
	if got != "ran" {
		t.Errorf("expected direct execution with no limit, got %q", got)
	}
}

// slowEnv blocks every operation until the context is cancelled.
type slowEnv struct {
	pageState
}

func (s *slowEnv) wait(ctx context.Context) (Result, error) {
	<-ctx.Done()
	return Result{}, ctx.Err()
}

func (s *slowEnv) Navigate(ctx context.Context, _ string) (Result, error) { return s.wait(ctx) }
func (s *slowEnv) Search(ctx context.Context, _ string) (Result, error)      { return s.wait(ctx) }
func (s *slowEnv) ExtractInfo(ctx context.Context, _ string) (Result, error) { return s.wait(ctx) }
func (s *slowEnv) FollowLink(ctx context.Context, _ string) (Result, error)  { return s.wait(ctx) }
func (s *slowEnv) ExecutePlan(ctx context.Context, _ string) (Result, error) { return s.wait(ctx) }

func TestTimeboundSubstitutesFailureResult(t *testing.T) {
	tb := NewTimebound(&slowEnv{}, 20*time.Millisecond)

	res, err := tb.Navigate(context.Background(), "https://slow.test")
	if err != nil {
		t.Fatalf("a timeout must not surface as an error, got %v", err)
	}
	if res.Success {
		t.Fatal("expected a failure-shaped result")
	}
	if !strings.Contains(res.ErrorMessage, "navigate timed out") {
		t.Errorf("expected the timeout named, got %q", res.ErrorMessage)
	}
	if !strings.Contains(res.ExtractedInfo, "could not be completed in time") {
		t.Errorf("expected guidance for the model, got %q", res.ExtractedInfo)
	}
}

func TestTimeboundPassesFastCalls(t *testing.T) {
	tb := NewTimebound(testSite(), time.Second)

	res, err := tb.Navigate(context.Background(), "https://go.dev")
	if err != nil || !res.Success {
		t.Fatalf("unexpected outcome: %+v, %v", res, err)
	}
}
