package common

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastCfg() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Nanosecond, MaxDelay: time.Nanosecond}
}

func TestRetry_SucceedsAfterTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), nil, fastCfg(), "op", func() error {
		calls++
		if calls < 3 {
			return Transient(errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), nil, fastCfg(), "op", func() error {
		calls++
		return ErrValidation
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_ExhaustionReturnsLastError(t *testing.T) {
	last := Transient(errors.New("still down"))
	calls := 0
	err := Retry(context.Background(), nil, fastCfg(), "op", func() error {
		calls++
		return last
	})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ContextCancelStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, nil, RetryConfig{MaxAttempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}, "op", func() error {
		return Transient(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsTransientClassification(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
	if !IsTransient(Transient(errors.New("x"))) {
		t.Error("wrapped transient not recognized")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be transient")
	}
	if IsTransient(ErrValidation) {
		t.Error("validation error classified transient")
	}
	if !IsPermanent(ErrUnsupportedFormat) || !IsPermanent(ErrValidation) || !IsPermanent(ErrInvalidInput) {
		t.Error("permanent classification broken")
	}
	if IsPermanent(Transient(errors.New("x"))) {
		t.Error("transient classified permanent")
	}
}

func TestAppError_UnwrapAndMessage(t *testing.T) {
	err := NewAppError("UPLOAD_FAILED", "cannot store file", ErrInvalidInput)
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("cause not unwrapped")
	}
	if got := err.Error(); got != "UPLOAD_FAILED: cannot store file: invalid input" {
		t.Errorf("Error() = %q", got)
	}
	bare := NewAppError("X", "y", nil)
	if got := bare.Error(); got != "X: y" {
		t.Errorf("Error() = %q", got)
	}
}
