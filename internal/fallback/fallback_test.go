package fallback

import (
	"context"
	"errors"
	"testing"
)

func constant(name string, v int, err error, calls *[]string) Strategy[int] {
	return Strategy[int]{
		Name: name,
		Call: func(ctx context.Context) (int, error) {
			*calls = append(*calls, name)
			return v, err
		},
	}
}

func TestRun_FirstSuccessWins(t *testing.T) {
	var calls []string
	strategies := []Strategy[int]{
		constant("a", 1, nil, &calls),
		constant("b", 2, nil, &calls),
	}

	v, name, err := Run(context.Background(), strategies, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 || name != "a" {
		t.Errorf("got %d from %s, want 1 from a", v, name)
	}
	if len(calls) != 1 {
		t.Errorf("expected 1 call, got %v", calls)
	}
}

func TestRun_FallsThroughInOrder(t *testing.T) {
	var calls []string
	var failures []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	strategies := []Strategy[int]{
		constant("a", 0, errA, &calls),
		constant("b", 0, errB, &calls),
		constant("c", 3, nil, &calls),
		constant("d", 4, nil, &calls),
	}

	v, name, err := Run(context.Background(), strategies, func(name string, err error) {
		failures = append(failures, name)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 || name != "c" {
		t.Errorf("got %d from %s, want 3 from c", v, name)
	}
	if len(calls) != 3 || calls[0] != "a" || calls[1] != "b" || calls[2] != "c" {
		t.Errorf("unexpected call order %v", calls)
	}
	if len(failures) != 2 {
		t.Errorf("expected 2 failures, got %v", failures)
	}
}

func TestRun_AllFailReturnsLastError(t *testing.T) {
	var calls []string
	errLast := errors.New("last")
	strategies := []Strategy[int]{
		constant("a", 0, errors.New("first"), &calls),
		constant("b", 0, errLast, &calls),
	}

	_, name, err := Run(context.Background(), strategies, nil)
	if !errors.Is(err, errLast) {
		t.Errorf("expected last error, got %v", err)
	}
	if name != "" {
		t.Errorf("expected empty name, got %s", name)
	}
}

func TestRun_NoStrategies(t *testing.T) {
	_, _, err := Run[int](context.Background(), nil, nil)
	if !errors.Is(err, ErrNoStrategies) {
		t.Errorf("expected ErrNoStrategies, got %v", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, []Strategy[int]{constant("a", 1, nil, &calls)}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("no strategy should run on a cancelled context, got %v", calls)
	}
}

func TestRun_CancelAfterFailureKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errA := errors.New("a failed")
	strategies := []Strategy[int]{
		{Name: "a", Call: func(context.Context) (int, error) {
			cancel()
			return 0, errA
		}},
		{Name: "b", Call: func(context.Context) (int, error) {
			t.Error("b should not run after cancellation")
			return 2, nil
		}},
	}

	_, _, err := Run(ctx, strategies, nil)
	if !errors.Is(err, errA) {
		t.Errorf("expected a's error, got %v", err)
	}
}
