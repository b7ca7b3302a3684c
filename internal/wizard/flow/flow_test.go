package flow

import (
	"context"
	"errors"
	"testing"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
)

type trace struct {
	ran []string
}

func record(name string, err error) *Step[trace] {
	return NewStep(name, func(ctx context.Context, s *trace) error {
		s.ran = append(s.ran, name)
		return err
	})
}

func TestEngine_RunsStepsInOrder(t *testing.T) {
	e := NewEngine(logger.Discard(), New("submit", record("a", nil), record("b", nil), record("c", nil)))

	var s trace
	if err := e.Run(context.Background(), "submit", &s); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := len(s.ran); got != 3 || s.ran[0] != "a" || s.ran[2] != "c" {
		t.Errorf("ran = %v", s.ran)
	}
}

func TestEngine_StopsAtFirstFailure(t *testing.T) {
	cause := apperrors.BookingConflict("slot taken", nil)
	e := NewEngine(logger.Discard(), New("submit", record("a", nil), record("b", cause), record("c", nil)))

	var s trace
	err := e.Run(context.Background(), "submit", &s)
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(s.ran) != 2 {
		t.Errorf("ran = %v, want [a b]", s.ran)
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "b" {
		t.Errorf("expected StepError for b, got %v", err)
	}
	if !apperrors.IsConflict(err) {
		t.Errorf("step error must keep its kind, got %v", apperrors.KindOf(err))
	}
}

func TestEngine_UnsupportedFlow(t *testing.T) {
	e := NewEngine[trace](nil)
	if err := e.Run(context.Background(), "missing", &trace{}); err == nil {
		t.Error("expected an error for an unknown flow")
	}
}

func TestEngine_CancelledContextStopsBeforeNextStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := NewStep("cancel", func(ctx context.Context, s *trace) error {
		s.ran = append(s.ran, "cancel")
		cancel()
		return nil
	})
	e := NewEngine(logger.Discard(), New("submit", cancelling, record("after", nil)))

	var s trace
	err := e.Run(ctx, "submit", &s)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(s.ran) != 1 {
		t.Errorf("ran = %v", s.ran)
	}
}
