package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{InfoLevel, zapcore.InfoLevel},
		{WarnLevel, zapcore.WarnLevel},
		{ErrorLevel, zapcore.ErrorLevel},
		{DebugLevel, zapcore.DebugLevel},
		{"bogus", zapcore.DebugLevel},
	}
	for _, tc := range cases {
		if got := toZapLevel(tc.in); got != tc.want {
			t.Errorf("toZapLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNamed_NilReceiverFallsBackToNop(t *testing.T) {
	t.Parallel()

	var l *Logger
	child := l.Named("queue")
	if child == nil || child.SugaredLogger == nil {
		t.Fatalf("expected usable logger from nil receiver")
	}
	child.Infow("discarded")
}

func TestNew_RespectsLevel(t *testing.T) {
	t.Parallel()

	l := New(WarnLevel, JSONFormat)
	if l.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !l.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled at warn level")
	}
}
