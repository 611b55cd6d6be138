package rdl

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name           string
		level          LogLevel
		setupFunc      func(*Logger)
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:  "debug level shows all messages",
			level: LogDebug,
			setupFunc: func(l *Logger) {
				l.Debug("debug message")
				l.Info("info message")
				l.Warn("warn message")
				l.Error("error message")
			},
			expectedOutput: []string{
				"[DEBUG] debug message",
				"[INFO] info message",
				"[WARN] warn message",
				"[ERROR] error message",
			},
		},
		{
			name:  "warn level hides debug and info",
			level: LogWarn,
			setupFunc: func(l *Logger) {
				l.Debug("debug message")
				l.Info("info message")
				l.Warn("warn message")
			},
			expectedOutput: []string{"[WARN] warn message"},
			notExpected:    []string{"debug message", "info message"},
		},
		{
			name:  "off level is silent",
			level: LogOff,
			setupFunc: func(l *Logger) {
				l.Error("error message")
			},
			notExpected: []string{"error message"},
		},
		{
			name:  "fields are appended in key order",
			level: LogInfo,
			setupFunc: func(l *Logger) {
				l.WithFields(Fields{"tablix": "Orders", "dataset": "Sales"}).Info("rendering")
			},
			expectedOutput: []string{"[INFO] rendering dataset=Sales tablix=Orders"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)
			tt.setupFunc(logger)

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("expected output to contain %q, got %q", expected, output)
				}
			}
			for _, notExpected := range tt.notExpected {
				if strings.Contains(output, notExpected) {
					t.Errorf("expected output not to contain %q, got %q", notExpected, output)
				}
			}
		})
	}
}

func TestLoggerWithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	logger.WithField("item", "Textbox").Info("child")
	logger.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], "item=Textbox") {
		t.Errorf("child line missing field: %q", lines[0])
	}
	if strings.Contains(lines[1], "item=") {
		t.Errorf("parent line has child field: %q", lines[1])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		" warn ":  LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"verbose": LogInfo,
	}
	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestDebugExpression(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LogInfo).DebugExpression("=1+1", "2")
	if buf.Len() != 0 {
		t.Errorf("expected nothing outside debug mode, got %q", buf.String())
	}

	NewLogger(&buf, LogDebug).DebugExpression("=1+1", "2")
	if !strings.Contains(buf.String(), "Expression: =1+1") || !strings.Contains(buf.String(), "Result: 2") {
		t.Errorf("unexpected debug output %q", buf.String())
	}
}
