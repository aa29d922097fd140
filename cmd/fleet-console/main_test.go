package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func withCommandContext(t *testing.T, path string, structured bool) {
	t.Helper()
	setCommandExecutionContext(commandExecutionContext{CommandPath: path, UsesStructuredLog: structured})
	t.Cleanup(resetCommandExecutionContext)
}

func decodeLogLine(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected structured log output")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("json.Unmarshal(%q) error = %v", line, err)
	}
	return payload
}

func TestEmitCommandErrorStructured(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	withCommandContext(t, "fleet-console serve", true)

	var out bytes.Buffer
	emitCommandError(errors.New("fleet unreachable"), "command failed", 1, &out)

	payload := decodeLogLine(t, &out)
	want := map[string]any{
		"app":       "fleet-console",
		"command":   "fleet-console serve",
		"msg":       "command failed",
		"exit_code": float64(1),
		"error":     "fleet unreachable",
	}
	for key, value := range want {
		if payload[key] != value {
			t.Fatalf("%s = %v, want %v", key, payload[key], value)
		}
	}
}

func TestEmitCommandErrorFallsBackToJSON(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	withCommandContext(t, "fleet-console activities", true)

	var out bytes.Buffer
	emitCommandError(errors.New("boom"), "command failed", 1, &out)

	if payload := decodeLogLine(t, &out); payload["command"] != "fleet-console activities" {
		t.Fatalf("command = %v", payload["command"])
	}
}

func TestEmitCommandErrorPlain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{name: "failure", err: errors.New("login failed"), code: 1, want: "login failed\n"},
		{name: "canceled", err: context.Canceled, code: exitCodeCanceled, want: "canceled\n"},
		{
			name: "usage",
			err:  errors.New("--email is required"),
			code: exitCodeUsage,
			want: "--email is required\nRun 'fleet-console login --help' for usage.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCommandContext(t, "fleet-console login", false)
			var out bytes.Buffer
			emitCommandError(tt.err, "command failed", tt.code, &out)
			if got := out.String(); got != tt.want {
				t.Fatalf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunMainExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantSilent bool
	}{
		{name: "success", want: 0, wantSilent: true},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "canceled", err: fmt.Errorf("serve: %w", context.Canceled), want: exitCodeCanceled},
		{name: "usage", err: usageError("bad flags"), want: exitCodeUsage},
		{name: "silent", err: &exitError{code: 3, silent: true}, want: 3, wantSilent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCommandContext(t, "", false)
			var out bytes.Buffer
			if got := runMain(func() error { return tt.err }, &out); got != tt.want {
				t.Fatalf("runMain() = %d, want %d", got, tt.want)
			}
			if tt.wantSilent && out.Len() != 0 {
				t.Fatalf("unexpected output %q", out.String())
			}
			if !tt.wantSilent && out.Len() == 0 {
				t.Fatal("expected error output")
			}
		})
	}
}

func TestRunMainUnwrapsExitErrorCause(t *testing.T) {
	withCommandContext(t, "fleet-console reset-automations", false)
	var out bytes.Buffer
	runMain(func() error { return usageError("nothing to reset") }, &out)
	if !strings.HasPrefix(out.String(), "nothing to reset\n") {
		t.Fatalf("output = %q", out.String())
	}
}
