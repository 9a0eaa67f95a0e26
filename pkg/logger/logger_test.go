package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupWriterJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")
	slog.Info("dropped")
	WithComponent("batch").Warn("kept", "lines", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "kept" || rec["component"] != "batch" || rec["lines"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestFromContextCarriesRun(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupWriter(&buf, "debug", "text")
	ctx := WithRun(context.Background(), Run{
		Name:   "Team_1_ltn_article_nostop_nostem.txt",
		Config: "nostop_nostem",
		Scheme: "ltn",
	})
	FromContext(ctx).Debug("scored")
	FromContext(context.Background()).Debug("plain")

	out := buf.String()
	for _, want := range []string{
		"run.name=Team_1_ltn_article_nostop_nostem.txt",
		"run.config=nostop_nostem",
		"run.scheme=ltn",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("%s missing: %q", want, out)
		}
	}
	if strings.Count(out, "run.name=") != 1 {
		t.Errorf("run attributes leaked: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
