package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "taxi-ingest", LevelDebug)

	ctx := wrap.WithLogCtx(context.Background(), wrap.LogCtx{
		Action:  "fetch",
		RunID:   "run-1",
		Dataset: "yellow",
		Period:  "2024-01",
	})
	l.Info(ctx, "downloaded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}

	want := map[string]string{
		"message": "downloaded",
		"service": "taxi-ingest",
		"action":  "fetch",
		"run_id":  "run-1",
		"dataset": "yellow",
		"period":  "2024-01",
	}
	for k, v := range want {
		if line[k] != v {
			t.Fatalf("field %s: got %v want %s", k, line[k], v)
		}
	}
	if _, ok := line["object"]; ok {
		t.Fatalf("empty fields must not be logged")
	}
}

func TestErrorCtx_RestoresOrigin(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "taxi-ingest", LevelDebug)

	origin := wrap.WithObject(wrap.WithAction(context.Background(), "upload"), "yellow_tripdata_2024-01.parquet")
	err := WrapError(origin, errors.New("boom"))

	l.Error(ErrorCtx(context.Background(), err), "upload failed", err)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if line["action"] != "upload" || line["object"] != "yellow_tripdata_2024-01.parquet" {
		t.Fatalf("origin context not restored: %v", line)
	}
	if err.Error() != "boom" {
		t.Fatalf("wrapped error must keep the message, got %q", err.Error())
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, lvl := range []string{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if !ValidateLogLevel(lvl) {
			t.Fatalf("%s must be valid", lvl)
		}
	}
	if ValidateLogLevel("TRACE") {
		t.Fatalf("TRACE must be invalid")
	}
}
