package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

const masked = "********"

// PrintConfig logs the effective configuration with secrets masked.
func PrintConfig(ctx context.Context, cfg *Config, log logger.Logger) {
	fields := make([]any, 0, 128)
	fields = append(fields, "mode", cfg.Mode, "run_id", cfg.RunID)
	collect(reflect.ValueOf(*cfg), &fields)

	log.Debug(wrap.WithAction(ctx, "print_config"), "effective configuration", fields...)
}

func collect(v reflect.Value, out *[]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		name, ok := field.Tag.Lookup("env")
		if !ok {
			if fv.Kind() == reflect.Struct {
				collect(fv, out)
			}
			continue
		}

		val := fmt.Sprint(fv.Interface())
		if isSecret(name) && val != "" {
			val = masked
		}
		*out = append(*out, name, val)
	}
}

func isSecret(name string) bool {
	return strings.Contains(name, "PASSWORD") || strings.HasPrefix(name, "GCP_SA_KEY")
}
