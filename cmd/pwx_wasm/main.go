//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/pwx-converter/pipeline"
)

func main() {
	js.Global().Set("convertWorkout", js.FuncOf(convertWorkout))
	select {}
}

func convertWorkout(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("workout file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read workout bytes from JS input")
	}

	target, err := pipeline.ParseFormat(getString(optsArg, "target", string(pipeline.FormatTCX)))
	if err != nil {
		return failure(err.Error())
	}

	cfg := pipeline.DefaultConfig()
	cfg.LapTable = pipeline.LapTableCSV
	cfg.TimeZone = getString(optsArg, "time_zone", "UTC")
	cfg.LastPointSpeed = getString(optsArg, "last_point_speed", cfg.LastPointSpeed)
	cfg.Creator = getString(optsArg, "creator", cfg.Creator)
	converter, err := pipeline.New(cfg, nil)
	if err != nil {
		return failure(err.Error())
	}

	result, err := converter.RunBytes(pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.pwx"),
		Data:           fileBytes,
		Target:         target,
		CopySource:     getBool(optsArg, "copy_source"),
	})
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":       true,
		"zip":      payload,
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(fileNames),
		"workouts": len(result.Conversion.Workouts),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getBool(v js.Value, key string) bool {
	if v.IsUndefined() || v.IsNull() {
		return false
	}
	out := v.Get(key)
	return out.Type() == js.TypeBoolean && out.Bool()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
