package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testOptions(t *testing.T) options {
	t.Helper()
	return options{
		configPath: filepath.Join(t.TempDir(), "none.toml"),
		cursor:     "0",
		logPath:    filepath.Join(t.TempDir(), "sigview.log"),
	}
}

func writeSamples(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "%d\n", i)
	}
	path := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCSVAndPNG(t *testing.T) {
	in := writeSamples(t, 5000)
	out := t.TempDir()

	opts := testOptions(t)
	opts.granularity = "10ms"
	opts.csvOut = filepath.Join(out, "w.csv")
	opts.pngOut = filepath.Join(out, "w.png")

	if err := run(opts, []string{in}); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(opts.csvOut)
	if err != nil {
		t.Fatal(err)
	}
	want := "time,amplitude\n0,0\n0.00025,1000\n0.0005,2000\n0.00075,3000\n0.001,4000\n"
	if string(data) != want {
		t.Errorf("csv =\n%s\nwant\n%s", data, want)
	}
	if _, err := os.Stat(opts.pngOut); err != nil {
		t.Errorf("png not written: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	opts := testOptions(t)
	opts.csvOut = "-"

	if err := run(opts, nil); err == nil {
		t.Error("expected error without a file")
	}

	empty := filepath.Join(t.TempDir(), "empty.csv")
	os.WriteFile(empty, nil, 0644)
	if err := run(opts, []string{empty}); err == nil {
		t.Error("expected error for empty file")
	}

	words := filepath.Join(t.TempDir(), "words.csv")
	os.WriteFile(words, []byte("a\nb\n"), 0644)
	err := run(opts, []string{words})
	if err == nil || err.Error() != "The file does not contain valid numerical data." {
		t.Errorf("err = %v", err)
	}

	opts.granularity = "7s"
	if err := run(opts, []string{words}); err == nil {
		t.Error("expected granularity error")
	}
}

func TestRunWriteConfig(t *testing.T) {
	opts := testOptions(t)
	opts.configPath = filepath.Join(t.TempDir(), "sigview", "config.toml")
	opts.chunkSize = 4096
	opts.writeConfig = true

	if err := run(opts, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(opts.configPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "chunk_size = 4096") {
		t.Errorf("config missing override:\n%s", data)
	}
}
