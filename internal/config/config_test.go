package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want Camera
	}{
		{
			name: "positional only",
			args: []string{"1.5", "0.3", "0.8", "10"},
			want: Camera{Sigma: 1.5, TLow: 0.3, THigh: 0.8, NumImages: 10, OutDir: ".", Width: 640, Height: 480, LogLevel: "info"},
		},
		{
			name: "writedirim",
			args: []string{"1", "0.5", "0.5", "2", "dir"},
			want: Camera{Sigma: 1, TLow: 0.5, THigh: 0.5, NumImages: 2, WriteDirection: true, OutDir: ".", Width: 640, Height: 480, LogLevel: "info"},
		},
		{
			name: "flags",
			args: []string{"-source", "/frames", "-out", "/tmp/out", "-width", "320", "-height", "240", "-workers", "3", "-log-level", "debug", "2", "0.4", "0.9", "5"},
			want: Camera{Sigma: 2, TLow: 0.4, THigh: 0.9, NumImages: 5, Source: "/frames", OutDir: "/tmp/out", Width: 320, Height: 240, Workers: 3, LogLevel: "debug"},
		},
		{
			name: "environment",
			args: []string{"1", "0.5", "0.5", "1"},
			env:  map[string]string{EnvWorkers: "6", "CANNY_LOG_LEVEL": "warn"},
			want: Camera{Sigma: 1, TLow: 0.5, THigh: 0.5, NumImages: 1, OutDir: ".", Width: 640, Height: 480, Workers: 6, LogLevel: "warn"},
		},
		{
			name: "flags beat environment",
			args: []string{"-workers", "2", "1", "0.5", "0.5", "1"},
			env:  map[string]string{EnvWorkers: "6"},
			want: Camera{Sigma: 1, TLow: 0.5, THigh: 0.5, NumImages: 1, OutDir: ".", Width: 640, Height: 480, Workers: 2, LogLevel: "info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args, env(tt.env))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr error
	}{
		{"too few arguments", []string{"1", "0.5", "0.5"}, nil, ErrUsage},
		{"too many arguments", []string{"1", "0.5", "0.5", "1", "x", "y"}, nil, ErrUsage},
		{"bad sigma", []string{"abc", "0.5", "0.5", "1"}, nil, ErrUsage},
		{"bad count", []string{"1", "0.5", "0.5", "1.5"}, nil, ErrUsage},
		{"unknown flag", []string{"-bogus", "1", "0.5", "0.5", "1"}, nil, ErrUsage},
		{"zero sigma", []string{"0", "0.5", "0.5", "1"}, nil, canny.ErrInvalidParameter},
		{"thigh above one", []string{"1", "0.5", "1.5", "1"}, nil, canny.ErrInvalidParameter},
		{"zero frames", []string{"1", "0.5", "0.5", "0"}, nil, canny.ErrInvalidParameter},
		{"negative workers", []string{"-workers", "-1", "1", "0.5", "0.5", "1"}, nil, canny.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, env(tt.env))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Parse([]string{"1", "0.5", "0.5", "1"}, env(map[string]string{EnvWorkers: "many"})); err == nil {
		t.Error("non-numeric CANNY_WORKERS should fail")
	}
}

func TestParse_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	content := "sigma: 2.5\ntlow: 0.25\nthigh: 0.75\nnum_images: 4\nwrite_direction: true\nwidth: 160\nheight: 120\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Parse([]string{"-config", path}, env(nil))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Camera{Sigma: 2.5, TLow: 0.25, THigh: 0.75, NumImages: 4, WriteDirection: true, OutDir: ".", Width: 160, Height: 120, LogLevel: "info"}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}

	// Positional arguments and flags override the file.
	got, err = Parse([]string{"-config", path, "-width", "64", "1", "0.5", "0.5", "3"}, env(nil))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Sigma != 1 || got.NumImages != 3 || got.WriteDirection || got.Width != 64 || got.Height != 120 {
		t.Errorf("overrides not applied: %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sigma: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Camera{Sigma: 1.25, TLow: 0.4, THigh: 0.6, NumImages: 7, Source: "/data", OutDir: dir, Width: 32, Height: 24, Workers: 2, LogLevel: "debug"}
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(filepath.Join(dir, RunFileName))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != cfg {
		t.Errorf("got %+v\nwant %+v", got, cfg)
	}
}

func TestWorkersFromEnv(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"4", 4, false},
		{" 8 ", 8, false},
		{"0", 0, false},
		{"-2", 0, true},
		{"four", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := WorkersFromEnv(env(map[string]string{EnvWorkers: tt.value}))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf, "camera-canny")
	if !strings.HasPrefix(buf.String(), "Usage: camera-canny [flags] sigma tlow thigh numimages [writedirim]") {
		t.Errorf("unexpected usage text:\n%s", buf.String())
	}
}
