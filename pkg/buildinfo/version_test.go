package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	tests := []struct {
		name string
		in   Info
		bi   *debug.BuildInfo
		want Info
	}{
		{"no build info", Info{"dev", "none", "unknown", "", false}, nil, Info{"dev", "none", "unknown", "", false}},
		{"unstamped", Info{"dev", "none", "unknown", "", false}, bi, Info{"v0.3.1", "abc123", "2025-01-02T03:04:05Z", "go1.24.0", true}},
		{"stamped wins", Info{"v1.0.0", "fff", "today", "", false}, bi, Info{"v1.0.0", "fff", "today", "go1.24.0", true}},
		{"devel module", Info{"dev", "none", "unknown", "", false}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, Info{"dev", "none", "unknown", "", false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.in, tt.bi); got != tt.want {
				t.Errorf("resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: ") || !strings.HasSuffix(tmpl, "\n") {
		t.Errorf("Template = %q", tmpl)
	}
}
