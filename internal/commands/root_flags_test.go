package ampliconplot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/ampliconplot/internal/logging"
	"github.com/spf13/viper"
)

func resetFlag(cmdFlag string) {
	flag := rootCmd.PersistentFlags().Lookup(cmdFlag)
	if flag == nil {
		flag = renderCmd.Flags().Lookup(cmdFlag)
	}
	if flag == nil {
		return
	}
	_ = flag.Value.Set(flag.DefValue)
	flag.Changed = false
}

func resetAllFlags() {
	for _, name := range []string{"debug", "logFile", "prefix", "heatmapSize", "hgraphSize", "vgraphSize", "pageSize", "smoothing", "layout", "renderer", "skipRender"} {
		resetFlag(name)
	}
}

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// useConfig points the root command at path for the duration of the test.
func useConfig(t *testing.T, path string) {
	t.Helper()
	prevCfgFile := cfgFile
	cfgFile = path
	viper.SetConfigFile(path)
	resetAllFlags()
	_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "ampliconplot.log"))
	t.Cleanup(func() {
		cfgFile = prevCfgFile
		viper.SetConfigFile(prevCfgFile)
		resetAllFlags()
		rootCmd.SetArgs([]string{})
		_ = logging.Close()
		logging.SetDebug(false)
	})
}

func TestPersistentPreRunEReadsConfigFile(t *testing.T) {
	configPath := writeTempConfig(t, "config.json", `{"pageSize": 7, "layout": "vertical", "smoothing": 0}`)
	useConfig(t, configPath)

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil || cfg.ConfigPath != configPath {
		t.Fatalf("expected config loaded with path %s, got %+v", configPath, cfg)
	}
	if cfg.PageSize != 7 || cfg.Layout != "vertical" || cfg.Smoothing != 0 {
		t.Fatalf("expected file values to flow into config: %+v", cfg)
	}
	if cfg.HeatmapSize != "1000x800" {
		t.Fatalf("expected default heatmap size, got %s", cfg.HeatmapSize)
	}
}

func TestPersistentPreRunEFlagsOverrideFile(t *testing.T) {
	configPath := writeTempConfig(t, "config.yaml", "pageSize: 7\nprefix: fromfile\n")
	useConfig(t, configPath)

	_ = rootCmd.PersistentFlags().Set("debug", "true")
	_ = renderCmd.Flags().Set("pageSize", "3")

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}
	cfg := GetConfig()
	if cfg.PageSize != 3 || !cfg.Debug {
		t.Fatalf("expected flag values to win: %+v", cfg)
	}
	if cfg.Prefix != "fromfile" {
		t.Fatalf("expected prefix from file, got %s", cfg.Prefix)
	}
}

func TestPersistentPreRunERejectsInvalidConfig(t *testing.T) {
	configPath := writeTempConfig(t, "config.json", `{"pageSize": 0, "layout": "diagonal"}`)
	useConfig(t, configPath)

	err := rootCmd.PersistentPreRunE(rootCmd, []string{})
	if err == nil {
		t.Fatalf("expected error for invalid configuration")
	}
	for _, want := range []string{"pageSize", "layout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}

func TestShowConfigCommandOutput(t *testing.T) {
	configPath := writeTempConfig(t, "config.json", `{"pageSize": 12}`)
	useConfig(t, configPath)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--debug", "show", "config"})
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Config file: "+configPath) {
		t.Fatalf("expected config file path in output, got %s", out)
	}
	if !strings.Contains(out, "Debug:           true") {
		t.Fatalf("expected debug in output, got %s", out)
	}
	if !strings.Contains(out, "Page Size:       12") {
		t.Fatalf("expected page size in output, got %s", out)
	}
}

func TestShowConfigRaw(t *testing.T) {
	configPath := writeTempConfig(t, "config.json", `{"prefix": "rawprefix"}`)
	useConfig(t, configPath)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"show", "config", "--raw"})
	t.Cleanup(func() { _ = showConfigCmd.Flags().Set("raw", "false") })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}
	if !strings.Contains(buf.String(), "rawprefix") {
		t.Fatalf("expected raw dump to include prefix, got %s", buf.String())
	}
}
