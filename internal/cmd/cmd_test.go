package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/pulse/internal/config"
	"github.com/Iron-Ham/pulse/internal/event"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/source"
	"github.com/Iron-Ham/pulse/internal/transport"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// isolateConfig points the config directory at a temp dir and resets viper.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return filepath.Join(dir, "pulse")
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "pulse" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "pulse")
	}

	// Compare by Name(), not Use which includes args
	cmdMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range []string{"watch", "parse", "search-server", "config", "logs"} {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "text", args: []string{"parse", "cats"}, want: "text cats\n"},
		{name: "range", args: []string{"parse", "2-8"}, want: "range 2-8\n"},
		{name: "joined args", args: []string{"parse", "2", "8"}, want: "range 2-8\n"},
		{name: "single number", args: []string{"parse", "5"}, want: "range 5\n"},
		{name: "range order", args: []string{"parse", "5", "2"}, want: "rejected (range_order)", wantErr: true},
		{name: "mixed", args: []string{"parse", "cats 5"}, want: "rejected (mixed)", wantErr: true},
		{name: "multiple words", args: []string{"parse", "cats", "dogs"}, want: "rejected (multiple_text)", wantErr: true},
		{name: "separators only", args: []string{"parse", ", -"}, want: "rejected (empty)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			out, err := executeCommand(rootCmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(out, tt.want) {
					t.Errorf("output = %q, want it to contain %q", out, tt.want)
				}
				return
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestConfigShow(t *testing.T) {
	dir := isolateConfig(t)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "engine:\n  window_ms: 75\nredis:\n  password: hunter2\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"window_ms: 75", "transport: memory", "theme: default", redactedPassword} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hunter2") {
		t.Error("password should be redacted")
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolateConfig(t)

	out, err := executeCommand(rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "config.yaml")) {
		t.Errorf("output = %q", out)
	}

	// The written file loads back to the defaults
	viper.Reset()
	config.SetDefaults()
	viper.SetConfigFile(filepath.Join(dir, "config.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.WindowMs != 200 || cfg.Sources.Views.Step != 3 {
		t.Errorf("loaded config = %+v", cfg)
	}

	viper.Reset()
	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second config init should fail")
	}
}

func TestBuildSources(t *testing.T) {
	logger := logging.NopLogger()

	t.Run("defaults are tickers", func(t *testing.T) {
		set, err := buildSources(config.Default(), logger)
		if err != nil {
			t.Fatal(err)
		}
		defer set.Close()

		views, ok := set.sources[event.CounterViews].(source.Ticker)
		if !ok {
			t.Fatalf("views source = %T, want source.Ticker", set.sources[event.CounterViews])
		}
		if views.Step != 3 || views.Interval.Milliseconds() != 1000 {
			t.Errorf("views ticker = %+v", views)
		}
		if _, ok := set.sources[event.CounterComments].(source.Ticker); !ok {
			t.Errorf("comments source = %T, want source.Ticker", set.sources[event.CounterComments])
		}
	})

	t.Run("file and none", func(t *testing.T) {
		cfg := config.Default()
		cfg.Sources.Views = config.SourceConfig{Kind: config.SourceFile, Path: "/tmp/views"}
		cfg.Sources.Comments = config.SourceConfig{Kind: config.SourceNone}

		set, err := buildSources(cfg, logger)
		if err != nil {
			t.Fatal(err)
		}
		defer set.Close()

		if len(set.sources) != 1 {
			t.Fatalf("got %d sources, want 1", len(set.sources))
		}
		f, ok := set.sources[event.CounterViews].(source.File)
		if !ok || f.Path != "/tmp/views" || f.Name != event.CounterViews {
			t.Errorf("views source = %#v", set.sources[event.CounterViews])
		}
	})

	t.Run("redis without addrs", func(t *testing.T) {
		cfg := config.Default()
		cfg.Sources.Views = config.SourceConfig{Kind: config.SourceRedis, Key: "views", IntervalMs: 100}

		if _, err := buildSources(cfg, logger); err == nil {
			t.Error("expected error for redis source without addrs")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		cfg := config.Default()
		cfg.Sources.Comments.Kind = "kafka"

		if _, err := buildSources(cfg, logger); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

func TestBuildTransport(t *testing.T) {
	logger := logging.NopLogger()

	t.Run("memory", func(t *testing.T) {
		tr, err := buildTransport(config.Default(), logger)
		if err != nil {
			t.Fatal(err)
		}
		m, ok := tr.(*transport.Memory)
		if !ok {
			t.Fatalf("transport = %T, want *transport.Memory", tr)
		}
		if m.Len() != len(transport.SampleCorpus().Items) {
			t.Errorf("index has %d items, want the sample corpus", m.Len())
		}
	})

	t.Run("http", func(t *testing.T) {
		cfg := config.Default()
		cfg.Search.Transport = config.TransportHTTP

		tr, err := buildTransport(cfg, logger)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := tr.(*transport.HTTP); !ok {
			t.Errorf("transport = %T, want *transport.HTTP", tr)
		}
	})

	t.Run("missing corpus", func(t *testing.T) {
		cfg := config.Default()
		cfg.Search.Corpus = filepath.Join(t.TempDir(), "missing.yaml")

		if _, err := buildTransport(cfg, logger); err == nil {
			t.Error("expected error for missing corpus")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Search.Transport = "grpc"

		if _, err := buildTransport(cfg, logger); err == nil {
			t.Error("expected error for unknown transport")
		}
	})
}
