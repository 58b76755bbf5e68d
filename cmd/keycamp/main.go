// Package main provides the CLI entrypoint for keycamp.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keycamp/internal/config"
	"github.com/verte-zerg/keycamp/internal/progress"
)

const (
	defaultCurveWindow = 10
	defaultWeakTop     = 5
	defaultWeakWindow  = 20
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

var (
	globalDB       string
	globalConfig   string
	globalCatalog  string
	globalBackend  string
	globalLogFile  string
	globalLogLevel string

	practiceChapter int
	practiceWords   int
	practiceSeed    int64

	statsChapter int
	statsSince   string
	statsLast    int
	statsWindow  int
	statsWeakTop int

	exportOut string

	resetYes     bool
	resetHistory bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keycamp",
		Short:         "Touch typing course in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalConfig, "config", "", "config file (default: $XDG_CONFIG_HOME/keycamp/config.toml)")
	pf.StringVar(&globalDB, "db", "", "SQLite database path")
	pf.StringVar(&globalCatalog, "catalog", "", "chapter catalog YAML (default: built-in course)")
	pf.StringVar(&globalBackend, "backend", config.BackendSQLite, "progress backend: sqlite, redis or memory")
	pf.StringVar(&globalLogFile, "log-file", "", "write logs to this file")
	pf.StringVar(&globalLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.Flags().IntVar(&practiceChapter, "chapter", 0, "open this chapter directly")
	rootCmd.Flags().IntVar(&practiceWords, "words", 0, "words per drill for word-bank chapters (0: chapter default)")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "seed for practice text (0: random)")

	rootCmd.AddCommand(newChaptersCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func configPath() string {
	if globalConfig != "" {
		return globalConfig
	}
	return config.DefaultConfigPath()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keycamp configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# words = 0               # Words per drill; 0 uses the chapter default
# seed = 0                # Fixed seed for practice text; 0 is random

[stats]
# last = 0                # Limit to last N attempts
# curve-window = %d       # Moving average window
# weak-top = %d            # Number of weak keys to list
# weak-window = %d        # Recent attempts used for weak keys

[store]
# backend = %q       # sqlite, redis or memory
# path = %q
# redis-url = "redis://localhost:6379/0"
# key = %q

[log]
# level = %q
# format = %q
# file = %q

[catalog]
# path = ""               # Replacement chapter catalog (YAML)
`,
		defaultCurveWindow,
		defaultWeakTop,
		defaultWeakWindow,
		config.BackendSQLite,
		config.DefaultDBPath(),
		progress.DefaultKey,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
