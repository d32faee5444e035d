package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/maskerad/stackmem/config"
	"github.com/maskerad/stackmem/internal/logger"
	"github.com/maskerad/stackmem/manager"
	"github.com/maskerad/stackmem/vfs"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	configPath string
	assetRoot  string
)

var rootCmd = &cobra.Command{
	Use:   "stackmemctl",
	Short: "Load game resources into stack allocators and report memory usage",
	Long: `stackmemctl drives the resource manager from the command line. It loads
resource files and level descriptions into the global and level stacks and
reports where every resource landed and how much memory each region uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging to stderr")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Engine configuration file (INI)")
	rootCmd.PersistentFlags().StringVar(&assetRoot, "root", "", "Asset directory (overrides resources.root)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or the built-in defaults when it is unset.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func initLogging() error {
	if verbose {
		return logger.Init(logger.Options{Enabled: true, Stderr: true, Level: slog.LevelDebug})
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return logger.Init(cfg.LoggerOptions())
}

// newManager builds a manager over the configured asset directory.
func newManager(cfg *config.Config) (*manager.Manager, error) {
	root := cfg.Resources.Root
	if assetRoot != "" {
		root = assetRoot
	}
	printVerbose("Asset root: %s\n", root)
	return manager.New(vfs.NewDir(root), manager.Options{
		Capacities: cfg.Capacities(),
		Logger:     logger.L,
	})
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// heading styles a table header line. Pad before styling: escape codes
// count towards fmt widths.
func heading(s string) string {
	if noColor {
		return s
	}
	return headingStyle.Render(s)
}

func bytesOf(n int) string {
	return humanize.IBytes(uint64(n))
}

// printRegions prints a usage table for the four regions.
func printRegions(s manager.Stats) {
	printInfo("\n%s\n", heading(fmt.Sprintf("%-12s %10s %10s %10s %6s", "REGION", "USED", "PEAK", "CAPACITY", "LIVE")))
	for _, r := range []struct {
		name string
		rs   manager.RegionStats
	}{
		{"global", s.GlobalMain},
		{"global-copy", s.GlobalCopy},
		{"level", s.LevelMain},
		{"level-copy", s.LevelCopy},
	} {
		printInfo("%-12s %10s %10s %10s %6d\n",
			r.name, bytesOf(r.rs.Used), bytesOf(r.rs.Peak), bytesOf(r.rs.Capacity), r.rs.Live)
	}
	if s.Boundary >= 0 {
		printInfo("boundary: %s\n", bytesOf(s.Boundary))
	}
}
