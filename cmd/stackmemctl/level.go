package main

import (
	"github.com/spf13/cobra"

	"github.com/maskerad/stackmem/manager"
)

func init() {
	rootCmd.AddCommand(newLevelCmd())
}

func newLevelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level <description>...",
		Short: "Load global resources, then each level in turn",
		Long: `The level command loads the global resources listed in the configuration,
records the boundary, then loads every level description in order. Each level
replaces the previous one; the report after each step shows that level memory
does not accumulate.

Example:
  stackmemctl level -c engine.ini levels/forest.json levels/cave.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevel(args)
		},
	}
	return cmd
}

// LevelReport is the JSON form of one level transition.
type LevelReport struct {
	Level     string        `json:"level"`
	Resources []string      `json:"resources"`
	Stats     manager.Stats `json:"stats"`
}

func runLevel(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	printVerbose("Loading %d global resources\n", len(cfg.Resources.Global))
	if err := m.LoadGlobalResources(cfg.Resources.Global); err != nil {
		return err
	}

	reports := make([]LevelReport, 0, len(args))
	for _, p := range args {
		desc, err := m.LoadLevel(p)
		if err != nil {
			return err
		}
		reports = append(reports, LevelReport{
			Level:     desc.Name,
			Resources: m.LevelResources().Paths(),
			Stats:     m.Stats(),
		})
		if jsonOut {
			continue
		}
		printInfo("level %s (%s): %d resources, %s\n",
			desc.Name, p, m.LevelResources().Len(), bytesOf(m.LevelResources().Size()))
		for _, r := range m.LevelResources().Paths() {
			printVerbose("  %s\n", r)
		}
	}

	if jsonOut {
		return printJSON(map[string]any{
			"global": m.GlobalResources().Paths(),
			"levels": reports,
		})
	}
	printRegions(m.Stats())
	return nil
}
