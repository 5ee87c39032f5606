package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/autofree/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize autofree configuration interactively",
	Long: `Guides you through setting up autofree configuration step by step.
Creates a config file with the allocation indicator, the release function and
the interchange format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	format := strings.TrimPrefix(filepath.Ext(cfg.PointsFile), ".")
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Allocation indicator").
				Description("A line must contain this text to count as an allocation").
				Placeholder(cfg.AllocIndicator).
				Value(&cfg.AllocIndicator),
			huh.NewInput().
				Title("Release function").
				Description("Called on each variable at its deallocation point").
				Placeholder(cfg.ReleaseFunc).
				Value(&cfg.ReleaseFunc),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Interchange format").
				Description("Encoding of the deallocation points file").
				Options(
					huh.NewOption("JSON", "json"),
					huh.NewOption("YAML", "yaml"),
					huh.NewOption("MessagePack", "msgpack"),
				).
				Value(&format),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.PointsFile = "references." + format

	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save location").
				Options(
					huh.NewOption("Project (./.autofree/config.yaml)", "project"),
					huh.NewOption("Global (~/.autofree/config.yaml)", "global"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Allocation indicator: %s\n", cfg.AllocIndicator)
	fmt.Printf("Release function: %s\n", cfg.ReleaseFunc)
	fmt.Printf("Points file: %s\n", cfg.PointsFile)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

