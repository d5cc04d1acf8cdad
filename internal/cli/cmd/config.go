package cmd

import (
	"fmt"
	"os"

	"github.com/berrythewa/clipdeck/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clipdeck configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration file",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.ResolvePath(configFile)
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("configuration already exists at %s\nUse --force to overwrite or 'clipdeck config show' to view it", configPath)
			}

			defaults := config.DefaultConfig()
			logger.Info("Initializing configuration", zap.String("config_path", configPath))
			if err := defaults.Save(configPath); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			printf(cmd, "✓ Configuration initialized at: %s\n", configPath)
			printf(cmd, "✓ Database path: %s\n", defaults.Storage.DBPath)
			printf(cmd, "✓ Control socket: %s\n", defaults.IPC.SocketPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if useJSON {
				return printJSON(cmd, cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = out(cmd).Write(data)
			return err
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.ResolvePath(configFile)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", configPath)
			return nil
		},
	}
}
