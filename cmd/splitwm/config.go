package main

import (
	"fmt"
	"os"

	"github.com/1broseidon/splitwm/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(flags))
	cmd.AddCommand(newConfigPrintCmd(flags))
	cmd.AddCommand(newConfigExplainCmd(flags))
	cmd.AddCommand(newConfigInitCmd(flags))
	return cmd
}

func loadConfig(flags *globalFlags) (*config.LoadResult, string, error) {
	path, err := flags.resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

func newConfigValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and its includes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, path, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if _, _, err := res.Config.Compile(); err != nil {
				return err
			}
			if len(res.Files) == 0 {
				fmt.Printf("OK (no config at %s, using defaults)\n", path)
				return nil
			}
			fmt.Printf("OK (%d file(s))\n", len(res.Files))
			for _, f := range res.Files {
				fmt.Printf("  %s\n", f)
			}
			return nil
		},
	}
}

func newConfigPrintCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			data, err := res.Config.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

func newConfigExplainCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <path>",
		Short: "Show an effective value and where it was set",
		Example: `  splitwm config explain screen_padding.top
  splitwm config explain bindings.0.command
  splitwm config explain rules.1.class`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s", args[0], data)
			switch src.Kind {
			case config.SourceFile:
				fmt.Printf("source: %s:%d:%d\n", src.File, src.Line, src.Column)
			default:
				fmt.Printf("source: %s\n", src.Name)
			}
			return nil
		},
	}
}

func newConfigInitCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
