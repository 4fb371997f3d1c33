package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
)

var configFlagForce bool

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Manage application configuration",
	Long: `View and modify configuration settings. Values come from the config file
and STEPWISE_* environment variables; set only writes the file.

Examples:
  stepwise config show
  stepwise config get speeds.sorting
  stepwise config set speeds.sorting 30ms
  stepwise config set server.max_sessions 16
  stepwise config keys
  stepwise config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:               "get KEY",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE:              runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value in the config file",
	Long: `Set a configuration value. Durations take Go syntax such as 50ms or 2s.

Examples:
  stepwise config set engine.history_capacity 1000
  stepwise config set speeds.graph 250ms
  stepwise config set log.level debug`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE:              runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.Keys()
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(keys)
		}
		for _, k := range keys {
			ctx.Formatter.Println(k)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]string{"path": ctx.ConfigPath})
		}
		ctx.Formatter.Println(ctx.ConfigPath)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configFlagForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if ctx.IsJSON() {
		v, err := ctx.Config.Get("")
		if err != nil {
			return err
		}
		return ctx.Formatter.JSON(v)
	}
	data, err := yaml.Marshal(ctx.Config)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	ctx.Formatter.Print(string(data))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	v, err := ctx.Config.Get(args[0])
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"key": args[0], "value": v})
	}
	if section, ok := v.(map[string]any); ok {
		data, err := yaml.Marshal(section)
		if err != nil {
			return errors.Wrap(err, "encode config")
		}
		ctx.Formatter.Print(string(data))
		return nil
	}
	ctx.Formatter.Println(fmt.Sprint(v))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	cfg, err := config.LoadFile(ctx.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(ctx.ConfigPath, cfg); err != nil {
		return err
	}

	if ctx.IsJSON() {
		v, _ := cfg.Get(key)
		return ctx.Formatter.JSON(map[string]any{"key": key, "value": v, "path": ctx.ConfigPath})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Set %s = %s", key, value))
	if env := envOverride(key); env != "" && os.Getenv(env) != "" {
		ctx.CLIFormatter().Warning(env + " is set and overrides this value")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(ctx.ConfigPath); err == nil && !configFlagForce {
		return errors.NewUserErrorWithField("config", ctx.ConfigPath,
			"Config file already exists",
			"Use --force to overwrite it.")
	}
	if err := config.Save(ctx.ConfigPath, config.DefaultRuntimeConfig()); err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"path": ctx.ConfigPath})
	}
	ctx.CLIFormatter().Success("Wrote " + ctx.ConfigPath)
	return nil
}

// envOverride names the environment variable that overrides key, e.g.
// speeds.dp -> STEPWISE_SPEED_DP.
func envOverride(key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	name = strings.Replace(name, "SPEEDS_", "SPEED_", 1)
	return config.EnvPrefix + name
}
