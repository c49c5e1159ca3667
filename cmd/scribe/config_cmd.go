package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/config"
	"github.com/scribe-docs/scribe/internal/debug"
	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Inspect scribe configuration",
	Long: `Inspect scribe configuration.

Settings are read from, in increasing precedence: built-in defaults, a config
file (.scribe/config.yaml|json|toml in the working directory, or
~/.config/scribe/config.*), a .env file, and SCRIBE_* environment variables.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		creds := loadCredentials()
		settings := creds.Redacted()
		if jsonOutput {
			outputJSON(map[string]interface{}{"source": creds.Source, "settings": settings})
			return
		}
		rows := make([][2]string, 0, len(settings))
		for _, s := range settings {
			rows = append(rows, [2]string{s.Key, s.Value})
		}
		fmt.Print(ui.KeyValues(rows))
		if creds.Source != "" {
			debug.PrintNormal("\n%s %s\n", ui.RenderMuted("Read from"), creds.Source)
		}
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the supported settings and their environment variables",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			type keyInfo struct {
				Name        string `json:"name"`
				EnvVar      string `json:"env_var"`
				Description string `json:"description"`
				Required    bool   `json:"required"`
				Secret      bool   `json:"secret"`
				Default     string `json:"default,omitempty"`
			}
			out := make([]keyInfo, 0, len(config.Keys))
			for _, k := range config.Keys {
				out = append(out, keyInfo{k.Name, k.EnvVar, k.Description, k.Required, k.Secret, k.Default})
			}
			outputJSON(out)
			return
		}
		for _, k := range config.Keys {
			name := k.Name
			if k.Required {
				name += " " + ui.RenderWarn("(required)")
			}
			fmt.Printf("%s\n", ui.RenderAccent(name))
			rows := [][2]string{{"env", k.EnvVar}, {"default", k.Default}}
			fmt.Print(ui.Indent(ui.KeyValues(rows), "  "))
			fmt.Printf("  %s\n", ui.RenderMuted(k.Description))
		}
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check KEY VALUE",
	Short: "Validate a value for a setting without saving it",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.ValidateKey(args[0], args[1]); err != nil {
			FatalErrorWithHint(err.Error(), "Run 'scribe config keys' to list settings", dispatch.ExitUsage)
		}
		debug.PrintNormal("%s %s is valid\n", ui.RenderPassIcon(), args[0])
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configKeysCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}
