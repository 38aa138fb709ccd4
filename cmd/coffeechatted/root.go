package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "COFFEECHATTED"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "coffeechatted",
		Short:         "Quiet follow-up guardrail for networking threads",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if viper.GetBool("no_color") {
				clifmt.SetColor(false)
			}
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error (defaults to info; debug if --trace).")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")
	cmd.PersistentFlags().Bool("trace", false, "Print extra debug info to stderr.")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output.")
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))
	_ = viper.BindPFlag("trace", cmd.PersistentFlags().Lookup("trace"))
	_ = viper.BindPFlag("no_color", cmd.PersistentFlags().Lookup("no-color"))

	cmd.PersistentFlags().String("state-dir", "", "State directory (defaults to ~/.coffeechatted).")
	cmd.PersistentFlags().String("store", "", "State backend: file|sqlite.")
	cmd.PersistentFlags().String("day", "", "Simulated day (YYYY-MM-DD or \"today\"); overrides --offset.")
	cmd.PersistentFlags().Int("offset", 0, "Days after simulation.start_date.")
	cmd.PersistentFlags().Bool("enrich", true, "Use the configured LLM for fit normalization and tone polish.")
	_ = viper.BindPFlag("file_state_dir", cmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("store.driver", cmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("day", cmd.PersistentFlags().Lookup("day"))
	_ = viper.BindPFlag("simulation.offset", cmd.PersistentFlags().Lookup("offset"))
	_ = viper.BindPFlag("enrich.enabled", cmd.PersistentFlags().Lookup("enrich"))

	cmd.AddCommand(newDecideCmd())
	cmd.AddCommand(newFeedbackCmd())
	cmd.AddCommand(newThreadCmd())
	cmd.AddCommand(newFocusCmd())
	cmd.AddCommand(newStateCmd())
	cmd.AddCommand(newNormsCmd())
	cmd.AddCommand(newMetricsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	initViperDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}
