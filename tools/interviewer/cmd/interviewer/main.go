// Command interviewer runs spoken mock interviews against an AI conversation endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/interviewkit/pkg/config"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
	"github.com/AltairaLabs/interviewkit/runtime/version"
)

// overrides holds flag and INTERVIEW_* environment bindings.
var overrides = config.NewViper()

var rootCmd = &cobra.Command{
	Use:           "interviewer",
	Short:         "Spoken mock interview practice",
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `interviewer records your answers through the microphone, detects when you
have finished speaking, and plays back the AI interviewer's next question.

Configuration is read from an InterviewConfig manifest (--config), then
overridden by INTERVIEW_* environment variables and command-line flags.
A .env file in the working directory is loaded first.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("verbose") {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error getting verbose flag: %v\n", err)
				return
			}
			logger.SetVerbose(verbose)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "InterviewConfig manifest path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// loadConfig resolves the effective configuration for cmd and applies its
// logging section.
func loadConfig(cmd *cobra.Command) (*config.InterviewConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.Spec.LoggerConfig()); err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetVerbose(true)
	}
	return cfg, nil
}

// setupVersion configures the version display
func setupVersion() {
	rootCmd.SetVersionTemplate(version.GetVersionInfo() + "\n")
}

func Execute() {
	setupVersion()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
