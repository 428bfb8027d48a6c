package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "memojo",
	Short: "Personal companion: voice commands, daily feed and journal",
	Long: `memojo runs a local daemon that turns voice commands into recipes,
playlists, travel plans and journal prompts, and keeps a personalized
daily feed generated from your profile.

Start the daemon with "memojo start"; the other commands talk to it over
the loopback API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(captionCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(lovesCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	noColor = colorDisabled()
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
