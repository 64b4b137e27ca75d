package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jamhub-peer",
	Short: "Headless jamhub participant",
	Long: `jamhub-peer joins a jamhub room from the terminal. Audio and video flow
directly between participants; the relay only introduces them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd.AddCommand(newJoinCmd())
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("jamhub-peer")
		os.Exit(1)
	}
}
