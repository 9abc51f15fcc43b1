package main

import (
	"os"
	"os/signal"

	"github.com/Pulgas25/activacel-fans-full/internal/ui"
	"github.com/Pulgas25/activacel-fans-full/internal/version"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "fancall",
	Short:   "One-to-one video calls over WebRTC, from the terminal",
	Long:    `Fancall connects two participants in a private video call using WebRTC. One side hosts a room, the other joins it by room ID; the signaling server only relays the handshake, and media flows peer to peer.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
