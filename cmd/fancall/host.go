package main

import (
	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
	"github.com/spf13/cobra"
)

var (
	flagHostServer  string
	flagHostSTUN    string
	flagHostVideo   string
	flagHostAudio   string
	flagHostSaveDir string
)

var hostCmd = &cobra.Command{
	Use:     "host <room-id>",
	Aliases: []string{"h"},
	Short:   "Host a call and wait for a fan to join",
	Long: `Host a call as the room creator. The call starts once a fan joins
the same room ID.

Examples:
  fancall host mi-sala
  fancall host mi-sala --video clip.ivf --audio clip.ogg
  fancall host mi-sala --save-dir ./recordings`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(args[0], signaling.RoleCreator, callOptions{
			ServerURL:  flagHostServer,
			STUNServer: flagHostSTUN,
			VideoPath:  flagHostVideo,
			AudioPath:  flagHostAudio,
			SaveDir:    flagHostSaveDir,
		})
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().StringVarP(&flagHostServer, "server", "s", "", "Signaling server WebSocket URL")
	hostCmd.Flags().StringVar(&flagHostSTUN, "stun", "", "Custom STUN server")
	hostCmd.Flags().StringVar(&flagHostVideo, "video", "", "VP8 video file to send (IVF container)")
	hostCmd.Flags().StringVar(&flagHostAudio, "audio", "", "Opus audio file to send (Ogg container)")
	hostCmd.Flags().StringVarP(&flagHostSaveDir, "save-dir", "o", "", "Record received media into this directory")
}
