package main

import (
	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
	"github.com/spf13/cobra"
)

var (
	flagJoinServer  string
	flagJoinSTUN    string
	flagJoinVideo   string
	flagJoinAudio   string
	flagJoinSaveDir string
)

var joinCmd = &cobra.Command{
	Use:     "join <room-id>",
	Aliases: []string{"j"},
	Short:   "Join a call hosted by someone else",
	Long: `Join an existing call as a fan. The host decides the room ID and
shares it with you.

Examples:
  fancall join mi-sala
  fancall join mi-sala --video cam.ivf --audio mic.ogg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(args[0], signaling.RoleFan, callOptions{
			ServerURL:  flagJoinServer,
			STUNServer: flagJoinSTUN,
			VideoPath:  flagJoinVideo,
			AudioPath:  flagJoinAudio,
			SaveDir:    flagJoinSaveDir,
		})
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVarP(&flagJoinServer, "server", "s", "", "Signaling server WebSocket URL")
	joinCmd.Flags().StringVar(&flagJoinSTUN, "stun", "", "Custom STUN server")
	joinCmd.Flags().StringVar(&flagJoinVideo, "video", "", "VP8 video file to send (IVF container)")
	joinCmd.Flags().StringVar(&flagJoinAudio, "audio", "", "Opus audio file to send (Ogg container)")
	joinCmd.Flags().StringVarP(&flagJoinSaveDir, "save-dir", "o", "", "Record received media into this directory")
}
