// mortpion runs the MortPion game server.
//
// Usage:
//
//	mortpion serve            - Start the WebSocket + HTTP server
//
// Global flags:
//
//	--config <path>  - Path to a TOML config file (optional)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfigPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mortpion",
	Short: "MortPion - real-time multiplayer board game server",
	Long: `MortPion serves the turn-based 3x3 stacking board game over
WebSocket, with public and private rooms, strict server-side rule
enforcement, and a lobby HTTP API for browsing joinable rooms.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to a TOML config file")
	rootCmd.AddCommand(serveCmd)
}
