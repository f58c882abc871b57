package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/choeurtis18/MortPion/internal/board"
	"github.com/choeurtis18/MortPion/internal/config"
	"github.com/choeurtis18/MortPion/internal/lobby"
	"github.com/choeurtis18/MortPion/internal/room"
	"github.com/choeurtis18/MortPion/internal/session"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MortPion WebSocket and HTTP server",
	Long: `Start the lobby, its background TTL sweep, the session dispatcher,
and an HTTP mux serving /ws (WebSocket), /health and /rooms (lobby listing).

Examples:
  mortpion serve
  mortpion serve --addr :9000
  mortpion --config ./mortpion.toml serve`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address, overrides config/env")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		log.Fatalf("[mortpion] failed to load config: %v", err)
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	palette, err := parsePalette(cfg.ColorPalette)
	if err != nil {
		log.Fatalf("[mortpion] invalid color_palette: %v", err)
	}

	opts := room.Options{
		TurnTimeout:      cfg.TurnTimeout,
		ReplayVoteWindow: cfg.ReplayVoteWindow,
		RoomTTL:          cfg.RoomTTL,
		SkipLimit:        cfg.ConsecutiveSkipLimit,
		ColorPalette:     palette,
	}

	lby := lobby.New(opts, cfg.CleanupSweep)
	defer lby.Stop()

	dispatcher := session.New(lby, cfg.ReconnectGrace)
	httpHandler := session.NewHTTPHandler(lby)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", dispatcher.HandleWebSocket)
	httpHandler.RegisterRoutes(mux)

	plain := !isatty.IsTerminal(os.Stdout.Fd())
	if plain {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	log.Printf("[mortpion] turn timeout %s, replay vote window %s, room ttl %s",
		cfg.TurnTimeout, cfg.ReplayVoteWindow, humanize.Time(time.Now().Add(cfg.RoomTTL)))
	log.Printf("[mortpion] listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, withCORS(mux)); err != nil {
		log.Fatalf("[mortpion] server error: %v", err)
	}
}

func parsePalette(names []string) ([]board.Color, error) {
	if len(names) == 0 {
		return board.Palette, nil
	}
	palette := make([]board.Color, 0, len(names))
	for _, n := range names {
		c := board.Color(n)
		switch c {
		case board.Red, board.Blue, board.Green, board.Yellow:
			palette = append(palette, c)
		default:
			return nil, fmt.Errorf("unknown color %q", n)
		}
	}
	return palette, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
