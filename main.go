package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/arcturus-sim/startrek/server"
	"github.com/arcturus-sim/startrek/session"
	"github.com/arcturus-sim/startrek/world"
)

func main() {
	port := flag.Int("port", world.DefaultPort, "TCP port to listen on")
	snapshotPath := flag.String("snapshot", world.DefaultSnapshotPath, "world snapshot file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	masterKey, err := session.LoadMasterKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("master key unavailable")
	}

	gs := loadOrGenerate(*snapshotPath, logger)
	world.SeedStatic(gs)
	world.Rebuild(gs)

	srv := server.NewServer(gs, masterKey, *snapshotPath, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		srv.Shutdown()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// loadOrGenerate recovers the world from the snapshot file if one is
// present and loadable, and generates a fresh galaxy otherwise. A
// version mismatch or corrupt file regenerates rather than aborting.
func loadOrGenerate(path string, logger zerolog.Logger) *world.GameState {
	if _, err := os.Stat(path); err == nil {
		gs, err := world.LoadSnapshot(path)
		if err == nil {
			logger.Info().Str("path", path).Msg("world recovered from snapshot")
			return gs
		}
		logger.Warn().Str("path", path).Err(err).Msg("snapshot unusable, regenerating world")
	}

	gs := world.NewGameState()
	world.GenerateGalaxy(gs)
	logger.Info().Msg("fresh galaxy generated")
	return gs
}
