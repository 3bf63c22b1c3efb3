// Command replica runs a single node of the cluster. The first argument
// is its own id, the rest are its peers' ids.
package main

import (
	"log"
	"os"

	"github.com/hashicorp/go-hclog"

	"raftkv/config"
	"raftkv/consensus"
	"raftkv/transport"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <own-id> [peer-id ...]", os.Args[0])
	}
	id := os.Args[1]
	peers := os.Args[2:]

	level := hclog.Info
	if lvl := hclog.LevelFromString(os.Getenv("RAFTKV_LOG_LEVEL")); lvl != hclog.NoLevel {
		level = lvl
	}
	logr := hclog.New(&hclog.LoggerOptions{
		Name:  "replica",
		Level: level,
	})

	conn, err := transport.Dial(id, logr)
	if err != nil {
		logr.Error("failed to dial transport endpoint", "id", id, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	cfg := config.New(id, peers)
	r := consensus.New(cfg, conn, logr)

	logr.Info("replica starting", "id", id, "peers", peers, "majority", cfg.Majority())
	if err := r.Run(); err != nil {
		logr.Error("event loop exited with error", "error", err)
		os.Exit(1)
	}
	logr.Info("replica stopped")
}
