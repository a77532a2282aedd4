package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/SirFelix/TDA"
)

// Connects to a local DAQ websocket server, starts acquisition, and
// prints the freshest pressure reading whenever the engine coalesces a
// batch of updates.
func main() {
	cfg := &tda.Config{}
	engine, err := tda.New(cfg)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}

	cancel := engine.Subscribe(func() {
		if snap := engine.Snapshot(tda.ChannelRawPressure); len(snap) > 0 {
			last := snap[len(snap)-1]
			fmt.Printf("raw pressure %.2f @ %s (%d buffered)\n",
				last.Value, last.Timestamp.Format(time.RFC3339), len(snap))
		}
	})
	defer cancel()

	if err := engine.Connect(tda.NetworkConfig("localhost", 9813)); err != nil {
		log.Fatalf("connect: %v", err)
	}
	if err := engine.Send(map[string]any{
		"type":   "command",
		"params": map[string]string{"action": "DAQstart"},
	}); err != nil {
		log.Printf("start acquisition: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
