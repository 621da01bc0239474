// Command arenademo runs a standalone arena: it builds a world from
// engineconfig.Config, spawns a handful of bots, and advances the tick
// loop on a ticker until interrupted. There is no rendering or network
// surface here — it exists to exercise the engine end to end and to
// leave behind a replay log for inspection.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"blastradius/internal/engine"
	"blastradius/internal/engineconfig"
	"blastradius/internal/eventbus"
	"blastradius/internal/replay"
	"blastradius/internal/worldstate"
)

func main() {
	cfg := engineconfig.Default()
	cfg.Width = getEnvInt("ARENA_WIDTH", cfg.Width)
	cfg.Height = getEnvInt("ARENA_HEIGHT", cfg.Height)
	cfg.TickRate = getEnvInt("ARENA_TICK_RATE", cfg.TickRate)
	cfg.MaxPlayers = getEnvInt("ARENA_MAX_PLAYERS", cfg.MaxPlayers)

	log.Println("🎮 ================================")
	log.Println("🎮  ARENA DEMO - BLAST RADIUS ENGINE")
	log.Println("🎮 ================================")
	log.Printf("🗺️  Grid: %dx%d, %d TPS, %d players", cfg.Width, cfg.Height, cfg.TickRate, cfg.MaxPlayers)

	e, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to construct engine: %v", err)
	}

	storePath := getEnvWithDefault("ARENA_REPLAY_PATH", "")
	var store *replay.Store
	if storePath != "" {
		store, err = replay.OpenStore(storePath)
		if err != nil {
			log.Printf("⚠️ Replay store disabled: %v", err)
			store = nil
		} else {
			log.Printf("📼 Replay store: %s", storePath)
			defer store.Close()
			e.SetStore(store)
		}
	}
	e.StartRecording()

	_, statusCh := e.Bus.Subscribe(func(ev eventbus.Event) bool {
		return ev.Kind == eventbus.KindBot && ev.Bot.Kind == eventbus.BotStatusEv
	})
	go func() {
		for ev := range statusCh {
			log.Printf("🤖 bot %d: %s", ev.Bot.BotID, ev.Bot.Status)
		}
	}()

	for i := 0; i < cfg.MaxPlayers; i++ {
		id := worldstate.AgentId(i + 1)
		e.AddBot(id, int64(i)+1)
		log.Printf("🧟 spawned bot %d", id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Second / time.Duration(cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("✅ Arena running. Press Ctrl+C to stop.")

	var tick uint64
run:
	for {
		select {
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				log.Printf("❌ tick %d failed: %v", tick, err)
				break run
			}
			tick++
			if store != nil && tick%uint64(cfg.TickRate) == 0 {
				log.Printf("⏱️  tick %d, hash=%x", tick, e.Hashes()[len(e.Hashes())-1])
			}
		case <-quit:
			break run
		}
	}

	log.Println("🛑 Shutting down...")
	e.Shutdown()

	replayLog := e.StopRecording()
	log.Printf("📼 Recorded %d deltas", len(replayLog.Deltas))

	log.Println("👋 Goodbye!")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
