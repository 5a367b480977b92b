package main

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"scalebridge/hub"
)

// replayer feeds packets from a captured text log through the normal
// parse/broadcast path, one per line, for development without a scale.
type replayer struct {
	*ReplayFlags
}

func newReplayer(flags *ReplayFlags) replayer {
	return replayer{
		flags,
	}
}

func (r replayer) run(ctx context.Context, cache *hub.Cache, registry *hub.Registry, log *zap.SugaredLogger) error {
	for {
		if err := r.playOnce(ctx, cache, registry, log); err != nil {
			return err
		}
		if !r.Loop || ctx.Err() != nil {
			break
		}
	}
	return nil
}

func (r replayer) playOnce(ctx context.Context, cache *hub.Cache, registry *hub.Registry, log *zap.SugaredLogger) error {
	file, err := os.Open(r.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		handlePacket(line, cache, registry, log)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.Interval):
		}
	}
	log.Info("end of replay")
	return scanner.Err()
}
