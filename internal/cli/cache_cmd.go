// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cache_cmd.go - Cache maintenance commands.
//
// Command: cache [subcommand]
//
// Subcommands:
//   stats (default)     Show cache statistics
//   clear               Drop all cached specs and remembered values
//   purge               Reclaim expired rows only
//
// Examples:
//   quocli cache                Show stats
//   quocli cache stats --json   Stats as JSON
//   quocli cache clear          Forget everything except history
//   quocli cache purge          Drop expired rows, keep the rest

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/quocli/internal/cache"
	"github.com/jeranaias/quocli/internal/config"
	"github.com/jeranaias/quocli/internal/util"
)

// HandleCache runs the cache maintenance subcommands.
func HandleCache(args Args) int {
	cfg := config.Global()
	if !cfg.Cache.Enabled {
		fmt.Fprintln(os.Stderr, "quocli: cache is disabled in config")
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		return Fail(err)
	}
	defer store.Close()

	ctx := context.Background()

	switch args.Subcommand {
	case "", "stats":
		return cacheStats(ctx, store, args.JSON)
	case "clear":
		n, err := store.Clear(ctx)
		if err != nil {
			return Fail(err)
		}
		fmt.Printf("Cleared %d cached rows.\n", n)
		return 0
	case "purge":
		n, err := store.PurgeExpired(ctx, time.Now())
		if err != nil {
			return Fail(err)
		}
		fmt.Printf("Purged %d expired rows.\n", n)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "quocli: unknown cache subcommand %q (want stats, clear or purge)\n", args.Subcommand)
		return 1
	}
}

func cacheStats(ctx context.Context, store *cache.Store, asJSON bool) int {
	stats, err := store.Stats(ctx)
	if err != nil {
		return Fail(err)
	}

	if asJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return Fail(err)
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Println("Cache statistics:")
	rows := []struct {
		label string
		count int
	}{
		{"Specs", stats.Specs},
		{"Values", stats.Values},
		{"Executions", stats.Executions},
	}
	for _, r := range rows {
		fmt.Printf("  %s %d\n", util.PadRight(r.label+":", 12), r.count)
	}
	return 0
}

// openStore opens the cache database described by the config.
func openStore(cfg *config.Config) (*cache.Store, error) {
	path, err := cfg.CachePath()
	if err != nil {
		return nil, err
	}
	keyPath, err := cfg.KeyPath()
	if err != nil {
		return nil, err
	}
	return cache.Open(cache.Options{
		Path:     path,
		SpecTTL:  time.Duration(cfg.Cache.TTLDays) * 24 * time.Hour,
		ValueTTL: time.Duration(cfg.Cache.ValuesTTLDays) * 24 * time.Hour,
		KeyPath:  keyPath,
	})
}
