// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection commands.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Print the effective configuration as TOML
//   path                Print the config file location
//   init                Write a default config file if none exists

package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/quocli/internal/config"
)

// HandleConfig runs the config subcommands.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		cfg := config.Global()
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			return Fail(err)
		}
		return 0

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return Fail(err)
		}
		fmt.Println(path)
		return 0

	case "init":
		path, err := config.ConfigPath()
		if err != nil {
			return Fail(err)
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Config already exists at %s\n", path)
			return 0
		}
		if err := config.Save(config.Default()); err != nil {
			return Fail(err)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "quocli: unknown config subcommand %q (want show, path or init)\n", args.Subcommand)
		return 1
	}
}
