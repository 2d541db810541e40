// quocli - interactive forms for any command line tool.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/quocli/internal/cli"
	"github.com/jeranaias/quocli/internal/config"
	"github.com/jeranaias/quocli/internal/util"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	loadConfig(args)

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	case cli.CmdCache:
		os.Exit(cli.HandleCache(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	default:
		os.Exit(cli.HandleRun(args))
	}
}

// loadConfig installs the global config. A broken config file is a warning,
// not a fatal error: the defaults always work.
func loadConfig(args cli.Args) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		util.Warnf("config: %v (using defaults)", err)
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
	}
	config.SetGlobal(cfg)
}
