package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/richard-senior/formscore/internal/config"
	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/internal/processor"
	"github.com/richard-senior/formscore/pkg/transport"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: formscore <command> [-config file.yaml] [-force]\n\ncommands: %s\n",
		strings.Join(processor.Commands, ", "))
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	if command == "-h" || command == "--help" || command == "help" {
		usage()
		return
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "yaml configuration file")
	force := fs.Bool("force", false, "download source files even when cached")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *force {
		cfg.ForceDownload = true
	}
	config.UpdateConfig(cfg)

	// Set log output before any logging occurs
	logger.SetShowDateTime(true)
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if err := logger.SetLogOutput(rune(cfg.LogOutput[0])); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	transport.CABundlePath = cfg.CABundlePath

	logger.Info("Starting formscore", command)

	ctx := context.Background()
	p, err := processor.New(ctx, cfg, os.Stdout)
	if err != nil {
		logger.Error("Failed to start:", err)
		os.Exit(1)
	}
	if err := p.Process(ctx, command); err != nil {
		logger.Error("Command failed:", err)
		if errors.Is(err, processor.ErrUnknownCommand) {
			usage()
		}
		p.Close()
		os.Exit(1)
	}
	p.Close()
	logger.Info("Finished", command)
}
