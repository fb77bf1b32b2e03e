package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/rmo02/dash-financeiro/pkg/config"
	"github.com/rmo02/dash-financeiro/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "dash",
	})

	cfgFile := pflag.StringP("config", "c", "", "Config file (default is config.yaml)")
	pflag.String("addr", "127.0.0.1:3000", "Listen address")
	pflag.String("sheet", "", "Preferred worksheet name")
	pflag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pflag.String("encoding", "utf-8", "Encoding of exported CSV files (utf-8, windows-1252)")
	pflag.Parse()

	cfg, err := config.Build(*cfgFile, pflag.CommandLine)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(cfg.Level())

	srv := server.New(cfg, logger)
	logger.Info("starting server", "addr", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
