package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/employee-admin/pkg/config"
	"github.com/noah-isme/employee-admin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg, "employeectl")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	app := newApp(cfg.Console.APIBaseURL, cfg.Console.ExportDir, logr)
	if err := newRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
