package main

import (
	"flag"
	"fmt"
	"os"

	"Broadside/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/server.json", "path to server config JSON")
	addr := flag.String("addr", "", "override address to listen on (e.g., 127.0.0.1:8080)")
	defsPath := flag.String("defs", "", "override path to game definitions JSON")
	logLevel := flag.String("log-level", "", "override log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var overrides server.AppConfigOverrides
	if *addr != "" {
		overrides.Addr = addr
	}
	if *defsPath != "" {
		overrides.DefsPath = defsPath
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	cfg = overrides.Apply(cfg)

	if err := server.StartApp(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
