// Command tabreportd runs the scheduled report daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tabreport/internal/app"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file (JSON or YAML)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(*configPath).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tabreportd:", err)
		os.Exit(1)
	}
}
