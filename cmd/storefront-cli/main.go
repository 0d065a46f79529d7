// Command storefront-cli browses the storefront catalog over its REST API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjod/go_storefront/cmd/storefront-cli/internal/commands"
	"github.com/fjod/go_storefront/internal/logger"
)

func main() {
	log := logger.New(logger.Options{Level: os.Getenv("LOG_LEVEL")})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCmd(commands.HTTPCatalog, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}
