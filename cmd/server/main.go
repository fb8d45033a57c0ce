package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/docsync/internal/flagx"
	"github.com/dmitrijs2005/docsync/internal/logging"
	"github.com/dmitrijs2005/docsync/internal/server"
	"github.com/dmitrijs2005/docsync/internal/server/config"
)

// Usage:
//
//	server [flags]             serve the sync API
//	server [flags] token <id>  print an access token for user id
func main() {

	ctx := context.Background()
	args := os.Args[1:]
	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if pos := flagx.Positional(args, config.ValueFlags); len(pos) > 0 {
		if pos[0] != "token" || len(pos) != 2 {
			log.Fatalf("usage: server [flags] [token <user-id>]")
		}
		tok, err := server.IssueToken(cfg, pos[1])
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(tok)
		return
	}

	logger := logging.NewJSON(os.Stdout, cfg.Level())
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
