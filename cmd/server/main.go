package main

import (
	"context"
	"log"

	"github.com/Anish-3-12/public-issue/internal/server"
	"github.com/Anish-3-12/public-issue/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
