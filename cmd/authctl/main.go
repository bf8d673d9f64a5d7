// Command authctl is an operator console for the auth service.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/authgateway/internal/cli"
	"github.com/dmitrijs2005/authgateway/internal/cli/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
