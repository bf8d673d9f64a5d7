// Command gateway runs the public HTTP gateway in front of the auth service.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/authgateway/internal/gateway"
	"github.com/dmitrijs2005/authgateway/internal/gateway/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := gateway.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
