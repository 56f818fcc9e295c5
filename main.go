package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/tentens-tech/lease-dashboard/internal/delivery/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		log.Fatalln(err)
	}
	os.Exit(0)
}
