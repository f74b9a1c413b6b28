package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/contestclient/internal/buildinfo"
	"github.com/dmitrijs2005/contestclient/internal/client/cli"
	"github.com/dmitrijs2005/contestclient/internal/client/config"
	"github.com/dmitrijs2005/contestclient/internal/flagx"
)

func main() {
	os.Exit(run())
}

func run() int {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer app.Close()

	// configuration flags were consumed by config.LoadConfig
	owned := append(append([]string{}, config.Flags...), flagx.ConfigFileFlags...)
	args := flagx.StripArgs(os.Args, owned)

	if err := cli.NewCommandLine(app).RunContext(ctx, args); err != nil {
		return 1
	}
	return 0
}
