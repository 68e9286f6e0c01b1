package cmd

import (
	"github.com/achilleasa/polaris-viewer/log"
	"github.com/urfave/cli"
)

var logger = log.New("polaris")

func setupLogging(ctx *cli.Context) error {
	if config := ctx.GlobalString("log-level"); config != "" {
		if err := log.Configure(config); err != nil {
			return err
		}
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	return nil
}
