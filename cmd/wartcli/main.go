// wartcli is an offline helper for wartlock: it prints phrases and
// addresses and re-keys stored wallets without starting the API.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "wartcli"
	app.Usage = "offline Warthog wallet tools"
	app.Commands = []cli.Command{
		mnemonicCommand,
		addressCommand,
		rekeyCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[wartcli] %v\n", err)
		os.Exit(1)
	}
}
