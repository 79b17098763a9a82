// The addaccount command registers a user account in the server database.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kisaten/bancho/internal/core"
	"github.com/kisaten/bancho/internal/core/auth"
	"github.com/kisaten/bancho/internal/core/data"
)

func main() {
	app := &cli.App{
		Name:  "addaccount",
		Usage: "register an account in the bancho database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the directory containing the server config file",
				EnvVars: []string{"BANCHO_CONFIG"},
				Value:   "./",
			},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "email"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	config, err := core.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	db, err := data.Open(config.Database.Path, false)
	if err != nil {
		return err
	}
	defer data.Shutdown(db)

	account, err := auth.NewService(db).CreateAccount(
		c.String("username"), c.String("password"), c.String("email"))
	if err != nil {
		return err
	}

	fmt.Printf("created account %d (%s)\n", account.ID, account.Username)
	return nil
}
