package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matrixvert/donorcli/auth"
	"github.com/matrixvert/donorcli/donation"
	"github.com/matrixvert/donorcli/internal/config"
)

const appName = "donor"

// app holds the wired dependencies shared by every command.
type app struct {
	cfg    *config.Config
	client *donation.Client
	auth   *auth.Service
	log    zerolog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Browse charity campaigns and donate from the terminal",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			displayAppName()
			_ = cmd.Help()
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCategoriesCmd(a),
		newCampaignsCmd(a),
		newCampaignCmd(a),
		newSearchCmd(a),
		newDonateCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func displayAppName() {
	figure.NewFigure(appName, "cybermedium", true).Print()
	fmt.Println()
}
