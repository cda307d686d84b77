package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDonateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "donate <campaign-id> <amount>",
		Short: "Donate an amount to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.auth.IsAuthenticated() {
				return errors.New("log in before donating")
			}

			campaignID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("campaign id must be a number")
			}
			amount := args[1]
			if parsed, err := strconv.ParseFloat(amount, 64); err != nil || parsed <= 0 {
				return fmt.Errorf("amount must be a positive number")
			}

			if err := a.client.Donate(cmd.Context(), campaignID, amount); err != nil {
				return err
			}
			fmt.Println("Thank you, your donation was received.")
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your donation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.auth.IsAuthenticated() {
				return errors.New("log in to see your donation history")
			}

			records, err := a.client.Donations(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No donations yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCAMPAIGN\tAMOUNT\tSTATUS")
			for _, record := range records {
				fmt.Fprintf(w, "%s\t%s\t$%s\t%s\n",
					record.DonatedAt, record.CampaignName, record.Amount, record.Status)
			}
			return w.Flush()
		},
	}
}
