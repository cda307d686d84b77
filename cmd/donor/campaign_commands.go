package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matrixvert/donorcli/donation"
)

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List campaign categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, category := range categories {
				fmt.Fprintf(w, "%d\t%s\n", category.ID, category.Name)
			}
			return w.Flush()
		},
	}
}

func newCampaignsCmd(a *app) *cobra.Command {
	var categoryID int

	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List campaigns, optionally filtered by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			var campaigns []donation.Campaign
			var err error
			if categoryID > 0 {
				campaigns, err = a.client.CampaignsByCategory(cmd.Context(), categoryID)
			} else {
				campaigns, err = a.client.Campaigns(cmd.Context())
			}
			if err != nil {
				return err
			}
			printCampaigns(campaigns)
			return nil
		},
	}

	cmd.Flags().IntVarP(&categoryID, "category", "c", 0, "only campaigns of this category id")
	return cmd
}

func newCampaignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "campaign <id>",
		Short: "Show one campaign in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("campaign id must be a number")
			}
			campaign, err := a.client.Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("%s (#%d)\n", campaign.Title, campaign.ID)
			fmt.Printf("NGO:       %s\n", campaign.NGO)
			fmt.Printf("Category:  %s\n", campaign.Category)
			fmt.Printf("Goal:      $%s\n", campaign.GoalAmount)
			fmt.Printf("Collected: $%s (%.0f%%)\n", campaign.Progress.Raised, campaign.Progress.Percentage)
			fmt.Printf("Runs:      %s to %s\n", campaign.StartDate, campaign.EndDate)
			if campaign.Description != "" {
				fmt.Printf("\n%s\n", campaign.Description)
			}
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search campaigns by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaigns, err := a.client.SearchCampaigns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(campaigns) == 0 {
				fmt.Println("No campaigns found.")
				return nil
			}
			printCampaigns(campaigns)
			return nil
		},
	}
}

func printCampaigns(campaigns []donation.Campaign) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tNGO\tGOAL\tCOLLECTED")
	for _, campaign := range campaigns {
		fmt.Fprintf(w, "%d\t%s\t%s\t$%s\t$%s (%.0f%%)\n",
			campaign.ID, campaign.Title, campaign.NGO,
			campaign.GoalAmount, campaign.Progress.Raised, campaign.Progress.Percentage)
	}
	w.Flush()
}
