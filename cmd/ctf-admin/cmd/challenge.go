package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Inspect challenges",
	Long:  `Commands for inspecting the challenge catalog.`,
}

var challengeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all challenges",
	Long:  `List every challenge including hidden ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		services, store, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		challenges, err := services.Challenge.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list challenges: %w", err)
		}

		if len(challenges) == 0 {
			fmt.Println("No challenges found.")
			return nil
		}

		headers := []string{"ID", "NAME", "CATEGORY", "VALUE", "VISIBLE", "SOLVES"}
		rows := make([][]string, len(challenges))
		for i, ch := range challenges {
			visible := "yes"
			if !ch.Visible {
				visible = "no"
			}
			rows[i] = []string{
				ch.ID,
				ch.Name,
				string(ch.Category),
				strconv.Itoa(ch.Value),
				visible,
				strconv.Itoa(len(ch.SolvedBy)),
			}
		}
		printTable(headers, rows)
		return nil
	},
}

func init() {
	challengeCmd.AddCommand(challengeListCmd)
}
