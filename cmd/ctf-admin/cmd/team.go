package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctfplayground/backend/internal/domain"
)

var (
	teamName    string
	teamLeader  string
	teamMembers []string
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
	Long:  `Commands for registering and inspecting competition teams.`,
}

// parseMember parses "Name:email" into a domain.Member
func parseMember(s string) (domain.Member, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Member{}, fmt.Errorf("invalid member %q, expected Name:email", s)
	}
	return domain.Member{Name: parts[0], Email: parts[1]}, nil
}

var teamRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a team",
	Long: `Register a team and print its generated credentials.

The password is shown once and cannot be recovered afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		leader, err := parseMember(teamLeader)
		if err != nil {
			return err
		}

		members := make([]domain.Member, 0, len(teamMembers))
		for _, m := range teamMembers {
			member, err := parseMember(m)
			if err != nil {
				return err
			}
			members = append(members, member)
		}

		ctx, cancel := cmdContext()
		defer cancel()

		services, store, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		resp, err := services.Team.Register(ctx, &domain.RegisterTeamRequest{
			TeamName: teamName,
			Leader:   leader,
			Members:  members,
		})
		if err != nil {
			return fmt.Errorf("failed to register team: %w", err)
		}

		fmt.Printf("Team registered:\n")
		fmt.Printf("  Name:     %s\n", resp.TeamName)
		fmt.Printf("  Team ID:  %s\n", resp.TeamID)
		fmt.Printf("  Password: %s\n", resp.Password)
		fmt.Println("\nStore these credentials now; the password is not shown again.")
		return nil
	},
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all teams",
	Long:  `List all registered teams with their scores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		services, store, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		teams, err := services.Team.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}

		if len(teams) == 0 {
			fmt.Println("No teams registered.")
			return nil
		}

		headers := []string{"TEAM ID", "NAME", "SCORE", "SOLVES"}
		rows := make([][]string, len(teams))
		for i, t := range teams {
			rows[i] = []string{
				t.TeamID,
				t.TeamName,
				strconv.Itoa(t.Score),
				strconv.Itoa(len(t.SolvedChallenges)),
			}
		}
		printTable(headers, rows)
		return nil
	},
}

func init() {
	teamRegisterCmd.Flags().StringVar(&teamName, "name", "", "Team name")
	teamRegisterCmd.Flags().StringVar(&teamLeader, "leader", "", "Team leader as Name:email")
	teamRegisterCmd.Flags().StringArrayVar(&teamMembers, "member", nil, "Team member as Name:email (repeatable)")
	_ = teamRegisterCmd.MarkFlagRequired("name")
	_ = teamRegisterCmd.MarkFlagRequired("leader")

	teamCmd.AddCommand(teamRegisterCmd)
	teamCmd.AddCommand(teamListCmd)
}
