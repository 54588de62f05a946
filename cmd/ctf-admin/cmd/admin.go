package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
	Long:  `Commands for managing administrative accounts.`,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an administrative account with the sudo role.

This writes directly to storage, so it works before any admin exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		services, store, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		admin, err := services.Auth.CreateAdmin(ctx, adminName, adminEmail, adminPassword)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		fmt.Printf("Admin created:\n")
		fmt.Printf("  ID:    %s\n", admin.ID)
		fmt.Printf("  Name:  %s\n", admin.Name)
		fmt.Printf("  Email: %s\n", admin.Email)
		fmt.Printf("  Role:  %s\n", admin.Role)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "Admin display name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (login identifier)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	_ = adminCreateCmd.MarkFlagRequired("name")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
}
