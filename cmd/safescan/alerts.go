// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List and acknowledge admin alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's admin alerts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		unread, _ := cmd.Flags().GetBool("unread")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(context.Background(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		alerts, err := st.ListAlerts(context.Background(), userID, unread)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(os.Stdout, alerts)
		}
		if len(alerts) == 0 {
			fmt.Println("No alerts.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-4s  %s\n", "ID", "Created", "Read", "Summary")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
		for _, a := range alerts {
			read := "no"
			if a.IsRead {
				read = "yes"
			}
			fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-4s  %s\n",
				a.ID, a.CreatedAt.Format(time.DateTime), read, a.Summary)
		}
		fmt.Fprintf(os.Stdout, "\n%d alerts\n", len(alerts))
		return nil
	},
}

var alertsReadCmd = &cobra.Command{
	Use:   "read <alert-id>",
	Short: "Mark an alert as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(context.Background(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.MarkAlertRead(context.Background(), userID, args[0])
	},
}

func init() {
	alertsCmd.PersistentFlags().String("user", "", "user ID")
	alertsCmd.MarkPersistentFlagRequired("user")

	alertsListCmd.Flags().Bool("unread", false, "only unread alerts")
	alertsListCmd.Flags().Bool("json", false, "output alerts as JSON")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsReadCmd)

	rootCmd.AddCommand(alertsCmd)
}
