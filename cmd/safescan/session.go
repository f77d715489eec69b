// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safescan/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and update scan session counters",
	Long: `Session tracks consecutive manual-review outcomes in one scan session.
After three in a row the user is offered escalation, once per session.`,
}

var sessionRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one scan attempt",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, sessionID := sessionFlags(cmd)
		mrr, _ := cmd.Flags().GetBool("manual-review")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(context.Background(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := st.RecordAttempt(context.Background(), userID, sessionID, mrr)
		if err != nil {
			return err
		}
		printCounters(os.Stdout, c)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a session's counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, sessionID := sessionFlags(cmd)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(context.Background(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := st.GetSession(context.Background(), userID, sessionID)
		if err != nil {
			return err
		}
		printCounters(os.Stdout, c)
		return nil
	},
}

func sessionFlags(cmd *cobra.Command) (userID, sessionID string) {
	userID, _ = cmd.Flags().GetString("user")
	sessionID, _ = cmd.Flags().GetString("session")
	return userID, sessionID
}

func printCounters(w io.Writer, c types.SessionCounters) {
	fmt.Fprintf(w, "attempts:         %d\n", c.AttemptCount)
	fmt.Fprintf(w, "manual reviews:   %d\n", c.ManualReviewCount)
	fmt.Fprintf(w, "escalation shown: %t\n", c.EscalationShown)
	if c.ShouldShowEscalation {
		fmt.Fprintln(w, "\noffer escalation now")
	}
}

func init() {
	sessionCmd.PersistentFlags().String("user", "", "user ID")
	sessionCmd.PersistentFlags().String("session", "", "scan session ID")
	sessionCmd.MarkPersistentFlagRequired("user")
	sessionCmd.MarkPersistentFlagRequired("session")

	sessionRecordCmd.Flags().Bool("manual-review", false, "the attempt ended in manual review")

	sessionCmd.AddCommand(sessionRecordCmd)
	sessionCmd.AddCommand(sessionShowCmd)

	rootCmd.AddCommand(sessionCmd)
}
