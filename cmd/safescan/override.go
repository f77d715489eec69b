// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safescan/internal/result"
	"github.com/pdiddy/safescan/pkg/types"
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Store or show a user's correction for an item",
	Long: `Override manages corrections a user made to an analysis. Corrections
are keyed by the item's fingerprint, derived from its name, and are merged
over later analyses of the same item.`,
}

var overrideSetCmd = &cobra.Command{
	Use:   "set <result.json>",
	Short: "Store a corrected analysis for an item",
	Long: `Set reads a corrected analysis from a JSON file and stores it for the
item. With --legacy the file uses the older allergensDetected shape.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, fp, err := overrideKey(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		var r types.AnalysisResult
		if legacy, _ := cmd.Flags().GetBool("legacy"); legacy {
			var l types.LegacyAnalysis
			if err := json.Unmarshal(data, &l); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			r = result.FromLegacy(l)
		} else if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(context.Background(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.PutOverride(context.Background(), userID, fp, r); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "stored override %s\n", fp)
		return nil
	},
}

var overrideShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored correction for an item",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, fp, err := overrideKey(cmd)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(context.Background(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := st.GetOverride(context.Background(), userID, fp)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, r)
	},
}

func overrideKey(cmd *cobra.Command) (userID, fingerprint string, err error) {
	userID, _ = cmd.Flags().GetString("user")
	itemName, _ := cmd.Flags().GetString("item-name")
	fp := result.ComputeItemFingerprint(&itemName, nil)
	if fp == nil {
		return "", "", fmt.Errorf("item name %q has no usable characters", itemName)
	}
	return userID, *fp, nil
}

func init() {
	overrideCmd.PersistentFlags().String("user", "", "user ID")
	overrideCmd.PersistentFlags().String("item-name", "", "item name the correction applies to")
	overrideCmd.MarkPersistentFlagRequired("user")
	overrideCmd.MarkPersistentFlagRequired("item-name")

	overrideSetCmd.Flags().Bool("legacy", false, "input uses the legacy allergensDetected shape")

	overrideCmd.AddCommand(overrideSetCmd)
	overrideCmd.AddCommand(overrideShowCmd)

	rootCmd.AddCommand(overrideCmd)
}
