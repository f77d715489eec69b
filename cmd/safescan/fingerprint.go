// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safescan/internal/result"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print the override fingerprint for an item name",
	Long: `Fingerprint prints the key under which corrections for an item are
stored. The confirmed name wins over the guessed one when both are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var confirmed, guessed *string
		if cmd.Flags().Changed("confirmed") {
			v, _ := cmd.Flags().GetString("confirmed")
			confirmed = &v
		}
		if cmd.Flags().Changed("guessed") {
			v, _ := cmd.Flags().GetString("guessed")
			guessed = &v
		}
		fp := result.ComputeItemFingerprint(confirmed, guessed)
		if fp == nil {
			return fmt.Errorf("no usable item name")
		}
		fmt.Println(*fp)
		return nil
	},
}

func init() {
	fingerprintCmd.Flags().String("confirmed", "", "item name confirmed by the user")
	fingerprintCmd.Flags().String("guessed", "", "item name guessed from the image")

	rootCmd.AddCommand(fingerprintCmd)
}
