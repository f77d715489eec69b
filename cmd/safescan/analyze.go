// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/safescan/internal/ocr"
	"github.com/pdiddy/safescan/internal/result"
	"github.com/pdiddy/safescan/internal/scan"
	"github.com/pdiddy/safescan/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [label-file]",
	Short: "Analyze label text against one or more profiles",
	Long: `Analyze reads label text and reports a verdict per profile.

The label comes from --text or from a file: .txt is plain label text, .json
is a recorded OCR response, .pdf is a data sheet with a text layer.

With --user, stored state is used as well: --item-name applies a saved
correction for the item, --session records the attempt for escalation, and
any detected allergen is stored as an admin alert.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fail-open") {
		cfg.Engine.FailOpenUnreadable, _ = cmd.Flags().GetBool("fail-open")
	}

	profilesPath, _ := cmd.Flags().GetString("profiles")
	profiles, err := readProfiles(profilesPath)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}

	inferred, _ := cmd.Flags().GetStringSlice("inferred")
	text, _ := cmd.Flags().GetString("text")
	opts := scan.OptionsFrom(cfg.Engine)

	var out types.Output
	switch {
	case len(args) == 1:
		resp, err := ocr.ForPath(args[0]).Read(ctx)
		if err != nil {
			return err
		}
		out = scan.AnalyzeOCR(engine, resp, profiles, inferred, opts)
	case cmd.Flags().Changed("text"):
		out = scan.Analyze(engine, types.Input{RawText: text, Profiles: profiles, InferredRisks: inferred}, opts)
	default:
		return fmt.Errorf("label required: pass a file or --text")
	}

	analysis := result.FromOutput(out)
	var counters *types.SessionCounters
	var alertID string

	userID, _ := cmd.Flags().GetString("user")
	if userID != "" {
		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if itemName, _ := cmd.Flags().GetString("item-name"); itemName != "" {
			if fp := result.ComputeItemFingerprint(&itemName, nil); fp != nil {
				override, err := st.GetOverride(ctx, userID, *fp)
				switch {
				case err == nil:
					analysis = result.ApplyUserOverrideToResult(analysis, override)
				case !errors.Is(err, types.ErrNotFound):
					fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				}
			}
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID != "" {
			c, err := st.RecordAttempt(ctx, userID, sessionID, out.NeedsManualReview())
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			} else {
				counters = &c
			}
		}

		if result.ShouldCreateAdminAlert(analysis) {
			alert := result.BuildAdminAlert(sessionID, analysis)
			alert.ID = uuid.NewString()
			alert.CreatedAt = time.Now().UTC()
			if err := st.PutAlert(ctx, userID, alert); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			} else {
				alertID = alert.ID
			}
		}
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return writeJSON(os.Stdout, struct {
			types.Output
			Analysis types.AnalysisResult   `json:"analysis"`
			Session  *types.SessionCounters `json:"session,omitempty"`
			AlertID  string                 `json:"alertId,omitempty"`
		}{out, analysis, counters, alertID})
	case "legacy":
		return writeJSON(os.Stdout, result.ToLegacy(analysis))
	case "text", "":
		printOutput(os.Stdout, out)
		if counters != nil && counters.ShouldShowEscalation {
			fmt.Fprintf(os.Stdout, "\n%d scans in a row needed manual review; consider contacting the manufacturer.\n", counters.ManualReviewCount)
		}
		if alertID != "" {
			fmt.Fprintf(os.Stdout, "\nadmin alert %s stored\n", alertID)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or legacy", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOutput(w io.Writer, out types.Output) {
	fmt.Fprintf(w, "%-20s  %-13s  %-10s  %s\n", "Profile", "Status", "Confidence", "Findings")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, r := range out.Results {
		name := r.ProfileName
		if name == "" {
			name = r.ProfileID
		}
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-13s  %-10.2f  %d\n", name, r.Status, r.Confidence, len(r.Findings))
		for _, f := range r.Findings {
			fmt.Fprintf(w, "    %-8s %-17s %-14s %q via %s (%.2f)\n",
				f.Severity, f.Kind, f.CanonicalTerm, f.MatchedText, f.Source, f.Confidence)
		}
		if len(r.InferredRisks) > 0 {
			fmt.Fprintf(w, "    unconfirmed risks: %s\n", strings.Join(r.InferredRisks, ", "))
		}
	}
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "\nwarning: %s", warn)
	}
	if len(out.Warnings) > 0 {
		fmt.Fprintln(w)
	}
}

func init() {
	analyzeCmd.Flags().String("profiles", "profiles.yaml", "YAML file listing the profiles to evaluate")
	analyzeCmd.Flags().String("text", "", "label text to analyze instead of a file")
	analyzeCmd.Flags().StringSlice("inferred", nil, "risks guessed from context, e.g. the dish name (comma-separated)")
	analyzeCmd.Flags().String("user", "", "user ID for stored overrides, sessions, and alerts")
	analyzeCmd.Flags().String("item-name", "", "item name used to look up a stored correction (requires --user)")
	analyzeCmd.Flags().String("session", "", "scan session ID to record the attempt under (requires --user)")
	analyzeCmd.Flags().String("format", "text", "output format: text, json, or legacy")
	analyzeCmd.Flags().Bool("fail-open", false, "report SAFE with warnings for unreadable labels")

	rootCmd.AddCommand(analyzeCmd)
}
