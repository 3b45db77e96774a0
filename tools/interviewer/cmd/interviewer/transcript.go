package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/interviewkit/runtime/statestore"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <session-ref>",
	Short: "Print a stored transcript, its questions and feedback",
	Long: `Print what was persisted for one interview. The session reference is
printed when an interview finishes. Only persistent backends (storage.type:
redis) keep data between runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var be backends
		defer func() { _ = be.Close() }()
		store, err := be.store(cfg.Spec.Storage)
		if err != nil {
			return err
		}
		return printTranscript(cmd.Context(), store, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}

// printTranscript writes the stored records for ref. Missing questions or
// feedback are reported but not treated as errors; a missing transcript is.
func printTranscript(ctx context.Context, store statestore.Store, ref string, w io.Writer) error {
	transcript, err := store.GetTranscript(ctx, ref)
	if errors.Is(err, statestore.ErrNotFound) {
		return fmt.Errorf("no interview stored for %s", ref)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Session %s\n\nTranscript:\n%s\n", ref, transcript)

	questions, err := store.GetQuestions(ctx, ref)
	if err != nil && !errors.Is(err, statestore.ErrNotFound) {
		return err
	}
	fmt.Fprintln(w, "\nQuestions:")
	if len(questions) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, q := range questions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, q)
	}

	feedback, err := store.GetFeedback(ctx, ref)
	switch {
	case errors.Is(err, statestore.ErrNotFound):
		fmt.Fprintln(w, "\nFeedback: (not available)")
		return nil
	case err != nil:
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, feedback, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(feedback)
	}
	fmt.Fprintf(w, "\nFeedback:\n%s\n", pretty.String())
	return nil
}
