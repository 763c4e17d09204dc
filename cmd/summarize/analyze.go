package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"summymail/internal/analysis"
	"summymail/internal/config"
	"summymail/internal/display"
	"summymail/internal/emails"
	"summymail/internal/openai"
	"summymail/internal/session"

	"github.com/spf13/cobra"
)

type analyzeOutput struct {
	Reply       string   `json:"reply"`
	ActionItems []string `json:"action_items"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Analyze an email thread read from FILE (.txt, .eml, .mbox) or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		switch {
		case len(args) == 1 && emails.IsMailFile(args[0]):
			thread, err := emails.ReadThread(args[0])
			if err != nil {
				return err
			}
			in = strings.NewReader(thread)
		case len(args) == 1 && args[0] != "-":
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open thread: %w", err)
			}
			defer f.Close()
			in = f
		}

		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		return runAnalyze(cmd.Context(), analyzer, in, cmd.OutOrStdout(), jsonOutput)
	},
}

type threadAnalyzer interface {
	Analyze(ctx context.Context, threadText string) (string, error)
}

// newAnalyzer builds the model-backed analyzer; replaced in tests
var newAnalyzer = func(cfg *config.Config) (threadAnalyzer, error) {
	client, err := openai.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return analysis.NewAnalyzer(client, cfg.SetupLogger()), nil
}

// runAnalyze reads the thread from in, analyzes it and writes the result to out.
func runAnalyze(ctx context.Context, analyzer threadAnalyzer, in io.Reader, out io.Writer, asJSON bool) error {
	thread, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read thread: %w", err)
	}

	reply, err := analyzer.Analyze(ctx, string(thread))
	if err != nil {
		return err
	}

	items := analysis.ExtractActionItems(reply)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeOutput{Reply: reply, ActionItems: items})
	}

	checklist := make([]session.ActionItem, len(items))
	for i, text := range items {
		checklist[i] = session.ActionItem{Text: text}
	}

	display.Reply(out, reply)
	fmt.Fprintln(out)
	display.Checklist(out, checklist)
	return nil
}
