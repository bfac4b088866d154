package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"signal-desk/internal/domain"
	"signal-desk/internal/inference"
	"signal-desk/internal/session"

	"github.com/spf13/cobra"
)

// Inference is what the scan commands call.
type Inference interface {
	AnalyzeImage(ctx context.Context, shot inference.Screenshot) (*domain.AnalysisResult, error)
	GenerateSignals(ctx context.Context, symbols []string) ([]domain.Signal, error)
}

// newRootCmd builds the scan command tree. newService is only called by commands that
// reach the inference service.
func newRootCmd(newService func() Inference) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scan",
		Short: "Signal Desk - one-shot chart analysis and signal generation",
		Long: `scan runs a single chart analysis or signal generation against the configured
inference service and prints the result.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Print raw JSON")

	rootCmd.AddCommand(newInstrumentsCmd())
	rootCmd.AddCommand(newAnalyzeCmd(newService))
	rootCmd.AddCommand(newSignalsCmd(newService))
	return rootCmd
}

func newInstrumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List tradable instruments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON(cmd) {
				return writeJSON(out, domain.Instruments)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tNAME\tOTC")
			for _, inst := range domain.Instruments {
				fmt.Fprintf(w, "%s\t%s\t%t\n", inst.Symbol, inst.Name, inst.OTC)
			}
			return w.Flush()
		},
	}
}

func newAnalyzeCmd(newService func() Inference) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Predict the next candle from a chart screenshot",
		Long: `Send a chart screenshot to the model and print the predicted next candle.
Example: scan analyze --file chart.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read screenshot: %w", err)
			}
			shot, err := inference.ScreenshotFromBytes(data)
			if err != nil {
				return err
			}

			result, err := newService().AnalyzeImage(cmd.Context(), shot)
			if err != nil {
				return fmt.Errorf("%s: %w", session.AnalysisFailedMessage, err)
			}

			out := cmd.OutOrStdout()
			if asJSON(cmd) {
				return writeJSON(out, result)
			}
			fmt.Fprintf(out, "Next candle: %s (%s)\n", result.Verdict.Action(), result.Verdict)
			fmt.Fprintf(out, "Confidence:  %.0f%%\n", result.Confidence)
			if len(result.Patterns) > 0 {
				fmt.Fprintf(out, "Patterns:    %s\n", strings.Join(result.Patterns, ", "))
			}
			if result.Reasoning != "" {
				fmt.Fprintf(out, "Reasoning:   %s\n", result.Reasoning)
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to a PNG, JPEG, GIF or WebP chart screenshot")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSignalsCmd(newService func() Inference) *cobra.Command {
	return &cobra.Command{
		Use:   "signals SYMBOL...",
		Short: "Generate future one-minute signals",
		Long: `Generate future signals for one or more instruments. Quote symbols containing spaces.
Example: scan signals EUR/USD "Gold (XAU/USD)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := make([]string, 0, len(args))
			for _, arg := range args {
				inst, ok := domain.FindInstrument(arg)
				if !ok {
					return fmt.Errorf("unknown instrument %q, see 'scan instruments'", arg)
				}
				symbols = append(symbols, inst.Symbol)
			}

			signals, err := newService().GenerateSignals(cmd.Context(), symbols)
			if err != nil {
				return fmt.Errorf("%s: %w", session.GenerationFailedMessage, err)
			}

			out := cmd.OutOrStdout()
			if asJSON(cmd) {
				return writeJSON(out, signals)
			}
			if len(signals) == 0 {
				fmt.Fprintln(out, session.EmptyBatchNotice)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tPAIR\tTYPE\tPROB\tLOGIC")
			for _, s := range signals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\t%s\n", s.Time, s.Instrument, s.Direction.WireValue(), s.Probability, s.Rationale)
			}
			return w.Flush()
		},
	}
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
