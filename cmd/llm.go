package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/careercoach/internal/llm"
	"github.com/abhisek/careercoach/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		events, closeFn, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		list, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-13s  %-28s  %6s  %6s  %7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		rule(out, 100)
		for _, ev := range list {
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-13s  %-28s  %6d  %6d  %7d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Purpose,
				truncate(ev.Model, 28),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		events, closeFn, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		ev, err := events.GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:        %d\n", ev.ID)
		fmt.Fprintf(out, "Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:  %s\n", ev.Provider)
		fmt.Fprintf(out, "Model:     %s\n", ev.Model)
		fmt.Fprintf(out, "Purpose:   %s\n", ev.Purpose)
		fmt.Fprintf(out, "Tokens:    %d in / %d out\n", ev.InputTokens, ev.OutputTokens)
		fmt.Fprintf(out, "Latency:   %dms\n", ev.LatencyMs)
		fmt.Fprintf(out, "Success:   %v\n", ev.Success)
		if ev.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", ev.ErrorMessage)
		}

		section(out, "REQUEST", ev.RequestBody)
		section(out, "RESPONSE", ev.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, closeFn, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx := cmd.Context()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Usage by Purpose")
		rule(out, 72)
		fmt.Fprintf(out, "%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		rule(out, 72)
		var calls, in, outTok int
		for _, u := range byPurpose {
			fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			outTok += u.OutputTokens
		}
		rule(out, 72)
		fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, outTok, in+outTok)

		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) > 0 {
			fmt.Fprintln(out)
			printCosts(out, byModel)
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (question-gen, chat)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

// openEvents opens the database for the LLM event log only.
func openEvents(cmd *cobra.Command) (store.EventRepo, func(), error) {
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		return nil, nil, errors.New("LLM calls are only recorded in the database; drop --ephemeral")
	}
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return nil, nil, err
	}
	return e.events, e.Close, nil
}

func printCosts(out io.Writer, usage []store.LLMUsage) {
	fmt.Fprintln(out, "Estimated Cost (USD)")
	rule(out, 72)
	fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	rule(out, 72)

	var total float64
	var unknown []string
	for _, u := range usage {
		cost := llm.LookupCost(u.Model)
		if cost == nil {
			unknown = append(unknown, u.Model)
			fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, "?")
			continue
		}
		c := cost.Cost(u.InputTokens, u.OutputTokens)
		total += c
		fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, formatCost(c))
	}

	rule(out, 72)
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
	if len(unknown) > 0 {
		fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func section(out io.Writer, title, body string) {
	fmt.Fprintln(out)
	rule(out, 60)
	fmt.Fprintln(out, title)
	rule(out, 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(out, body)
}

func rule(out io.Writer, n int) {
	fmt.Fprintln(out, strings.Repeat("─", n))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
