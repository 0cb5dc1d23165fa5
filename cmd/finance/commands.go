package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finance/internal/core"
	"finance/internal/services"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service().Initialize(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s backend)\n", a.cfg.DataBackend)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var date, note string

	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount> <category>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}
			t, err := a.service().AddTransaction(cmd.Context(), services.NewTransaction{
				Type:     core.TransactionType(args[0]),
				Amount:   amount,
				Category: args[2],
				Date:     date,
				Note:     note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s #%d: %s %s on %s\n",
				t.Type, t.ID, core.FormatAmount(t.Amount), t.Category, t.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "transaction date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.service().ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tNOTE")
			for _, t := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Date, t.Type, t.Category, core.FormatAmount(t.Amount), t.Note)
			}
			return tw.Flush()
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total income, total expense and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service().Summary(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "Total income\t%s\t\n", core.FormatAmount(s.TotalIncome))
			fmt.Fprintf(tw, "Total expense\t%s\t\n", core.FormatAmount(s.TotalExpense))
			fmt.Fprintf(tw, "Balance\t%s\t\n", core.FormatAmount(s.Balance))
			return tw.Flush()
		},
	}
}

func newGoalCmd(a *app) *cobra.Command {
	goal := &cobra.Command{
		Use:   "goal",
		Short: "Manage spending goals (monthly or weekly)",
	}

	goal.AddCommand(
		&cobra.Command{
			Use:   "set <period> <amount>",
			Short: "Set or replace the goal for a period",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := core.ParseAmount(args[1])
				if err != nil {
					return fmt.Errorf("amount %q: %w", args[1], err)
				}
				period := parsePeriod(args[0])
				if err := a.service().SetGoal(cmd.Context(), period, amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s goal set to %s\n", period, core.FormatAmount(amount))
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <period>",
			Short: "Show the goal for a period",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				period := parsePeriod(args[0])
				amount, ok, err := a.service().GetGoal(cmd.Context(), period)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s goal set.\n", period)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s goal: %s\n", period, core.FormatAmount(amount))
				return nil
			},
		},
		&cobra.Command{
			Use:   "progress <period>",
			Short: "Compare spending in the current period with its goal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.service().GoalProgress(cmd.Context(), parsePeriod(args[0]))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !p.HasGoal() {
					fmt.Fprintln(out, p.Message)
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Period\t%s (%s to %s)\n", p.Period, p.Start, p.End)
				fmt.Fprintf(tw, "Goal\t%s\n", core.FormatAmount(*p.GoalAmount))
				fmt.Fprintf(tw, "Spent\t%s\n", core.FormatAmount(p.Spent))
				fmt.Fprintf(tw, "Remaining\t%s\n", core.FormatAmount(p.Remaining))
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out, p.Message)
				return nil
			},
		},
	)
	return goal
}

func parsePeriod(s string) core.PeriodType {
	return core.PeriodType(strings.ToLower(strings.TrimSpace(s)))
}
