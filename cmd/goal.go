package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
)

var (
	flagGoalType        string
	flagGoalDescription string
	flagGoalTarget      string
	flagGoalCurrent     string
	flagGoalTitle       string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Create, show, edit and delete goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalAdd,
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal>",
	Short: "Show a goal's months, tasks, subgoals or balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalShow,
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <goal>",
	Short: "Change a goal's title, description, category or amounts",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalEdit,
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <goal>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalDelete,
}

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Move money in and out of a savings goal",
}

var savingsDepositCmd = &cobra.Command{
	Use:   "deposit <goal> <amount>",
	Short: "Add to a savings goal",
	Args:  cobra.ExactArgs(2),
	RunE:  func(_ *cobra.Command, args []string) error { return runSavings(args, 1) },
}

var savingsWithdrawCmd = &cobra.Command{
	Use:   "withdraw <goal> <amount>",
	Short: "Take from a savings goal",
	Args:  cobra.ExactArgs(2),
	RunE:  func(_ *cobra.Command, args []string) error { return runSavings(args, -1) },
}

func init() {
	goalAddCmd.Flags().StringVarP(&flagGoalType, "type", "t", "plan", "Goal type: plan, subgoals, savings")
	goalAddCmd.Flags().StringVarP(&flagGoalDescription, "description", "d", "", "Description")
	goalAddCmd.Flags().StringVar(&flagGoalTarget, "target", "", "Savings target amount")
	goalAddCmd.Flags().StringVar(&flagGoalCurrent, "current", "", "Savings starting amount")

	goalEditCmd.Flags().StringVar(&flagGoalTitle, "title", "", "New title")
	goalEditCmd.Flags().StringVarP(&flagGoalDescription, "description", "d", "", "New description")
	goalEditCmd.Flags().StringVar(&flagGoalTarget, "target", "", "New savings target")
	goalEditCmd.Flags().StringVar(&flagGoalCurrent, "current", "", "New savings amount")

	goalCmd.AddCommand(goalAddCmd, goalShowCmd, goalEditCmd, goalDeleteCmd)
	savingsCmd.AddCommand(savingsDepositCmd, savingsWithdrawCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(savingsCmd)
}

// parseAmount reads a positive amount, allowing thousands separators.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%q is not a positive amount", s)
	}
	return v, nil
}

// parseOptionalAmount reads an amount flag; empty means not provided.
func parseOptionalAmount(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%q is not an amount", s)
	}
	return &v, nil
}

func runGoalAdd(_ *cobra.Command, args []string) error {
	title := strings.TrimSpace(args[0])
	if title == "" {
		return errors.New("title is required")
	}
	goalType, err := model.ParseGoalType(flagGoalType)
	if err != nil {
		return err
	}
	target, err := parseOptionalAmount(flagGoalTarget)
	if err != nil {
		return err
	}
	current, err := parseOptionalAmount(flagGoalCurrent)
	if err != nil {
		return err
	}

	return withSession(func(ctx context.Context, s *session) error {
		year := s.year()
		in := engine.NewGoal{
			Title:         title,
			Description:   flagGoalDescription,
			Type:          goalType,
			Category:      s.category(),
			Year:          &year,
			TargetAmount:  target,
			CurrentAmount: current,
		}
		if in.Category == "" {
			in.Category = model.CategoryOther
		}

		g, err := s.eng.AddGoal(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("  Created %s goal %q for %d (%s)\n", g.Type(), g.Title, g.Year, g.ID)
		return nil
	})
}

func runGoalShow(_ *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}

		info := g.Category.Info()
		fmt.Println()
		fmt.Println(cli.RenderTitle(strings.ToUpper(g.Title)))
		fmt.Printf("  %s · %s · %d · %s\n", cli.CategoryStyle(g.Category).Render(info.Label), g.Type(), g.Year, g.ID)
		if g.Description != "" {
			fmt.Printf("  %s\n", g.Description)
		}
		fmt.Printf("\n  %s\n\n", cli.RenderProgressBar(model.Progress(g), 30))
		fmt.Print(cli.RenderGoalDetail(g))
		return nil
	})
}

func runGoalEdit(cmd *cobra.Command, args []string) error {
	target, err := parseOptionalAmount(flagGoalTarget)
	if err != nil {
		return err
	}
	current, err := parseOptionalAmount(flagGoalCurrent)
	if err != nil {
		return err
	}

	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}

		edit := engine.GoalEdit{
			Title:         g.Title,
			Description:   g.Description,
			Category:      g.Category,
			CurrentAmount: current,
		}
		if sv, ok := g.Savings(); ok {
			edit.TargetAmount = sv.TargetAmount
		}
		if flagGoalTitle != "" {
			edit.Title = flagGoalTitle
		}
		if cmd.Flags().Changed("description") {
			edit.Description = flagGoalDescription
		}
		if flagCategory != "" {
			edit.Category = s.category()
		}
		if target != nil {
			edit.TargetAmount = target
		}

		updated, err := s.eng.UpdateGoal(ctx, g.ID, edit)
		if err != nil {
			return err
		}
		fmt.Printf("  Updated %q\n", updated.Title)
		return nil
	})
}

func runGoalDelete(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		if err := s.eng.DeleteGoal(ctx, g.ID); err != nil {
			return err
		}
		fmt.Printf("  Deleted %q\n", g.Title)
		return nil
	})
}

func runSavings(args []string, sign float64) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		if g.Type() != model.GoalSavings {
			return fmt.Errorf("%q is a %s goal, not savings", g.Title, g.Type())
		}
		if err := s.eng.UpdateSavingsAmount(ctx, g.ID, sign*amount); err != nil {
			return err
		}

		updated, ok := s.eng.Goal(g.ID)
		if !ok {
			updated = g
		}
		fmt.Printf("  %s\n", savingsBalance(updated))
		return nil
	})
}

// savingsBalance describes a goal's balance. The server can answer an
// update with the goal under another type, so the payload is checked.
func savingsBalance(g model.Goal) string {
	sv, ok := g.Savings()
	if !ok {
		return fmt.Sprintf("%s is no longer a savings goal", g.Title)
	}
	line := fmt.Sprintf("%s balance: %s", g.Title, cli.FormatAmount(sv.CurrentAmount))
	if sv.TargetAmount != nil {
		line += fmt.Sprintf(" of %s (%s)", cli.FormatAmount(*sv.TargetAmount), cli.FormatPercent(model.Progress(g)))
	}
	return line
}
