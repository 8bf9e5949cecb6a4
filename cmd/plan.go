package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/model"
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Manage the months of a plan goal",
}

var monthAddCmd = &cobra.Command{
	Use:   "add <goal> <month>",
	Short: "Add a month (january..december) to a plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runMonthAdd,
}

var monthDeleteCmd = &cobra.Command{
	Use:   "delete <goal> <month>",
	Short: "Delete a month and its tasks",
	Args:  cobra.ExactArgs(2),
	RunE:  runMonthDelete,
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the tasks of a plan month",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <goal> <month> <text>",
	Short: "Add a task to a month",
	Args:  cobra.ExactArgs(3),
	RunE:  runTaskAdd,
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <goal> <month> <task>",
	Short: "Mark a task done or not done",
	Args:  cobra.ExactArgs(3),
	RunE:  runTaskToggle,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <goal> <month> <task>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(3),
	RunE:  runTaskDelete,
}

var subgoalCmd = &cobra.Command{
	Use:   "subgoal",
	Short: "Manage the checklist of a subgoals goal",
}

var subgoalAddCmd = &cobra.Command{
	Use:   "add <goal> <text>",
	Short: "Add a subgoal",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubGoalAdd,
}

var subgoalToggleCmd = &cobra.Command{
	Use:   "toggle <goal> <subgoal>",
	Short: "Mark a subgoal done or not done",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubGoalToggle,
}

var subgoalDeleteCmd = &cobra.Command{
	Use:   "delete <goal> <subgoal>",
	Short: "Delete a subgoal",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubGoalDelete,
}

func init() {
	monthCmd.AddCommand(monthAddCmd, monthDeleteCmd)
	taskCmd.AddCommand(taskAddCmd, taskToggleCmd, taskDeleteCmd)
	subgoalCmd.AddCommand(subgoalAddCmd, subgoalToggleCmd, subgoalDeleteCmd)
	rootCmd.AddCommand(monthCmd, taskCmd, subgoalCmd)
}

func doneLabel(done bool) string {
	if done {
		return "done"
	}
	return "not done"
}

func runMonthAdd(_ *cobra.Command, args []string) error {
	key, ok := model.LookupMonth(args[1])
	if !ok {
		return fmt.Errorf("unknown month %q", args[1])
	}

	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		if g.Type() != model.GoalPlan {
			return fmt.Errorf("%q is a %s goal, not a plan", g.Title, g.Type())
		}
		m, err := s.eng.AddMonth(ctx, g.ID, key.Key, key.Order)
		if err != nil {
			return err
		}
		fmt.Printf("  Added %s to %q (%s)\n", key.Label, g.Title, m.ID)
		return nil
	})
}

func runMonthDelete(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		m, err := findMonth(g, args[1])
		if err != nil {
			return err
		}
		if err := s.eng.DeleteMonth(ctx, g.ID, m.ID); err != nil {
			return err
		}
		fmt.Printf("  Deleted %s (%d tasks) from %q\n", model.MonthLabel(m.Name), len(m.Tasks), g.Title)
		return nil
	})
}

// planTarget resolves the goal and month arguments shared by task commands.
func planTarget(s *session, goalRef, monthRef string) (model.Goal, model.Month, error) {
	g, err := findGoal(s.eng.Goals(), goalRef)
	if err != nil {
		return model.Goal{}, model.Month{}, err
	}
	m, err := findMonth(g, monthRef)
	return g, m, err
}

func runTaskAdd(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, m, err := planTarget(s, args[0], args[1])
		if err != nil {
			return err
		}
		t, err := s.eng.AddTask(ctx, g.ID, m.ID, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("  Added %q to %s (%s)\n", t.Text, model.MonthLabel(m.Name), t.ID)
		return nil
	})
}

func runTaskToggle(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, m, err := planTarget(s, args[0], args[1])
		if err != nil {
			return err
		}
		task, err := findTask(m, args[2])
		if err != nil {
			return err
		}
		t, err := s.eng.ToggleTask(ctx, g.ID, m.ID, task.ID)
		if err != nil {
			return err
		}
		updated, _ := s.eng.Goal(g.ID)
		fmt.Printf("  %q is %s · %q at %d%%\n", t.Text, doneLabel(t.Completed), g.Title, model.Progress(updated))
		return nil
	})
}

func runTaskDelete(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, m, err := planTarget(s, args[0], args[1])
		if err != nil {
			return err
		}
		task, err := findTask(m, args[2])
		if err != nil {
			return err
		}
		if err := s.eng.DeleteTask(ctx, g.ID, m.ID, task.ID); err != nil {
			return err
		}
		fmt.Printf("  Deleted %q\n", task.Text)
		return nil
	})
}

func runSubGoalAdd(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		if g.Type() != model.GoalSubGoals {
			return fmt.Errorf("%q is a %s goal, not a checklist", g.Title, g.Type())
		}
		sg, err := s.eng.AddSubGoal(ctx, g.ID, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("  Added %q to %q (%s)\n", sg.Text, g.Title, sg.ID)
		return nil
	})
}

func runSubGoalToggle(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		target, err := findSubGoal(g, args[1])
		if err != nil {
			return err
		}
		sg, err := s.eng.ToggleSubGoal(ctx, g.ID, target.ID)
		if err != nil {
			return err
		}
		updated, _ := s.eng.Goal(g.ID)
		fmt.Printf("  %q is %s · %q at %d%%\n", sg.Text, doneLabel(sg.Completed), g.Title, model.Progress(updated))
		return nil
	})
}

func runSubGoalDelete(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		g, err := findGoal(s.eng.Goals(), args[0])
		if err != nil {
			return err
		}
		target, err := findSubGoal(g, args[1])
		if err != nil {
			return err
		}
		if err := s.eng.DeleteSubGoal(ctx, g.ID, target.ID); err != nil {
			return err
		}
		fmt.Printf("  Deleted %q\n", target.Text)
		return nil
	})
}
