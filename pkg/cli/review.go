package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/colors"
	"github.com/harrisonrobin/taskhub/pkg/dedupe"
)

const (
	choiceNewest  = "newest"
	choiceDismiss = "dismiss"
	choiceSkip    = "skip"
	choiceQuit    = "quit"
	keepPrefix    = "keep:"
)

// chooser asks what to do with one group and returns a choice value.
type chooser func(g dedupe.DuplicateGroup, n, total int) (string, error)

type reviewSummary struct {
	Merged    int
	Dismissed int
	Skipped   int
	Failed    int
}

func newReviewCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Walk through duplicate groups and resolve them interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, groups, err := a.analyze(cmd.Context(), all)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, colors.OK("No duplicates found."))
				return nil
			}

			sum, err := reviewGroups(cmd.Context(), out, engine, a.cfg.User, groups, promptGroup)
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(out, "Review cancelled.")
				err = nil
			}
			fmt.Fprintf(out, "\nMerged %d, dismissed %d, skipped %d, failed %d.\n",
				sum.Merged, sum.Dismissed, sum.Skipped, sum.Failed)
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include completed and deleted tasks")
	return cmd
}

func reviewGroups(ctx context.Context, out io.Writer, engine *dedupe.Engine, userID string, groups []dedupe.DuplicateGroup, choose chooser) (reviewSummary, error) {
	var sum reviewSummary
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		renderGroup(out, g)

		choice, err := choose(g, i+1, len(groups))
		if err != nil {
			return sum, err
		}

		switch {
		case choice == choiceQuit:
			sum.Skipped += len(groups) - i
			return sum, nil
		case choice == choiceSkip:
			sum.Skipped++
		case choice == choiceDismiss:
			engine.Dismiss(g.ID)
			sum.Dismissed++
		case choice == choiceNewest:
			if engine.RemoveAllButNewest(ctx, userID, g) {
				fmt.Fprintf(out, "  %s kept %s\n", colors.OK("✓"), dedupe.Newest(g).ID)
				sum.Merged++
			} else {
				fmt.Fprintf(out, "  %s could not merge %s\n", colors.Fail("✗"), g.ID)
				sum.Failed++
			}
		case strings.HasPrefix(choice, keepPrefix):
			keep := strings.TrimPrefix(choice, keepPrefix)
			if engine.MergeDuplicates(ctx, userID, g.ID, keep) {
				fmt.Fprintf(out, "  %s kept %s\n", colors.OK("✓"), keep)
				sum.Merged++
			} else {
				fmt.Fprintf(out, "  %s could not merge %s\n", colors.Fail("✗"), g.ID)
				sum.Failed++
			}
		default:
			return sum, fmt.Errorf("unknown review choice %q", choice)
		}
		fmt.Fprintln(out)
	}
	return sum, nil
}

func promptGroup(g dedupe.DuplicateGroup, n, total int) (string, error) {
	options := []huh.Option[string]{
		huh.NewOption("Keep the newest task", choiceNewest),
	}
	for _, t := range g.Members() {
		label := fmt.Sprintf("Keep %s (%s, %s)", t.ID, t.Title, t.Source)
		options = append(options, huh.NewOption(label, keepPrefix+t.ID))
	}
	options = append(options,
		huh.NewOption("Not duplicates, dismiss", choiceDismiss),
		huh.NewOption("Skip for now", choiceSkip),
		huh.NewOption("Stop reviewing", choiceQuit),
	)

	choice := choiceSkip
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Group %d of %d: %s", n, total, g.ID)).
				Description(fmt.Sprintf("%d tasks, confidence %d%%", g.TotalCount, g.Confidence)).
				Options(options...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}
