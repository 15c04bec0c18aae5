package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/discover"
	"github.com/jywlabs/skync/internal/library"
	"github.com/jywlabs/skync/internal/mcpserver"
	"github.com/jywlabs/skync/internal/ui"
	"github.com/spf13/cobra"
)

var listLongFlag bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered skills",
	Long: `List every skill found in the configured sources, in source order.

Skills shadowed by an earlier source with the same name are listed
separately. Use --long to include the description from each SKILL.md
front matter.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listLongFlag, "long", "l", false, "Show descriptions from SKILL.md front matter")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runListFn(cmd.Context(), cfg, listLongFlag, os.Stdout)
}

func runListFn(ctx context.Context, cfg *config.Config, long bool, w io.Writer) error {
	res, err := library.Discover(ctx, cfg)
	if err != nil {
		return err
	}

	if len(res.Skills) == 0 {
		fmt.Fprintln(w, mcpserver.NoSkillsMessage)
		return nil
	}

	width := 0
	for _, s := range res.Skills {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}

	for _, s := range res.Skills {
		fmt.Fprintf(w, "%s  %s\n", ui.PadRight(ui.StyleBold.Render(s.Name), width), ui.StyleMuted.Render(s.SourceName))
		if long {
			printDescription(w, s)
		}
	}

	if len(res.Collisions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.StyleTitle.Render("Shadowed:"))
		for _, c := range res.Collisions {
			fmt.Fprintf(w, "  %s in %s (using %s)\n", c.Name, c.Loser.SourceName, c.Winner.SourceName)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d skill(s)\n", len(res.Skills))
	return nil
}

func printDescription(w io.Writer, s discover.Skill) {
	meta, err := discover.ReadMetadata(s)
	if err != nil || meta.Description == "" {
		fmt.Fprintf(w, "    %s\n", ui.StyleMuted.Render("(no description)"))
		return
	}
	fmt.Fprintf(w, "    %s\n", truncate(meta.Description, ui.GetTerminalWidth()-4))
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
