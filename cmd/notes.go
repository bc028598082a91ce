package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/exoscope/internal/notes"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Keep free-text notes on planets",
}

func loadNotebook() (*notes.Notebook, error) {
	c, err := globalConfig()
	if err != nil {
		return nil, err
	}
	return notes.Load(c.DataDir)
}

var notesAddCmd = &cobra.Command{
	Use:   "add <planet> <text...>",
	Short: "Attach a note to a planet",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := loadNotebook()
		if err != nil {
			return err
		}
		n, err := nb.Add(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if err := nb.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Note added to %s (%s)\n", n.Planet, n.ID)
		return nil
	},
}

var notesListCmd = &cobra.Command{
	Use:   "list [planet]",
	Short: "List notes for one planet, or for every planet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := loadNotebook()
		if err != nil {
			return err
		}
		planets := nb.Planets()
		if len(args) == 1 {
			planets = []string{strings.TrimSpace(args[0])}
		}
		out := cmd.OutOrStdout()
		found := false
		for _, p := range planets {
			list := nb.List(p)
			if len(list) == 0 {
				continue
			}
			found = true
			fmt.Fprintf(out, "%s\n", p)
			for i, n := range list {
				fmt.Fprintf(out, "  [%d] %s  (%s, %s)\n", i, n.Text, n.ID, n.CreatedAt.Format("2006-01-02"))
			}
		}
		if !found {
			fmt.Fprintln(out, "(no notes)")
		}
		return nil
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <planet> <id|index>",
	Short: "Delete a note by ID or zero-based index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := loadNotebook()
		if err != nil {
			return err
		}
		n, err := nb.Delete(args[0], args[1])
		if err != nil {
			return err
		}
		if err := nb.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Note deleted from %s: %s\n", n.Planet, n.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesDeleteCmd)
}
