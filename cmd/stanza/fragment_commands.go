package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stanza/internal/api"
	"stanza/internal/catalog"
	"stanza/internal/services"
)

func newFragmentCommand(ctx *commandContext) *cobra.Command {
	fragmentCmd := &cobra.Command{
		Use:   "fragment",
		Short: "Manage poem fragments",
	}

	fragmentCmd.AddCommand(newFragmentImportCommand(ctx))
	fragmentCmd.AddCommand(newFragmentListCommand(ctx))
	fragmentCmd.AddCommand(newFragmentShowCommand(ctx))

	return fragmentCmd
}

func newFragmentImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <title> <file|->",
		Short: "Create a fragment from a text file, one line per poem line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd, args[1])
			if err != nil {
				return err
			}
			lines := catalog.SplitLines(string(data))
			if len(lines) == 0 {
				return services.Reject(services.ErrInvalidInput, "fragment text has no lines")
			}
			return ctx.withSession(func(s *session) error {
				fragment, err := s.store.CreateFragment(cmd.Context(), args[0], lines)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created fragment %d %q with %d lines\n", fragment.ID, fragment.Title, len(lines))
				return nil
			})
		},
	}
}

func newFragmentListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fragments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				fragments, err := s.store.ListFragments(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					out := make([]api.Fragment, 0, len(fragments))
					for i := range fragments {
						out = append(out, api.FromFragment(&fragments[i], nil))
					}
					return writeJSON(cmd, out)
				}
				if len(fragments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No fragments")
					return nil
				}
				rows := make([][]string, 0, len(fragments))
				for _, fragment := range fragments {
					count, err := s.store.LineCount(cmd.Context(), fragment.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						strconv.FormatInt(fragment.ID, 10),
						fragment.Title,
						strconv.Itoa(count),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Lines"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
					stdoutIsTerminal(cmd),
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newFragmentShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a fragment's lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "fragment id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				fragment, err := s.store.Fragment(cmd.Context(), id)
				if err != nil {
					return err
				}
				if fragment == nil {
					return services.Reject(services.ErrNotFound, "fragment not found")
				}
				lines, err := s.store.Lines(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromFragment(fragment, lines))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Fragment %d: %s\n", fragment.ID, fragment.Title)
				rows := make([][]string, 0, len(lines))
				for _, line := range lines {
					rows = append(rows, []string{
						strconv.FormatInt(line.ID, 10),
						strconv.Itoa(line.Number),
						line.Text,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Line ID", "#", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft},
					stdoutIsTerminal(cmd),
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
