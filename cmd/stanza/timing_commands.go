package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stanza/internal/api"
	"stanza/internal/services"
	"stanza/internal/timing"
)

func newTimingCommand(ctx *commandContext) *cobra.Command {
	timingCmd := &cobra.Command{
		Use:   "timing",
		Short: "Annotate line end-times of a track",
	}

	timingCmd.AddCommand(newTimingInitCommand(ctx))
	timingCmd.AddCommand(newTimingSetCommand(ctx))
	timingCmd.AddCommand(newTimingProposeCommand(ctx))
	timingCmd.AddCommand(newTimingDragCommand(ctx))
	timingCmd.AddCommand(newTimingFinalizeCommand(ctx))
	timingCmd.AddCommand(newTimingTimelineCommand(ctx))

	return timingCmd
}

func newTimingInitCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "init <track-id>",
		Short: "Show a track's lines with stored and proposed end-times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				view, editor, err := s.openEditor(cmd.Context(), trackID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromInitView(view, s.editorOptions()))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Track %d (%s, %ss)\n", view.TrackID, view.Status, formatSeconds(view.TotalDuration))
				rows := make([][]string, 0, len(editor.Lines))
				unsaved := 0
				for i, line := range editor.Lines {
					source := line.End.Kind.String()
					if editor.Proposed(i) {
						source = "proposed"
						unsaved++
					}
					bounds, _ := editor.Constraints(i)
					rows = append(rows, []string{
						strconv.FormatInt(line.ID, 10),
						strconv.Itoa(line.Number),
						endText(line.Start),
						endText(line.End),
						source,
						formatSeconds(bounds.MinEnd) + "-" + formatSeconds(bounds.MaxEnd),
						line.Text,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Line ID", "#", "Start", "End", "Source", "End Range", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft},
					stdoutIsTerminal(cmd),
				))
				if len(view.PauseHints) > 0 {
					fmt.Fprintf(out, "Pause hints: %s\n", joinSeconds(view.PauseHints))
				}
				ready := yesNo(editor.AllComplete())
				if editor.AllComplete() && unsaved > 0 {
					ready += fmt.Sprintf(", after saving %d proposed", unsaved)
				}
				fmt.Fprintf(out, "Ready to finalize: %s\n", ready)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the init payload as JSON")
	return cmd
}

func newTimingSetCommand(ctx *commandContext) *cobra.Command {
	var clampEnd bool

	cmd := &cobra.Command{
		Use:   "set <track-id> <line-id> <end>",
		Short: "Store one line's end-time",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			lineID, err := parseID(args[1], "line id")
			if err != nil {
				return err
			}
			end, err := parseSeconds(args[2], "end time")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if clampEnd {
					_, editor, err := s.openEditor(cmd.Context(), trackID)
					if err != nil {
						return err
					}
					index, err := editorIndex(editor, lineID)
					if err != nil {
						return err
					}
					if index == len(editor.Lines)-1 {
						return services.Reject(services.ErrInvalidOperation, "last line end_time is fixed to total duration and cannot be updated")
					}
					end, _ = editor.SetEnd(index, end)
				}
				if err := s.engine.UpsertLineEnd(cmd.Context(), trackID, lineID, end); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Line %d ends at %ss\n", lineID, formatSeconds(end))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clampEnd, "clamp", false, "Clamp the end-time into the line's editing bounds first")
	return cmd
}

func newTimingProposeCommand(ctx *commandContext) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "propose <track-id> <line-id>",
		Short: "Suggest an end-time for a line from pause hints",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			lineID, err := parseID(args[1], "line id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				_, editor, err := s.openEditor(cmd.Context(), trackID)
				if err != nil {
					return err
				}
				index, err := editorIndex(editor, lineID)
				if err != nil {
					return err
				}
				if !editor.Select(index) {
					return services.Reject(services.ErrInvalidState, "previous line has no end-time yet")
				}
				end, _ := editor.Lines[index].End.Seconds()
				out := cmd.OutOrStdout()
				if !save {
					fmt.Fprintf(out, "Line %d proposed end: %ss\n", lineID, formatSeconds(end))
					return nil
				}
				if index == len(editor.Lines)-1 {
					return services.Reject(services.ErrInvalidOperation, "last line end_time is fixed to total duration and cannot be updated")
				}
				if err := s.engine.UpsertLineEnd(cmd.Context(), trackID, lineID, end); err != nil {
					return err
				}
				fmt.Fprintf(out, "Line %d ends at %ss\n", lineID, formatSeconds(end))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the proposed end-time")
	return cmd
}

func newTimingDragCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "drag <track-id> <line-id> <start> <end>",
		Short: "Resize a line's region, moving its neighbours with it",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			lineID, err := parseID(args[1], "line id")
			if err != nil {
				return err
			}
			start, err := parseSeconds(args[2], "start time")
			if err != nil {
				return err
			}
			end, err := parseSeconds(args[3], "end time")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				_, editor, err := s.openEditor(cmd.Context(), trackID)
				if err != nil {
					return err
				}
				index, err := editorIndex(editor, lineID)
				if err != nil {
					return err
				}
				oldEnd := editor.Lines[index].End
				start, end, _ = editor.Drag(index, start, end)

				writes := dragWrites(editor, index, oldEnd, start, end)
				for _, w := range writes {
					if err := s.engine.UpsertLineEnd(cmd.Context(), trackID, w.lineID, w.end); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Line %d spans %ss-%ss\n", lineID, formatSeconds(start), formatSeconds(end))
				return nil
			})
		},
	}
}

type endWrite struct {
	lineID int64
	end    float64
}

// dragWrites lists the stored ends a region resize changes: the previous
// line's end and the line's own end. The previous end goes first so the own
// end is checked against the new floor, unless the region moved past the old
// own end, where that order would reach the next stored end.
func dragWrites(editor *timing.Editor, index int, oldEnd timing.LineEnd, start, end float64) []endWrite {
	var own, prev []endWrite
	if index < len(editor.Lines)-1 {
		own = []endWrite{{lineID: editor.Lines[index].ID, end: end}}
	}
	if index > 0 {
		prev = []endWrite{{lineID: editor.Lines[index-1].ID, end: start}}
	}
	if old, ok := oldEnd.Seconds(); ok && start >= old {
		return append(own, prev...)
	}
	return append(prev, own...)
}

func newTimingFinalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <track-id>",
		Short: "Validate all timings and publish the track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if err := s.engine.FinalizeTrack(cmd.Context(), trackID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Track %d is active\n", trackID)
				return nil
			})
		},
	}
}

func newTimingTimelineCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "timeline <track-id>",
		Short: "Show the reconstructed line intervals of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				tl, err := s.engine.Timeline(cmd.Context(), trackID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromTimeline(tl))
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(tl.Entries))
				for _, entry := range tl.Entries {
					rows = append(rows, []string{
						strconv.Itoa(entry.Number),
						endText(entry.Start),
						endText(entry.End),
						entry.Text,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Start", "End", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
					stdoutIsTerminal(cmd),
				))
				fmt.Fprintf(out, "Status: %s, complete: %s\n", tl.Status, yesNo(tl.Complete))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func endText(end timing.LineEnd) string {
	if v, ok := end.Seconds(); ok {
		return formatSeconds(v)
	}
	return "-"
}
