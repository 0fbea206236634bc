package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stanza/internal/api"
	"stanza/internal/audiofiles"
	"stanza/internal/catalog"
	"stanza/internal/services"
)

func newTrackCommand(ctx *commandContext) *cobra.Command {
	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Manage narration tracks",
	}

	trackCmd.AddCommand(newTrackAddCommand(ctx))
	trackCmd.AddCommand(newTrackListCommand(ctx))
	trackCmd.AddCommand(newTrackTrimCommand(ctx))
	trackCmd.AddCommand(newTrackRestoreCommand(ctx))
	trackCmd.AddCommand(newTrackDeleteCommand(ctx))
	trackCmd.AddCommand(newTrackMoveCommand(ctx))
	trackCmd.AddCommand(newTrackDetectPausesCommand(ctx))
	trackCmd.AddCommand(newTrackReopenCommand(ctx))

	return trackCmd
}

func newTrackAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var position int
	var aiGenerated bool
	var detect bool

	cmd := &cobra.Command{
		Use:   "add <fragment-id> <audio-file>",
		Short: "Upload a recording as a new draft track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragmentID, err := parseID(args[0], "fragment id")
			if err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open audio file: %w", err)
			}
			defer file.Close()

			name := filepath.Base(args[1])
			if strings.TrimSpace(title) == "" {
				title = strings.TrimSuffix(name, filepath.Ext(name))
			}
			return ctx.withSession(func(s *session) error {
				track, err := s.files.Add(cmd.Context(), audiofiles.Upload{
					FragmentID:   fragmentID,
					Title:        title,
					Name:         name,
					Body:         file,
					AIGenerated:  aiGenerated,
					Position:     position,
					DetectPauses: detect,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added track %d (%s, %ss)\n", track.ID, track.Filename, formatSeconds(track.Duration))
				if len(track.PauseHints) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Pause hints: %s\n", joinSeconds(track.PauseHints))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Track title (defaults to the file name)")
	cmd.Flags().IntVar(&position, "position", 0, "1-based position among the fragment's tracks (default: append)")
	cmd.Flags().BoolVar(&aiGenerated, "ai", false, "Mark the narration as AI generated")
	cmd.Flags().BoolVar(&detect, "detect-pauses", false, "Run the pause detector after upload")
	return cmd
}

func newTrackListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <fragment-id>",
		Short: "List a fragment's tracks in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragmentID, err := parseID(args[0], "fragment id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				fragment, err := s.store.Fragment(cmd.Context(), fragmentID)
				if err != nil {
					return err
				}
				if fragment == nil {
					return services.Reject(services.ErrNotFound, "fragment not found")
				}
				tracks, err := s.store.TracksByFragment(cmd.Context(), fragmentID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromTracks(tracks))
				}
				if len(tracks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tracks")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTracks(tracks, stdoutIsTerminal(cmd)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func renderTracks(tracks []catalog.Track, colorize bool) string {
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(track.SortOrder),
			strconv.FormatInt(track.ID, 10),
			track.Title,
			string(track.Status),
			formatSeconds(track.Duration),
			yesNo(track.IsTrimmed()),
			yesNo(track.AIGenerated),
		})
	}
	return renderTable(
		[]string{"#", "ID", "Title", "Status", "Duration", "Trimmed", "AI"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		colorize,
	)
}

func newTrackTrimCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trim <track-id> <start> <end>",
		Short: "Cut a track's audio to [start, end) of the original upload",
		Long:  "Trim always cuts from the original upload and deletes the track's timings.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			start, err := parseSeconds(args[1], "start")
			if err != nil {
				return err
			}
			end, err := parseSeconds(args[2], "end")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				track, err := s.files.Trim(cmd.Context(), trackID, start, end)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trimmed track %d to %ss\n", track.ID, formatSeconds(track.Duration))
				return nil
			})
		},
	}
}

func newTrackRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <track-id>",
		Short: "Switch a trimmed track back to its original upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				track, err := s.files.Restore(cmd.Context(), trackID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored track %d (%ss)\n", track.ID, formatSeconds(track.Duration))
				return nil
			})
		},
	}
}

func newTrackDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <track-id>",
		Short: "Delete a track with its timings and audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if err := s.files.Delete(cmd.Context(), trackID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted track %d\n", trackID)
				return nil
			})
		},
	}
}

func newTrackMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <track-id> <position>",
		Short: "Change a track's position within its fragment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			position, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if err := s.files.Move(cmd.Context(), trackID, position); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved track %d to position %d\n", trackID, position)
				return nil
			})
		},
	}
}

func newTrackDetectPausesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect-pauses <track-id>",
		Short: "Run the pause detector and store its hints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				hints, err := s.files.DetectPauses(cmd.Context(), trackID)
				if err != nil {
					return err
				}
				if len(hints) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No pauses detected for track %d\n", trackID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pause hints for track %d: %s\n", trackID, joinSeconds(hints))
				return nil
			})
		},
	}
}

func newTrackReopenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <track-id>",
		Short: "Move an active track back to draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := parseID(args[0], "track id")
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if err := s.engine.ReopenTrack(cmd.Context(), trackID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Track %d reopened as draft\n", trackID)
				return nil
			})
		},
	}
}

func joinSeconds(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, formatSeconds(v))
	}
	return strings.Join(parts, ", ")
}
