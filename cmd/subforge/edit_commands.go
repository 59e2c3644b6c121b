package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subforge/internal/document"
	"subforge/internal/history"
)

type editFlags struct {
	output string
	dryRun bool
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the result here instead of over the script")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print the changes without writing anything")
}

// runEdit loads the script, applies edit and writes the result.
func runEdit(cmd *cobra.Command, ctx *commandContext, path string, flags editFlags, force bool, edit func(*editSession) error) error {
	session, err := openEditSession(cmd.Context(), ctx, path, flags.output)
	if err != nil {
		return err
	}
	if err := edit(session); err != nil {
		session.close()
		return err
	}
	result, err := session.finish(flags.dryRun, force)
	if err != nil {
		return err
	}
	reportEdit(cmd, session, result, flags.dryRun)
	return nil
}

func newEditCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newNormalizeCommand(ctx),
		newShiftCommand(ctx),
		newSortCommand(ctx),
		newResampleCommand(ctx),
	}
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags
	var tags bool
	cmd := &cobra.Command{
		Use:   "normalize <script>",
		Short: "Rewrite a script in canonical ASS form",
		Long: "Rewrite a script in canonical ASS form: sections in standard order, V4+ styles, " +
			"consistent time precision. With --tags every override block is reparsed and rewritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, ctx, args[0], flags, true, func(s *editSession) error {
				if !tags {
					return nil
				}
				amend := history.NoAmend
				for h, line := range s.doc().Dialogues() {
					before := line.Text()
					line.SetBlocks(line.Blocks())
					if line.Text() == before {
						continue
					}
					amend = s.commit("normalize override tags", history.KindDialogueText, amend, h)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&tags, "tags", false, "Also rewrite override tags in canonical form")
	return cmd
}

func newShiftCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags
	var by string
	var style string
	var lines string
	cmd := &cobra.Command{
		Use:   "shift <script>",
		Short: "Move dialogue lines in time",
		Example: "  subforge shift episode.ass --by 1.5s\n" +
			"  subforge shift episode.ass --by -250ms --style Signs --lines 10-20",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := time.ParseDuration(strings.TrimSpace(by))
			if err != nil {
				return fmt.Errorf("invalid --by value %q: %w", by, err)
			}
			from, to, err := parseLineRange(lines)
			if err != nil {
				return err
			}
			return runEdit(cmd, ctx, args[0], flags, false, func(s *editSession) error {
				amend := history.NoAmend
				n := 0
				for h, line := range s.doc().Dialogues() {
					n++
					if n < from || (to > 0 && n > to) {
						continue
					}
					if style != "" && !strings.EqualFold(line.Style, style) {
						continue
					}
					line.Shift(int(delta.Milliseconds()))
					amend = s.commit("shift times", history.KindDialogueTime, amend, h)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&by, "by", "", "Offset as a Go duration, e.g. 1.5s or -250ms")
	cmd.Flags().StringVar(&style, "style", "", "Only shift lines using this style")
	cmd.Flags().StringVar(&lines, "lines", "", "Only shift dialogue lines in this 1-based range, e.g. 3-7 or 5-")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

// parseLineRange reads "a-b", "a-", "a" or "". to is 0 when open ended.
func parseLineRange(value string) (from, to int, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1, 0, nil
	}
	start, end, hasDash := strings.Cut(value, "-")
	if from, err = strconv.Atoi(strings.TrimSpace(start)); err != nil || from < 1 {
		return 0, 0, fmt.Errorf("invalid line range %q", value)
	}
	if !hasDash {
		return from, from, nil
	}
	if strings.TrimSpace(end) == "" {
		return from, 0, nil
	}
	if to, err = strconv.Atoi(strings.TrimSpace(end)); err != nil || to < from {
		return 0, 0, fmt.Errorf("invalid line range %q", value)
	}
	return from, to, nil
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags
	var key string
	cmd := &cobra.Command{
		Use:   "sort <script>",
		Short: "Sort dialogue lines",
		Long: "Stably sort dialogue lines by start, end, style, actor, effect or layer. " +
			"Lines only move within their run of consecutive dialogue.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compare, err := document.ComparatorByName(key)
			if err != nil {
				return err
			}
			return runEdit(cmd, ctx, args[0], flags, false, func(s *editSession) error {
				before := s.doc().String()
				s.doc().Sort(compare)
				if s.doc().String() != before {
					s.commit("sort by "+key, history.KindOrder, history.NoAmend, document.Handle{})
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&key, "by", "start", "Sort key: start, end, style, actor, effect or layer")
	return cmd
}

func newResampleCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags
	var width, height int
	cmd := &cobra.Command{
		Use:   "resample <script>",
		Short: "Rescale styles and override tags to a new resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return errors.New("--width and --height must both be positive")
			}
			return runEdit(cmd, ctx, args[0], flags, false, func(s *editSession) error {
				x, y := s.doc().PlayRes()
				if x == width && y == height {
					return nil
				}
				s.doc().Resample(width, height)
				s.commit(fmt.Sprintf("resample %dx%d to %dx%d", x, y, width, height),
					history.KindScriptInfo|history.KindStyles|history.KindDialogueFull,
					history.NoAmend, document.Handle{})
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "Target PlayResX")
	cmd.Flags().IntVar(&height, "height", 0, "Target PlayResY")
	return cmd
}
