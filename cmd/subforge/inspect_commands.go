package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subforge/internal/asstime"
	"subforge/internal/document"
	"subforge/internal/entry"
	"subforge/internal/override"
)

func loadScript(cmd *cobra.Command, ctx *commandContext, path string) (*document.Document, error) {
	return ctx.files().Load(cmd.Context(), path)
}

type infoSummary struct {
	Path        string            `json:"path"`
	ScriptInfo  map[string]string `json:"script_info"`
	PlayResX    int               `json:"play_res_x"`
	PlayResY    int               `json:"play_res_y"`
	Styles      []string          `json:"styles"`
	Dialogue    int               `json:"dialogue"`
	Comments    int               `json:"comments"`
	Attachments []string          `json:"attachments,omitempty"`
	Duration    string            `json:"duration"`
}

func summarize(path string, doc *document.Document, precision asstime.Precision) infoSummary {
	summary := infoSummary{Path: path, ScriptInfo: map[string]string{}, Styles: doc.StyleNames()}
	summary.PlayResX, summary.PlayResY = doc.PlayRes()
	for _, e := range doc.All() {
		if info, ok := e.(*entry.Info); ok {
			summary.ScriptInfo[info.Key] = info.Value
		}
	}
	var last asstime.Time
	for _, line := range doc.Dialogues() {
		if line.Comment {
			summary.Comments++
			continue
		}
		summary.Dialogue++
		if line.End.Compare(last) > 0 {
			last = line.End
		}
	}
	for _, a := range doc.Attachments() {
		summary.Attachments = append(summary.Attachments, a.DisplayName())
	}
	summary.Duration = last.Format(precision)
	return summary
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <script>",
		Short: "Summarise a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			summary := summarize(args[0], doc, ctx.configValue().TimePrecision())
			if asJSON {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			writeSection(out, "Script")
			fmt.Fprintf(out, "Path:        %s\n", summary.Path)
			fmt.Fprintf(out, "Resolution:  %dx%d\n", summary.PlayResX, summary.PlayResY)
			fmt.Fprintf(out, "Dialogue:    %d (%d comments)\n", summary.Dialogue, summary.Comments)
			fmt.Fprintf(out, "Last end:    %s\n", summary.Duration)
			fmt.Fprintf(out, "Styles:      %s\n", strings.Join(summary.Styles, ", "))
			fmt.Fprintf(out, "Attachments: %d\n", len(summary.Attachments))

			counts := doc.Counts()
			rows := make([][]string, 0, entry.GroupCount)
			for g := entry.GroupInfo; int(g) < entry.GroupCount; g++ {
				rows = append(rows, []string{g.String(), strconv.Itoa(counts[g])})
			}
			fmt.Fprintln(out)
			writeSection(out, "Sections")
			fmt.Fprintln(out, renderTable([]string{"Section", "Entries"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func newStylesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "styles <script>",
		Short: "List the styles of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			used := map[string]int{}
			for _, line := range doc.Dialogues() {
				used[strings.ToLower(line.Style)]++
			}
			var rows [][]string
			for _, s := range doc.Styles() {
				rows = append(rows, []string{
					s.Name,
					s.Font,
					override.FormatFloat(s.Size),
					s.Primary.AssStyle(),
					strconv.Itoa(s.Alignment),
					fmt.Sprintf("%d/%d/%d", s.Margins[0], s.Margins[1], s.Margins[2]),
					strconv.Itoa(used[strings.ToLower(s.Name)]),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Font", "Size", "Primary", "Align", "Margins", "Lines"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var stripped bool
	var style string
	cmd := &cobra.Command{
		Use:   "events <script>",
		Short: "List the dialogue lines of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			precision := ctx.configValue().TimePrecision()
			var rows [][]string
			n := 0
			for _, line := range doc.Dialogues() {
				n++
				if style != "" && !strings.EqualFold(line.Style, style) {
					continue
				}
				text := line.Text()
				if stripped {
					text = line.StrippedText()
				}
				kind := "D"
				if line.Comment {
					kind = "C"
				}
				rows = append(rows, []string{
					strconv.Itoa(n),
					kind,
					strconv.Itoa(line.Layer),
					line.Start.Format(precision),
					line.End.Format(precision),
					line.Style,
					line.Actor,
					text,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "", "Layer", "Start", "End", "Style", "Actor", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&stripped, "stripped", false, "Show text without override blocks")
	cmd.Flags().StringVar(&style, "style", "", "Only show lines using this style")
	return cmd
}

func newTagsCommand(ctx *commandContext) *cobra.Command {
	var lineNumber int
	cmd := &cobra.Command{
		Use:   "tags <script>",
		Short: "Show the override tags used in dialogue lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			var rows [][]string
			n := 0
			for _, line := range doc.Dialogues() {
				n++
				if lineNumber > 0 && n != lineNumber {
					continue
				}
				rows = append(rows, tagRows(n, line.Blocks())...)
			}
			if lineNumber > n {
				return fmt.Errorf("line %d out of range (script has %d dialogue lines)", lineNumber, n)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Block", "Tag", "Parameters"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&lineNumber, "line", 0, "Only show the given dialogue line (1-based)")
	return cmd
}

func tagRows(n int, blocks []override.Block) [][]string {
	var rows [][]string
	for i, b := range blocks {
		block := fmt.Sprintf("%d %s", i+1, b.Kind())
		ov, ok := b.(*override.Override)
		if !ok {
			rows = append(rows, []string{strconv.Itoa(n), block, "", b.Text()})
			continue
		}
		for _, tag := range ov.Tags {
			name := tag.Name
			if !tag.Valid() {
				name += " (unknown)"
			}
			rows = append(rows, []string{strconv.Itoa(n), block, name, describeParams(tag)})
		}
	}
	return rows
}

func describeParams(tag *override.Tag) string {
	var parts []string
	for i := range tag.Params {
		p := tag.Param(i)
		if p.Omitted() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", p.Class, p.String()))
	}
	return strings.Join(parts, " ")
}
