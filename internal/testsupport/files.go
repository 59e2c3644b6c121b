package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Script joins lines into script text with a trailing newline.
func Script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// SampleScript is a small complete script with two styles and three lines.
func SampleScript() string {
	return Script(
		"[Script Info]",
		"Title: Sample",
		"ScriptType: v4.00+",
		"PlayResX: 640",
		"PlayResY: 480",
		"",
		"[V4+ Styles]",
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding",
		"Style: Default,Arial,48,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1",
		"Style: Sign,Arial,32,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,2,2,8,10,10,10,1",
		"",
		"[Events]",
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text",
		`Dialogue: 0,0:00:03.00,0:00:04.00,Default,,0,0,0,,Third`,
		`Dialogue: 0,0:00:01.00,0:00:02.00,Default,Alice,0,0,0,,Hello {\b1}world{\b0}!`,
		`Dialogue: 1,0:00:02.00,0:00:05.00,Sign,,0,0,0,,{\pos(320,50)}Sign text`,
	)
}

// WriteScript writes contents to path, creating parent directories.
func WriteScript(t testing.TB, path, contents string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
