package history

import "strings"

// CommitKind describes what a commit changed. Listeners use it to decide how
// much of their view to refresh.
type CommitKind uint32

const (
	// KindNew marks a fresh document: a load, undo or redo.
	KindNew CommitKind = 1 << iota
	// KindOrder marks reordered entries without content changes.
	KindOrder
	KindScriptInfo
	KindStyles
	KindAttachment
	// KindDialogueAddRemove marks inserted or deleted dialogue lines.
	KindDialogueAddRemove
	// KindDialogueMeta marks changes to layer, style, actor, effect or margins.
	KindDialogueMeta
	KindDialogueTime
	KindDialogueText

	KindDialogueFull = KindDialogueMeta | KindDialogueTime | KindDialogueText
	KindAll          = KindNew | KindOrder | KindScriptInfo | KindStyles | KindAttachment | KindDialogueAddRemove | KindDialogueFull
)

var kindNames = []struct {
	kind CommitKind
	name string
}{
	{KindNew, "new"},
	{KindOrder, "order"},
	{KindScriptInfo, "script_info"},
	{KindStyles, "styles"},
	{KindAttachment, "attachment"},
	{KindDialogueAddRemove, "dialogue_add_remove"},
	{KindDialogueMeta, "dialogue_meta"},
	{KindDialogueTime, "dialogue_time"},
	{KindDialogueText, "dialogue_text"},
}

// Has reports whether every bit of other is set in k.
func (k CommitKind) Has(other CommitKind) bool { return k&other == other }

func (k CommitKind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			parts = append(parts, kn.name)
		}
	}
	return strings.Join(parts, "|")
}
