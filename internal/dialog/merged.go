package dialog

import (
	"strconv"
	"strings"
)

// Entry is one element of a stitched sequence: either a caption or a turn,
// tagged with the position of its source dialog in the merge group.
type Entry struct {
	ContextIndex int     `json:"context_index"`
	Caption      *string `json:"caption,omitempty"`
	Question     string  `json:"question,omitempty"`
	Answer       any     `json:"answer,omitempty"`
	Template     string  `json:"template,omitempty"`
}

// CaptionEntry builds a caption entry for context index ctx.
func CaptionEntry(ctx int, caption string) Entry {
	return Entry{ContextIndex: ctx, Caption: &caption}
}

// TurnEntry builds a turn entry for context index ctx. The entry holds its
// own copy of the turn fields.
func TurnEntry(ctx int, t Turn) Entry {
	return Entry{
		ContextIndex: ctx,
		Question:     t.Question,
		Answer:       t.Answer,
		Template:     t.Template,
	}
}

// IsCaption reports whether the entry is a caption.
func (e Entry) IsCaption() bool {
	return e.Caption != nil
}

// MergedDialog is a stitched dialog plus the identity of each source, in
// merge-group order.
type MergedDialog struct {
	Data          []Entry  `json:"data"`
	ImageFilename []string `json:"image_filename"`
	ImageIndex    []int    `json:"image_index"`
	Split         []string `json:"split"`
	DialogIndex   []int    `json:"dialog_index"`
}

// NewMergedDialog wraps a stitched sequence with the identities of group.
func NewMergedDialog(data []Entry, group []*Dialog) *MergedDialog {
	md := &MergedDialog{
		Data:          data,
		ImageFilename: make([]string, 0, len(group)),
		ImageIndex:    make([]int, 0, len(group)),
		Split:         make([]string, 0, len(group)),
		DialogIndex:   make([]int, 0, len(group)),
	}
	for _, d := range group {
		md.ImageFilename = append(md.ImageFilename, d.ImageFilename)
		md.ImageIndex = append(md.ImageIndex, d.ImageIndex)
		md.Split = append(md.Split, d.Split)
		md.DialogIndex = append(md.DialogIndex, d.DialogIndex)
	}
	return md
}

// Label identifies the participating sources: image indices followed by
// dialog indices, joined by "_".
func (m *MergedDialog) Label() string {
	return label(m.ImageIndex, m.DialogIndex)
}

// GroupLabel returns the Label a merge of group would carry.
func GroupLabel(group []*Dialog) string {
	images := make([]int, len(group))
	dialogs := make([]int, len(group))
	for i, d := range group {
		images[i] = d.ImageIndex
		dialogs[i] = d.DialogIndex
	}
	return label(images, dialogs)
}

func label(images, dialogs []int) string {
	parts := make([]string, 0, len(images)+len(dialogs))
	for _, i := range images {
		parts = append(parts, strconv.Itoa(i))
	}
	for _, i := range dialogs {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, "_")
}

// Contexts returns the number of source dialogs in the merge.
func (m *MergedDialog) Contexts() int {
	return len(m.ImageIndex)
}
