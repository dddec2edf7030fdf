// Package dialog defines the source and stitched dialog records and their
// JSON wire format.
package dialog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for malformed records.
var (
	ErrDialogIndex = errors.New("dialog: index out of range")
	ErrObjectID    = errors.New("dialog: object has no integer id")
)

// Image is one source record: an image and the independent dialogs
// generated for it.
type Image struct {
	ImageFilename string         `json:"image_filename"`
	ImageIndex    int            `json:"image_index"`
	Split         string         `json:"split"`
	Dialogs       []DialogRecord `json:"dialogs"`
}

// DialogRecord is a dialog as it appears inside an Image record.
type DialogRecord struct {
	Caption string `json:"caption"`
	Turns   []Turn `json:"dialog"`
	Graph   struct {
		History []GraphItem `json:"history"`
	} `json:"graph"`
}

// Dialog returns the index-th dialog of the image with its identity fields
// filled in and round ids assigned.
func (img Image) Dialog(index int) (*Dialog, error) {
	if index < 0 || index >= len(img.Dialogs) {
		return nil, fmt.Errorf("%w: image %d has %d dialogs, want index %d",
			ErrDialogIndex, img.ImageIndex, len(img.Dialogs), index)
	}
	rec := img.Dialogs[index]
	turns := make([]Turn, len(rec.Turns))
	copy(turns, rec.Turns)
	for i := range turns {
		turns[i].RoundID = i
	}
	return &Dialog{
		ImageFilename: img.ImageFilename,
		ImageIndex:    img.ImageIndex,
		Split:         img.Split,
		DialogIndex:   index,
		Caption:       rec.Caption,
		Turns:         turns,
		History:       rec.Graph.History,
	}, nil
}

// Dialog is a single source dialog. It is read-only once loaded.
type Dialog struct {
	ImageFilename string
	ImageIndex    int
	Split         string
	DialogIndex   int

	Caption string
	Turns   []Turn

	// History holds one graph update per caption and per turn:
	// History[0] belongs to the caption, History[r+1] to turn r.
	History []GraphItem
}

// Key identifies the dialog within a source collection.
func (d *Dialog) Key() string {
	return fmt.Sprintf("%d:%d", d.ImageIndex, d.DialogIndex)
}

// TurnFocus returns the focus descriptor attached to round r, or nil.
func (d *Dialog) TurnFocus(r int) *FocusDesc {
	if r < 0 || r+1 >= len(d.History) {
		return nil
	}
	return d.History[r+1].FocusDesc
}

// Turn is one question/answer exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   any    `json:"answer"`
	Template string `json:"template"`

	// RoundID is the turn position, assigned on load.
	RoundID int `json:"-"`
}

// GraphItem is the scene-graph update produced by one caption or turn.
type GraphItem struct {
	Objects    []Object   `json:"objects"`
	Mergeable  bool       `json:"mergeable"`
	Relation   string     `json:"relation,omitempty"`
	FocusDesc  *FocusDesc `json:"focus_desc,omitempty"`
	Dependence *int       `json:"dependence,omitempty"`
}

// Object is one scene object described by an update: an integer "id" plus
// attribute keys such as shape, size, material and color.
type Object map[string]any

// ID returns the object's integer id.
func (o Object) ID() (int, error) {
	switch v := o["id"].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %v", ErrObjectID, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrObjectID, v)
		}
		return int(n), nil
	default:
		return 0, ErrObjectID
	}
}

// Clone returns a shallow copy of the attribute map. Attribute values are
// JSON scalars and are shared.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
