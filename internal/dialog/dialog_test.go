package dialog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imageJSON = `{
  "image_filename": "CLEVR_val_000007.png",
  "image_index": 7,
  "split": "val",
  "dialogs": [{
    "caption": "There is a red cube.",
    "dialog": [
      {"question": "how many spheres?", "answer": 2, "template": "count-all"},
      {"question": "what color is it?", "answer": "red", "template": "seek-attr-early"}
    ],
    "graph": {"history": [
      {"objects": [{"id": 0, "color": "red", "shape": "cube"}], "mergeable": true},
      {"objects": [], "mergeable": false, "dependence": null},
      {"objects": [{"id": 0, "size": "large"}], "mergeable": true, "dependence": 0,
       "focus_desc": {"color": "red", "shape": "cube", "count": 2, "required": ["color"]}}
    ]}
  }]
}`

func TestImage_Dialog(t *testing.T) {
	var img Image
	require.NoError(t, json.Unmarshal([]byte(imageJSON), &img))

	d, err := img.Dialog(0)
	require.NoError(t, err)

	assert.Equal(t, "CLEVR_val_000007.png", d.ImageFilename)
	assert.Equal(t, 7, d.ImageIndex)
	assert.Equal(t, "val", d.Split)
	assert.Equal(t, 0, d.DialogIndex)
	assert.Equal(t, "7:0", d.Key())
	require.Len(t, d.Turns, 2)
	assert.Equal(t, 1, d.Turns[1].RoundID)
	assert.Equal(t, float64(2), d.Turns[0].Answer)
	require.Len(t, d.History, 3)

	assert.Nil(t, d.TurnFocus(0))
	focus := d.TurnFocus(1)
	require.NotNil(t, focus)
	assert.Equal(t, []string{"color"}, focus.Required)
	assert.Equal(t, "red", focus.Values["color"])
	assert.Equal(t, "2", focus.Values["count"], "non-string values keep their JSON text")
	assert.Equal(t, []string{"red"}, focus.RequiredValues())

	require.NotNil(t, d.History[2].Dependence)
	assert.Equal(t, 0, *d.History[2].Dependence)
	assert.Nil(t, d.History[1].Dependence)
}

func TestImage_Dialog_OutOfRange(t *testing.T) {
	img := Image{ImageIndex: 3}
	_, err := img.Dialog(0)
	assert.ErrorIs(t, err, ErrDialogIndex)
}

func TestObject_ID(t *testing.T) {
	tests := []struct {
		name    string
		obj     Object
		want    int
		wantErr bool
	}{
		{name: "float", obj: Object{"id": float64(4)}, want: 4},
		{name: "int", obj: Object{"id": 9}, want: 9},
		{name: "json number", obj: Object{"id": json.Number("12")}, want: 12},
		{name: "fractional", obj: Object{"id": 1.5}, wantErr: true},
		{name: "missing", obj: Object{"color": "red"}, wantErr: true},
		{name: "string", obj: Object{"id": "3"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.obj.ID()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrObjectID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFocusDesc_RequiredValues_SkipsMissingKeys(t *testing.T) {
	f := &FocusDesc{
		Required: []string{"color", "material"},
		Values:   map[string]string{"color": "blue"},
	}
	assert.Equal(t, []string{"blue"}, f.RequiredValues())

	var nilDesc *FocusDesc
	assert.Nil(t, nilDesc.RequiredValues())
}

func TestFocusDesc_MarshalJSON(t *testing.T) {
	f := FocusDesc{Required: []string{"shape"}, Values: map[string]string{"shape": "sphere"}}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shape": "sphere", "required": ["shape"]}`, string(data))
}

func TestEntry_JSONShape(t *testing.T) {
	entries := []Entry{
		CaptionEntry(1, "A scene."),
		TurnEntry(0, Turn{Question: "is it metal?", Answer: false, Template: "exist-early"}),
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"context_index": 1, "caption": "A scene."},
		{"context_index": 0, "question": "is it metal?", "answer": false, "template": "exist-early"}
	]`, string(data))

	var back []Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back[0].IsCaption())
	assert.False(t, back[1].IsCaption())
}

func TestMergedDialog_Label(t *testing.T) {
	group := []*Dialog{
		{ImageFilename: "a.png", ImageIndex: 10, Split: "train", DialogIndex: 2},
		{ImageFilename: "b.png", ImageIndex: 4, Split: "train", DialogIndex: 0},
		{ImageFilename: "c.png", ImageIndex: 7, Split: "train", DialogIndex: 3},
	}
	md := NewMergedDialog(nil, group)

	assert.Equal(t, "10_4_7_2_0_3", md.Label())
	assert.Equal(t, md.Label(), GroupLabel(group))
	assert.Equal(t, 3, md.Contexts())
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, md.ImageFilename)
	assert.Equal(t, []int{2, 0, 3}, md.DialogIndex)
}
