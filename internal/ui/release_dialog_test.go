package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/mp3me/internal/model"
)

func testRelease() *model.Release {
	return &model.Release{
		Title:       "Jazz",
		Artist:      "Queen",
		Year:        "1978",
		ReleaseType: "Album",
		Songs: []*model.Song{
			{Title: "Mustapha", TrackNumber: 1, Duration: "3:01"},
			{Title: "Fat Bottomed Girls", TrackNumber: 2, Duration: "4:16"},
			{Title: "Jealousy", Duration: "3:13"},
		},
	}
}

func TestReleaseDialog_Selection(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	original := testRelease()
	var confirmed *model.Release
	rd := NewReleaseDialog(w, NewLocalization(), original, func(r *model.Release) { confirmed = r })

	if got := rd.SelectedCount(); got != 3 {
		t.Fatalf("SelectedCount() = %d, want 3", got)
	}
	if got := rd.countLabel.Text; got != "3 of 3 tracks selected" {
		t.Errorf("count label = %q", got)
	}

	rd.Toggle(1)
	if got := rd.SelectedCount(); got != 2 {
		t.Errorf("after Toggle SelectedCount() = %d, want 2", got)
	}
	rd.Toggle(99)
	if got := rd.SelectedCount(); got != 2 {
		t.Errorf("out of range Toggle changed selection")
	}

	for _, s := range original.Songs {
		if s.Selected {
			t.Fatal("dialog must not modify the caller's release")
		}
	}

	selected := rd.Release().SelectedSongs()
	if len(selected) != 2 || selected[1].Title != "Jealousy" {
		t.Errorf("SelectedSongs() = %v", selected)
	}

	rd.SelectAll(false)
	if got := rd.SelectedCount(); got != 0 {
		t.Errorf("SelectAll(false) left %d selected", got)
	}
	if confirmed != nil {
		t.Error("onConfirm called without confirmation")
	}
}

func TestTrackLabel(t *testing.T) {
	r := testRelease()
	if got := trackLabel(0, r.Songs[0]); got != "1. Mustapha" {
		t.Errorf("trackLabel() = %q", got)
	}
	// Missing track numbers fall back to the position
	if got := trackLabel(2, r.Songs[2]); got != "3. Jealousy" {
		t.Errorf("trackLabel() = %q", got)
	}
}

func TestReleaseHeading(t *testing.T) {
	r := testRelease()
	want := "Queen" + MiddleDotSeparator + "1978" + MiddleDotSeparator + "Album"
	if got := releaseHeading(r); got != want {
		t.Errorf("releaseHeading() = %q, want %q", got, want)
	}
	if got := releaseHeading(&model.Release{Artist: "Queen"}); got != "Queen" {
		t.Errorf("releaseHeading() = %q", got)
	}
}
