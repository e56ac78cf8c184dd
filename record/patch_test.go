package record_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/recordhouse/recordhouse/record"
)

type itemPatch struct {
	ID    record.Optional[int64]   `rec:"id"`
	Title record.Optional[string]  `rec:"title"`
	Note  record.Optional[string]  `rec:"note"`
	Score record.Optional[float64] `rec:"score"`
	Done  record.Optional[bool]    `rec:"done"`
}

func TestOptionalJSON(t *testing.T) {
	var p itemPatch
	if err := json.Unmarshal([]byte(`{"title":"walk","note":null}`), &p); err != nil {
		t.Fatalf("failed to unmarshal patch: %v", err)
	}

	if !p.Title.Set || p.Title.Null || p.Title.Value != "walk" {
		t.Errorf("title should be present with value, got %+v", p.Title)
	}
	if !p.Note.Set || !p.Note.Null {
		t.Errorf("note should be explicitly null, got %+v", p.Note)
	}
	if p.Score.Set {
		t.Errorf("score was omitted, must not be marked set: %+v", p.Score)
	}
}

func TestApplyPatch(t *testing.T) {
	note := "old"
	score := 3.0
	base := item{ID: 1, Title: "reading", Note: &note, Score: &score, Done: false}

	t.Run("omitted fields stay untouched", func(t *testing.T) {
		merged, err := record.ApplyPatch(base, itemPatch{Done: record.Some(true)})
		if err != nil {
			t.Fatalf("failed to apply patch: %v", err)
		}
		if !merged.Done {
			t.Error("done should be updated")
		}
		if merged.Title != "reading" || merged.Note == nil || *merged.Note != "old" || merged.Score == nil || *merged.Score != 3.0 {
			t.Errorf("untouched fields changed: %+v", merged)
		}
	})

	t.Run("explicit null clears an optional field", func(t *testing.T) {
		merged, err := record.ApplyPatch(base, itemPatch{Note: record.ExplicitNull[string]()})
		if err != nil {
			t.Fatalf("failed to apply patch: %v", err)
		}
		if merged.Note != nil {
			t.Errorf("note should be cleared, got %v", *merged.Note)
		}
	})

	t.Run("explicit null on a required field is a violation", func(t *testing.T) {
		_, err := record.ApplyPatch(base, itemPatch{Title: record.ExplicitNull[string]()})
		var verr *record.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Fields[0].Field != "title" {
			t.Errorf("expected title violation, got %v", verr.Fields)
		}
	})

	t.Run("empty string is applied when explicitly supplied", func(t *testing.T) {
		merged, err := record.ApplyPatch(base, itemPatch{Note: record.Some("")})
		if err != nil {
			t.Fatalf("failed to apply patch: %v", err)
		}
		if merged.Note == nil || *merged.Note != "" {
			t.Errorf("note should be the empty string, got %v", merged.Note)
		}
	})

	t.Run("identity is never overwritten", func(t *testing.T) {
		merged, err := record.ApplyPatch(base, itemPatch{ID: record.Some[int64](99), Done: record.Some(true)})
		if err != nil {
			t.Fatalf("failed to apply patch: %v", err)
		}
		if merged.ID != 1 {
			t.Errorf("identity changed to %d", merged.ID)
		}
	})

	t.Run("invalid patch value reports every violation and keeps the base", func(t *testing.T) {
		bad := itemPatch{Title: record.Some("ab"), Score: record.Some(7.0)}
		merged, err := record.ApplyPatch(base, bad)
		var verr *record.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(verr.Fields) != 2 {
			t.Errorf("expected 2 violations, got %v", verr.Fields)
		}
		if merged.Title != base.Title {
			t.Error("failed patch must return the record unchanged")
		}
	})
}
