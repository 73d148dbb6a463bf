package db

import "testing"

func TestRecordDraft(t *testing.T) {
	db := setupTestDB(t)

	first, err := db.RecordDraft(DraftRevision{
		MediaID: "MEDIA1", SourceURL: "https://shimo.im/docs/a", Title: "Weekly",
		Action: "add", ContentHash: "c1", ParagraphCount: 3, ImageCount: 1,
	})
	if err != nil {
		t.Fatalf("RecordDraft() error: %v", err)
	}

	second, err := db.RecordDraft(DraftRevision{
		MediaID: "MEDIA1", SourceURL: "https://shimo.im/docs/a", Title: "Weekly v2",
		Action: "update", ContentHash: "c2", ParagraphCount: 4,
	})
	if err != nil {
		t.Fatalf("RecordDraft() error: %v", err)
	}
	if first != second {
		t.Errorf("same media id got different draft ids: %d vs %d", first, second)
	}

	drafts, err := db.ListDrafts(0)
	if err != nil {
		t.Fatalf("ListDrafts() error: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	d := drafts[0]
	if d.Title != "Weekly v2" || d.RevisionCount != 2 || d.SourceURL != "https://shimo.im/docs/a" {
		t.Errorf("unexpected draft %+v", d)
	}
}

func TestRecordDraft_RequiresMediaID(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.RecordDraft(DraftRevision{Action: "add", ContentHash: "c"}); err == nil {
		t.Error("expected error for missing media id")
	}
}

func TestLatestDraftForSource(t *testing.T) {
	db := setupTestDB(t)

	if _, found, err := db.LatestDraftForSource("https://shimo.im/docs/a"); err != nil || found {
		t.Fatalf("expected no draft, found %v err %v", found, err)
	}

	for _, id := range []string{"OLD", "NEW"} {
		if _, err := db.RecordDraft(DraftRevision{MediaID: id, SourceURL: "https://shimo.im/docs/a", Action: "add", ContentHash: id}); err != nil {
			t.Fatalf("RecordDraft() error: %v", err)
		}
	}
	if _, err := db.RecordDraft(DraftRevision{MediaID: "OTHER", SourceURL: "https://shimo.im/docs/b", Action: "add", ContentHash: "x"}); err != nil {
		t.Fatalf("RecordDraft() error: %v", err)
	}

	got, found, err := db.LatestDraftForSource("https://shimo.im/docs/a")
	if err != nil || !found {
		t.Fatalf("LatestDraftForSource() found %v err %v", found, err)
	}
	if got != "NEW" {
		t.Errorf("expected NEW, got %q", got)
	}
}

func TestListDrafts_Limit(t *testing.T) {
	db := setupTestDB(t)

	for _, id := range []string{"A", "B", "C"} {
		if _, err := db.RecordDraft(DraftRevision{MediaID: id, Action: "add", ContentHash: id}); err != nil {
			t.Fatalf("RecordDraft() error: %v", err)
		}
	}

	drafts, err := db.ListDrafts(2)
	if err != nil {
		t.Fatalf("ListDrafts() error: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("expected 2 drafts, got %d", len(drafts))
	}
}

func TestListRevisions(t *testing.T) {
	db := setupTestDB(t)

	for i, action := range []string{"add", "update", "update"} {
		_, err := db.RecordDraft(DraftRevision{
			MediaID: "MEDIA1", Action: action, ContentHash: string(rune('a' + i)), WarningCount: i,
		})
		if err != nil {
			t.Fatalf("RecordDraft() error: %v", err)
		}
	}

	revs, err := db.ListRevisions("MEDIA1")
	if err != nil {
		t.Fatalf("ListRevisions() error: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(revs))
	}
	if revs[0].Action != "add" || revs[2].ContentHash != "c" || revs[2].WarningCount != 2 {
		t.Errorf("unexpected revisions %+v", revs)
	}

	none, err := db.ListRevisions("MISSING")
	if err != nil {
		t.Fatalf("ListRevisions() error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no revisions, got %d", len(none))
	}
}
