package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sjlee-dev/vidbrief/config"
	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
	"github.com/sjlee-dev/vidbrief/repository"
)

func newTestRepo(t *testing.T) repository.TranscriptRepository {
	t.Helper()

	db, err := InitDB(config.DatabaseConfig{
		Path:               filepath.Join(t.TempDir(), "cache.db"),
		MaxConnections:     2,
		MaxIdleConnections: 1,
		ConnMaxLifetime:    time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewTranscriptRepository(db)
	if err != nil {
		t.Fatalf("failed to init repository: %v", err)
	}
	return repo
}

func testEntry(videoID, lang string) *models.TranscriptCacheEntry {
	return &models.TranscriptCacheEntry{
		VideoID:      videoID,
		Lang:         lang,
		Title:        "A Video",
		ThumbnailURL: "https://i.ytimg.com/vi/x/hq720.jpg",
		Transcript:   "hello world",
		Segments: []models.TranscriptSegment{
			{Text: "hello", Start: 0, End: 1500, Duration: 1500},
			{Text: "world", Start: 1500, End: 3000, Duration: 1500},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSaveAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testEntry("dQw4w9WgXcQ", "en")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.Find(ctx, "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}

	if got.Title != "A Video" || got.Transcript != "hello world" {
		t.Errorf("unexpected entry: %+v", got)
	}
	if len(got.Segments) != 2 || got.Segments[1].Text != "world" {
		t.Errorf("segments did not round-trip: %+v", got.Segments)
	}
}

func TestFindMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Find(context.Background(), "dQw4w9WgXcQ", "en")
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLanguagesAreSeparateEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	en := testEntry("dQw4w9WgXcQ", "en")
	ko := testEntry("dQw4w9WgXcQ", "ko")
	ko.Transcript = "안녕하세요"

	if err := repo.Save(ctx, en); err != nil {
		t.Fatalf("save en failed: %v", err)
	}
	if err := repo.Save(ctx, ko); err != nil {
		t.Fatalf("save ko failed: %v", err)
	}

	got, err := repo.Find(ctx, "dQw4w9WgXcQ", "ko")
	if err != nil {
		t.Fatalf("find ko failed: %v", err)
	}
	if got.Transcript != "안녕하세요" {
		t.Errorf("expected the ko entry, got %q", got.Transcript)
	}
}

func TestSaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := testEntry("dQw4w9WgXcQ", "en")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	second := testEntry("dQw4w9WgXcQ", "en")
	second.Transcript = "updated transcript"
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := repo.Find(ctx, "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Transcript != "updated transcript" {
		t.Errorf("expected the newer entry, got %q", got.Transcript)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testEntry("dQw4w9WgXcQ", "en")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, testEntry("dQw4w9WgXcQ", "ko")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := repo.Delete(ctx, "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := repo.Find(ctx, "dQw4w9WgXcQ", "en"); !errors.IsNotFound(err) {
		t.Errorf("expected en entry gone, got %v", err)
	}
	if _, err := repo.Find(ctx, "dQw4w9WgXcQ", "ko"); !errors.IsNotFound(err) {
		t.Errorf("expected ko entry gone, got %v", err)
	}
}
