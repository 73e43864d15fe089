package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRecord(id, screenName string, count int) Record {
	return Record{
		Timestamp:      "2024-05-01 12:00:00",
		ID:             id,
		ScreenName:     screenName,
		Name:           screenName + " display",
		FollowersCount: count,
		CreatedAt:      "Wed Jun 01 12:00:00 +0000 2011",
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test_followers.csv")

	s, err := NewCSVStore(path, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// Empty store
	ids, err := s.LoadExisting()
	if err != nil {
		t.Fatalf("LoadExisting on empty store: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected empty ID set, got %d entries", len(ids))
	}

	records := []Record{
		testRecord("100", "alice", 50),
		testRecord("200", "bob", 10),
		testRecord("300", "carol", 70),
	}
	if err := s.Upsert(records); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Round-trip: LoadExisting returns exactly the upserted IDs
	ids, err = s.LoadExisting()
	if err != nil {
		t.Fatalf("LoadExisting failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Expected 3 IDs, got %d", len(ids))
	}
	for _, want := range []string{"100", "200", "300"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("Expected ID %s in existing set", want)
		}
	}

	// All preserves insertion order
	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}
	if all[0].ID != "100" || all[1].ID != "200" || all[2].ID != "300" {
		t.Errorf("Record order not preserved: %v", all)
	}
	if all[0].ScreenName != "alice" || all[0].FollowersCount != 50 {
		t.Errorf("Record fields not round-tripped: %+v", all[0])
	}
}

func TestCSVStoreUpsertIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	s, err := NewCSVStore(filepath.Join(tempDir, "test_followers.csv"), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	record := testRecord("100", "alice", 50)

	if err := s.Upsert([]Record{record}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := s.Upsert([]Record{record}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 record after duplicate upsert, got %d", len(all))
	}
}

func TestCSVStoreUpsertOverwrites(t *testing.T) {
	tempDir := t.TempDir()
	s, err := NewCSVStore(filepath.Join(tempDir, "test_followers.csv"), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := s.Upsert([]Record{testRecord("100", "alice", 50)}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	refreshed := testRecord("100", "alice_new", 75)
	if err := s.Upsert([]Record{refreshed}); err != nil {
		t.Fatalf("Overwrite upsert failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(all))
	}
	if all[0].ScreenName != "alice_new" || all[0].FollowersCount != 75 {
		t.Errorf("Record not overwritten: %+v", all[0])
	}
}

func TestCSVStoreSurvivesReopen(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test_followers.csv")

	s1, err := NewCSVStore(path, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := s1.Upsert([]Record{testRecord("100", "alice", 50)}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// A new store over the same file sees the data
	s2, err := NewCSVStore(path, nil)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	ids, err := s2.LoadExisting()
	if err != nil {
		t.Fatalf("LoadExisting failed: %v", err)
	}
	if _, ok := ids["100"]; !ok {
		t.Error("Expected persisted ID to survive reopen")
	}
}

func TestCSVStoreMalformedFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "bad_followers.csv")

	content := strings.Join(csvHeader, ",") + "\n2024-05-01 12:00:00,100,alice,Alice,notanumber,whenever\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write malformed file: %v", err)
	}

	s, err := NewCSVStore(path, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if _, err := s.All(); err == nil {
		t.Error("Expected error reading malformed followers_count")
	}
}

func TestCacheFilePath(t *testing.T) {
	got := CacheFilePath("/data", "jack")
	want := filepath.Join("/data", "jack_followers.csv")
	if got != want {
		t.Errorf("CacheFilePath = %q, want %q", got, want)
	}
}
