package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"universe-server/internal/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "universe.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCitizenAddAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CitizenAddNext(ctx, store.Citizen{
		Name:     "Zippy",
		Password: "hunter2",
		Email:    "zippy@example.com",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	byName, err := s.CitizenByName(ctx, "Zippy")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if byName.CitizenID != id {
		t.Fatalf("expected id %d, got %d", id, byName.CitizenID)
	}

	byNumber, err := s.CitizenByNumber(ctx, id)
	if err != nil {
		t.Fatalf("by number: %v", err)
	}
	if byNumber.Email != "zippy@example.com" {
		t.Fatalf("email mismatch: %q", byNumber.Email)
	}

	byNumber.BotLimit = 5
	if err := s.CitizenChange(ctx, *byNumber); err != nil {
		t.Fatalf("change: %v", err)
	}
	reloaded, err := s.CitizenByNumber(ctx, id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.BotLimit != 5 {
		t.Fatalf("expected bot limit 5, got %d", reloaded.BotLimit)
	}

	if err := s.CitizenDelete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.CitizenByNumber(ctx, id); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLicenseRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := store.WorldLicense{
		Name:      "MyWorld",
		Password:  "secret",
		Users:     50,
		WorldSize: 2000,
	}
	if err := s.LicenseAdd(ctx, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := s.LicenseByName(ctx, "MyWorld")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if got.Users != 50 {
		t.Fatalf("users mismatch: %d", got.Users)
	}

	got.Users = 100
	if err := s.LicenseChange(ctx, *got); err != nil {
		t.Fatalf("change: %v", err)
	}
	reloaded, err := s.LicenseByName(ctx, "MyWorld")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Users != 100 {
		t.Fatalf("expected 100 users after change, got %d", reloaded.Users)
	}
}

func TestLicenseNextPrevOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		if err := s.LicenseAdd(ctx, store.WorldLicense{Name: name}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	next, err := s.LicenseNext(ctx, "Alpha")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next.Name != "Bravo" {
		t.Fatalf("expected Bravo after Alpha, got %q", next.Name)
	}

	prev, err := s.LicensePrev(ctx, "Charlie")
	if err != nil {
		t.Fatalf("prev: %v", err)
	}
	if prev.Name != "Bravo" {
		t.Fatalf("expected Bravo before Charlie, got %q", prev.Name)
	}
}

func TestContactSetInsertsThenUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ContactSet(ctx, 1, 2, 0b0001); err != nil {
		t.Fatalf("set: %v", err)
	}
	row, err := s.ContactGet(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.Options != 0b0001 {
		t.Fatalf("options mismatch: %b", row.Options)
	}

	if err := s.ContactSet(ctx, 1, 2, 0b0010); err != nil {
		t.Fatalf("update: %v", err)
	}
	row, err = s.ContactGet(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if row.Options != 0b0010 {
		t.Fatalf("expected updated options, got %b", row.Options)
	}

	all, err := s.ContactGetAll(ctx, 1)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(all))
	}

	if err := s.ContactDelete(ctx, 1, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.ContactGet(ctx, 1, 2); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTelegramDeliveryFlow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.TelegramAdd(ctx, store.TelegramRow{
		RecipientID: 10,
		SenderName:  "Zippy",
		Timestamp:   1234,
		Message:     "hello there",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	undelivered, err := s.TelegramGetUndelivered(ctx, 10)
	if err != nil {
		t.Fatalf("get undelivered: %v", err)
	}
	if len(undelivered) != 1 || undelivered[0].Message != "hello there" {
		t.Fatalf("unexpected undelivered telegrams: %+v", undelivered)
	}

	if err := s.TelegramMarkDelivered(ctx, undelivered[0].ID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	undelivered, err = s.TelegramGetUndelivered(ctx, 10)
	if err != nil {
		t.Fatalf("get undelivered after mark: %v", err)
	}
	if len(undelivered) != 0 {
		t.Fatalf("expected no undelivered telegrams, got %d", len(undelivered))
	}
}

func TestAttribSetInsertsThenUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AttribSet(ctx, store.AttribMotd, "welcome"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.AttribSet(ctx, store.AttribMotd, "welcome back"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.AttribGet(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[store.AttribMotd] != "welcome back" {
		t.Fatalf("expected updated attribute value, got %q", got[store.AttribMotd])
	}
}

func TestEjectionLookupByAddress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EjectionSet(ctx, store.EjectionRow{Address: "203.0.113.7", Comment: "abuse"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.EjectionLookup(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Comment != "abuse" {
		t.Fatalf("comment mismatch: %q", got.Comment)
	}

	if err := s.EjectionDelete(ctx, got.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.EjectionLookup(ctx, "203.0.113.7"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCAVGetReturnsNotFoundWithoutTemplate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CAVGet(ctx, 99); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
