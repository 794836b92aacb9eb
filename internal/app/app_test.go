package app

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"formkeeper/pkg/domain"
	"formkeeper/pkg/storage"
	"formkeeper/pkg/store"
)

func newTestApp(t *testing.T) (*App, *store.MemoryStore, *storage.MemoryObjectStore) {
	t.Helper()
	dataStore := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore("http://blobs.local")
	a, err := New(Config{Store: dataStore, Objects: objects})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, dataStore, objects
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadImageCapturesMeta(t *testing.T) {
	a, _, objects := newTestApp(t)

	ref, err := a.UploadImage(context.Background(), pngBytes(t, 40, 20), "imagen-123.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ref.Path == "" {
		t.Fatal("expected non-empty path")
	}
	if !strings.HasPrefix(ref.URL, "http://blobs.local/") || !strings.HasSuffix(ref.URL, ref.Path) {
		t.Fatalf("url %q should be derived from path %q", ref.URL, ref.Path)
	}
	if ref.Meta.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", ref.Meta.ContentType)
	}
	if ref.Meta.Width != 40 || ref.Meta.Height != 20 {
		t.Fatalf("unexpected dimensions %dx%d", ref.Meta.Width, ref.Meta.Height)
	}
	if _, ok := objects.Get(ref.Path); !ok {
		t.Fatal("object bytes should be stored under the returned path")
	}
}

func TestUploadImageRejectsEmptyAndOversized(t *testing.T) {
	dataStore := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore("http://blobs.local")
	a, err := New(Config{Store: dataStore, Objects: objects, MaxUploadBytes: 16})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := a.UploadImage(context.Background(), nil, "x.png"); err != ErrEmptyUpload {
		t.Fatalf("expected ErrEmptyUpload, got %v", err)
	}
	if _, err := a.UploadImage(context.Background(), bytes.Repeat([]byte{1}, 17), "x.png"); err != ErrUploadTooLarge {
		t.Fatalf("expected ErrUploadTooLarge, got %v", err)
	}
	if objects.Len() != 0 {
		t.Fatal("rejected uploads must not store objects")
	}
}

func TestInsertRecordValidation(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := domain.User{ID: "u1"}

	if _, err := a.InsertRecord(owner, domain.Record{Text: "   "}); err != ErrTextRequired {
		t.Fatalf("expected ErrTextRequired, got %v", err)
	}
	if _, err := a.InsertRecord(owner, domain.Record{Text: "hola", ImageURL: "http://x/y"}); err != ErrImagePairMismatch {
		t.Fatalf("expected ErrImagePairMismatch for url without path, got %v", err)
	}
	if _, err := a.InsertRecord(owner, domain.Record{Text: "hola", ImagePath: "images/y"}); err != ErrImagePairMismatch {
		t.Fatalf("expected ErrImagePairMismatch for path without url, got %v", err)
	}
}

func TestInsertRecordSetsOwnerAndID(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec, err := a.InsertRecord(domain.User{ID: "u1"}, domain.Record{Text: "hola", OwnerID: "spoofed"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rec.OwnerID != "u1" {
		t.Fatalf("owner must come from the session, got %q", rec.OwnerID)
	}
	if rec.ID == "" {
		t.Fatal("store must assign an id")
	}
}

func TestListRecordsScopedToOwner(t *testing.T) {
	a, _, _ := newTestApp(t)
	u1, u2 := domain.User{ID: "u1"}, domain.User{ID: "u2"}
	if _, err := a.InsertRecord(u1, domain.Record{Text: "mine"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := a.InsertRecord(u2, domain.Record{Text: "theirs"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	items, err := a.ListRecords(u1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Text != "mine" {
		t.Fatalf("expected only u1's record, got %+v", items)
	}
}

func TestDeleteRecordOwnership(t *testing.T) {
	a, _, _ := newTestApp(t)
	owner := domain.User{ID: "u1"}
	rec, err := a.InsertRecord(owner, domain.Record{Text: "hola"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := a.DeleteRecord(domain.User{ID: "u2"}, rec.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := a.DeleteRecord(owner, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.DeleteRecord(owner, rec.ID); err != ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound after delete, got %v", err)
	}
}

func TestDeleteRecordLeavesBlobToCaller(t *testing.T) {
	a, _, objects := newTestApp(t)
	owner := domain.User{ID: "u1"}
	ref, err := a.UploadImage(context.Background(), pngBytes(t, 8, 8), "imagen.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	rec, err := a.InsertRecord(owner, domain.Record{Text: "hola", ImageURL: ref.URL, ImagePath: ref.Path})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := a.DeleteRecord(owner, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// the row store is a pass-through gateway; blob deletion is a
	// separate call
	if len(objects.Deleted) != 0 {
		t.Fatal("row delete must not touch the blob store")
	}
	if err := a.DeleteObject(context.Background(), ref.Path); err != nil {
		t.Fatalf("delete object: %v", err)
	}
	if objects.Len() != 0 {
		t.Fatal("blob should be gone after explicit delete")
	}
}
