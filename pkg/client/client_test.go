package client_test

import (
	"bytes"
	"image"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"formkeeper/internal/app"
	"formkeeper/internal/auth"
	"formkeeper/internal/server"
	"formkeeper/pkg/client"
	"formkeeper/pkg/domain"
	"formkeeper/pkg/storage"
	"formkeeper/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)

	dataStore := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore("http://blobs.local")
	sessions, err := store.NewJWTSessionStore("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	tokens, err := store.NewRedisTokenStore(mr.Addr(), "")
	if err != nil {
		t.Fatalf("token store: %v", err)
	}
	authSvc, err := auth.New(auth.Config{Store: dataStore, Sessions: sessions, Tokens: tokens})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	appSvc, err := app.New(app.Config{Store: dataStore, Objects: objects})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	ts := httptest.NewServer(server.New(server.Config{App: appSvc, Auth: authSvc}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	c := client.New(ts.URL)

	confirmToken, err := c.SignUp("ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := c.Confirm(confirmToken); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	user, token, err := c.SignIn("ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.Email != "ana@example.com" || token == "" {
		t.Fatalf("unexpected session: %+v %q", user, token)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	ref, err := c.UploadImage(token, "imagen-1.png", buf.Bytes())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ref.Path == "" || ref.Meta.Width != 16 {
		t.Fatalf("unexpected blob ref %+v", ref)
	}

	rec, err := c.InsertRecord(token, domain.Record{Text: "hola", ImageURL: ref.URL, ImagePath: ref.Path, ImageMeta: &ref.Meta})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	items, err := c.ListRecords(token)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != rec.ID {
		t.Fatalf("unexpected list %+v", items)
	}

	if err := c.DeleteObject(token, ref.Path); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	if err := c.DeleteRecord(token, rec.ID); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if _, err := c.GetRecord(token, rec.ID); err == nil {
		t.Fatal("deleted record should not resolve")
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	ts := newTestServer(t)
	c := client.New(ts.URL)

	_, _, err := c.SignIn("nobody@example.com", "wrong")
	if err == nil {
		t.Fatal("expected sign-in failure")
	}
	apiErr, ok := err.(*client.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != 401 || apiErr.Message == "" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
