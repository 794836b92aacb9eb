package workflow

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"formkeeper/pkg/domain"
)

// RecordGateway is the remote record-row surface. *client.Client
// satisfies it.
type RecordGateway interface {
	InsertRecord(token string, rec domain.Record) (domain.Record, error)
	ListRecords(token string) ([]domain.Record, error)
	DeleteRecord(token, id string) error
}

// BlobGateway is the remote object-storage surface. *client.Client
// satisfies it.
type BlobGateway interface {
	UploadImage(token, name string, data []byte) (domain.BlobRef, error)
	DeleteObject(token, key string) error
}

// Workflow drives the record form: a draft (text plus optional image),
// the loaded record list, and a submission-in-flight flag. All state is
// local to the client; the gateways stay thin pass-throughs.
type Workflow struct {
	sessions *Manager
	records  RecordGateway
	blobs    BlobGateway

	mu        sync.Mutex
	draftText string
	draftData []byte
	draftExt  string
	items     []domain.Record
	inFlight  bool
	lastErr   error
}

// New builds a workflow bound to the session manager. Signing out
// clears the draft and the loaded records.
func New(sessions *Manager, records RecordGateway, blobs BlobGateway) *Workflow {
	w := &Workflow{
		sessions: sessions,
		records:  records,
		blobs:    blobs,
	}
	sessions.Subscribe(func(_ Session, signedIn bool) {
		if signedIn {
			return
		}
		w.mu.Lock()
		w.draftText = ""
		w.draftData = nil
		w.draftExt = ""
		w.items = nil
		w.inFlight = false
		w.lastErr = nil
		w.mu.Unlock()
	})
	return w
}

// SetText replaces the draft text.
func (w *Workflow) SetText(text string) {
	w.mu.Lock()
	w.draftText = text
	w.mu.Unlock()
}

// AttachImage sets the draft image. The extension of filename decides
// the uploaded object name; an unrecognized name falls back to .png.
func (w *Workflow) AttachImage(data []byte, filename string) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		ext = ".png"
	}
	w.mu.Lock()
	w.draftData = data
	w.draftExt = ext
	w.mu.Unlock()
	return nil
}

// ClearImage drops the draft image.
func (w *Workflow) ClearImage() {
	w.mu.Lock()
	w.draftData = nil
	w.draftExt = ""
	w.mu.Unlock()
}

// Draft returns the current draft text and whether an image is attached.
func (w *Workflow) Draft() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draftText, len(w.draftData) > 0
}

// InFlight reports whether a submission is currently running.
func (w *Workflow) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

// LastError returns the error recorded by the most recent failed
// submission, cleared on the next successful one.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Records returns a snapshot of the loaded record list.
func (w *Workflow) Records() []domain.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Record, len(w.items))
	copy(out, w.items)
	return out
}

// Submit uploads the draft image (if any), inserts the record row, then
// reloads the list. A submission already in flight is rejected. On
// upload failure the draft is preserved untouched. On insert failure
// the uploaded blob stays behind; the next successful submission simply
// uploads a fresh one.
func (w *Workflow) Submit() (domain.Record, error) {
	session, ok := w.sessions.Current()
	if !ok {
		return domain.Record{}, ErrNotSignedIn
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return domain.Record{}, ErrSubmissionInFlight
	}
	if strings.TrimSpace(w.draftText) == "" {
		w.mu.Unlock()
		return domain.Record{}, ErrDraftTextRequired
	}
	w.inFlight = true
	text := w.draftText
	data := w.draftData
	ext := w.draftExt
	w.mu.Unlock()

	rec, err := w.submit(session.Token, text, data, ext)
	w.mu.Lock()
	w.inFlight = false
	w.lastErr = err
	if err == nil {
		w.draftText = ""
		w.draftData = nil
		w.draftExt = ""
	}
	w.mu.Unlock()
	if err != nil {
		return domain.Record{}, err
	}
	if err := w.Refresh(); err != nil {
		slog.Warn("record list refresh failed after submit", "err", err)
	}
	return rec, nil
}

func (w *Workflow) submit(token, text string, data []byte, ext string) (domain.Record, error) {
	rec := domain.Record{Text: text}
	if len(data) > 0 {
		name := fmt.Sprintf("imagen-%d%s", time.Now().UnixMilli(), ext)
		ref, err := w.blobs.UploadImage(token, name, data)
		if err != nil {
			return domain.Record{}, fmt.Errorf("upload image: %w", err)
		}
		rec.ImageURL = ref.URL
		rec.ImagePath = ref.Path
		rec.ImageMeta = &ref.Meta
	}
	stored, err := w.records.InsertRecord(token, rec)
	if err != nil {
		return domain.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return stored, nil
}

// Refresh replaces the loaded record list wholesale from the server.
func (w *Workflow) Refresh() error {
	session, ok := w.sessions.Current()
	if !ok {
		return ErrNotSignedIn
	}
	items, err := w.records.ListRecords(session.Token)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	w.mu.Lock()
	w.items = items
	w.mu.Unlock()
	return nil
}

// Delete removes a record: the attached blob first (best effort), then
// the row, then a list reload. A blob that fails to delete is logged
// and left behind; the row delete still proceeds.
func (w *Workflow) Delete(id string) error {
	session, ok := w.sessions.Current()
	if !ok {
		return ErrNotSignedIn
	}
	var target domain.Record
	found := false
	w.mu.Lock()
	for _, rec := range w.items {
		if rec.ID == id {
			target = rec
			found = true
			break
		}
	}
	w.mu.Unlock()
	if !found {
		return ErrRecordNotLoaded
	}
	if target.HasImage() {
		if err := w.blobs.DeleteObject(session.Token, target.ImagePath); err != nil {
			slog.Warn("blob delete failed, leaving object behind",
				"record_id", id, "path", target.ImagePath, "err", err)
		}
	}
	if err := w.records.DeleteRecord(session.Token, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return w.Refresh()
}
