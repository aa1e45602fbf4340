package moodboard

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/linkmeta"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/tests/testutil"
)

type fakeUploader struct {
	uploads []string
	fail    bool
}

func (f *fakeUploader) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("storage down")
	}
	f.uploads = append(f.uploads, path)
	return "https://cdn.example/" + bucket + "/" + path, nil
}

func (f *fakeUploader) Remove(ctx context.Context, bucket string, paths []string) error {
	return nil
}

type fakeFetcher struct {
	meta linkmeta.Meta
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (linkmeta.Meta, error) {
	return f.meta, f.err
}

func actor(role access.Role) *session.Session {
	return &session.Session{UserID: "u1", DisplayName: "Anna", Role: role}
}

func newTestService(t *testing.T, up Uploader, mf MetaFetcher) *Service {
	t.Helper()
	return NewService(testutil.NewTestStore(t), up, mf, "atelier-media")
}

func makeBoard(t *testing.T, svc *Service) model.Moodboard {
	t.Helper()
	ctx := context.Background()
	if err := svc.CreateBoard(ctx, actor(access.RoleStaff), BoardInput{Name: "FW26", Season: "fall"}); err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	boards, err := svc.Boards(ctx)
	if err != nil || len(boards) != 1 {
		t.Fatalf("Boards: %v (%d)", err, len(boards))
	}
	return boards[0]
}

func TestUploadItem(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	svc := newTestService(t, up, &fakeFetcher{})
	board := makeBoard(t, svc)

	err := svc.UploadItem(ctx, actor(access.RoleStaff), board.ID, "drape.jpg", []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("UploadItem: %v", err)
	}
	if len(up.uploads) != 1 {
		t.Fatalf("uploads = %v", up.uploads)
	}

	items, err := svc.Items(ctx, board.ID)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].Source != model.MoodboardSourceUpload {
		t.Fatalf("items = %+v", items)
	}
	if items[0].ImageURL == "" {
		t.Error("item has no image url")
	}
}

func TestUploadFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakeUploader{fail: true}, &fakeFetcher{})
	board := makeBoard(t, svc)

	err := svc.UploadItem(ctx, actor(access.RoleStaff), board.ID, "x.jpg", []byte("img"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error when storage is down")
	}
	items, _ := svc.Items(ctx, board.ID)
	if len(items) != 0 {
		t.Errorf("item created despite failed upload: %d", len(items))
	}
}

func TestImportURLWithMetadata(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakeUploader{}, &fakeFetcher{
		meta: linkmeta.Meta{Title: "Runway Report", ImageURL: "https://cdn.example/hero.jpg"},
	})
	board := makeBoard(t, svc)

	err := svc.ImportURL(ctx, actor(access.RoleStaff), ImportInput{
		BoardID: board.ID,
		URL:     "https://example.com/runway",
	})
	if err != nil {
		t.Fatalf("ImportURL: %v", err)
	}

	items, _ := svc.Items(ctx, board.ID)
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
	it := items[0]
	if it.Source != model.MoodboardSourceURL || it.Title != "Runway Report" ||
		it.ImageURL != "https://cdn.example/hero.jpg" || it.SourceURL != "https://example.com/runway" {
		t.Errorf("item = %+v", it)
	}
}

func TestImportURLDegradesWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakeUploader{}, &fakeFetcher{err: errors.New("timeout")})
	board := makeBoard(t, svc)

	err := svc.ImportURL(ctx, actor(access.RoleStaff), ImportInput{
		BoardID: board.ID,
		URL:     "https://slow.example/page",
	})
	if err != nil {
		t.Fatalf("ImportURL should not fail on metadata errors: %v", err)
	}

	items, _ := svc.Items(ctx, board.ID)
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Title != "https://slow.example/page" {
		t.Errorf("placeholder title = %q", items[0].Title)
	}
}

func TestImportURLValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakeUploader{}, &fakeFetcher{})

	err := svc.ImportURL(ctx, actor(access.RoleStaff), ImportInput{BoardID: "b1", URL: "not-a-url"})
	if err == nil {
		t.Error("malformed url accepted")
	}
	if err := svc.ImportURL(ctx, actor(access.RoleViewer), ImportInput{BoardID: "b1", URL: "https://x.example"}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("import as viewer: %v", err)
	}
}
