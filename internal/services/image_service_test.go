package services_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/google/uuid"
)

// fakeImageStore implements services.ImageStore in memory.
type fakeImageStore struct {
	images map[uuid.UUID]*models.Image
	err    error
	m      sync.Mutex
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{images: make(map[uuid.UUID]*models.Image)}
}

func (f *fakeImageStore) CreateImage(_ context.Context, img *models.Image) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.err != nil {
		return f.err
	}
	f.images[img.ID] = img
	return nil
}

func (f *fakeImageStore) ImageByID(_ context.Context, id uuid.UUID) (*models.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.images[id], nil
}

func (f *fakeImageStore) DeleteImage(_ context.Context, id uuid.UUID) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.err != nil {
		return f.err
	}
	delete(f.images, id)
	return nil
}

type fakeBlob struct {
	data        []byte
	contentType string
}

// fakeBlobStore implements services.BlobStore in memory.
type fakeBlobStore struct {
	blobs map[string]fakeBlob
	err   error
	m     sync.Mutex
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string]fakeBlob)}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.err != nil {
		return f.err
	}
	f.blobs[key] = fakeBlob{data: data, contentType: contentType}
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	blob, ok := f.blobs[key]
	if !ok {
		return nil, "", errors.New("blob not found")
	}
	return blob.data, blob.contentType, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.err != nil {
		return f.err
	}
	delete(f.blobs, key)
	return nil
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			bitmap.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bitmap); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

type imageFixture struct {
	svc     *services.ImageService
	rel     *services.RelationshipService
	users   *fakeUserStore
	reports *fakeReportStore
	images  *fakeImageStore
	blobs   *fakeBlobStore
}

func newImageFixture(t *testing.T) *imageFixture {
	t.Helper()

	users := newFakeUserStore()
	reports := newFakeReportStore()
	images := newFakeImageStore()
	blobs := newFakeBlobStore()
	rel := services.NewRelationshipService(users, nil)

	return &imageFixture{
		svc:     services.NewImageService(images, reports, blobs, rel, 4*1024*1024),
		rel:     rel,
		users:   users,
		reports: reports,
		images:  images,
		blobs:   blobs,
	}
}

func TestImageUpload(t *testing.T) {
	ctx := context.Background()
	fx := newImageFixture(t)

	owner := fx.users.addUser("owner", true)
	now := time.Now()
	report := fx.reports.addReport(owner.ID, now, now, nil)

	data := testPNG(t, 8, 8)
	img, err := fx.svc.Upload(ctx, owner, report.ID, data, "image/png", "breakfast")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if img.ContentType != "image/png" {
		t.Errorf("Upload() content type = %q, want image/png", img.ContentType)
	}
	if img.Size != int64(len(data)) {
		t.Errorf("Upload() size = %d, want %d", img.Size, len(data))
	}

	if _, ok := fx.blobs.blobs[img.ID.String()]; !ok {
		t.Error("Upload() did not store the blob")
	}
	stored, _ := fx.reports.ReportByID(ctx, report.ID)
	refs := stored.Images.Data()
	if len(refs) != 1 || refs[0].ID != img.ID || refs[0].Description != "breakfast" {
		t.Errorf("Upload() report image refs = %v, want one ref with description", refs)
	}
}

func TestImageUploadDeclaredTypeParameters(t *testing.T) {
	ctx := context.Background()
	fx := newImageFixture(t)

	owner := fx.users.addUser("owner", true)
	now := time.Now()
	report := fx.reports.addReport(owner.ID, now, now, nil)

	// clients may send the media type with parameters attached
	img, err := fx.svc.Upload(ctx, owner, report.ID, testPNG(t, 4, 4), "image/png; charset=binary", "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if img.ContentType != "image/png" {
		t.Errorf("Upload() content type = %q, want canonical image/png", img.ContentType)
	}
}

func TestImageUploadRejections(t *testing.T) {
	ctx := context.Background()
	fx := newImageFixture(t)

	owner := fx.users.addUser("owner", true)
	intruder := fx.users.addUser("intruder", true)
	now := time.Now()
	report := fx.reports.addReport(owner.ID, now, now, nil)
	data := testPNG(t, 4, 4)

	tests := []struct {
		name     string
		caller   *models.User
		reportID uuid.UUID
		data     []byte
		declared string
		wantErr  error
	}{
		{
			name: "unknown report", caller: owner, reportID: uuid.New(),
			data: data, declared: "image/png", wantErr: services.ErrReportNotFound,
		},
		{
			name: "someone else's report", caller: intruder, reportID: report.ID,
			data: data, declared: "image/png", wantErr: services.ErrReportNotFound,
		},
		{
			name: "not an image", caller: owner, reportID: report.ID,
			data: []byte("plain text"), declared: "text/plain", wantErr: services.ErrUnsupportedImageType,
		},
		{
			name: "declared type mismatch", caller: owner, reportID: report.ID,
			data: data, declared: "image/jpeg", wantErr: services.ErrUnsupportedImageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Upload(ctx, tt.caller, tt.reportID, tt.data, tt.declared, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(fx.blobs.blobs) != 0 {
		t.Error("rejected uploads left blobs behind")
	}
}

func TestImageUploadTooLarge(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	reports := newFakeReportStore()
	rel := services.NewRelationshipService(users, nil)
	svc := services.NewImageService(newFakeImageStore(), reports, newFakeBlobStore(), rel, 16)

	owner := users.addUser("owner", true)
	now := time.Now()
	report := reports.addReport(owner.ID, now, now, nil)

	if _, err := svc.Upload(ctx, owner, report.ID, testPNG(t, 8, 8), "image/png", ""); !errors.Is(err, services.ErrImageTooLarge) {
		t.Errorf("Upload() error = %v, want ErrImageTooLarge", err)
	}
}

func TestImageGet(t *testing.T) {
	ctx := context.Background()
	fx := newImageFixture(t)

	owner := fx.users.addUser("owner", true)
	follower := fx.users.addUser("follower", true)
	stranger := fx.users.addUser("stranger", true)
	now := time.Now()
	report := fx.reports.addReport(owner.ID, now, now, nil)

	if _, err := fx.rel.AddFollowing(ctx, follower, "owner"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}

	uploaded, err := fx.svc.Upload(ctx, owner, report.ID, testPNG(t, 16, 16), "image/png", "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	data, contentType, err := fx.svc.Get(ctx, follower, uploaded.ID, 0)
	if err != nil {
		t.Fatalf("Get() by follower error = %v", err)
	}
	if contentType != "image/png" {
		t.Errorf("Get() content type = %q, want image/png", contentType)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Get() returned undecodable png: %v", err)
	}
	if decoded.Bounds().Dx() != 16 {
		t.Errorf("Get() width = %d, want original 16", decoded.Bounds().Dx())
	}

	// downscaled variant
	data, _, err = fx.svc.Get(ctx, owner, uploaded.ID, 8)
	if err != nil {
		t.Fatalf("Get() with width error = %v", err)
	}
	decoded, err = png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Get() returned undecodable resized png: %v", err)
	}
	if decoded.Bounds().Dx() != 8 {
		t.Errorf("Get() resized width = %d, want 8", decoded.Bounds().Dx())
	}

	if _, _, err := fx.svc.Get(ctx, stranger, uploaded.ID, 0); !errors.Is(err, services.ErrNotAuthorized) {
		t.Errorf("Get() by stranger error = %v, want ErrNotAuthorized", err)
	}
	if _, _, err := fx.svc.Get(ctx, owner, uuid.New(), 0); !errors.Is(err, services.ErrImageNotFound) {
		t.Errorf("Get() unknown id error = %v, want ErrImageNotFound", err)
	}
}

func TestImageDelete(t *testing.T) {
	ctx := context.Background()
	fx := newImageFixture(t)

	owner := fx.users.addUser("owner", true)
	intruder := fx.users.addUser("intruder", true)
	now := time.Now()
	report := fx.reports.addReport(owner.ID, now, now, nil)

	uploaded, err := fx.svc.Upload(ctx, owner, report.ID, testPNG(t, 8, 8), "image/png", "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if err := fx.svc.Delete(ctx, intruder, uploaded.ID); !errors.Is(err, services.ErrNotAuthorized) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotAuthorized", err)
	}

	if err := fx.svc.Delete(ctx, owner, uploaded.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(fx.blobs.blobs) != 0 {
		t.Error("Delete() left the blob behind")
	}
	if len(fx.images.images) != 0 {
		t.Error("Delete() left the metadata row behind")
	}
	stored, _ := fx.reports.ReportByID(ctx, report.ID)
	if refs := stored.Images.Data(); len(refs) != 0 {
		t.Errorf("Delete() left image refs on the report: %v", refs)
	}

	if err := fx.svc.Delete(ctx, owner, uploaded.ID); !errors.Is(err, services.ErrImageNotFound) {
		t.Errorf("repeat Delete() error = %v, want ErrImageNotFound", err)
	}
}
