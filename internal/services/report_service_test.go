package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/google/uuid"
)

func TestReportCreateRefreshesLatest(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	reports := newFakeReportStore()
	svc := services.NewReportService(reports, users)

	owner := users.addUser("owner", true)
	before := owner.Latest

	report, err := svc.Create(ctx, owner, time.Date(2012, time.July, 4, 0, 0, 0, 0, time.UTC),
		[]models.Category{{Type: "food", Checked: true, Message: "ramen"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if report.OwnerID != owner.ID {
		t.Errorf("Create() owner = %s, want %s", report.OwnerID, owner.ID)
	}
	if report.Images.Data() == nil {
		t.Error("Create() images = nil, want empty list")
	}
	if !owner.Latest.After(before) {
		t.Error("Create() did not refresh the owner's latest-activity timestamp")
	}
}

func TestReportList(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	reports := newFakeReportStore()
	svc := services.NewReportService(reports, users)

	owner := users.addUser("owner", true)
	other := users.addUser("other", true)

	dates := []time.Time{
		time.Date(2012, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2012, time.July, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2012, time.July, 15, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		reports.addReport(owner.ID, d, d, nil)
	}
	reports.addReport(other.ID, dates[1], dates[1], nil)

	got, err := svc.List(ctx, owner, 1, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() = %d reports, want 2", len(got))
	}
	// newest first, skipping July 15
	if !got[0].Date.Equal(dates[1]) || !got[1].Date.Equal(dates[0]) {
		t.Errorf("List() dates = [%v %v], want [July 4, July 1]", got[0].Date, got[1].Date)
	}
	for _, r := range got {
		if r.UserID != owner.ID.String() {
			t.Errorf("List() leaked report owned by %s", r.UserID)
		}
	}

	// defensive defaults: negative skip and zero limit
	got, err = svc.List(ctx, owner, -5, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("List(-5, 0) = %d reports, want 1", len(got))
	}
	if !got[0].Date.Equal(dates[2]) {
		t.Errorf("List(-5, 0) date = %v, want newest", got[0].Date)
	}
}

func TestReportUpdate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	reports := newFakeReportStore()
	svc := services.NewReportService(reports, users)

	owner := users.addUser("owner", true)
	intruder := users.addUser("intruder", true)

	date := time.Date(2012, time.July, 4, 0, 0, 0, 0, time.UTC)
	report, err := svc.Create(ctx, owner, date, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newDate := date.AddDate(0, 0, 1)
	cats := []models.Category{{Type: "mood", Checked: false}}
	if err := svc.Update(ctx, owner, report.ID, newDate, cats); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, _ := reports.ReportByID(ctx, report.ID)
	if !stored.Date.Equal(newDate) {
		t.Errorf("Update() date = %v, want %v", stored.Date, newDate)
	}
	if got := stored.Categories.Data(); len(got) != 1 || got[0].Type != "mood" {
		t.Errorf("Update() categories = %v, want mood entry", got)
	}

	if err := svc.Update(ctx, intruder, report.ID, newDate, nil); !errors.Is(err, services.ErrReportNotFound) {
		t.Errorf("Update() by non-owner error = %v, want ErrReportNotFound", err)
	}
	if err := svc.Update(ctx, owner, uuid.New(), newDate, nil); !errors.Is(err, services.ErrReportNotFound) {
		t.Errorf("Update() unknown id error = %v, want ErrReportNotFound", err)
	}
}

func TestReportDelete(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	reports := newFakeReportStore()
	svc := services.NewReportService(reports, users)

	owner := users.addUser("owner", true)
	intruder := users.addUser("intruder", true)

	report, err := svc.Create(ctx, owner, time.Now(), nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, intruder, report.ID); !errors.Is(err, services.ErrReportNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want ErrReportNotFound", err)
	}
	if err := svc.Delete(ctx, owner, report.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, owner, report.ID); !errors.Is(err, services.ErrReportNotFound) {
		t.Errorf("repeat Delete() error = %v, want ErrReportNotFound", err)
	}

	n, err := svc.CountByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountByOwner() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountByOwner() = %d, want 0", n)
	}
}
