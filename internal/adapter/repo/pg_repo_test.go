package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/sqlinline"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestUserRepositoryCreateAppliesDefaults(t *testing.T) {
	exec := &fakeExec{row: valuesRow(int64(1), "ana", "ana@example.com", "hash", domain.DefaultProfileImage, "free", nil, nil, fixedTime, fixedTime)}
	repo := NewUserRepository(exec)

	u, err := repo.CreateUser(context.Background(), &domain.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != 1 || u.PlanType != domain.UserPlanFree || u.StripeCustomerID != nil {
		t.Fatalf("CreateUser = %+v", u)
	}
	if len(exec.calls) != 1 || exec.calls[0].query != sqlinline.QInsertUser {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
	args := exec.calls[0].args
	if args[3] != domain.DefaultProfileImage || args[4] != "free" {
		t.Fatalf("insert args = %v", args)
	}
}

func TestUserRepositoryMapsErrors(t *testing.T) {
	repo := NewUserRepository(&fakeExec{})
	if _, err := repo.GetUserByEmail(context.Background(), "missing@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}

	dup := &fakeExec{row: NewSimpleRow(func(dest ...any) error {
		return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	})}
	if _, err := NewUserRepository(dup).CreateUser(context.Background(), &domain.User{Email: "a@b.c"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate err = %v, want ErrConflict", err)
	}

	broken := &fakeExec{row: NewSimpleRow(func(dest ...any) error { return errors.New("connection reset") })}
	_, err := NewUserRepository(broken).GetUser(context.Background(), 1)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("driver err = %v, want ErrStorage", err)
	}
}

func TestSettingsRepositorySendsNullForUnsetFields(t *testing.T) {
	exec := &fakeExec{row: valuesRow(int64(4), int64(9), "dark", false, false, true, false, true, true, fixedTime)}
	repo := NewSettingsRepository(exec)
	theme := "dark"

	s, err := repo.SaveUserSettings(context.Background(), 9, domain.SettingsPatch{Theme: &theme})
	if err != nil {
		t.Fatalf("SaveUserSettings: %v", err)
	}
	if s.Theme != "dark" || !s.EmailNotifications || !s.SaveHistory {
		t.Fatalf("SaveUserSettings = %+v", s)
	}
	args := exec.calls[0].args
	if exec.calls[0].query != sqlinline.QUpsertUserSettings || len(args) != 8 {
		t.Fatalf("unexpected call: %+v", exec.calls[0])
	}
	if p, ok := args[1].(*string); !ok || *p != "dark" {
		t.Fatalf("theme arg = %#v", args[1])
	}
	for i := 2; i < 8; i++ {
		if p, ok := args[i].(*bool); !ok || p != nil {
			t.Fatalf("arg %d = %#v, want nil *bool", i, args[i])
		}
	}
}

func TestImageRepositorySaveImage(t *testing.T) {
	processed := "http://localhost:5000/uploads/processed-1.png"
	exec := &fakeExec{row: valuesRow(int64(10), int64(2), "src", processed, processed, "Sketch", nil, "style", []byte(`{"k":1}`), fixedTime)}
	repo := NewImageRepository(exec)
	uid := int64(2)
	style := "Sketch"

	rec, err := repo.SaveImage(context.Background(), domain.NewImageRecord{
		UserID:         &uid,
		OriginalURL:    "src",
		ProcessedURL:   &processed,
		ThumbnailURL:   &processed,
		Style:          &style,
		ProcessingType: domain.ProcessingStyle,
		Metadata:       json.RawMessage(`{"k":1}`),
	})
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if rec.ID != 10 || *rec.UserID != 2 || *rec.Style != "Sketch" || rec.AIPrompt != nil {
		t.Fatalf("SaveImage = %+v", rec)
	}
	if string(rec.Metadata) != `{"k":1}` || rec.ProcessingType != domain.ProcessingStyle {
		t.Fatalf("SaveImage metadata/type = %s/%s", rec.Metadata, rec.ProcessingType)
	}
	args := exec.calls[0].args
	if args[6] != "style" {
		t.Fatalf("processing_type arg = %v", args[6])
	}
	if b, ok := args[7].([]byte); !ok || string(b) != `{"k":1}` {
		t.Fatalf("metadata arg = %#v", args[7])
	}
}

func TestImageRepositorySaveImageNullMetadata(t *testing.T) {
	exec := &fakeExec{row: valuesRow(int64(1), nil, "src", nil, nil, nil, nil, "upload", nil, fixedTime)}
	rec, err := NewImageRepository(exec).SaveImage(context.Background(), domain.NewImageRecord{OriginalURL: "src", ProcessingType: domain.ProcessingUpload})
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if exec.calls[0].args[7] != nil {
		t.Fatalf("metadata arg = %#v, want nil", exec.calls[0].args[7])
	}
	if rec.UserID != nil || rec.Metadata != nil {
		t.Fatalf("SaveImage = %+v", rec)
	}
}

func TestImageRepositoryGetUserImages(t *testing.T) {
	exec := &fakeExec{rows: [][]any{
		{int64(3), int64(5), "c", nil, nil, nil, "a prompt", "generate", nil, fixedTime.Add(time.Minute)},
		{int64(2), int64(5), "b", nil, nil, "Sketch", nil, "style", nil, fixedTime},
	}}
	images, err := NewImageRepository(exec).GetUserImages(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetUserImages: %v", err)
	}
	if len(images) != 2 || images[0].ID != 3 || images[1].ID != 2 {
		t.Fatalf("GetUserImages = %+v", images)
	}
	if images[0].AIPrompt == nil || *images[0].AIPrompt != "a prompt" {
		t.Fatalf("AIPrompt = %v", images[0].AIPrompt)
	}
	if !exec.lastRow.closed {
		t.Fatalf("rows were not closed")
	}

	empty, err := NewImageRepository(&fakeExec{}).GetUserImages(context.Background(), 5)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty GetUserImages = %#v, %v", empty, err)
	}
}

func TestImageRepositoryClearUserImages(t *testing.T) {
	exec := &fakeExec{}
	if err := NewImageRepository(exec).ClearUserImages(context.Background(), 5); err != nil {
		t.Fatalf("ClearUserImages: %v", err)
	}
	if exec.calls[0].query != sqlinline.QDeleteImagesByUser || exec.calls[0].args[0] != int64(5) {
		t.Fatalf("unexpected call: %+v", exec.calls[0])
	}

	failing := &fakeExec{execErr: errors.New("timeout")}
	if err := NewImageRepository(failing).ClearUserImages(context.Background(), 5); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
}
