package repo

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
)

// MemoryStore is an in-process domain.Store used when no database is
// configured. Data is lost on restart.
type MemoryStore struct {
	mu sync.Mutex

	now func() time.Time

	nextUserID     int64
	nextSettingsID int64
	nextImageID    int64

	users    map[int64]domain.User
	settings map[int64]domain.UserSettings
	images   map[int64]domain.ImageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[int64]domain.User),
		settings: make(map[int64]domain.UserSettings),
		images:   make(map[int64]domain.ImageRecord),
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return nil, domain.ErrConflict
		}
	}
	m.nextUserID++
	now := m.now()
	created := *user
	created.ID = m.nextUserID
	if strings.TrimSpace(created.ProfileImage) == "" {
		created.ProfileImage = domain.DefaultProfileImage
	}
	if created.PlanType == "" {
		created.PlanType = domain.UserPlanFree
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	m.users[created.ID] = created
	return &created, nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool { return u.Email == email })
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool { return u.Username == username })
}

func (m *MemoryStore) UpdateUserPlan(ctx context.Context, id int64, plan domain.UserPlan) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.PlanType = plan
	u.UpdatedAt = m.now()
	m.users[id] = u
	return &u, nil
}

func (m *MemoryStore) findUser(match func(domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryStore) GetUserSettings(ctx context.Context, userID int64) (*domain.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) SaveUserSettings(ctx context.Context, userID int64, patch domain.SettingsPatch) (*domain.UserSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		s = domain.DefaultUserSettings(userID)
		m.nextSettingsID++
		s.ID = m.nextSettingsID
	}
	patch.Apply(&s)
	s.UpdatedAt = m.now()
	m.settings[userID] = s
	return &s, nil
}

func (m *MemoryStore) SaveImage(ctx context.Context, rec domain.NewImageRecord) (*domain.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextImageID++
	saved := domain.ImageRecord{
		ID:             m.nextImageID,
		UserID:         cloneInt64(rec.UserID),
		OriginalURL:    rec.OriginalURL,
		ProcessedURL:   cloneString(rec.ProcessedURL),
		ThumbnailURL:   cloneString(rec.ThumbnailURL),
		Style:          cloneString(rec.Style),
		AIPrompt:       cloneString(rec.AIPrompt),
		ProcessingType: rec.ProcessingType,
		Metadata:       cloneJSON(rec.Metadata),
		CreatedAt:      m.now(),
	}
	m.images[saved.ID] = saved
	return &saved, nil
}

func (m *MemoryStore) GetImage(ctx context.Context, id int64) (*domain.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.images[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryStore) GetUserImages(ctx context.Context, userID int64) ([]domain.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ImageRecord, 0)
	for _, rec := range m.images {
		if rec.UserID != nil && *rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ClearUserImages(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.images {
		if rec.UserID != nil && *rec.UserID == userID {
			delete(m.images, id)
		}
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneJSON(m json.RawMessage) json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), m...)
}

var _ domain.Store = (*MemoryStore)(nil)
