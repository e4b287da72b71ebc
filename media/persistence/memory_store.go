package persistence

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/alttext/media/domain"
)

var _ domain.AttachmentRepository = (*MemoryMediaStore)(nil)

// MemoryMediaStore is an in-process domain.AttachmentRepository. It records every call so
// callers can assert what a pass read and wrote.
type MemoryMediaStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.Attachment
	calls  []string
}

func NewMemoryMediaStore() *MemoryMediaStore {
	return &MemoryMediaStore{
		nextID: 1,
		items:  make(map[int64]*domain.Attachment),
	}
}

// Calls returns the names of the store methods invoked so far, in order.
func (m *MemoryMediaStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *MemoryMediaStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *MemoryMediaStore) get(id int64) (*domain.Attachment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (m *MemoryMediaStore) ListImageAttachmentIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListImageAttachmentIDs")

	ids := make([]int64, 0, len(m.items))
	for id, a := range m.items {
		if strings.HasPrefix(a.MimeType, "image/") {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MemoryMediaStore) GetTitle(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetTitle")

	a, err := m.get(id)
	if err != nil {
		return "", err
	}
	return a.Title, nil
}

func (m *MemoryMediaStore) SetTitle(_ context.Context, id int64, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetTitle")

	a, err := m.get(id)
	if err != nil {
		return err
	}
	a.Title = title
	return nil
}

func (m *MemoryMediaStore) GetAltText(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetAltText")

	a, err := m.get(id)
	if err != nil {
		return "", err
	}
	return a.AltText, nil
}

func (m *MemoryMediaStore) SetAltText(_ context.Context, id int64, altText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetAltText")

	a, err := m.get(id)
	if err != nil {
		return err
	}
	a.AltText = altText
	return nil
}

func (m *MemoryMediaStore) GetFilePath(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetFilePath")

	a, err := m.get(id)
	if err != nil {
		return "", err
	}
	return a.FilePath, nil
}

func (m *MemoryMediaStore) GetSizeVariants(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetSizeVariants")

	a, err := m.get(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(a.SizeVariants))
	for _, v := range a.SizeVariants {
		names = append(names, v.Name)
	}
	return names, nil
}

func (m *MemoryMediaStore) CreateAttachment(_ context.Context, a *domain.Attachment) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("attachment cannot be nil")
	}

	if a.FilePath == "" {
		return 0, fmt.Errorf("attachment file path cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateAttachment")

	for _, existing := range m.items {
		if existing.FilePath == a.FilePath {
			return 0, fmt.Errorf("attachment with file path %q already exists", a.FilePath)
		}
	}

	stored := *a
	stored.ID = m.nextID
	stored.SizeVariants = slices.Clone(a.SizeVariants)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.items[stored.ID] = &stored
	m.nextID++

	return stored.ID, nil
}

// GetAttachment returns a copy of the stored record.
func (m *MemoryMediaStore) GetAttachment(_ context.Context, id int64) (*domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetAttachment")

	a, err := m.get(id)
	if err != nil {
		return nil, err
	}
	out := *a
	out.SizeVariants = slices.Clone(a.SizeVariants)
	return &out, nil
}

func (m *MemoryMediaStore) HasFilePath(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("HasFilePath")

	for _, a := range m.items {
		if a.FilePath == path {
			return true, nil
		}
	}
	return false, nil
}
