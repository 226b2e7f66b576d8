package session

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/farmcart/internal/users"
	"github.com/angelmondragon/farmcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/metrics"
)

const (
	SessionSlot  = "user_session"
	LanguageSlot = "appLanguage"

	opStore       = "session.store"
	opGet         = "session.get"
	opLogout      = "session.logout"
	opSetLanguage = "settings.language.set"
	opGetLanguage = "settings.language.get"
)

// Snapshot is the user identity held in the session slot. It never carries
// the password hash.
type Snapshot struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// FromUser snapshots a directory user.
func FromUser(u *users.UserDTO) Snapshot {
	if u == nil {
		return Snapshot{}
	}
	return Snapshot{ID: u.ID, Username: u.Username}
}

type sealedStore interface {
	Put(ctx context.Context, name string, value any) error
	Get(ctx context.Context, name string, dst any) (bool, error)
	Delete(ctx context.Context, name string) error
}

// Manager is the credential store: one session slot and the UI language
// preference, both sealed at rest.
type Manager struct {
	store   sealedStore
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
}

func NewManager(store sealedStore, logg *logger.Logger, m *metrics.StoreMetrics) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("sealed store is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Manager{store: store, logg: logg, metrics: m}, nil
}

// StoreSession overwrites the slot with user. Failures are logged, never
// returned, so callers must not assume the write was durable.
func (m *Manager) StoreSession(ctx context.Context, user Snapshot) {
	start := time.Now()
	err := m.store.Put(ctx, SessionSlot, user)
	m.metrics.Observe(opStore, start, err)
	if err != nil {
		ctx = m.logg.WithUserID(m.logg.WithOperation(ctx, opStore), user.ID)
		m.logg.Error(ctx, "store session failed", err)
	}
}

// GetSession returns the active user. Absent, unreadable and malformed slots
// all read as no session.
func (m *Manager) GetSession(ctx context.Context) (*Snapshot, bool) {
	start := time.Now()
	var snap Snapshot
	found, err := m.store.Get(ctx, SessionSlot, &snap)
	m.metrics.Observe(opGet, start, err)
	if err != nil {
		m.logg.Warn(m.logg.WithField(m.logg.WithOperation(ctx, opGet), "error", err.Error()), "session slot unreadable")
		return nil, false
	}
	if !found || snap.ID <= 0 {
		return nil, false
	}
	return &snap, true
}

// Logout clears the slot. Clearing an empty slot is fine.
func (m *Manager) Logout(ctx context.Context) {
	start := time.Now()
	err := m.store.Delete(ctx, SessionSlot)
	m.metrics.Observe(opLogout, start, err)
	if err != nil {
		m.logg.Error(m.logg.WithOperation(ctx, opLogout), "clear session failed", err)
	}
}

// SetLanguage stores the UI language preference.
func (m *Manager) SetLanguage(ctx context.Context, lang enums.Language) error {
	if !lang.IsValid() {
		m.metrics.Reject(opSetLanguage)
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported language").
			WithDetails(map[string]any{"language": string(lang), "supported": enums.Languages()})
	}
	start := time.Now()
	err := m.store.Put(ctx, LanguageSlot, lang)
	m.metrics.Observe(opSetLanguage, start, err)
	if err != nil {
		m.logg.Error(m.logg.WithOperation(ctx, opSetLanguage), "store language failed", err)
		return pkgerrors.Storage(err, "store language")
	}
	return nil
}

// Language returns the stored preference, or the default when none is usable.
func (m *Manager) Language(ctx context.Context) enums.Language {
	start := time.Now()
	var raw string
	found, err := m.store.Get(ctx, LanguageSlot, &raw)
	m.metrics.Observe(opGetLanguage, start, err)
	if err != nil {
		m.logg.Warn(m.logg.WithField(m.logg.WithOperation(ctx, opGetLanguage), "error", err.Error()), "language slot unreadable")
		return enums.DefaultLanguage
	}
	if !found {
		return enums.DefaultLanguage
	}
	lang, err := enums.ParseLanguage(raw)
	if err != nil {
		return enums.DefaultLanguage
	}
	return lang
}
