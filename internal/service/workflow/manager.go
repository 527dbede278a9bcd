package workflow

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/events"
	"github.com/universa-bio/origin/internal/logging"
)

// Manager owns the session registry. Each login creates an isolated
// session with its own controller, result store and trigger set; the
// stateless executors and the event bus are shared across sessions.
type Manager struct {
	defaults  core.Settings
	executors []Executor
	bus       *events.Bus
	logger    *logging.Logger

	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewManager creates a session manager. defaults seeds every new
// session's settings.
func NewManager(defaults core.Settings, executors []Executor, bus *events.Bus, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		defaults:    defaults,
		executors:   executors,
		bus:         bus,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// UpdateDefaults replaces the settings future sessions start with.
// Existing sessions keep their current settings.
func (m *Manager) UpdateDefaults(defaults core.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = defaults
}

// Login creates a new session for the given username. An empty
// username is rejected.
func (m *Manager) Login(username string) (*Controller, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, core.ErrValidation("USERNAME_REQUIRED", "username cannot be empty")
	}

	session := core.NewSession(uuid.NewString(), name)

	m.mu.Lock()
	session.Settings = m.defaults
	m.mu.Unlock()
	session.EnsureDefaults()

	ctrl := NewController(session, core.NewResultStore(), m.executors, m.bus, m.logger)

	m.mu.Lock()
	m.controllers[session.ID] = ctrl
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", session.ID, "username", name)
	return ctrl, nil
}

// Get returns the controller for a session ID.
func (m *Manager) Get(sessionID string) (*Controller, error) {
	m.mu.RLock()
	ctrl, ok := m.controllers[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrState("SESSION_NOT_FOUND", "no such session: "+sessionID)
	}
	return ctrl, nil
}

// Logout removes a session and all its state.
func (m *Manager) Logout(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controllers[sessionID]
	if !ok {
		return core.ErrState("SESSION_NOT_FOUND", "no such session: "+sessionID)
	}
	ctrl.session.LoggedIn = false
	delete(m.controllers, sessionID)
	m.logger.Info("session removed", "session_id", sessionID)
	return nil
}

// Reset clears a session's workflow state, preserving its settings.
func (m *Manager) Reset(sessionID string) error {
	ctrl, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	ctrl.Reset()
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.controllers)
}
