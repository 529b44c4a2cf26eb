package workspace

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/circuitbench/backend/internal/catalog"
	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/trace"
)

// MaxWorkspaces limits concurrent workspaces to prevent resource exhaustion
const MaxWorkspaces = 32

// WorkspaceMaxAge is how long to keep idle workspaces before cleanup
const WorkspaceMaxAge = 30 * time.Minute

// KeepAliveWindow is how long a workspace counts as actively used after its
// last access
const KeepAliveWindow = 5 * time.Minute

// Manager owns the live workspaces.
type Manager struct {
	workspaces map[string]*State
	mu         sync.RWMutex
	catalog    *catalog.Catalog
	tempDir    string
	traceCfg   trace.Config
}

// State pairs a workspace with its access bookkeeping.
type State struct {
	Workspace    *Workspace
	LastAccessed time.Time
}

// NewManager creates a workspace manager. tempDir receives the per
// workspace trace databases and is created if missing.
func NewManager(cat *catalog.Catalog, tempDir string, traceCfg trace.Config) *Manager {
	os.MkdirAll(tempDir, 0755)
	return &Manager{
		workspaces: make(map[string]*State),
		catalog:    cat,
		tempDir:    tempDir,
		traceCfg:   traceCfg,
	}
}

// Create starts a fresh workspace. When the trace store cannot be opened
// the workspace still comes up, just untraced.
func (m *Manager) Create() *Workspace {
	m.evictOldestIfNeeded()

	id := uuid.New().String()

	tracer, err := trace.NewStore(m.tempDir, id, m.traceCfg)
	if err != nil {
		fmt.Printf("[Workspace %s] trace store unavailable, continuing untraced: %v\n", id[:8], err)
		tracer = nil
	}

	ws := New(id, m.catalog, tracer)

	m.mu.Lock()
	m.workspaces[id] = &State{
		Workspace:    ws,
		LastAccessed: time.Now(),
	}
	m.mu.Unlock()

	fmt.Printf("[Workspace %s] created\n", id[:8])
	return ws
}

// Get returns a workspace by ID.
func (m *Manager) Get(id string) (*Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.workspaces[id]
	if !ok {
		return nil, false
	}
	return state.Workspace, true
}

// Touch updates the LastAccessed timestamp for a workspace. Called on
// every command and read so active workspaces survive cleanup.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.workspaces[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Remove deletes a workspace and releases its trace store.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.workspaces[id]
	if !ok {
		return false
	}
	state.Workspace.Close()
	delete(m.workspaces, id)
	fmt.Printf("[Workspace %s] removed\n", id[:8])
	return true
}

// evictOldestIfNeeded drops the least recently accessed workspaces when at
// capacity so Create always succeeds.
func (m *Manager) evictOldestIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.workspaces) < MaxWorkspaces {
		return
	}

	candidates := make([]*State, 0, len(m.workspaces))
	for _, state := range m.workspaces {
		candidates = append(candidates, state)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastAccessed.Before(candidates[j].LastAccessed)
	})

	toFree := len(m.workspaces) - MaxWorkspaces + 1
	for i := 0; i < toFree && i < len(candidates); i++ {
		ws := candidates[i].Workspace
		ws.Close()
		delete(m.workspaces, ws.ID)
		fmt.Printf("[Manager] Evicted idle workspace %s to free capacity\n", ws.ID[:8])
	}
}

// CleanupOld removes workspaces idle for longer than maxAge, but keeps
// anything accessed within KeepAliveWindow.
func (m *Manager) CleanupOld(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-KeepAliveWindow)

	for id, state := range m.workspaces {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			state.Workspace.Close()
			delete(m.workspaces, id)
			fmt.Printf("[Manager] Cleaned up aged workspace %s (last accessed: %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// List returns the listing entries of all workspaces, oldest first.
func (m *Manager) List() []models.WorkspaceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]models.WorkspaceInfo, 0, len(m.workspaces))
	for _, state := range m.workspaces {
		infos = append(infos, state.Workspace.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt < infos[j].CreatedAt
	})
	return infos
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// CloseAll releases every workspace. Called on shutdown so the trace temp
// files are removed.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, state := range m.workspaces {
		state.Workspace.Close()
		delete(m.workspaces, id)
	}
}
