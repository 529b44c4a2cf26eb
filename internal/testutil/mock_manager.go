// mock_manager.go - Mock workspace manager for handler testing
package testutil

import (
	"fmt"
	"sync"

	"github.com/circuitbench/backend/internal/catalog"
	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/workspace"
)

// MockManager implements the api.WorkspaceManager method set over plain
// untraced workspaces, with deterministic ids and access counting.
type MockManager struct {
	mu         sync.RWMutex
	workspaces map[string]*workspace.Workspace
	order      []string
	touched    map[string]int
	catalog    *catalog.Catalog
}

// NewMockManager creates an empty mock manager
func NewMockManager() *MockManager {
	return &MockManager{
		workspaces: make(map[string]*workspace.Workspace),
		touched:    make(map[string]int),
		catalog:    catalog.Default(),
	}
}

func (m *MockManager) Create() *workspace.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws := workspace.New(generateTestID(), m.catalog, nil)
	m.workspaces[ws.ID] = ws
	m.order = append(m.order, ws.ID)
	return ws
}

func (m *MockManager) Get(id string) (*workspace.Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws, ok := m.workspaces[id]
	return ws, ok
}

func (m *MockManager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workspaces[id]; !ok {
		return false
	}
	m.touched[id]++
	return true
}

func (m *MockManager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, ok := m.workspaces[id]
	if !ok {
		return false
	}
	ws.Close()
	delete(m.workspaces, id)
	for i, ordered := range m.order {
		if ordered == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *MockManager) List() []models.WorkspaceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]models.WorkspaceInfo, 0, len(m.order))
	for _, id := range m.order {
		infos = append(infos, m.workspaces[id].Info())
	}
	return infos
}

// Test Helper Methods

// Add inserts a pre-built workspace, e.g. one carrying a real trace store
func (m *MockManager) Add(ws *workspace.Workspace) *workspace.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workspaces[ws.ID] = ws
	m.order = append(m.order, ws.ID)
	return ws
}

// TouchCount returns how many times a workspace was touched
func (m *MockManager) TouchCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.touched[id]
}

// Len returns the number of workspaces
func (m *MockManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-workspace-%d", testIDCounter)
}
