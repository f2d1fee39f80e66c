// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/gh-field-sync/internal/domain"
)

// MockProjectAPI is a test double for domain.ProjectAPI backed by in-memory
// maps. It is safe for concurrent use.
// Fields are ordered to minimize memory padding.
type MockProjectAPI struct {
	FirstProjectErr  error
	TrackedIssuesErr error
	AddErr           error
	Projects         map[domain.IssueID]domain.ProjectID
	Tracked          map[domain.IssueID][]domain.IssueID
	Items            map[domain.IssueID][]domain.ProjectItem
	ItemsErrs        map[domain.IssueID]error // ProjectItems errors per issue
	UpdateErrs       map[domain.ItemID]error  // UpdateTextField errors per item
	Updates          []domain.UpdateTextFieldInput
	Added            []domain.IssueID
	Calls            []string
	UpdateDelay      time.Duration
	MaxInFlight      int // Highest number of concurrent UpdateTextField calls seen
	inFlight         int
	mu               sync.Mutex
	TrackedHasMore   bool
}

// NewMockProjectAPI creates a new MockProjectAPI with initialized maps.
func NewMockProjectAPI() *MockProjectAPI {
	return &MockProjectAPI{
		Projects:   make(map[domain.IssueID]domain.ProjectID),
		Tracked:    make(map[domain.IssueID][]domain.IssueID),
		Items:      make(map[domain.IssueID][]domain.ProjectItem),
		ItemsErrs:  make(map[domain.IssueID]error),
		UpdateErrs: make(map[domain.ItemID]error),
	}
}

// Ensure MockProjectAPI implements domain.ProjectAPI interface.
var _ domain.ProjectAPI = (*MockProjectAPI)(nil)

// AddIssue registers issueID as a member of project with the given text
// fields. The item id is derived from the issue id.
func (m *MockProjectAPI) AddIssue(issueID domain.IssueID, project domain.ProjectID, fields ...domain.TextField) domain.ItemID {
	m.mu.Lock()
	defer m.mu.Unlock()
	itemID := ItemIDFor(issueID)
	m.Items[issueID] = append(m.Items[issueID], domain.ProjectItem{
		ID:        itemID,
		ProjectID: project,
		Fields:    fields,
	})
	return itemID
}

// ItemIDFor returns the item id the mock assigns to an issue.
func ItemIDFor(issueID domain.IssueID) domain.ItemID {
	return domain.ItemID("item-" + string(issueID))
}

// FieldValue returns the current value of a field on issueID's item in project.
func (m *MockProjectAPI) FieldValue(issueID domain.IssueID, project domain.ProjectID, fieldID domain.FieldID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := domain.FindItem(m.Items[issueID], project)
	if !ok {
		return "", false
	}
	for _, f := range item.Fields {
		if f.ID == fieldID {
			return f.Value, true
		}
	}
	return "", false
}

// UpdateCount returns the number of UpdateTextField calls so far.
func (m *MockProjectAPI) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}

func (m *MockProjectAPI) record(call string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()
}

// TrackedIssues returns the configured children.
func (m *MockProjectAPI) TrackedIssues(_ context.Context, issueID domain.IssueID) (*domain.TrackedIssues, error) {
	m.record("TrackedIssues:" + string(issueID))
	if m.TrackedIssuesErr != nil {
		return nil, m.TrackedIssuesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := append([]domain.IssueID(nil), m.Tracked[issueID]...)
	return &domain.TrackedIssues{IDs: ids, HasMore: m.TrackedHasMore}, nil
}

// FirstProject returns the configured project.
func (m *MockProjectAPI) FirstProject(_ context.Context, issueID domain.IssueID) (domain.ProjectID, bool, error) {
	m.record("FirstProject:" + string(issueID))
	if m.FirstProjectErr != nil {
		return "", false, m.FirstProjectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[issueID]
	return p, ok, nil
}

// ProjectItems returns a copy of the configured items.
func (m *MockProjectAPI) ProjectItems(_ context.Context, issueID domain.IssueID) ([]domain.ProjectItem, error) {
	m.record("ProjectItems:" + string(issueID))
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ItemsErrs[issueID]; err != nil {
		return nil, err
	}
	items := make([]domain.ProjectItem, 0, len(m.Items[issueID]))
	for _, it := range m.Items[issueID] {
		it.Fields = append([]domain.TextField(nil), it.Fields...)
		items = append(items, it)
	}
	return items, nil
}

// UpdateTextField records the update and applies it to the stored item.
func (m *MockProjectAPI) UpdateTextField(_ context.Context, in domain.UpdateTextFieldInput) (domain.ItemID, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.MaxInFlight {
		m.MaxInFlight = m.inFlight
	}
	delay := m.UpdateDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	m.Updates = append(m.Updates, in)

	if err := m.UpdateErrs[in.ItemID]; err != nil {
		return "", err
	}
	for issueID, items := range m.Items {
		for i := range items {
			if items[i].ID != in.ItemID || items[i].ProjectID != in.ProjectID {
				continue
			}
			items[i].Fields = setField(items[i].Fields, in.FieldID, in.Value)
			m.Items[issueID] = items
			return in.ItemID, nil
		}
	}
	return "", fmt.Errorf("item %s not found in project %s", in.ItemID, in.ProjectID)
}

// AddToProject adds the issue to the project, returning the existing item
// when the issue is already a member.
func (m *MockProjectAPI) AddToProject(_ context.Context, project domain.ProjectID, issueID domain.IssueID) (domain.ItemID, error) {
	m.record("AddToProject:" + string(issueID))
	if m.AddErr != nil {
		return "", m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := domain.FindItem(m.Items[issueID], project); ok {
		return item.ID, nil
	}
	itemID := ItemIDFor(issueID)
	m.Items[issueID] = append(m.Items[issueID], domain.ProjectItem{ID: itemID, ProjectID: project})
	m.Added = append(m.Added, issueID)
	return itemID, nil
}

// setField replaces the value of the field with id, or appends it.
func setField(fields []domain.TextField, id domain.FieldID, value string) []domain.TextField {
	for i := range fields {
		if fields[i].ID == id {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, domain.TextField{ID: id, Value: value})
}

// LogEntry is one line captured by MockLogger.
type LogEntry struct {
	Level    string
	IssueID  domain.IssueID
	Category string
	Msg      string
}

// MockLogger is a test double for domain.Logger that records entries.
// It is safe for concurrent use.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) add(level string, issueID domain.IssueID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, IssueID: issueID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(issueID domain.IssueID, category, msg string) {
	m.add("INFO", issueID, category, msg)
}

// Debug records a debug entry.
func (m *MockLogger) Debug(issueID domain.IssueID, category, msg string) {
	m.add("DEBUG", issueID, category, msg)
}

// Warn records a warn entry.
func (m *MockLogger) Warn(issueID domain.IssueID, category, msg string) {
	m.add("WARN", issueID, category, msg)
}

// Error records an error entry.
func (m *MockLogger) Error(issueID domain.IssueID, category, msg string) {
	m.add("ERROR", issueID, category, msg)
}

// Count returns the number of entries at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockTriggerSource is a test double for domain.TriggerSource.
type MockTriggerSource struct {
	Trigger *domain.Trigger
	ReadErr error
}

// Ensure MockTriggerSource implements domain.TriggerSource interface.
var _ domain.TriggerSource = (*MockTriggerSource)(nil)

// Read returns the configured trigger or error.
func (m *MockTriggerSource) Read() (*domain.Trigger, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Trigger, nil
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns configured error.
func (m *MockConfigManager) InitRepoConfig(_ *domain.Config) error {
	m.InitRepoCalled = true
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns configured error.
func (m *MockConfigManager) InitGlobalConfig(_ *domain.Config) error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}
