package services

import (
	"sync"

	"gabaychat/internal/config"
	"gabaychat/internal/models"
	contextutils "gabaychat/internal/utils"
)

// Group names used by the settings page.
const (
	GroupNavigation = "navigation"
	GroupLanguages  = "languages"
)

// SettingsServiceInterface defines the interface for the settings page service
type SettingsServiceInterface interface {
	Groups(sessionID string) []models.SelectionGroup
	Group(sessionID, groupName string) (*models.SelectionGroup, error)
	Select(sessionID, groupName, value string) (*models.SelectionGroup, error)
}

// settingsState is one session's settings page state.
type settingsState struct {
	navigation models.SelectionGroup
	languages  models.SelectionGroup
}

// SettingsService owns the settings page selection groups. Each group is
// single-select: choosing an item deactivates its siblings, so exactly one
// item is active once an initial selection exists. Navigation selections also
// track the visible content section.
type SettingsService struct {
	cfg *config.Config

	mu       sync.Mutex
	sessions map[string]*settingsState
}

// NewSettingsService creates a settings service with groups defined by the
// configuration.
func NewSettingsService(cfg *config.Config) *SettingsService {
	return &SettingsService{
		cfg:      cfg,
		sessions: make(map[string]*settingsState),
	}
}

// buildGroup materializes a selection group from its config definition. The
// item whose label literally matches InitialLabel starts active; if no label
// matches, nothing is preselected.
func buildGroup(name string, def *config.SettingsGroupConfig) models.SelectionGroup {
	group := models.SelectionGroup{Name: name}
	if def.Name != "" {
		group.Name = def.Name
	}
	for _, item := range def.Items {
		active := def.InitialLabel != "" && item.Label == def.InitialLabel
		group.Items = append(group.Items, models.SelectionItem{
			Label:   item.Label,
			Value:   item.Value,
			Section: item.Section,
			Active:  active,
		})
		if active && item.Section != "" {
			group.ActiveSection = item.Section
		}
	}
	return group
}

// state returns the settings state for a session, creating it on first use.
// Callers must hold s.mu.
func (s *SettingsService) state(sessionID string) *settingsState {
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &settingsState{
			navigation: buildGroup(GroupNavigation, &s.cfg.Settings.Navigation),
			languages:  buildGroup(GroupLanguages, &s.cfg.Settings.Languages),
		}
		s.sessions[sessionID] = st
	}
	return st
}

// group resolves a group by name. Callers must hold s.mu.
func (s *SettingsService) group(st *settingsState, groupName string) *models.SelectionGroup {
	switch groupName {
	case GroupNavigation, s.cfg.Settings.Navigation.Name:
		return &st.navigation
	case GroupLanguages, s.cfg.Settings.Languages.Name:
		return &st.languages
	}
	return nil
}

// Groups returns all selection groups for a session.
func (s *SettingsService) Groups(sessionID string) []models.SelectionGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	return []models.SelectionGroup{
		copyGroup(&st.navigation),
		copyGroup(&st.languages),
	}
}

// Group returns one selection group by name.
func (s *SettingsService) Group(sessionID, groupName string) (*models.SelectionGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	group := s.group(st, groupName)
	if group == nil {
		return nil, contextutils.WrapError(contextutils.ErrRecordNotFound, "unknown settings group: "+groupName)
	}
	result := copyGroup(group)
	return &result, nil
}

// Select activates the item with the given value and deactivates every other
// item in the group. Selecting the already-active item is a no-op that keeps
// it active. For navigation groups the active content section follows the
// selected item.
func (s *SettingsService) Select(sessionID, groupName, value string) (*models.SelectionGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	group := s.group(st, groupName)
	if group == nil {
		return nil, contextutils.WrapError(contextutils.ErrRecordNotFound, "unknown settings group: "+groupName)
	}

	selected := -1
	for i := range group.Items {
		if group.Items[i].Value == value {
			selected = i
			break
		}
	}
	if selected < 0 {
		return nil, contextutils.WrapError(contextutils.ErrRecordNotFound, "unknown item in group "+group.Name+": "+value)
	}

	for i := range group.Items {
		group.Items[i].Active = i == selected
	}
	if section := group.Items[selected].Section; section != "" {
		group.ActiveSection = section
	}

	result := copyGroup(group)
	return &result, nil
}

// copyGroup returns a deep copy so callers cannot mutate session state.
func copyGroup(g *models.SelectionGroup) models.SelectionGroup {
	out := models.SelectionGroup{
		Name:          g.Name,
		ActiveSection: g.ActiveSection,
		Items:         make([]models.SelectionItem, len(g.Items)),
	}
	copy(out.Items, g.Items)
	return out
}
