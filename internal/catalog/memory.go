package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and by ephemeral runs
// that do not want a SQLite file on disk.
type MemoryStore struct {
	mu sync.RWMutex

	uploads     map[string]Upload
	projects    map[string]Project
	sources     []ArtifactSource
	objects     map[string]ContentObject
	files       map[string]map[string]string // project -> rel_path -> hash
	skills      map[string]Skill             // "name|kind"
	nextSkillID int64
	projSkills  map[string]map[int64]struct{}
	analyses    map[string]map[string]CodeAnalysis // project -> language
	consents    []ConsentRecord
	generated   map[string]GeneratedItem // "kind|project"
	scoreCfg    ScoreConfig
}

// NewMemoryStore returns an empty in-memory catalog seeded with the default
// score configuration.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		uploads:     make(map[string]Upload),
		projects:    make(map[string]Project),
		objects:     make(map[string]ContentObject),
		files:       make(map[string]map[string]string),
		skills:      make(map[string]Skill),
		nextSkillID: 1,
		projSkills:  make(map[string]map[int64]struct{}),
		analyses:    make(map[string]map[string]CodeAnalysis),
		generated:   make(map[string]GeneratedItem),
		scoreCfg:    DefaultScoreConfig(),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateUpload(ctx context.Context, upload *Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}
	m.uploads[upload.ID] = *upload
	return nil
}

func (m *MemoryStore) GetUpload(ctx context.Context, id string) (*Upload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	upload, ok := m.uploads[id]
	if !ok {
		return nil, fmt.Errorf("%w: upload %s", ErrNotFound, id)
	}
	return &upload, nil
}

func (m *MemoryStore) CreateProject(ctx context.Context, project *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	m.projects[project.ID] = *project
	return nil
}

func (m *MemoryStore) UpdateProject(ctx context.Context, project *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; !ok {
		return fmt.Errorf("%w: project %s", ErrNotFound, project.ID)
	}
	project.UpdatedAt = time.Now().UTC()
	m.projects[project.ID] = *project
	return nil
}

func (m *MemoryStore) GetProject(ctx context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return &project, nil
}

func (m *MemoryStore) ListProjects(ctx context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].ImportanceRank, out[j].ImportanceRank
		if ri == 0 {
			ri = 1 << 30
		}
		if rj == 0 {
			rj = 1 << 30
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) FindProjectsByName(ctx context.Context, name string) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Project
	for _, p := range m.projects {
		if p.Name == name {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	delete(m.projects, id)
	delete(m.files, id)
	delete(m.projSkills, id)
	delete(m.analyses, id)
	var kept []ArtifactSource
	for _, src := range m.sources {
		if src.ProjectID != id {
			kept = append(kept, src)
		}
	}
	m.sources = kept
	for key := range m.generated {
		if strings.HasSuffix(key, "|"+id) {
			delete(m.generated, key)
		}
	}
	return nil
}

func (m *MemoryStore) Rerank(ctx context.Context, assignments []RankAssignment) error {
	if err := ValidateRanks(assignments); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range assignments {
		if _, ok := m.projects[a.ProjectID]; !ok {
			return fmt.Errorf("%w: project %s", ErrNotFound, a.ProjectID)
		}
	}
	for _, a := range assignments {
		p := m.projects[a.ProjectID]
		p.ImportanceRank = a.Rank
		p.UpdatedAt = time.Now().UTC()
		m.projects[a.ProjectID] = p
	}
	return nil
}

func (m *MemoryStore) GetScoreConfig(ctx context.Context) (ScoreConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scoreCfg, nil
}

func (m *MemoryStore) SetScoreConfig(ctx context.Context, cfg ScoreConfig) error {
	if cfg.Contribution < 0 || cfg.Diversity < 0 || cfg.Duration < 0 || cfg.FileCount < 0 {
		return fmt.Errorf("%w: score weights must be non-negative", ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreCfg = cfg
	return nil
}

func (m *MemoryStore) AddArtifactSource(ctx context.Context, src *ArtifactSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}
	m.sources = append(m.sources, *src)
	return nil
}

func (m *MemoryStore) ListArtifactSources(ctx context.Context, projectID string) ([]ArtifactSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ArtifactSource
	for _, src := range m.sources {
		if src.ProjectID == projectID {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) PutContentObject(ctx context.Context, obj *ContentObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[obj.Hash]; !exists {
		m.objects[obj.Hash] = *obj
	}
	return nil
}

func (m *MemoryStore) UpsertFileEntry(ctx context.Context, entry *FileEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	files, ok := m.files[entry.ProjectID]
	if !ok {
		files = make(map[string]string)
		m.files[entry.ProjectID] = files
	}
	files[entry.RelPath] = entry.ContentHash
	return nil
}

func (m *MemoryStore) DeleteFileEntry(ctx context.Context, projectID, relPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if files, ok := m.files[projectID]; ok {
		delete(files, relPath)
	}
	return nil
}

func (m *MemoryStore) ListFileEntries(ctx context.Context, projectID string) ([]FileEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := m.files[projectID]
	out := make([]FileEntry, 0, len(files))
	for relPath, hash := range files {
		out = append(out, FileEntry{ProjectID: projectID, RelPath: relPath, ContentHash: hash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func (m *MemoryStore) UpsertSkill(ctx context.Context, name, kind string) (Skill, error) {
	name = strings.TrimSpace(name)
	kind = strings.ToLower(strings.TrimSpace(kind))
	if name == "" || (kind != "tool" && kind != "practice") {
		return Skill{}, fmt.Errorf("%w: skill (%q, %q)", ErrInvalidArgument, name, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := name + "|" + kind
	if skill, ok := m.skills[key]; ok {
		return skill, nil
	}
	skill := Skill{ID: m.nextSkillID, Name: name, Kind: kind}
	m.nextSkillID++
	m.skills[key] = skill
	return skill, nil
}

func (m *MemoryStore) SetProjectSkills(ctx context.Context, projectID string, skillIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	desired := make(map[int64]struct{}, len(skillIDs))
	for _, id := range skillIDs {
		desired[id] = struct{}{}
	}
	m.projSkills[projectID] = desired
	return nil
}

func (m *MemoryStore) ListProjectSkills(ctx context.Context, projectID string) ([]Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.projSkills[projectID]
	var out []Skill
	for _, skill := range m.skills {
		if _, ok := ids[skill.ID]; ok {
			out = append(out, skill)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) UpsertCodeAnalysis(ctx context.Context, analysis *CodeAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byLang, ok := m.analyses[analysis.ProjectID]
	if !ok {
		byLang = make(map[string]CodeAnalysis)
		m.analyses[analysis.ProjectID] = byLang
	}
	analysis.UpdatedAt = time.Now().UTC()
	byLang[analysis.Language] = *analysis
	return nil
}

func (m *MemoryStore) ListCodeAnalyses(ctx context.Context, projectID string) ([]CodeAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byLang := m.analyses[projectID]
	out := make([]CodeAnalysis, 0, len(byLang))
	for _, a := range byLang {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out, nil
}

func (m *MemoryStore) DeleteCodeAnalyses(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.analyses, projectID)
	return nil
}

func (m *MemoryStore) UpsertConsent(ctx context.Context, record *ConsentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.UpdatedAt = time.Now().UTC()
	m.consents = append(m.consents, *record)
	return nil
}

func (m *MemoryStore) LatestConsent(ctx context.Context) (*ConsentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.consents) == 0 {
		return nil, fmt.Errorf("%w: consent record", ErrNotFound)
	}
	latest := m.consents[len(m.consents)-1]
	return &latest, nil
}

func (m *MemoryStore) UpsertGeneratedItem(ctx context.Context, item *GeneratedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.UpdatedAt = time.Now().UTC()
	m.generated[item.Kind+"|"+item.ProjectID] = *item
	return nil
}

func (m *MemoryStore) GetGeneratedItem(ctx context.Context, kind, projectID string) (*GeneratedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.generated[kind+"|"+projectID]
	if !ok {
		return nil, fmt.Errorf("%w: generated item (%s, %s)", ErrNotFound, kind, projectID)
	}
	return &item, nil
}
