package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zip2job/zip2job/internal/common"
)

// SQLiteStore implements Store on a pooled sqlx connection to SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite constructs a SQLiteStore backed by the database at path. The
// schema is migrated on open.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", abs)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	common.Logger().Info("catalog: sqlite ready", "path", abs)
	return store, nil
}

// Close releases the underlying database resources.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS uploads (
                id TEXT PRIMARY KEY,
                filename TEXT NOT NULL,
                size_bytes INTEGER NOT NULL,
                content_root TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS projects (
                id TEXT PRIMARY KEY,
                name TEXT NOT NULL,
                rel_path TEXT NOT NULL DEFAULT '',
                language TEXT NOT NULL DEFAULT '',
                framework TEXT NOT NULL DEFAULT '',
                start_date DATETIME,
                end_date DATETIME,
                has_git INTEGER NOT NULL DEFAULT 0,
                is_collaborative INTEGER NOT NULL DEFAULT 0,
                role TEXT NOT NULL DEFAULT 'Unknown',
                contribution_pct REAL NOT NULL DEFAULT 0,
                role_justification TEXT NOT NULL DEFAULT '',
                importance_rank INTEGER NOT NULL DEFAULT 0,
                importance_score REAL NOT NULL DEFAULT 0,
                file_count INTEGER NOT NULL DEFAULT 0,
                showcase INTEGER NOT NULL DEFAULT 0,
                thumbnail TEXT NOT NULL DEFAULT '',
                fingerprint TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS artifact_sources (
                project_id TEXT NOT NULL,
                upload_id TEXT NOT NULL,
                artifact_count INTEGER NOT NULL DEFAULT 0,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY (project_id, upload_id),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
                FOREIGN KEY(upload_id) REFERENCES uploads(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS content_objects (
                hash TEXT PRIMARY KEY,
                size INTEGER NOT NULL,
                category TEXT NOT NULL DEFAULT 'other'
        );`,
	`CREATE TABLE IF NOT EXISTS file_entries (
                project_id TEXT NOT NULL,
                rel_path TEXT NOT NULL,
                content_hash TEXT NOT NULL,
                PRIMARY KEY (project_id, rel_path),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
                FOREIGN KEY(content_hash) REFERENCES content_objects(hash)
        );`,
	`CREATE TABLE IF NOT EXISTS skills (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL,
                kind TEXT NOT NULL,
                UNIQUE(name, kind)
        );`,
	`CREATE TABLE IF NOT EXISTS project_skills (
                project_id TEXT NOT NULL,
                skill_id INTEGER NOT NULL,
                PRIMARY KEY (project_id, skill_id),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
                FOREIGN KEY(skill_id) REFERENCES skills(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS code_analyses (
                project_id TEXT NOT NULL,
                language TEXT NOT NULL,
                metrics TEXT NOT NULL DEFAULT '{}',
                summary TEXT NOT NULL DEFAULT '',
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY (project_id, language),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS consent_records (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                allow_llm INTEGER NOT NULL DEFAULT 0,
                allowed_models TEXT NOT NULL DEFAULT '[]',
                ignore_patterns TEXT NOT NULL DEFAULT '[]',
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS generated_items (
                kind TEXT NOT NULL,
                project_id TEXT NOT NULL,
                payload TEXT NOT NULL DEFAULT '{}',
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY (kind, project_id),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS score_config (
                id INTEGER PRIMARY KEY CHECK (id = 1),
                w_contribution REAL NOT NULL,
                w_diversity REAL NOT NULL,
                w_duration REAL NOT NULL,
                w_file_count REAL NOT NULL
        );`,
	`INSERT INTO score_config (id, w_contribution, w_diversity, w_duration, w_file_count)
        SELECT 1, 0.35, 0.25, 0.20, 0.20
        WHERE NOT EXISTS (SELECT 1 FROM score_config WHERE id = 1);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name);`,
	`CREATE INDEX IF NOT EXISTS idx_file_entries_hash ON file_entries(content_hash);`,
	`CREATE INDEX IF NOT EXISTS idx_artifact_sources_project ON artifact_sources(project_id, created_at);`,
}

func (s *SQLiteStore) CreateUpload(ctx context.Context, upload *Upload) error {
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO uploads (id, filename, size_bytes, content_root, created_at)
                VALUES (:id, :filename, :size_bytes, :content_root, :created_at)`, upload)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUpload(ctx context.Context, id string) (*Upload, error) {
	var upload Upload
	err := s.db.GetContext(ctx, &upload, `SELECT * FROM uploads WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: upload %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return &upload, nil
}

func (s *SQLiteStore) CreateProject(ctx context.Context, project *Project) error {
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO projects
                (id, name, rel_path, language, framework, start_date, end_date, has_git,
                 is_collaborative, role, contribution_pct, role_justification,
                 importance_rank, importance_score, file_count, showcase, thumbnail,
                 fingerprint, created_at, updated_at)
                VALUES (:id, :name, :rel_path, :language, :framework, :start_date, :end_date, :has_git,
                 :is_collaborative, :role, :contribution_pct, :role_justification,
                 :importance_rank, :importance_score, :file_count, :showcase, :thumbnail,
                 :fingerprint, :created_at, :updated_at)`, project)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, project *Project) error {
	project.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `UPDATE projects SET
                name = :name, rel_path = :rel_path, language = :language, framework = :framework,
                start_date = :start_date, end_date = :end_date, has_git = :has_git,
                is_collaborative = :is_collaborative, role = :role,
                contribution_pct = :contribution_pct, role_justification = :role_justification,
                importance_rank = :importance_rank, importance_score = :importance_score,
                file_count = :file_count, showcase = :showcase, thumbnail = :thumbnail,
                fingerprint = :fingerprint, updated_at = :updated_at
                WHERE id = :id`, project)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: project %s", ErrNotFound, project.ID)
	}
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	err := s.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &project, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := s.db.SelectContext(ctx, &projects, `SELECT * FROM projects
                ORDER BY CASE WHEN importance_rank = 0 THEN 1 ELSE 0 END, importance_rank, name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *SQLiteStore) FindProjectsByName(ctx context.Context, name string) ([]Project, error) {
	var projects []Project
	err := s.db.SelectContext(ctx, &projects, `SELECT * FROM projects WHERE name = ? ORDER BY created_at`, name)
	if err != nil {
		return nil, fmt.Errorf("find projects by name: %w", err)
	}
	return projects, nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Rerank(ctx context.Context, assignments []RankAssignment) error {
	if err := ValidateRanks(assignments); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rerank: %w", err)
	}
	for _, a := range assignments {
		res, err := tx.ExecContext(ctx, `UPDATE projects SET importance_rank = ?, updated_at = ? WHERE id = ?`,
			a.Rank, time.Now().UTC(), a.ProjectID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("rerank project %s: %w", a.ProjectID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			tx.Rollback()
			return fmt.Errorf("%w: project %s", ErrNotFound, a.ProjectID)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetScoreConfig(ctx context.Context) (ScoreConfig, error) {
	var cfg ScoreConfig
	err := s.db.GetContext(ctx, &cfg, `SELECT w_contribution, w_diversity, w_duration, w_file_count FROM score_config WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultScoreConfig(), nil
	}
	if err != nil {
		return ScoreConfig{}, fmt.Errorf("get score config: %w", err)
	}
	return cfg, nil
}

func (s *SQLiteStore) SetScoreConfig(ctx context.Context, cfg ScoreConfig) error {
	if cfg.Contribution < 0 || cfg.Diversity < 0 || cfg.Duration < 0 || cfg.FileCount < 0 {
		return fmt.Errorf("%w: score weights must be non-negative", ErrInvalidArgument)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO score_config (id, w_contribution, w_diversity, w_duration, w_file_count)
                VALUES (1, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET
                        w_contribution = excluded.w_contribution,
                        w_diversity = excluded.w_diversity,
                        w_duration = excluded.w_duration,
                        w_file_count = excluded.w_file_count`,
		cfg.Contribution, cfg.Diversity, cfg.Duration, cfg.FileCount)
	if err != nil {
		return fmt.Errorf("set score config: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddArtifactSource(ctx context.Context, src *ArtifactSource) error {
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO artifact_sources (project_id, upload_id, artifact_count, created_at)
                VALUES (:project_id, :upload_id, :artifact_count, :created_at)`, src)
	if err != nil {
		return fmt.Errorf("insert artifact source: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListArtifactSources(ctx context.Context, projectID string) ([]ArtifactSource, error) {
	var sources []ArtifactSource
	err := s.db.SelectContext(ctx, &sources, `SELECT * FROM artifact_sources WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list artifact sources: %w", err)
	}
	return sources, nil
}

func (s *SQLiteStore) PutContentObject(ctx context.Context, obj *ContentObject) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO content_objects (hash, size, category)
                VALUES (:hash, :size, :category)
                ON CONFLICT(hash) DO NOTHING`, obj)
	if err != nil {
		return fmt.Errorf("insert content object: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertFileEntry(ctx context.Context, entry *FileEntry) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO file_entries (project_id, rel_path, content_hash)
                VALUES (:project_id, :rel_path, :content_hash)
                ON CONFLICT(project_id, rel_path) DO UPDATE SET content_hash = excluded.content_hash`, entry)
	if err != nil {
		return fmt.Errorf("upsert file entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteFileEntry(ctx context.Context, projectID, relPath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM file_entries WHERE project_id = ? AND rel_path = ?`, projectID, relPath)
	if err != nil {
		return fmt.Errorf("delete file entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListFileEntries(ctx context.Context, projectID string) ([]FileEntry, error) {
	var entries []FileEntry
	err := s.db.SelectContext(ctx, &entries, `SELECT * FROM file_entries WHERE project_id = ? ORDER BY rel_path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list file entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) UpsertSkill(ctx context.Context, name, kind string) (Skill, error) {
	name = strings.TrimSpace(name)
	kind = strings.ToLower(strings.TrimSpace(kind))
	if name == "" || (kind != "tool" && kind != "practice") {
		return Skill{}, fmt.Errorf("%w: skill (%q, %q)", ErrInvalidArgument, name, kind)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO skills (name, kind) VALUES (?, ?) ON CONFLICT(name, kind) DO NOTHING`, name, kind)
	if err != nil {
		return Skill{}, fmt.Errorf("upsert skill: %w", err)
	}
	var skill Skill
	if err := s.db.GetContext(ctx, &skill, `SELECT * FROM skills WHERE name = ? AND kind = ?`, name, kind); err != nil {
		return Skill{}, fmt.Errorf("load skill: %w", err)
	}
	return skill, nil
}

func (s *SQLiteStore) SetProjectSkills(ctx context.Context, projectID string, skillIDs []int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin skill sync: %w", err)
	}
	desired := make(map[int64]struct{}, len(skillIDs))
	for _, id := range skillIDs {
		desired[id] = struct{}{}
	}
	var current []int64
	if err := tx.SelectContext(ctx, &current, `SELECT skill_id FROM project_skills WHERE project_id = ?`, projectID); err != nil {
		tx.Rollback()
		return fmt.Errorf("load project skills: %w", err)
	}
	// Set-difference sync: remove stale edges, add missing ones, keep the rest.
	for _, id := range current {
		if _, keep := desired[id]; keep {
			delete(desired, id)
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_skills WHERE project_id = ? AND skill_id = ?`, projectID, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("remove project skill: %w", err)
		}
	}
	for id := range desired {
		if _, err := tx.ExecContext(ctx, `INSERT INTO project_skills (project_id, skill_id) VALUES (?, ?)`, projectID, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("add project skill: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListProjectSkills(ctx context.Context, projectID string) ([]Skill, error) {
	var skills []Skill
	err := s.db.SelectContext(ctx, &skills, `SELECT sk.id, sk.name, sk.kind FROM skills sk
                INNER JOIN project_skills ps ON ps.skill_id = sk.id
                WHERE ps.project_id = ? ORDER BY sk.kind, sk.name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project skills: %w", err)
	}
	return skills, nil
}

func (s *SQLiteStore) UpsertCodeAnalysis(ctx context.Context, analysis *CodeAnalysis) error {
	analysis.UpdatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO code_analyses (project_id, language, metrics, summary, updated_at)
                VALUES (:project_id, :language, :metrics, :summary, :updated_at)
                ON CONFLICT(project_id, language) DO UPDATE SET
                        metrics = excluded.metrics,
                        summary = excluded.summary,
                        updated_at = excluded.updated_at`, analysis)
	if err != nil {
		return fmt.Errorf("upsert code analysis: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListCodeAnalyses(ctx context.Context, projectID string) ([]CodeAnalysis, error) {
	var analyses []CodeAnalysis
	err := s.db.SelectContext(ctx, &analyses, `SELECT * FROM code_analyses WHERE project_id = ? ORDER BY language`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list code analyses: %w", err)
	}
	return analyses, nil
}

func (s *SQLiteStore) DeleteCodeAnalyses(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM code_analyses WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("delete code analyses: %w", err)
	}
	return nil
}

type consentRow struct {
	AllowLLM       bool      `db:"allow_llm"`
	AllowedModels  string    `db:"allowed_models"`
	IgnorePatterns string    `db:"ignore_patterns"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (s *SQLiteStore) UpsertConsent(ctx context.Context, record *ConsentRecord) error {
	record.UpdatedAt = time.Now().UTC()
	models, err := json.Marshal(record.AllowedModels)
	if err != nil {
		return fmt.Errorf("encode allowed models: %w", err)
	}
	patterns, err := json.Marshal(record.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("encode ignore patterns: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO consent_records (allow_llm, allowed_models, ignore_patterns, updated_at)
                VALUES (?, ?, ?, ?)`, record.AllowLLM, string(models), string(patterns), record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert consent record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestConsent(ctx context.Context) (*ConsentRecord, error) {
	var row consentRow
	err := s.db.GetContext(ctx, &row, `SELECT allow_llm, allowed_models, ignore_patterns, updated_at
                FROM consent_records ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: consent record", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get consent record: %w", err)
	}
	record := &ConsentRecord{AllowLLM: row.AllowLLM, UpdatedAt: row.UpdatedAt}
	if err := json.Unmarshal([]byte(row.AllowedModels), &record.AllowedModels); err != nil {
		record.AllowedModels = nil
	}
	if err := json.Unmarshal([]byte(row.IgnorePatterns), &record.IgnorePatterns); err != nil {
		record.IgnorePatterns = nil
	}
	return record, nil
}

func (s *SQLiteStore) UpsertGeneratedItem(ctx context.Context, item *GeneratedItem) error {
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO generated_items (kind, project_id, payload, updated_at)
                VALUES (:kind, :project_id, :payload, :updated_at)
                ON CONFLICT(kind, project_id) DO UPDATE SET
                        payload = excluded.payload,
                        updated_at = excluded.updated_at`, item)
	if err != nil {
		return fmt.Errorf("upsert generated item: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGeneratedItem(ctx context.Context, kind, projectID string) (*GeneratedItem, error) {
	var item GeneratedItem
	err := s.db.GetContext(ctx, &item, `SELECT * FROM generated_items WHERE kind = ? AND project_id = ?`, kind, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: generated item (%s, %s)", ErrNotFound, kind, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("get generated item: %w", err)
	}
	return &item, nil
}
