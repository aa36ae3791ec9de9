package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/zip2job/zip2job/internal/catalog"
	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/gitlog"
	"github.com/zip2job/zip2job/internal/store"
)

var (
	// ErrAmbiguousMapping is returned when a project mapping cannot be
	// applied unambiguously. Maps to HTTP 409.
	ErrAmbiguousMapping = errors.New("ingest: ambiguous project mapping")
	// ErrUnknownProject is returned when a mapping targets a project id
	// that does not exist.
	ErrUnknownProject = errors.New("ingest: mapped project not found")
)

// Ingestor runs the archive ingest transaction: validate, discover,
// create or merge projects, and dedupe file contents through the content
// store.
type Ingestor struct {
	objects  *store.ContentStore
	catalog  catalog.Store
	maxBytes int64
}

// NewIngestor wires an Ingestor. maxBytes caps the uncompressed archive
// size; zero disables the cap.
func NewIngestor(objects *store.ContentStore, cat catalog.Store, maxBytes int64) *Ingestor {
	return &Ingestor{objects: objects, catalog: cat, maxBytes: maxBytes}
}

// ProjectResult describes what one candidate contributed.
type ProjectResult struct {
	Project  catalog.Project `json:"project"`
	Merged   bool            `json:"merged"`
	Added    int             `json:"added"`
	Modified int             `json:"modified"`
	Deduped  int             `json:"deduped"`
}

// Result is the outcome of one archive ingest.
type Result struct {
	Upload   catalog.Upload  `json:"upload"`
	Projects []ProjectResult `json:"projects"`
}

// IngestArchive validates the archive at zipPath, discovers its projects,
// and applies them against the catalog. mapping associates candidate names
// with existing project ids for incremental merges; unmapped candidates
// create new projects. Validation failures abort before any row is
// written, so a rejected archive leaves no partial state behind.
func (ing *Ingestor) IngestArchive(ctx context.Context, zipPath string, mapping map[string]string, ignore *Matcher) (*Result, error) {
	logger := common.Logger()

	entries, err := ReadArchive(zipPath, ing.maxBytes, ignore)
	if err != nil {
		return nil, err
	}
	archiveName := path.Base(zipPath)
	candidates := Discover(entries, archiveName)
	if err := validateMapping(ctx, ing.catalog, candidates, mapping); err != nil {
		return nil, err
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	upload := catalog.Upload{
		ID:          uuid.NewString(),
		Filename:    archiveName,
		SizeBytes:   info.Size(),
		ContentRoot: ContentRoot(entries),
		CreatedAt:   time.Now().UTC(),
	}
	if err := ing.catalog.CreateUpload(ctx, &upload); err != nil {
		return nil, err
	}

	result := &Result{Upload: upload}
	for _, candidate := range candidates {
		var pr ProjectResult
		if existingID, mapped := mapping[candidate.Name]; mapped {
			pr, err = ing.mergeCandidate(ctx, existingID, candidate, upload)
		} else {
			pr, err = ing.createCandidate(ctx, candidate, upload)
		}
		if err != nil {
			return nil, err
		}
		result.Projects = append(result.Projects, pr)
	}
	logger.Info("ingest: archive applied",
		"upload", upload.ID, "filename", upload.Filename, "projects", len(result.Projects))
	return result, nil
}

// validateMapping rejects the whole ingest before any write when a mapped
// name matches more than one candidate or targets a missing project.
func validateMapping(ctx context.Context, cat catalog.Store, candidates []Candidate, mapping map[string]string) error {
	if len(mapping) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, c := range candidates {
		counts[c.Name]++
	}
	for name, projectID := range mapping {
		if counts[name] > 1 {
			return fmt.Errorf("%w: name %q matches %d candidates", ErrAmbiguousMapping, name, counts[name])
		}
		if _, err := cat.GetProject(ctx, projectID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownProject, projectID)
			}
			return err
		}
	}
	return nil
}

func (ing *Ingestor) createCandidate(ctx context.Context, candidate Candidate, upload catalog.Upload) (ProjectResult, error) {
	project := catalog.Project{
		ID:        uuid.NewString(),
		Name:      candidate.Name,
		RelPath:   candidate.RelPath,
		HasGit:    candidate.HasGit,
		Role:      gitlog.RoleUnknown,
		FileCount: candidate.FileCount,
	}
	if err := ing.catalog.CreateProject(ctx, &project); err != nil {
		return ProjectResult{}, err
	}
	pr := ProjectResult{Project: project}
	added, modified, deduped, err := ing.applyFiles(ctx, project.ID, candidate.Files)
	if err != nil {
		return ProjectResult{}, err
	}
	pr.Added, pr.Modified, pr.Deduped = added, modified, deduped
	src := catalog.ArtifactSource{
		ProjectID:     project.ID,
		UploadID:      upload.ID,
		ArtifactCount: added + modified,
	}
	if err := ing.catalog.AddArtifactSource(ctx, &src); err != nil {
		return ProjectResult{}, err
	}
	return pr, nil
}

func (ing *Ingestor) mergeCandidate(ctx context.Context, projectID string, candidate Candidate, upload catalog.Upload) (ProjectResult, error) {
	project, err := ing.catalog.GetProject(ctx, projectID)
	if err != nil {
		return ProjectResult{}, err
	}
	added, modified, deduped, err := ing.applyFiles(ctx, project.ID, candidate.Files)
	if err != nil {
		return ProjectResult{}, err
	}
	src := catalog.ArtifactSource{
		ProjectID:     project.ID,
		UploadID:      upload.ID,
		ArtifactCount: added + modified,
	}
	if err := ing.catalog.AddArtifactSource(ctx, &src); err != nil {
		return ProjectResult{}, err
	}
	entries, err := ing.catalog.ListFileEntries(ctx, project.ID)
	if err != nil {
		return ProjectResult{}, err
	}
	count := 0
	for _, e := range entries {
		if !underGitDir(e.RelPath) {
			count++
		}
	}
	project.FileCount = count
	if candidate.HasGit {
		project.HasGit = true
	}
	if err := ing.catalog.UpdateProject(ctx, project); err != nil {
		return ProjectResult{}, err
	}
	return ProjectResult{Project: *project, Merged: true, Added: added, Modified: modified, Deduped: deduped}, nil
}

// applyFiles writes candidate files through the content store and syncs the
// project's file entries with latest-wins semantics. An unchanged
// (path, hash) pair is a no-op.
func (ing *Ingestor) applyFiles(ctx context.Context, projectID string, files []Entry) (added, modified, deduped int, err error) {
	existing, err := ing.catalog.ListFileEntries(ctx, projectID)
	if err != nil {
		return 0, 0, 0, err
	}
	current := make(map[string]string, len(existing))
	for _, e := range existing {
		current[e.RelPath] = e.ContentHash
	}
	for _, file := range files {
		hash, putErr := ing.objects.Put(file.Data)
		if putErr != nil {
			return 0, 0, 0, putErr
		}
		obj := catalog.ContentObject{Hash: hash, Size: int64(len(file.Data)), Category: Classify(file.Path)}
		if err := ing.catalog.PutContentObject(ctx, &obj); err != nil {
			return 0, 0, 0, err
		}
		prev, exists := current[file.Path]
		switch {
		case exists && prev == hash:
			deduped++
			continue
		case exists:
			modified++
		default:
			added++
		}
		entry := catalog.FileEntry{ProjectID: projectID, RelPath: file.Path, ContentHash: hash}
		if err := ing.catalog.UpsertFileEntry(ctx, &entry); err != nil {
			return 0, 0, 0, err
		}
		current[file.Path] = hash
	}
	return added, modified, deduped, nil
}
