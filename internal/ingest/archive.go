package ingest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/zip2job/zip2job/internal/common"
)

var (
	// ErrInvalidArchive is fatal for the whole upload.
	ErrInvalidArchive = errors.New("ingest: invalid archive")
	// ErrArchiveTooLarge is returned when the uncompressed size exceeds the
	// configured cap.
	ErrArchiveTooLarge = errors.New("ingest: archive too large")
)

// Entry is one regular file read out of an archive. Path is normalised to
// slash-separated form with no leading slash or dot segments.
type Entry struct {
	Path string
	Data []byte
}

// normalizeEntryPath cleans an archive member name. It returns "" for
// directory markers and for unsafe names that climb out of the root.
func normalizeEntryPath(name string) string {
	normalized := strings.ReplaceAll(name, "\\", "/")
	normalized = strings.TrimLeft(normalized, "/")
	if normalized == "" || strings.HasSuffix(normalized, "/") {
		return ""
	}
	cleaned := path.Clean(normalized)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." || part == "." || part == "" {
			return ""
		}
	}
	return cleaned
}

// ReadArchive opens a ZIP, validates it, and returns its regular-file
// entries. maxBytes caps the total uncompressed size; zero disables the cap.
// Entries matching the ignore matcher are not returned, except that files
// under ".git" directories are always kept so version-control metadata
// survives into the content store.
func ReadArchive(zipPath string, maxBytes int64, ignore *Matcher) ([]Entry, error) {
	logger := common.Logger()
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer reader.Close()

	var declared int64
	for _, file := range reader.File {
		declared += int64(file.UncompressedSize64)
	}
	if maxBytes > 0 && declared > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes uncompressed exceeds cap %d", ErrArchiveTooLarge, declared, maxBytes)
	}

	var entries []Entry
	var total int64
	for _, file := range reader.File {
		relPath := normalizeEntryPath(file.Name)
		if relPath == "" {
			continue
		}
		if ignore != nil && ignore.Match(relPath) && !underGitDir(relPath) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			// Unreadable member: skip the path, log, continue.
			logger.Warn("ingest: skipping unreadable archive entry", "path", relPath, "error", err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Warn("ingest: skipping archive entry after read failure", "path", relPath, "error", err)
			continue
		}
		total += int64(len(data))
		if maxBytes > 0 && total > maxBytes {
			return nil, fmt.Errorf("%w: uncompressed content exceeds cap %d", ErrArchiveTooLarge, maxBytes)
		}
		entries = append(entries, Entry{Path: relPath, Data: data})
	}
	return entries, nil
}

// underGitDir reports whether the path sits inside a ".git" directory.
func underGitDir(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}
