package storefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-riskreport/report"
)

// Store provides filesystem-backed artifact storage. Artifacts are written to a
// temp file in the target directory and renamed into place, so readers never
// observe a partial report.
type Store struct {
	Root string
	Now  func() time.Time
}

var _ report.ArtifactStore = (*Store)(nil)

// NewStore creates a filesystem-backed artifact store.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Put stores an artifact on disk.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta report.ArtifactMeta) (report.ArtifactRef, error) {
	if err := s.check(key); err != nil {
		return report.ArtifactRef{}, err
	}
	if err := ctx.Err(); err != nil {
		return report.ArtifactRef{}, err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return report.ArtifactRef{}, err
	}

	dir := filepath.Dir(pathOnDisk)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report.ArtifactRef{}, err
	}

	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return report.ArtifactRef{}, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return report.ArtifactRef{}, err
	}
	if err := tmp.Sync(); err != nil {
		return report.ArtifactRef{}, err
	}
	if err := tmp.Close(); err != nil {
		return report.ArtifactRef{}, err
	}

	if err := os.Rename(tmp.Name(), pathOnDisk); err != nil {
		return report.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Filename == "" {
		meta.Filename = filepath.Base(pathOnDisk)
	}

	if err := s.writeMeta(pathOnDisk, meta); err != nil {
		_ = os.Remove(pathOnDisk)
		return report.ArtifactRef{}, err
	}

	return report.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact from disk.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, report.ArtifactMeta, error) {
	_ = ctx
	if err := s.check(key); err != nil {
		return nil, report.ArtifactMeta{}, err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return nil, report.ArtifactMeta{}, err
	}

	file, err := os.Open(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, report.ArtifactMeta{}, report.NewError(report.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, report.ArtifactMeta{}, err
	}

	meta := s.readMeta(pathOnDisk)
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}

	return file, meta, nil
}

// Delete removes an artifact from disk.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	if err := s.check(key); err != nil {
		return err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return err
	}
	_ = os.Remove(pathOnDisk)
	_ = os.Remove(metaPath(pathOnDisk))
	s.removeEmptyDir(filepath.Dir(pathOnDisk))
	return nil
}

// Prune deletes artifacts created before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.Root == "" {
		return 0, report.NewError(report.KindInternal, "store root is required", nil)
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return 0, err
	}

	var stale []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".meta.json") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		created := s.readMeta(p).CreatedAt
		if created.IsZero() {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			created = info.ModTime()
		}
		if created.Before(cutoff) {
			stale = append(stale, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, p := range stale {
		_ = os.Remove(p)
		_ = os.Remove(metaPath(p))
		s.removeEmptyDir(filepath.Dir(p))
	}
	return len(stale), nil
}

func (s *Store) check(key string) error {
	if s == nil {
		return report.NewError(report.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return report.NewError(report.KindInternal, "store root is required", nil)
	}
	if key == "" {
		return report.NewError(report.KindDelivery, "artifact key is required", nil)
	}
	return nil
}

func (s *Store) resolvePath(key string) (string, error) {
	clean := path.Clean("/" + key)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", report.NewError(report.KindDelivery, "invalid artifact key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) && target != root {
		return "", report.NewError(report.KindDelivery, "artifact key escapes root", nil)
	}
	return target, nil
}

// removeEmptyDir drops the per-export directory once its last artifact is gone.
func (s *Store) removeEmptyDir(dir string) {
	root, err := filepath.Abs(s.Root)
	if err != nil || dir == root {
		return
	}
	_ = os.Remove(dir)
}

func (s *Store) writeMeta(pathOnDisk string, meta report.ArtifactMeta) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	dir := filepath.Dir(pathOnDisk)
	tmp, err := os.CreateTemp(dir, ".meta-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(payload); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), metaPath(pathOnDisk))
}

func (s *Store) readMeta(pathOnDisk string) report.ArtifactMeta {
	data, err := os.ReadFile(metaPath(pathOnDisk))
	if err != nil {
		return report.ArtifactMeta{}
	}
	var meta report.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return report.ArtifactMeta{}
	}
	return meta
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func metaPath(pathOnDisk string) string {
	return pathOnDisk + ".meta.json"
}
