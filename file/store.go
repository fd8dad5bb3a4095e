package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crashkit/delivery"
)

const (
	recordExt = ".json"
	tmpExt    = ".tmp"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store is a filesystem-backed delivery store.
//
// Concurrent access is expected only from within one process; the single
// guarantee required of the medium is per-write atomicity, which the store
// provides by writing to a temp file and renaming it into place.
type Store struct {
	baseDir string
	cfg     Config
}

var _ delivery.Store = (*Store)(nil)

// record is the on-disk layout of one payload.
type record struct {
	Body      []byte    `json:"body"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"createdAt"`
}

// New constructs a file store rooted at baseDir, creating it if needed.
func New(baseDir string, opts ...Option) (*Store, error) {
	if baseDir == "" {
		return nil, ErrDirRequired
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("delivery file: resolve base directory: %w", err)
	}
	if err := os.MkdirAll(absDir, dirPerm); err != nil {
		return nil, fmt.Errorf("delivery file: create base directory: %w", err)
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	store := &Store{baseDir: absDir, cfg: cfg.withDefaults()}
	store.sweepTemp()

	return store, nil
}

// MustNew constructs a file store or panics on error.
func MustNew(baseDir string, opts ...Option) *Store {
	store, err := New(baseDir, opts...)
	if err != nil {
		panic(err)
	}

	return store
}

// Enqueue durably writes a new payload record with a zero retry count.
func (s *Store) Enqueue(ctx context.Context, resource delivery.ResourceType, body []byte) (delivery.ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := resource.Validate(); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", delivery.ErrBodyRequired
	}
	if err := s.ensureDir(resource); err != nil {
		return "", err
	}

	id, err := s.cfg.Generator.New(resource)
	if err != nil {
		return "", fmt.Errorf("delivery file: generate id: %w", err)
	}

	rec := record{Body: body, Retries: 0, CreatedAt: s.cfg.Clock.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("delivery file: encode record: %w", err)
	}
	if err := s.writeAtomic(s.recordPath(resource, id), data); err != nil {
		return "", err
	}

	return id, nil
}

// Peek returns the oldest payload without removing it. Records that cannot
// be decoded are deleted, reported to the sink, and skipped; the scan is
// bounded by the directory listing taken at entry, so it always terminates.
func (s *Store) Peek(ctx context.Context, resource delivery.ResourceType) (delivery.Payload, error) {
	ids, err := s.List(ctx, resource)
	if err != nil {
		return delivery.Payload{}, err
	}

	for _, id := range ids {
		payload, err := s.read(resource, id)
		if err == nil {
			return payload, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			// Removed between listing and read.
			continue
		}
		if errors.Is(err, delivery.ErrCorruptEntry) {
			s.cfg.Sink.Report(ctx, err)
			s.cfg.Logger.Warn("deleting corrupt payload record", "resource", resource, "id", id)
			if removeErr := os.Remove(s.recordPath(resource, id)); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
				s.cfg.Sink.Report(ctx, fmt.Errorf("delivery file: delete corrupt record %s: %w", id, removeErr))
			}

			continue
		}

		return delivery.Payload{}, err
	}

	return delivery.Payload{}, delivery.ErrNoPayloads
}

// Remove deletes a payload record. Removing an id that no longer exists is a
// no-op.
func (s *Store) Remove(ctx context.Context, id delivery.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resource, err := id.Resource()
	if err != nil {
		return err
	}

	if err := os.Remove(s.recordPath(resource, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delivery file: remove %s: %w", id, err)
	}

	return nil
}

// Update applies a shallow merge over the stored record and rewrites it
// atomically. It returns delivery.ErrNotFound when the record is gone.
func (s *Store) Update(ctx context.Context, id delivery.ID, update delivery.PayloadUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resource, err := id.Resource()
	if err != nil {
		return err
	}

	path := s.recordPath(resource, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delivery file: update %s: %w", id, delivery.ErrNotFound)
		}

		return fmt.Errorf("delivery file: read %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("delivery file: decode %s: %w", id, delivery.ErrCorruptEntry)
	}

	if update.Retries != nil && *update.Retries > rec.Retries {
		rec.Retries = *update.Retries
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("delivery file: encode %s: %w", id, err)
	}

	return s.writeAtomic(path, out)
}

// List returns pending ids in creation order. Id generation keeps
// lexicographic file-name order equal to creation order, so the sorted
// directory listing is the queue.
func (s *Store) List(ctx context.Context, resource delivery.ResourceType) ([]delivery.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := resource.Validate(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.resourceDir(resource))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("delivery file: list %s: %w", resource, err)
	}

	ids := make([]delivery.ID, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ids = append(ids, delivery.ID(strings.TrimSuffix(name, recordExt)))
	}

	return ids, nil
}

func (s *Store) read(resource delivery.ResourceType, id delivery.ID) (delivery.Payload, error) {
	data, err := os.ReadFile(s.recordPath(resource, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return delivery.Payload{}, err
		}

		return delivery.Payload{}, fmt.Errorf("delivery file: read %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return delivery.Payload{}, fmt.Errorf("delivery file: decode %s: %w", id, delivery.ErrCorruptEntry)
	}

	return delivery.Payload{
		ID:        id,
		Resource:  resource,
		Body:      rec.Body,
		Retries:   rec.Retries,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// sweepTemp removes temp files left behind by a crash mid-write. A temp file
// is always an incomplete record whose write never returned, so deleting it
// loses nothing.
func (s *Store) sweepTemp() {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.baseDir, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), tmpExt) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, file.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.cfg.Logger.Warn("deleting stale temp file failed", "file", file.Name(), "err", err)
			}
		}
	}
}

// ensureDir makes sure the resource directory exists. It is idempotent and
// safe to call before every dependent operation.
func (s *Store) ensureDir(resource delivery.ResourceType) error {
	if err := os.MkdirAll(s.resourceDir(resource), dirPerm); err != nil {
		return fmt.Errorf("delivery file: create resource directory %s: %w", resource, err)
	}

	return nil
}

// writeAtomic writes data next to the target and renames it into place, so
// readers never observe a partially written record.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp := path + tmpExt
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("delivery file: write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("delivery file: rename %s: %w", filepath.Base(path), err)
	}

	return nil
}

func (s *Store) resourceDir(resource delivery.ResourceType) string {
	return filepath.Join(s.baseDir, string(resource))
}

func (s *Store) recordPath(resource delivery.ResourceType, id delivery.ID) string {
	return filepath.Join(s.resourceDir(resource), string(id)+recordExt)
}
