// Package checkpoint persists the presentation after each completed class
// so that a long run can be resumed.
//
// Snapshots live under "<run>/class-<c>.ckpt" in a blob store. After every
// successful write the pointer "<run>/LATEST" is replaced with the snapshot
// name, so a reader never observes a partially written snapshot. With
// blobstore/s3.DDBCommitStore the pointer update is a conditional DynamoDB
// write.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/hupe1980/nilq/blobstore"
	"github.com/hupe1980/nilq/internal/compress"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/resource"
	"github.com/hupe1980/nilq/ring"
)

// PointerName is the per-run blob naming the latest snapshot.
const PointerName = "LATEST"

// ErrNoCheckpoint is returned when a run has no committed snapshot.
var ErrNoCheckpoint = errors.New("checkpoint: no checkpoint")

// Store writes and reads snapshots.
type Store struct {
	blobs       blobstore.BlobStore
	compression compress.Type
	rc          *resource.Controller
	keep        int
}

// Option configures a Store.
type Option func(*Store)

// WithCompression sets the block compression of new snapshots.
func WithCompression(t compress.Type) Option {
	return func(s *Store) { s.compression = t }
}

// WithResourceController throttles snapshot writes through rc's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(s *Store) { s.rc = rc }
}

// WithKeep retains only the newest n snapshots of a run; 0 keeps all.
func WithKeep(n int) Option {
	return func(s *Store) { s.keep = n }
}

// New returns a Store on blobs. Snapshots are zstd-compressed by default.
func New(blobs blobstore.BlobStore, opts ...Option) *Store {
	s := &Store{blobs: blobs, compression: compress.ZSTD}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the blob name of the class-c snapshot of run.
func Name(run string, class int) string {
	return path.Join(run, fmt.Sprintf("class-%04d.ckpt", class))
}

func pointer(run string) string { return path.Join(run, PointerName) }

// Save writes p and commits it as the latest snapshot of run. It returns the
// snapshot name.
func Save[T any](ctx context.Context, s *Store, run string, p *pc.Presentation[T]) (string, error) {
	data, err := Marshal(p)
	if err != nil {
		return "", err
	}
	frame, err := compress.Encode(data, s.compression)
	if err != nil {
		return "", err
	}

	name := Name(run, p.Class)
	w, err := s.blobs.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("checkpoint: create %s: %w", name, err)
	}
	if _, err := resource.NewRateLimitedWriter(ctx, w, s.rc).Write(frame); err != nil {
		_ = w.Close()
		_ = s.blobs.Delete(ctx, name)
		return "", fmt.Errorf("checkpoint: write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("checkpoint: close %s: %w", name, err)
	}
	if err := s.blobs.Put(ctx, pointer(run), []byte(name)); err != nil {
		return "", fmt.Errorf("checkpoint: commit %s: %w", name, err)
	}
	if err := s.prune(ctx, run, name); err != nil {
		return "", err
	}
	return name, nil
}

// prune deletes all but the newest s.keep snapshots of run. latest is never
// deleted.
func (s *Store) prune(ctx context.Context, run, latest string) error {
	if s.keep <= 0 {
		return nil
	}
	names, err := s.List(ctx, run)
	if err != nil {
		return err
	}
	for k := 0; k < len(names)-s.keep; k++ {
		if names[k] == latest {
			continue
		}
		if err := s.blobs.Delete(ctx, names[k]); err != nil {
			return fmt.Errorf("checkpoint: prune %s: %w", names[k], err)
		}
	}
	return nil
}

// Latest returns the name of the latest committed snapshot of run.
func (s *Store) Latest(ctx context.Context, run string) (string, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, pointer(run))
	if errors.Is(err, blobstore.ErrNotFound) {
		return "", fmt.Errorf("%w for run %s", ErrNoCheckpoint, run)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// List returns the snapshot names of run, oldest class first.
func (s *Store) List(ctx context.Context, run string) ([]string, error) {
	names, err := s.blobs.List(ctx, run+"/")
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if strings.HasSuffix(n, ".ckpt") {
			out = append(out, n)
		}
	}
	return out, nil
}

// Read decodes the snapshot with the given name over r.
func Read[T any](ctx context.Context, s *Store, name string, r ring.Ring[T]) (*pc.Presentation[T], error) {
	frame, err := blobstore.ReadAll(ctx, s.blobs, name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", name, err)
	}
	data, err := compress.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %s: %w", name, err)
	}
	return Unmarshal(data, r)
}

// Load decodes the latest snapshot of run over r.
func Load[T any](ctx context.Context, s *Store, run string, r ring.Ring[T]) (*pc.Presentation[T], error) {
	name, err := s.Latest(ctx, run)
	if err != nil {
		return nil, err
	}
	return Read(ctx, s, name, r)
}
