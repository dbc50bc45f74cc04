// Package file stores each account as a JSON document named <id>.json in a
// data directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/repository/snapshot"
	"github.com/iho/gowallet/internal/domain"
)

const (
	fileExt  = ".json"
	dirPerm  = 0o755
	filePerm = 0o600
)

// AccountRepository implements usecase.AccountRepository on the local
// filesystem. Writes go to a temporary file in the same directory that is
// synced and then renamed over the target.
type AccountRepository struct {
	dir     string
	retrier *Retrier
	logger  zerolog.Logger
}

// NewAccountRepository creates the data directory if needed.
func NewAccountRepository(dir string, logger zerolog.Logger) (*AccountRepository, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	logger = logger.With().Str("component", "file_store").Logger()
	return &AccountRepository{
		dir:     dir,
		retrier: NewRetrier(logger),
		logger:  logger,
	}, nil
}

// Dir returns the data directory.
func (r *AccountRepository) Dir() string {
	return r.dir
}

// Ping checks that the data directory is still a reachable directory.
func (r *AccountRepository) Ping(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat data dir %s: %w", r.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", r.dir)
	}
	return nil
}

// Create writes a new account; it fails if the file already exists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	exists, err := r.Exists(ctx, account.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAccountExists
	}

	next := account.Clone()
	next.Version = 1
	if err := r.commit(ctx, []*domain.Account{next}); err != nil {
		return fmt.Errorf("create account %s: %w", account.ID, err)
	}

	account.Version = next.Version
	return nil
}

// GetByID reads and decodes an account file.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	path, ok := r.path(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	var data []byte
	err := r.retrier.Retry(ctx, func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("read account %s: %w", id, err)
	}

	account, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}
	if account.ID == "" {
		account.ID = id
	}

	return account, nil
}

// Exists reports whether an account file is present.
func (r *AccountRepository) Exists(_ context.Context, id string) (bool, error) {
	path, ok := r.path(id)
	if !ok {
		return false, nil
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat account %s: %w", id, err)
	}
}

// Save persists one existing account.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	return r.SaveAll(ctx, account)
}

// SaveAll stages every account in a synced temporary file before renaming
// any of them, so a failure while encoding or writing leaves all targets
// untouched.
func (r *AccountRepository) SaveAll(ctx context.Context, accounts ...*domain.Account) error {
	next := make([]*domain.Account, len(accounts))
	for i, a := range accounts {
		exists, err := r.Exists(ctx, a.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrAccountNotFound
		}

		next[i] = a.Clone()
		next[i].Version++
	}

	if err := r.commit(ctx, next); err != nil {
		return err
	}

	for i, a := range accounts {
		a.Version = next[i].Version
	}
	return nil
}

type stagedFile struct {
	tmp    string
	target string
}

func (r *AccountRepository) commit(ctx context.Context, accounts []*domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	staged := make([]stagedFile, 0, len(accounts))
	committed := false
	defer func() {
		if committed {
			return
		}
		for _, s := range staged {
			_ = os.Remove(s.tmp)
		}
	}()

	for _, a := range accounts {
		target, ok := r.path(a.ID)
		if !ok {
			return fmt.Errorf("invalid account id %q", a.ID)
		}

		data, err := snapshot.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode account %s: %w", a.ID, err)
		}

		tmp, err := r.writeTemp(a.ID, data)
		if err != nil {
			return fmt.Errorf("stage account %s: %w", a.ID, err)
		}
		staged = append(staged, stagedFile{tmp: tmp, target: target})
	}

	for i, s := range staged {
		err := r.retrier.Retry(ctx, func() error {
			return os.Rename(s.tmp, s.target)
		})
		if err != nil {
			if i > 0 {
				r.logger.Error().Err(err).Int("renamed", i).Int("total", len(staged)).Msg("partial commit")
			}
			return fmt.Errorf("commit %s: %w", filepath.Base(s.target), err)
		}
	}
	committed = true

	if err := syncDir(r.dir); err != nil {
		r.logger.Warn().Err(err).Msg("sync data dir")
	}
	return nil
}

func (r *AccountRepository) writeTemp(id string, data []byte) (string, error) {
	f, err := os.CreateTemp(r.dir, "."+id+"-*.tmp")
	if err != nil {
		return "", err
	}

	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, filePerm); err != nil {
		os.Remove(name)
		return "", err
	}

	return name, nil
}

// path maps an id to its file. Ids that would escape the data directory are
// rejected.
func (r *AccountRepository) path(id string) (string, bool) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return filepath.Join(r.dir, id+fileExt), true
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
