package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/logger"
)

// LockPath returns the advisory lock file path for the ledger.
func (s *Store) LockPath() string {
	return s.path + ".lock"
}

// lockInfo is the content of a lock file.
type lockInfo struct {
	PID      int
	Acquired time.Time
}

func (l lockInfo) String() string {
	return fmt.Sprintf("%d\n%s\n", l.PID, l.Acquired.UTC().Format(time.RFC3339))
}

func parseLockInfo(data []byte) (lockInfo, error) {
	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return lockInfo{}, fmt.Errorf("malformed lock file")
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return lockInfo{}, fmt.Errorf("lock pid: %w", err)
	}
	acquired, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return lockInfo{}, fmt.Errorf("lock time: %w", err)
	}
	return lockInfo{PID: pid, Acquired: acquired}, nil
}

// Lock creates the lock file exclusively.
// A lock older than the stale age is broken once and retried.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock, err := s.tryLock()
	if !errors.Is(err, fs.ErrExist) {
		return unlock, err
	}

	holder, stale := s.inspectLock()
	if !stale {
		return nil, fmt.Errorf("%w: held by %s", domain.ErrPassInProgress, holder)
	}

	logger.Warn("breaking stale ledger lock held by %s", holder)
	if err := os.Remove(s.LockPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale lock: %w", err)
	}

	unlock, err = s.tryLock()
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: lock taken while breaking stale lock", domain.ErrPassInProgress)
	}
	return unlock, err
}

func (s *Store) tryLock() (func() error, error) {
	path := s.LockPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		return nil, fmt.Errorf("create lock: %w", err)
	}

	info := lockInfo{PID: os.Getpid(), Acquired: s.now()}
	_, werr := f.WriteString(info.String())
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock: %w", err)
	}

	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
				err = fmt.Errorf("release lock: %w", rerr)
			}
		})
		return err
	}, nil
}

// inspectLock describes the current holder and reports whether the lock is
// stale. Unreadable lock files are judged by modification time.
func (s *Store) inspectLock() (string, bool) {
	path := s.LockPath()
	data, err := os.ReadFile(path)
	if err != nil {
		// Released between the create attempt and now.
		return "nobody", errors.Is(err, fs.ErrNotExist)
	}

	acquired := time.Time{}
	holder := "unknown process"
	if info, perr := parseLockInfo(data); perr == nil {
		acquired = info.Acquired
		holder = fmt.Sprintf("pid %d since %s", info.PID, info.Acquired.Format(time.RFC3339))
	} else if st, serr := os.Stat(path); serr == nil {
		acquired = st.ModTime()
	}

	if s.staleLockAge <= 0 || acquired.IsZero() {
		return holder, false
	}
	return holder, s.now().Sub(acquired) > s.staleLockAge
}
