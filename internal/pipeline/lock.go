package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// lockRetry is how often a busy output lock is polled.
const lockRetry = 200 * time.Millisecond

// lockDir holds one lock file per output path. Lock files are left in place;
// removing them would race with a waiting holder.
func lockDir() string {
	return filepath.Join(os.TempDir(), "dvstamp-locks")
}

// lockOutput takes the advisory lock that serializes encoder and tag tool
// runs against output, across goroutines and across dvstamp processes.
func lockOutput(ctx context.Context, output string) (*flock.Flock, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(lockDir(), 0o755); err != nil {
		return nil, err
	}
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String() + ".lock"
	fl := flock.New(filepath.Join(lockDir(), name))
	if _, err := fl.TryLockContext(ctx, lockRetry); err != nil {
		return nil, err
	}
	return fl, nil
}
