package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"

	"github.com/cloudcourier/stack-publisher/internal/logger"
)

// markerFilename marks that a pipeline run is in progress. Concurrent runs
// against the same package directories would race on publish records and the
// staging area, so a second run refuses to start.
const markerFilename = "stack-publisher-run-marker.bin"

// acquireRunMarker creates the run marker and returns a release function.
// A leftover marker with no live sibling process is treated as stale and removed.
func acquireRunMarker(ctx context.Context) (func(), error) {
	if _, err := os.Stat(markerFilename); err == nil {
		running, perr := isSiblingRunning()
		if perr != nil || running {
			return nil, errAlreadyRunning
		}

		logger.Info(ctx, "Removing stale run marker")

		if err = os.Remove(markerFilename); err != nil {
			return nil, fmt.Errorf("remove stale run marker: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("inspect run marker: %w", err)
	}

	marker, err := os.Create(markerFilename)
	if err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	return func() {
		_ = os.Remove(markerFilename)
	}, nil
}

// isSiblingRunning scans the process table for another instance of this executable.
func isSiblingRunning() (bool, error) {
	processes, err := ps.Processes()
	if err != nil {
		return false, err
	}

	var (
		self  = filepath.Base(os.Args[0])
		myPid = os.Getpid()
	)

	for _, process := range processes {
		if process.Pid() == myPid {
			continue
		}

		if process.Executable() == self {
			return true, nil
		}
	}

	return false, nil
}
