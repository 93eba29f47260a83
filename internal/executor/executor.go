// Package executor applies move plans to the filesystem.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediasort/internal/fileutil"
	"mediasort/internal/logging"
	"mediasort/internal/media"
)

// Failure reports a move that was not carried out.
type Failure struct {
	Action media.PlanAction `json:"action"`
	Reason string           `json:"reason"`
}

// Executor moves plan entries from the download root into the library root.
type Executor struct {
	fs          afero.Fs
	downloadDir string
	libraryDir  string
	logger      *slog.Logger
}

// New builds an executor over fs. Plan files resolve against downloadDir and
// targets against libraryDir.
func New(fs afero.Fs, downloadDir, libraryDir string, logger *slog.Logger) *Executor {
	return &Executor{
		fs:          fs,
		downloadDir: downloadDir,
		libraryDir:  libraryDir,
		logger:      logging.NewComponentLogger(logger, "executor"),
	}
}

// Execute performs every move in plan, in order, and returns the ones that
// failed. Skips are ignored. Existing targets are never overwritten.
func (e *Executor) Execute(ctx context.Context, plan []media.PlanAction) []Failure {
	logger := logging.WithContext(ctx, e.logger)
	var failures []Failure
	fail := func(action media.PlanAction, reason string) {
		failures = append(failures, Failure{Action: action, Reason: reason})
		logger.Warn("move failed",
			logging.String(logging.FieldEventType, "move_failed"),
			logging.String("file", action.File),
			logging.String("target", action.Target),
			logging.String("reason", reason),
			logging.String(logging.FieldImpact, "file left in download directory"),
		)
	}

	moved := 0
	for _, action := range plan {
		if action.Action == media.ActionSkip {
			continue
		}
		if err := ctx.Err(); err != nil {
			fail(action, err.Error())
			continue
		}
		if err := action.Validate(); err != nil {
			fail(action, err.Error())
			continue
		}
		src, ok := within(e.downloadDir, action.File)
		if !ok {
			fail(action, "file escapes download directory")
			continue
		}
		dst, ok := within(e.libraryDir, action.Target)
		if !ok {
			fail(action, "target escapes library directory")
			continue
		}
		if _, err := e.fs.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fail(action, "file not found")
			} else {
				fail(action, err.Error())
			}
			continue
		}
		if exists, err := afero.Exists(e.fs, dst); err != nil {
			fail(action, err.Error())
			continue
		} else if exists {
			fail(action, "target exists")
			continue
		}
		if err := fileutil.Move(e.fs, src, dst); err != nil {
			fail(action, err.Error())
			continue
		}
		moved++
		logger.Debug("moved", logging.String("file", action.File), logging.String("target", action.Target))
	}

	logger.Info("plan executed",
		logging.Int("moved", moved),
		logging.Int("failed", len(failures)),
	)
	return failures
}

// within joins rel onto root and reports whether the result stays below root.
func within(root, rel string) (string, bool) {
	rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	if filepath.IsAbs(rel) {
		return "", false
	}
	joined := filepath.Join(root, rel)
	back, err := filepath.Rel(root, joined)
	if err != nil || back == "." || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}
