package posture

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const hashChunkSize = 64 * 1024

// defaultProcessInspector is the built-in Process Inspection Worker,
// spec.md §4.3. It always runs off the loop thread — callers dispatch it
// onto a goroutine; this function itself is just the blocking body. A
// failed stat leaves the result at its zero value (IsRunning=false, no
// hash/signers), matching process_check_work (posture.c:846-857).
func defaultProcessInspector(ctx context.Context, path string) ProcessResult {
	var result ProcessResult

	if _, err := os.Stat(path); err != nil {
		logrus.WithError(err).WithField("path", path).Debug("process file not found, skipping hash")
		return result
	}

	result.IsRunning = isRunning(path)

	digest, err := hashFile(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Debug("failed hashing process file")
	} else {
		result.SHA512Hex = digest
		result.Signers = getSigners(path)
	}

	return result
}

// hashFile streams path through SHA-512 in 64 KiB chunks, spec.md §4.3.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha512.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// dispatchProcessJob returns the errgroup task that runs job's inspector
// and delivers its result to resultCh unless the job is canceled first,
// spec.md §4.3/§4.7. It never touches State directly — only the loop
// goroutine reading resultCh does that, preserving the "return to the
// loop thread before touching posture state" rule of spec.md §9.
func dispatchProcessJob(ctx context.Context, inspect ProcessInspector, job *ProcessJob, resultCh chan<- jobCompletion) func() error {
	return func() error {
		result := inspect(ctx, job.Path)
		if job.Canceled.Load() {
			return nil
		}
		select {
		case resultCh <- jobCompletion{job: job, result: result}:
		case <-ctx.Done():
		}
		return nil
	}
}

// jobCompletion is what a process worker goroutine hands back to the loop.
type jobCompletion struct {
	job    *ProcessJob
	result ProcessResult
}
