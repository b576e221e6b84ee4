package prepare

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"langprep/internal/dataset"
	"langprep/internal/fileutil"
	"langprep/internal/logging"
	"langprep/internal/split"
)

const (
	TrainFile = "train.csv"
	ValFile   = "val.csv"
	TestFile  = "test.csv"

	// LockFile guards an output directory against concurrent writers.
	LockFile = ".langprep.lock"

	lockRetryDelay = 100 * time.Millisecond
)

// Outputs lists the files a persist wrote. Val is empty when the
// validation split was empty and no file was written.
type Outputs struct {
	Dir   string `json:"dir"`
	Train string `json:"train"`
	Val   string `json:"val,omitempty"`
	Test  string `json:"test"`
}

// Persist writes the splits to outputDir as train.csv, val.csv, and
// test.csv. val.csv is skipped when the validation split is empty, and a
// val.csv left by an earlier run is removed. Files become visible only once
// all of them were written.
func (p *Preparer) Persist(ctx context.Context, res split.Result, outputDir string) (Outputs, error) {
	logger := logging.WithContext(logging.WithStage(ctx, "persist"), p.logger)

	if outputDir == "" {
		return Outputs{}, errors.New("output directory is empty")
	}
	if res.Train == nil || res.Test == nil {
		return Outputs{}, errors.New("persist: train and test splits are required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("create output directory: %w", err)
	}

	lockPath := filepath.Join(outputDir, LockFile)
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Outputs{}, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return Outputs{}, fmt.Errorf("lock output directory: %s is held by another run", lockPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	out := Outputs{
		Dir:   outputDir,
		Train: filepath.Join(outputDir, TrainFile),
		Test:  filepath.Join(outputDir, TestFile),
	}
	type pending struct {
		ds   *dataset.Dataset
		dest string
		tmp  *fileutil.TempFile
	}
	files := []*pending{{ds: res.Train, dest: out.Train}}
	if res.Val.Len() > 0 {
		out.Val = filepath.Join(outputDir, ValFile)
		files = append(files, &pending{ds: res.Val, dest: out.Val})
	}
	files = append(files, &pending{ds: res.Test, dest: out.Test})

	abortAll := func() {
		for _, f := range files {
			if f.tmp != nil {
				f.tmp.Abort()
			}
		}
	}

	for _, f := range files {
		tmp, err := fileutil.CreateTemp(f.dest)
		if err != nil {
			abortAll()
			return Outputs{}, err
		}
		f.tmp = tmp
		bw := bufio.NewWriter(tmp)
		if err := dataset.WriteCSV(bw, f.ds); err != nil {
			abortAll()
			return Outputs{}, fmt.Errorf("write %s: %w", filepath.Base(f.dest), err)
		}
		if err := bw.Flush(); err != nil {
			abortAll()
			return Outputs{}, fmt.Errorf("write %s: %w", filepath.Base(f.dest), err)
		}
		logger.Debug("split staged", logging.String("temp_path", tmp.Name()), logging.Int("rows", f.ds.Len()))
	}

	for i, f := range files {
		if err := f.tmp.Commit(); err != nil {
			for _, rest := range files[i+1:] {
				rest.tmp.Abort()
			}
			return Outputs{}, err
		}
	}

	if out.Val == "" {
		stale := filepath.Join(outputDir, ValFile)
		if err := os.Remove(stale); err == nil {
			logging.WarnWithContext(logger, "removed stale validation split", "stale_val_removed",
				logging.String("path", stale),
				logging.String(logging.FieldErrorHint, "validation fraction is 0 so no val.csv is produced"),
			)
		} else if !errors.Is(err, os.ErrNotExist) {
			return Outputs{}, fmt.Errorf("remove stale %s: %w", ValFile, err)
		}
	}

	logger.Info("splits written",
		logging.String("output_dir", outputDir),
		logging.Int("train_rows", res.Train.Len()),
		logging.Int("val_rows", res.Val.Len()),
		logging.Int("test_rows", res.Test.Len()),
		logging.String("lock_path", lockPath),
	)
	return out, nil
}
