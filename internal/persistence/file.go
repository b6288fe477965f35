package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
)

const (
	threadsDir  = "threads"
	feedbackDir = "feedback"
)

// File keeps one indented JSON document per record under a data directory.
type File struct {
	root string
}

// NewFile creates the directory layout under root.
func NewFile(root string) (*File, error) {
	for _, dir := range []string{threadsDir, feedbackDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return &File{root: root}, nil
}

func (f *File) Name() string { return "file" }

func (f *File) path(dir, id string) string {
	return filepath.Join(f.root, dir, filepath.Base(id)+".json")
}

func (f *File) SaveThread(_ context.Context, thread *model.Thread) error {
	return writeJSONFile(f.path(threadsDir, thread.ThreadID), thread)
}

func (f *File) LoadThread(_ context.Context, threadID string) (*model.Thread, error) {
	var t model.Thread
	ok, err := readJSONFile(f.path(threadsDir, threadID), &t)
	if !ok || err != nil {
		return nil, err
	}
	return &t, nil
}

func (f *File) LoadAllThreads(ctx context.Context) ([]*model.Thread, error) {
	ids, err := f.list(threadsDir)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Thread, 0, len(ids))
	for _, id := range ids {
		t, err := f.LoadThread(ctx, id)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, t)
		}
	}
	sortThreadsNewestFirst(out)
	return out, nil
}

func (f *File) DeleteThread(_ context.Context, threadID string) (bool, error) {
	return removeFile(f.path(threadsDir, threadID))
}

func (f *File) SaveFeedback(_ context.Context, feedback *model.Feedback) error {
	return writeJSONFile(f.path(feedbackDir, feedback.FeedbackID), feedback)
}

func (f *File) LoadFeedback(_ context.Context, feedbackID string) (*model.Feedback, error) {
	var fb model.Feedback
	ok, err := readJSONFile(f.path(feedbackDir, feedbackID), &fb)
	if !ok || err != nil {
		return nil, err
	}
	return &fb, nil
}

func (f *File) LoadAllFeedback(ctx context.Context) ([]*model.Feedback, error) {
	ids, err := f.list(feedbackDir)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Feedback, 0, len(ids))
	for _, id := range ids {
		fb, err := f.LoadFeedback(ctx, id)
		if err != nil {
			return nil, err
		}
		if fb != nil {
			out = append(out, fb)
		}
	}
	sortFeedbackNewestFirst(out)
	return out, nil
}

func (f *File) DeleteFeedback(_ context.Context, feedbackID string) (bool, error) {
	return removeFile(f.path(feedbackDir, feedbackID))
}

func (f *File) Close() error { return nil }

func (f *File) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.root, dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

// writeJSONFile writes through a temp file so readers never see a partial
// document.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSONFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func removeFile(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
