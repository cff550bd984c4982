package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// DefaultPollInterval is how often File re-reads the facts file.
const DefaultPollInterval = 5 * time.Second

// document is the on-disk shape of a facts file.
type document struct {
	Tasks []alert.Task `yaml:"tasks"`
	Users []alert.User `yaml:"users"`
}

// File is a Source backed by a YAML facts file.
//
// Each subscription polls the file and emits a fresh snapshot whenever the
// file content changes (detected by content hash, not mtime, so touch
// without change stays quiet). The initial read emits immediately. Read or
// parse failures are logged and the previous snapshot stays in effect -
// a broken file must not take down the evaluation loop.
type File struct {
	path     string
	interval time.Duration
}

// NewFile creates a file-backed source polling at the given interval.
// A non-positive interval defaults to DefaultPollInterval.
func NewFile(path string, interval time.Duration) *File {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &File{path: path, interval: interval}
}

// Read parses a facts file once. Used by one-shot commands that have no
// subscription lifecycle.
func Read(path string) ([]alert.Task, []alert.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read facts file: %w", err)
	}
	doc, err := parse(data)
	if err != nil {
		return nil, nil, err
	}
	return doc.Tasks, doc.Users, nil
}

func parse(data []byte) (document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("parse facts file: %w", err)
	}
	return doc, nil
}

// SubscribeTasks starts a poll loop delivering task snapshots.
// The channel closes when ctx is cancelled.
func (f *File) SubscribeTasks(ctx context.Context) (<-chan []alert.Task, error) {
	ch := make(chan []alert.Task, 1)
	go f.watch(ctx, func(doc document) {
		select {
		case ch <- doc.Tasks:
		case <-ctx.Done():
		}
	}, func() { close(ch) })
	return ch, nil
}

// SubscribeUsers starts a poll loop delivering user snapshots.
// The channel closes when ctx is cancelled.
func (f *File) SubscribeUsers(ctx context.Context) (<-chan []alert.User, error) {
	ch := make(chan []alert.User, 1)
	go f.watch(ctx, func(doc document) {
		select {
		case ch <- doc.Users:
		case <-ctx.Done():
		}
	}, func() { close(ch) })
	return ch, nil
}

// watch polls the file and calls emit on every content change.
func (f *File) watch(ctx context.Context, emit func(document), done func()) {
	defer done()

	var lastHash [sha256.Size]byte

	poll := func() {
		data, err := os.ReadFile(f.path)
		if err != nil {
			slog.Warn("facts file unreadable, keeping previous snapshot", "path", f.path, "error", err)
			return
		}
		hash := sha256.Sum256(data)
		if hash == lastHash {
			return
		}
		doc, err := parse(data)
		if err != nil {
			slog.Warn("facts file unparseable, keeping previous snapshot", "path", f.path, "error", err)
			return
		}
		lastHash = hash
		emit(doc)
	}

	poll()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
