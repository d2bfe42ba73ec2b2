// Package history keeps the most recently played tracks across restarts.
package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/metafates/gache"
)

// Entry is one played track.
type Entry struct {
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	App      string    `json:"app"`
	PlayedAt time.Time `json:"played_at"`
}

func (e Entry) String() string {
	if e.Artist == "" {
		return e.Title
	}
	return fmt.Sprintf("%s - %s", e.Artist, e.Title)
}

func (e Entry) same(st media.State) bool {
	return e.Title == st.Title && e.Artist == st.Artist && e.Album == st.Album && e.App == st.App
}

// Log is a bounded, newest-first list of entries persisted with gache.
type Log struct {
	mu      sync.Mutex
	cacher  *gache.Cache[[]Entry]
	entries []Entry
	limit   int
	now     func() time.Time
}

// Open loads the log persisted at path, keeping at most limit entries.
func Open(path string, limit int) *Log {
	if limit <= 0 {
		limit = 1
	}

	l := &Log{
		cacher: gache.New[[]Entry](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
		limit: limit,
		now:   time.Now,
	}

	cached, expired, err := l.cacher.Get()
	switch {
	case err != nil:
		log.WithFields(log.Fields{"module": "history", "path": path}).WithError(err).Warn("history not loaded")
	case !expired && cached != nil:
		l.entries = cached
		if len(l.entries) > l.limit {
			l.entries = l.entries[:l.limit]
		}
	}

	return l
}

// Get returns a copy of the entries, newest first.
func (l *Log) Get() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Record prepends st unless it has no title or repeats the newest entry.
func (l *Log) Record(st media.State) bool {
	if st.Title == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > 0 && l.entries[0].same(st) {
		return false
	}

	entry := Entry{Title: st.Title, Artist: st.Artist, Album: st.Album, App: st.App, PlayedAt: l.now()}
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}

	if err := l.cacher.Set(l.entries); err != nil {
		log.WithFields(log.Fields{"module": "history"}).WithError(err).Warn("history not saved")
	}
	return true
}

// Clear drops every entry.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	return l.cacher.Set([]Entry{})
}

// Tee returns a publisher that records every track change before forwarding it to next.
func (l *Log) Tee(next media.Publisher) media.Publisher {
	return tee{log: l, next: next}
}

type tee struct {
	log  *Log
	next media.Publisher
}

func (t tee) Publish(event string, st media.State) {
	if event == constant.EventTrack {
		t.log.Record(st)
	}
	t.next.Publish(event, st)
}
