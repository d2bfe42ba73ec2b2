package telegram

import (
	"sync"

	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/log"
	"github.com/metafates/gache"
)

type persisted struct {
	Offset   int64           `json:"offset"`
	Messages map[int64]int64 `json:"messages"`
}

// Store keeps the last processed update id and the status message of each chat
// across restarts.
type Store struct {
	mu     sync.Mutex
	cacher *gache.Cache[*persisted]
	state  persisted
}

// NewStore loads the store persisted at path. A missing or unreadable file starts empty.
func NewStore(path string) *Store {
	s := &Store{
		cacher: gache.New[*persisted](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
		state: persisted{Messages: make(map[int64]int64)},
	}

	cached, expired, err := s.cacher.Get()
	switch {
	case err != nil:
		log.WithFields(log.Fields{"module": "telegram", "path": path}).WithError(err).Warn("state not loaded")
	case !expired && cached != nil:
		s.state.Offset = cached.Offset
		for chat, msg := range cached.Messages {
			s.state.Messages[chat] = msg
		}
	}

	return s
}

// Offset returns the last processed update id.
func (s *Store) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Offset
}

// Advance records id as processed. It reports false when id is not newer than the last one.
func (s *Store) Advance(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id <= s.state.Offset {
		return false
	}
	s.state.Offset = id
	s.save()
	return true
}

// Message returns the status message id of chat.
func (s *Store) Message(chat int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.Messages[chat]
	return id, ok
}

// SetMessage records the status message id of chat.
func (s *Store) SetMessage(chat, message int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Messages[chat] == message {
		return
	}
	s.state.Messages[chat] = message
	s.save()
}

func (s *Store) save() {
	snapshot := &persisted{Offset: s.state.Offset, Messages: make(map[int64]int64, len(s.state.Messages))}
	for chat, msg := range s.state.Messages {
		snapshot.Messages[chat] = msg
	}

	if err := s.cacher.Set(snapshot); err != nil {
		log.WithFields(log.Fields{"module": "telegram"}).WithError(err).Warn("state not saved")
	}
}
