// Package store holds threads, feedback and users in memory.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is the sole owner of thread, entry, feedback and user records.
// Pointers returned by lookups are live; callers must mutate only through
// Store methods and should use Snapshot when a stable copy is needed.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	threads     map[string]*model.Thread
	threadOrder []string
	feedback    map[string]*model.Feedback
	fbOrder     []string
	users       map[string]*model.User
	userOrder   []string

	threadSeq   int64
	entrySeq    int64
	feedbackSeq int64
	userSeq     int64
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.threads = make(map[string]*model.Thread)
	s.threadOrder = nil
	s.feedback = make(map[string]*model.Feedback)
	s.fbOrder = nil
	s.users = make(map[string]*model.User)
	s.userOrder = nil
	s.threadSeq, s.entrySeq, s.feedbackSeq, s.userSeq = 0, 0, 0, 0
}

// Clear drops every record and resets the id sequences.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) newEntry(threadID string, category model.Category, msg model.Message, at time.Time) model.Entry {
	s.entrySeq++
	return model.Entry{
		ID:        s.entrySeq,
		EntryID:   uuid.New().String(),
		ThreadID:  threadID,
		Category:  category,
		CreatedAt: at,
		Data:      msg,
	}
}

// stamp returns the clock reading, never earlier than the last entry.
func (s *Store) stamp(t *model.Thread) time.Time {
	now := s.now()
	if n := len(t.Entries); n > 0 && now.Before(t.Entries[n-1].CreatedAt) {
		return t.Entries[n-1].CreatedAt
	}
	return now
}

// CreateThread starts a thread holding msg as its single request entry.
func (s *Store) CreateThread(userID string, msg model.Message) *model.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createThread(userID, msg)
}

func (s *Store) createThread(userID string, msg model.Message) *model.Thread {
	now := s.now()
	s.threadSeq++
	t := &model.Thread{
		ID:        s.threadSeq,
		ThreadID:  uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
	}
	t.Entries = []model.Entry{s.newEntry(t.ThreadID, model.CategoryRequest, msg, now)}

	s.threads[t.ThreadID] = t
	s.threadOrder = append(s.threadOrder, t.ThreadID)
	return t
}

// AppendToThread adds msg as a request entry. It returns false when the
// thread does not exist.
func (s *Store) AppendToThread(threadID string, msg model.Message) (*model.Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendToThread(threadID, msg)
}

func (s *Store) appendToThread(threadID string, msg model.Message) (*model.Thread, bool) {
	t, ok := s.threads[threadID]
	if !ok {
		return nil, false
	}
	t.Entries = append(t.Entries, s.newEntry(threadID, model.CategoryRequest, msg, s.stamp(t)))
	return t, true
}

// AddRequest appends msg to threadID, or starts a new thread for userID
// when threadID is empty, and returns a copy of the thread taken under the
// same lock. The copy's last entry is always the request just added.
func (s *Store) AddRequest(threadID, userID string, msg model.Message) (thread *model.Thread, created, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if threadID == "" {
		return s.createThread(userID, msg).Clone(), true, true
	}
	t, ok := s.appendToThread(threadID, msg)
	if !ok {
		return nil, false, false
	}
	return t.Clone(), false, true
}

// AppendResponse adds msg as a response entry and returns a copy of it.
func (s *Store) AppendResponse(threadID string, msg model.Message) (*model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[threadID]
	if !ok {
		return nil, false
	}
	e := s.newEntry(threadID, model.CategoryResponse, msg, s.stamp(t))
	t.Entries = append(t.Entries, e)
	return &e, true
}

// GetThread returns the live thread.
func (s *Store) GetThread(threadID string) (*model.Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[threadID]
	return t, ok
}

// Snapshot returns a copy of the thread taken under the read lock.
func (s *Store) Snapshot(threadID string) (*model.Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[threadID]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// ListThreads returns copies of all threads in insertion order.
func (s *Store) ListThreads() []*model.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Thread, 0, len(s.threadOrder))
	for _, id := range s.threadOrder {
		out = append(out, s.threads[id].Clone())
	}
	return out
}

// DeleteThread removes a thread. Feedback referencing it is kept.
func (s *Store) DeleteThread(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[threadID]; !ok {
		return false
	}
	delete(s.threads, threadID)
	s.threadOrder = removeID(s.threadOrder, threadID)
	return true
}

// CreateFeedback records a rating. Entry and thread ids are not checked.
func (s *Store) CreateFeedback(entryID, threadID, userID string, rating model.Rating, comment *string) *model.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feedbackSeq++
	f := &model.Feedback{
		ID:         s.feedbackSeq,
		FeedbackID: uuid.New().String(),
		EntryID:    entryID,
		ThreadID:   threadID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  s.now(),
	}
	s.feedback[f.FeedbackID] = f
	s.fbOrder = append(s.fbOrder, f.FeedbackID)
	return f
}

// GetFeedback looks up feedback by id.
func (s *Store) GetFeedback(feedbackID string) (*model.Feedback, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.feedback[feedbackID]
	return f, ok
}

// GetFeedbackByEntry returns feedback for an entry in creation order.
func (s *Store) GetFeedbackByEntry(entryID string) []*model.Feedback {
	return s.filterFeedback(func(f *model.Feedback) bool { return f.EntryID == entryID })
}

// GetFeedbackByThread returns feedback for a thread in creation order.
func (s *Store) GetFeedbackByThread(threadID string) []*model.Feedback {
	return s.filterFeedback(func(f *model.Feedback) bool { return f.ThreadID == threadID })
}

// ListFeedback returns all feedback in creation order.
func (s *Store) ListFeedback() []*model.Feedback {
	return s.filterFeedback(func(*model.Feedback) bool { return true })
}

func (s *Store) filterFeedback(keep func(*model.Feedback) bool) []*model.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Feedback, 0)
	for _, id := range s.fbOrder {
		if f := s.feedback[id]; keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// DeleteFeedback removes a feedback record.
func (s *Store) DeleteFeedback(feedbackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.feedback[feedbackID]; !ok {
		return false
	}
	delete(s.feedback, feedbackID)
	s.fbOrder = removeID(s.fbOrder, feedbackID)
	return true
}

// FeedbackCounts tallies ratings, for one thread when threadID is set.
func (s *Store) FeedbackCounts(threadID string) model.FeedbackCounts {
	var list []*model.Feedback
	if threadID == "" {
		list = s.ListFeedback()
	} else {
		list = s.GetFeedbackByThread(threadID)
	}
	c := model.CountFeedback(list)
	c.ThreadID = threadID
	return c
}

// CreateUser registers a user. It returns false when the user id is taken.
func (s *Store) CreateUser(userID, email, firstName, lastName, role string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; exists {
		return nil, false
	}
	s.userSeq++
	u := &model.User{
		ID:        s.userSeq,
		UserID:    userID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	}
	s.users[userID] = u
	s.userOrder = append(s.userOrder, userID)
	return u, true
}

// GetUser looks up a user by user id.
func (s *Store) GetUser(userID string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	return u, ok
}

// ListUsers returns users in registration order.
func (s *Store) ListUsers() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false
	}
	delete(s.users, userID)
	s.userOrder = removeID(s.userOrder, userID)
	return true
}

// Restore seeds the store from persisted records. Records whose id is
// already present are skipped. Sequences advance past the highest restored
// numeric id so new records never reuse one.
func (s *Store) Restore(threads []*model.Thread, feedback []*model.Feedback) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nThreads, nFeedback int
	for _, t := range threads {
		if t == nil || t.ThreadID == "" {
			continue
		}
		if _, exists := s.threads[t.ThreadID]; exists {
			continue
		}
		s.threads[t.ThreadID] = t.Clone()
		s.threadOrder = append(s.threadOrder, t.ThreadID)
		s.threadSeq = max(s.threadSeq, t.ID)
		for _, e := range t.Entries {
			s.entrySeq = max(s.entrySeq, e.ID)
		}
		nThreads++
	}
	for _, f := range feedback {
		if f == nil || f.FeedbackID == "" {
			continue
		}
		if _, exists := s.feedback[f.FeedbackID]; exists {
			continue
		}
		cp := *f
		s.feedback[f.FeedbackID] = &cp
		s.fbOrder = append(s.fbOrder, f.FeedbackID)
		s.feedbackSeq = max(s.feedbackSeq, f.ID)
		nFeedback++
	}
	return nThreads, nFeedback
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
