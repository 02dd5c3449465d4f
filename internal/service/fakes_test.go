package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/mail"
	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/google/uuid"
)

type fakeSubscribers struct {
	byList    map[uint][]models.Subscriber
	createErr error
	created   []models.Subscriber
}

func newFakeSubscribers() *fakeSubscribers {
	return &fakeSubscribers{byList: make(map[uint][]models.Subscriber)}
}

func (f *fakeSubscribers) ExistsInList(ctx context.Context, email string, listID uint) (bool, error) {
	for _, s := range f.byList[listID] {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubscribers) CreateWithList(ctx context.Context, subscriber *models.Subscriber, listID uint) error {
	if f.createErr != nil {
		return f.createErr
	}
	if subscriber.ID == uuid.Nil {
		subscriber.ID = uuid.New()
	}
	f.byList[listID] = append(f.byList[listID], *subscriber)
	f.created = append(f.created, *subscriber)
	return nil
}

func (f *fakeSubscribers) FindByList(ctx context.Context, listID uint) ([]models.Subscriber, error) {
	return f.byList[listID], nil
}

func (f *fakeSubscribers) FindAll(ctx context.Context, listID uint) ([]models.Subscriber, error) {
	if listID > 0 {
		return f.byList[listID], nil
	}
	var all []models.Subscriber
	for _, subs := range f.byList {
		all = append(all, subs...)
	}
	return all, nil
}

func (f *fakeSubscribers) Count(ctx context.Context) (int64, error) {
	var n int64
	for _, subs := range f.byList {
		n += int64(len(subs))
	}
	return n, nil
}

type fakeLists struct {
	lists map[uint]*models.List
	err   error
}

func (f *fakeLists) FindByID(ctx context.Context, id uint) (*models.List, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[id], nil
}

func (f *fakeLists) Summaries(ctx context.Context) ([]models.ListSummary, error) {
	var out []models.ListSummary
	for _, l := range f.lists {
		out = append(out, models.ListSummary{List: *l})
	}
	return out, nil
}

type fakeLimiter struct {
	counts    map[string]int
	max       int
	allowErr  error
	increased int
}

func newFakeLimiter(max int) *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int), max: max}
}

func (f *fakeLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	if f.allowErr != nil {
		return false, f.allowErr
	}
	return f.counts[ip] < f.max, nil
}

func (f *fakeLimiter) Increment(ctx context.Context, ip string) error {
	f.counts[ip]++
	f.increased++
	return nil
}

type memoryOptions struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryOptions() *memoryOptions {
	return &memoryOptions{values: make(map[string][]byte)}
}

func (m *memoryOptions) Get(ctx context.Context, name string, dst interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memoryOptions) Set(ctx context.Context, name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[name] = raw
	return nil
}

func newTestLogs() *activity.Logs {
	return activity.NewLogs(newMemoryOptions(), 100, 500)
}

type fakeTransport struct {
	sent    []mail.Message
	failFor map[string]bool
}

func (f *fakeTransport) Send(ctx context.Context, msg mail.Message) error {
	if f.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeUsers struct {
	byEmail map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*models.User)}
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, nil
}

func newSubscriber(email string) models.Subscriber {
	return models.Subscriber{ID: uuid.New(), Name: "N", Surname: "S", Email: email}
}
