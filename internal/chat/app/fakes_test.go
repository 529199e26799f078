package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/repository"
)

// memConversationRepo in-memory ConversationRepository
type memConversationRepo struct {
	mu    sync.Mutex
	convs map[string]domain.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{convs: make(map[string]domain.Conversation)}
}

func (r *memConversationRepo) Create(_ context.Context, conv *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[conv.ID]; ok {
		return domain.ErrConversationExists
	}
	r.convs[conv.ID] = *conv
	return nil
}

func (r *memConversationRepo) FindByID(_ context.Context, id string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &conv, nil
}

func (r *memConversationRepo) UpdateStatus(_ context.Context, id string, status domain.ConversationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return domain.ErrNotFound
	}
	conv.Status = status
	r.convs[id] = conv
	return nil
}

func (r *memConversationRepo) FindByParticipant(_ context.Context, memberID string) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Conversation, 0)
	for _, conv := range r.convs {
		if conv.HasParticipant(memberID) {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memMessageRepo in-memory MessageRepository
type memMessageRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	lastAt   map[string]int64
	messages map[string][]domain.ChatMessage
	// insertFailures 之後的 Insert 先失敗幾次
	insertFailures int
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{
		counters: make(map[string]int64),
		lastAt:   make(map[string]int64),
		messages: make(map[string][]domain.ChatMessage),
	}
}

func (r *memMessageRepo) NextSequence(ctx context.Context, convID string, now int64) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[convID]++
	if now > r.lastAt[convID] {
		r.lastAt[convID] = now
	}
	return r.counters[convID], r.lastAt[convID], nil
}

func (r *memMessageRepo) ReleaseSequence(ctx context.Context, convID string, seq int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counters[convID] != seq {
		return false, nil
	}
	r.counters[convID]--
	return true, nil
}

func (r *memMessageRepo) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertFailures > 0 {
		r.insertFailures--
		return errors.New("mongo write failed")
	}
	for _, m := range r.messages[msg.ConversationID] {
		if m.Seq == msg.Seq {
			return fmt.Errorf("duplicate seq %d", msg.Seq)
		}
	}
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], *msg)
	sort.Slice(r.messages[msg.ConversationID], func(i, j int) bool {
		return r.messages[msg.ConversationID][i].Seq < r.messages[msg.ConversationID][j].Seq
	})
	return nil
}

func (r *memMessageRepo) FindPage(_ context.Context, convID string, skip, limit int64) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.messages[convID]
	if skip >= int64(len(all)) {
		return []domain.ChatMessage{}, nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return append([]domain.ChatMessage(nil), all[skip:end]...), nil
}

func (r *memMessageRepo) CountByConversation(_ context.Context, convID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages[convID])), nil
}

func (r *memMessageRepo) LatestSequence(_ context.Context, convID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.messages[convID]
	if len(all) == 0 {
		return 0, nil
	}
	return all[len(all)-1].Seq, nil
}

func (r *memMessageRepo) CountUnread(_ context.Context, convID, recipientID string, afterSeq int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages[convID] {
		if m.RecipientID == recipientID && m.Seq > afterSeq {
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) MarkReadUpTo(_ context.Context, convID, recipientID string, upto int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages[convID] {
		if m.RecipientID == recipientID && m.Seq <= upto {
			r.messages[convID][i].Read = true
		}
	}
	return nil
}

func (r *memMessageRepo) FindAll(_ context.Context, convID string) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ChatMessage{}, r.messages[convID]...), nil
}

func (r *memMessageRepo) count(convID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[convID])
}

// memMarkerRepo in-memory ReadMarkerRepository
type memMarkerRepo struct {
	mu      sync.Mutex
	markers map[string]int64
}

func newMemMarkerRepo() *memMarkerRepo {
	return &memMarkerRepo{markers: make(map[string]int64)}
}

func (r *memMarkerRepo) Advance(_ context.Context, convID, userID string, seq int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := convID + "/" + userID
	if seq > r.markers[key] {
		r.markers[key] = seq
	}
	return r.markers[key], nil
}

func (r *memMarkerRepo) Get(_ context.Context, convID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markers[convID+"/"+userID], nil
}

// memDirectory in-memory ApplicationDirectory
type memDirectory struct {
	mu   sync.Mutex
	apps map[string]domain.Application
	// order of ListApplications
	order []string
}

func newMemDirectory(apps ...domain.Application) *memDirectory {
	d := &memDirectory{apps: make(map[string]domain.Application)}
	for _, app := range apps {
		d.add(app)
	}
	return d
}

func (d *memDirectory) add(app domain.Application) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if app.Status == "" {
		app.Status = "submitted"
	}
	if _, ok := d.apps[app.ID]; !ok {
		d.order = append(d.order, app.ID)
	}
	d.apps[app.ID] = app
}

func (d *memDirectory) FindApplication(_ context.Context, id string) (*domain.Application, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	app, ok := d.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &app, nil
}

func (d *memDirectory) ListApplications(_ context.Context, jobPostID string) ([]domain.Application, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Application, 0)
	for _, id := range d.order {
		if app := d.apps[id]; app.JobPostID == jobPostID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (d *memDirectory) RejectApplication(_ context.Context, jobPostID, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	app, ok := d.apps[id]
	if !ok || app.JobPostID != jobPostID {
		return domain.ErrNotFound
	}
	app.Status = "rejected"
	d.apps[id] = app
	return nil
}

// memUnreadCache in-memory UnreadCache, 記錄命中次數
type memUnreadCache struct {
	mu     sync.Mutex
	values map[string]int64
	hits   int
}

func newMemUnreadCache() *memUnreadCache {
	return &memUnreadCache{values: make(map[string]int64)}
}

func (c *memUnreadCache) key(convID, userID string, marker, latest int64) string {
	return fmt.Sprintf("%s|%s|%d|%d", convID, userID, marker, latest)
}

func (c *memUnreadCache) Get(_ context.Context, convID, userID string, marker, latest int64) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.values[c.key(convID, userID, marker, latest)]
	if ok {
		c.hits++
	}
	return n, ok, nil
}

func (c *memUnreadCache) Set(_ context.Context, convID, userID string, marker, latest, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[c.key(convID, userID, marker, latest)] = count
	return nil
}

func (c *memUnreadCache) Invalidate(_ context.Context, convID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.values {
		if strings.HasPrefix(k, convID+"|") {
			delete(c.values, k)
		}
	}
	return nil
}

// memTranscriptStore in-memory TranscriptStore
type memTranscriptStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memTranscriptStore) Save(_ context.Context, key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = data
	return "http://minio.local/" + key, nil
}

// memLookup in-memory JobPostLookup
type memLookup struct {
	posts      []domain.JobPost
	applicants map[string][]domain.ApplicantSummary
}

func (l *memLookup) SearchJobPosts(_ context.Context, title string) ([]domain.JobPost, error) {
	out := make([]domain.JobPost, 0)
	for _, p := range l.posts {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(title)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (l *memLookup) ListApplicants(_ context.Context, jobPostID string) ([]domain.ApplicantSummary, error) {
	return l.applicants[jobPostID], nil
}

// testEnv wires the use cases over in-memory storage
type testEnv struct {
	convRepo    *memConversationRepo
	msgRepo     *memMessageRepo
	markers     *memMarkerRepo
	directory   *memDirectory
	unreadCache *memUnreadCache
	pubsub      *repository.LocalPubSub
	transcripts *memTranscriptStore
	lookup      *memLookup

	registry  *ConversationRegistry
	unread    *UnreadUseCase
	messages  *SendMessageUseCase
	broadcast *BroadcastUseCase
	history   *HistoryUseCase
}

func newTestEnv(apps ...domain.Application) *testEnv {
	env := &testEnv{
		convRepo:    newMemConversationRepo(),
		msgRepo:     newMemMessageRepo(),
		markers:     newMemMarkerRepo(),
		directory:   newMemDirectory(apps...),
		unreadCache: newMemUnreadCache(),
		pubsub:      repository.NewLocalPubSub(),
		transcripts: &memTranscriptStore{},
		lookup:      &memLookup{applicants: map[string][]domain.ApplicantSummary{}},
	}
	env.registry = NewConversationRegistry(env.convRepo, nil, env.directory)
	env.unread = NewUnreadUseCase(env.registry, env.convRepo, env.msgRepo, env.markers, env.unreadCache)
	env.messages = NewSendMessageUseCase(env.registry, env.msgRepo, env.markers, env.unread, env.pubsub, nil)
	env.broadcast = NewBroadcastUseCase(env.directory, env.registry, env.messages, 4)
	env.history = NewHistoryUseCase(env.registry, env.messages, env.msgRepo, env.lookup, nil, env.transcripts)
	return env
}

var (
	applicantA = domain.Identity{MemberID: "A", Role: "applicant"}
	employerB  = domain.Identity{MemberID: "B", Role: "employer"}
	operatorOp = domain.Identity{MemberID: "op", Role: "operator"}
	strangerC  = domain.Identity{MemberID: "C", Role: "applicant"}
)

// app42 A 應徵 B 的職缺
var app42 = domain.Application{ID: "app-42", JobPostID: "post-1", ApplicantID: "A", EmployerID: "B"}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}
