package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/timetable-solver/internal/calendar"
	"github.com/noah-isme/timetable-solver/internal/domain"
)

// inMemoryProposalCache is the zero-dependency fallback used when no Redis
// client is wired (tests, single-instance deployments). Mirrors the
// teacher's original in-memory `proposalStore` (TTL on read, not a
// background sweep).
type inMemoryProposalCache struct {
	mu    sync.RWMutex
	items map[string]inMemoryProposalEntry
}

type inMemoryProposalEntry struct {
	proposal scheduleProposal
	expires  time.Time
}

func newInMemoryProposalCache() *inMemoryProposalCache {
	return &inMemoryProposalCache{items: make(map[string]inMemoryProposalEntry)}
}

func (c *inMemoryProposalCache) Save(_ context.Context, proposal scheduleProposal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[proposal.ProposalID] = inMemoryProposalEntry{proposal: proposal, expires: time.Now().Add(ttl)}
	return nil
}

func (c *inMemoryProposalCache) Get(_ context.Context, id string) (scheduleProposal, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return scheduleProposal{}, false, nil
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.items, id)
		c.mu.Unlock()
		return scheduleProposal{}, false, nil
	}
	return entry.proposal, true, nil
}

func (c *inMemoryProposalCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
	return nil
}

// inMemoryRunLocker is the single-process fallback run lock.
type inMemoryRunLocker struct {
	mu      sync.Mutex
	holders map[string]time.Time
}

func newInMemoryRunLocker() *inMemoryRunLocker {
	return &inMemoryRunLocker{holders: make(map[string]time.Time)}
}

func (l *inMemoryRunLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, held := l.holders[key]; held && time.Now().Before(expiry) {
		return false, nil
	}
	l.holders[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *inMemoryRunLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.holders, key)
	l.mu.Unlock()
	return nil
}

// redisAssignment is the Redis-serializable projection of domain.Assignment
// stored by redisProposalCache; domain.Assignment itself carries no JSON
// tags since the solver package has no wire-format concerns.
type redisAssignment struct {
	CourseID       int    `json:"courseId"`
	CourseCode     string `json:"courseCode"`
	CourseName     string `json:"courseName"`
	SessionType    string `json:"sessionType"`
	DurationBlocks int    `json:"durationBlocks"`
	GroupID        int    `json:"groupId"`
	GroupNumber    int    `json:"groupNumber"`
	SectionID      int    `json:"sectionId"`
	SectionNumber  int    `json:"sectionNumber"`
	HasSection     bool   `json:"hasSection"`

	Day        int `json:"day"`
	StartBlock int `json:"startBlock"`
	EndBlock   int `json:"endBlock"`

	RoomID       int    `json:"roomId"`
	RoomNumber   string `json:"roomNumber"`
	BuildingName string `json:"buildingName"`

	InstructorID   int    `json:"instructorId"`
	InstructorName string `json:"instructorName"`
	HasInstructor  bool   `json:"hasInstructor"`

	TAID   int    `json:"taId"`
	TAName string `json:"taName"`
	HasTA  bool   `json:"hasTa"`
}

type redisProposal struct {
	ProposalID  string            `json:"proposalId"`
	Assignments []redisAssignment `json:"assignments"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// redisProposalCache is the distributed proposal store: any API replica
// that generated a proposal stores it here so a Save call landing on a
// different replica can still find it (spec §4 step 6).
type redisProposalCache struct {
	client *redis.Client
	prefix string
}

// NewRedisProposalCache builds a proposalCache backed by client.
func NewRedisProposalCache(client *redis.Client) *redisProposalCache {
	return &redisProposalCache{client: client, prefix: "timetable:proposal:"}
}

func (c *redisProposalCache) Save(ctx context.Context, proposal scheduleProposal, ttl time.Duration) error {
	payload := toRedisProposal(proposal)
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+proposal.ProposalID, data, ttl).Err()
}

func (c *redisProposalCache) Get(ctx context.Context, id string) (scheduleProposal, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err == redis.Nil {
		return scheduleProposal{}, false, nil
	}
	if err != nil {
		return scheduleProposal{}, false, err
	}
	var payload redisProposal
	if err := json.Unmarshal(data, &payload); err != nil {
		return scheduleProposal{}, false, err
	}
	return fromRedisProposal(payload), true, nil
}

func (c *redisProposalCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.prefix+id).Err()
}

// redisRunLocker serializes generation runs across every API replica using
// Redis SETNX, the standard distributed-lock idiom.
type redisRunLocker struct {
	client *redis.Client
}

// NewRedisRunLocker builds a runLocker backed by client.
func NewRedisRunLocker(client *redis.Client) *redisRunLocker {
	return &redisRunLocker{client: client}
}

func (l *redisRunLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, "1", ttl).Result()
}

func (l *redisRunLocker) Unlock(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

func toRedisProposal(p scheduleProposal) redisProposal {
	out := redisProposal{ProposalID: p.ProposalID, GeneratedAt: p.GeneratedAt, Assignments: make([]redisAssignment, len(p.Assignments))}
	for i, a := range p.Assignments {
		out.Assignments[i] = redisAssignment{
			CourseID:       a.Variable.CourseID,
			CourseCode:     a.Variable.CourseCode,
			CourseName:     a.Variable.CourseName,
			SessionType:    string(a.Variable.SessionType),
			DurationBlocks: a.Variable.DurationBlocks,
			GroupID:        a.Variable.GroupID,
			GroupNumber:    a.Variable.GroupNumber,
			SectionID:      a.Variable.SectionID,
			SectionNumber:  a.Variable.SectionNumber,
			HasSection:     a.Variable.HasSection,
			Day:            int(a.Day),
			StartBlock:     a.StartBlock,
			EndBlock:       a.EndBlock,
			RoomID:         a.RoomID,
			RoomNumber:     a.RoomNumber,
			BuildingName:   a.BuildingName,
			InstructorID:   a.InstructorID,
			InstructorName: a.InstructorName,
			HasInstructor:  a.HasInstructor,
			TAID:           a.TAID,
			TAName:         a.TAName,
			HasTA:          a.HasTA,
		}
	}
	return out
}

func fromRedisProposal(p redisProposal) scheduleProposal {
	out := scheduleProposal{ProposalID: p.ProposalID, GeneratedAt: p.GeneratedAt, Assignments: make([]domain.Assignment, len(p.Assignments))}
	for i, a := range p.Assignments {
		out.Assignments[i] = domain.Assignment{
			Variable: domain.SessionVariable{
				CourseID:       a.CourseID,
				CourseCode:     a.CourseCode,
				CourseName:     a.CourseName,
				SessionType:    domain.SessionType(a.SessionType),
				DurationBlocks: a.DurationBlocks,
				GroupID:        a.GroupID,
				GroupNumber:    a.GroupNumber,
				SectionID:      a.SectionID,
				SectionNumber:  a.SectionNumber,
				HasSection:     a.HasSection,
			},
			Day:            calendar.Day(a.Day),
			StartBlock:     a.StartBlock,
			EndBlock:       a.EndBlock,
			RoomID:         a.RoomID,
			RoomNumber:     a.RoomNumber,
			BuildingName:   a.BuildingName,
			InstructorID:   a.InstructorID,
			InstructorName: a.InstructorName,
			HasInstructor:  a.HasInstructor,
			TAID:           a.TAID,
			TAName:         a.TAName,
			HasTA:          a.HasTA,
		}
	}
	return out
}
