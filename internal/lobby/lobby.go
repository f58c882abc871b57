// Package lobby implements the Lobby Registry (spec §4.7): the single
// process-wide shared mutable structure holding every live Room. Grounded
// on the teacher's apps/server/internal/lobby Lobby (mutex-guarded table
// map, cleanupLoop ticker sweep), generalized from the teacher's "any
// table with a seat" QuickStart scan into a filter/sort/paginate List.
package lobby

import (
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/choeurtis18/MortPion/internal/apperr"
	"github.com/choeurtis18/MortPion/internal/room"
)

// CreateOptions carries the validated arguments for Create (spec §4.6
// Construction + §4.7 Host uniqueness).
type CreateOptions struct {
	Name      string
	Capacity  int
	IsPrivate bool
	CodeHash  []byte
	HostID    string
	HostName  string
}

// SortField selects what List orders results by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortName      SortField = "name"
	SortActivity  SortField = "activity"
)

// SortDir is ascending or descending.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// Filter narrows List's candidate set (spec §4.7 list(), generalized
// per the supplemented query parameters in the expanded interface).
type Filter struct {
	Query        string // case-insensitive substring of Name
	OnlyJoinable bool   // status=waiting, not full, not expired
	PrivateOnly  *bool  // nil = don't filter on privacy
}

// Page bounds a List call.
type Page struct {
	Offset int
	Limit  int
}

// Sort orders a List call.
type Sort struct {
	Field SortField
	Dir   SortDir
}

// ListResult is the page of rooms returned by List.
type ListResult struct {
	Items   []room.Summary
	Total   int
	HasMore bool
}

// Lobby is the process-wide room registry.
type Lobby struct {
	mu       sync.RWMutex
	rooms    map[string]*room.Room
	hostRoom map[string]string // hostID -> roomID, enforces host uniqueness

	opts     room.Options
	rng      *rand.Rand
	sweep    time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// New constructs a Lobby and starts its background TTL sweep (spec §4.7
// "Background sweep", default interval from config.CleanupSweep).
func New(opts room.Options, sweep time.Duration) *Lobby {
	l := &Lobby{
		rooms:    make(map[string]*room.Room),
		hostRoom: make(map[string]string),
		opts:     opts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sweep:    sweep,
		done:     make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Create validates arguments, enforces host uniqueness, and stores and
// starts a new Room (spec §4.7 create()).
func (l *Lobby) Create(opts CreateOptions, outbox room.Outbox) (*room.Room, string, error) {
	if opts.Capacity < 2 || opts.Capacity > 4 {
		return nil, "", apperr.New(apperr.InvalidInput, "capacity must be 2, 3 or 4")
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "Room"
	}
	if len(name) > 50 {
		name = name[:50]
	}

	l.mu.Lock()
	if _, busy := l.hostRoom[opts.HostID]; busy {
		l.mu.Unlock()
		return nil, "", apperr.ErrHostBusy
	}
	id := uuid.NewString()
	l.mu.Unlock()

	now := time.Now()
	r, hostSeatID := room.New(id, name, opts.Capacity, opts.IsPrivate, opts.CodeHash, opts.HostName, l.opts, outbox, l.rng, now, l.remove)

	l.mu.Lock()
	l.rooms[id] = r
	l.hostRoom[opts.HostID] = id
	l.mu.Unlock()

	return r, hostSeatID, nil
}

// Get returns the live Room for roomID, or nil.
func (l *Lobby) Get(roomID string) *room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rooms[roomID]
}

// List filters, sorts and paginates the current room set (spec §4.7
// list()).
func (l *Lobby) List(f Filter, s Sort, p Page) ListResult {
	l.mu.RLock()
	summaries := make([]room.Summary, 0, len(l.rooms))
	for _, r := range l.rooms {
		summaries = append(summaries, r.Summary())
	}
	l.mu.RUnlock()

	now := time.Now().UnixMilli()
	query := strings.ToLower(strings.TrimSpace(f.Query))
	filtered := summaries[:0]
	for _, item := range summaries {
		if f.OnlyJoinable {
			if item.Status != room.StatusWaiting || item.PlayerCount >= item.Capacity || item.ExpiresAt < now {
				continue
			}
		}
		if f.PrivateOnly != nil && item.IsPrivate != *f.PrivateOnly {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		filtered = append(filtered, item)
	}

	switch s.Field {
	case SortName:
		sort.Slice(filtered, func(i, j int) bool {
			if s.Dir == Desc {
				return filtered[i].Name > filtered[j].Name
			}
			return filtered[i].Name < filtered[j].Name
		})
	case SortActivity:
		sort.Slice(filtered, func(i, j int) bool {
			if s.Dir == Desc {
				return filtered[i].LastActivityAt > filtered[j].LastActivityAt
			}
			return filtered[i].LastActivityAt < filtered[j].LastActivityAt
		})
	default: // SortCreatedAt
		sort.Slice(filtered, func(i, j int) bool {
			if s.Dir == Desc {
				return filtered[i].CreatedAt > filtered[j].CreatedAt
			}
			return filtered[i].CreatedAt < filtered[j].CreatedAt
		})
	}

	total := len(filtered)
	offset := p.Offset
	if offset > total {
		offset = total
	}
	limit := p.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := append([]room.Summary{}, filtered[offset:end]...)

	return ListResult{
		Items:   page,
		Total:   total,
		HasMore: end < total,
	}
}

// Remove purges a room and its host index entry (spec §4.7 remove()).
func (l *Lobby) Remove(roomID string) {
	l.remove(roomID)
}

func (l *Lobby) remove(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, roomID)
	for hostID, id := range l.hostRoom {
		if id == roomID {
			delete(l.hostRoom, hostID)
		}
	}
}

func (l *Lobby) sweepLoop() {
	ticker := time.NewTicker(l.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweepExpired()
		case <-l.done:
			return
		}
	}
}

// sweepExpired evicts every room whose TTL has elapsed (spec §4.7
// "Background sweep").
func (l *Lobby) sweepExpired() int {
	now := time.Now().UnixMilli()

	l.mu.RLock()
	expired := make([]*room.Room, 0)
	for _, r := range l.rooms {
		if summary := r.Summary(); summary.ExpiresAt < now {
			log.Printf("[lobby] room %s expired %s, sweeping", summary.ID, humanize.Time(time.UnixMilli(summary.ExpiresAt)))
			expired = append(expired, r)
		}
	}
	l.mu.RUnlock()

	for _, r := range expired {
		r.Close()
	}
	if len(expired) > 0 {
		log.Printf("[lobby] swept %d expired room(s)", len(expired))
	}
	return len(expired)
}

// Stop shuts the background sweep down and closes every live room.
func (l *Lobby) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)

		l.mu.Lock()
		rooms := make([]*room.Room, 0, len(l.rooms))
		for _, r := range l.rooms {
			rooms = append(rooms, r)
		}
		l.rooms = make(map[string]*room.Room)
		l.hostRoom = make(map[string]string)
		l.mu.Unlock()

		for _, r := range rooms {
			r.Close()
		}
	})
}
