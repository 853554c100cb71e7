// Package voting provides the scored candidate queue of a room.
package voting

import (
	"sort"
	"time"

	"github.com/osa030/19room/internal/domain/track"
)

// Rejection codes returned by the queue.
const (
	CodeTrackNotFound = "track_not_found"
	CodeAlreadyVoted  = "already_voted"
	CodeDuplicate     = "duplicate_track"
)

// VoteLedger records which tracks a voter already voted for.
// Implemented by *member.Member.
type VoteLedger interface {
	HasVotedFor(trackID string) bool
	RecordVote(trackID string) bool
}

// Proposal is a tentatively added track awaiting acceptance.
type Proposal struct {
	Track       track.Track
	SuggestedBy string
	Duplicate   bool // Already queued, or proposed earlier in the same batch

	seq  uint64
	done bool
}

// Queue holds the candidate tracks of a room, ordered by score.
// It is owned by a single room actor and is not safe for concurrent use.
type Queue struct {
	tracks  []track.QueuedTrack
	nextSeq uint64
	now     func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue(now func() time.Time) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{
		tracks: make([]track.QueuedTrack, 0),
		now:    now,
	}
}

// Seed appends tracks at score 0 without the proposal step.
func (q *Queue) Seed(tracks []track.Track, origin track.Origin) {
	for _, t := range tracks {
		if q.Contains(t.ID) {
			continue
		}
		q.tracks = append(q.tracks, track.QueuedTrack{
			Track:   t,
			Origin:  origin,
			Seq:     q.allocSeq(),
			AddedAt: q.now(),
		})
	}
	q.reorder()
}

// Vote adds one point to the track on behalf of the ledger's owner.
// Returns the new score, or a rejection code with the score unchanged.
func (q *Queue) Vote(ledger VoteLedger, trackID string) (int, string) {
	idx := q.indexOf(trackID)
	if idx < 0 {
		return 0, CodeTrackNotFound
	}
	if !ledger.RecordVote(trackID) {
		return q.tracks[idx].Score, CodeAlreadyVoted
	}
	q.tracks[idx].Score++
	score := q.tracks[idx].Score
	q.reorder()
	return score, ""
}

// Propose stages tracks at score 0. Staged tracks are invisible until committed.
func (q *Queue) Propose(tracks []track.Track, suggestedBy string) []*Proposal {
	seen := make(map[string]bool, len(tracks))
	proposals := make([]*Proposal, 0, len(tracks))
	for _, t := range tracks {
		proposals = append(proposals, &Proposal{
			Track:       t,
			SuggestedBy: suggestedBy,
			Duplicate:   seen[t.ID] || q.Contains(t.ID),
			seq:         q.allocSeq(),
		})
		seen[t.ID] = true
	}
	return proposals
}

// Commit adds an accepted proposal to the queue.
// Returns false if the proposal was already finished or is a duplicate.
func (q *Queue) Commit(p *Proposal) bool {
	if p.done || p.Duplicate || q.Contains(p.Track.ID) {
		p.done = true
		return false
	}
	p.done = true
	q.tracks = append(q.tracks, track.QueuedTrack{
		Track:       p.Track,
		SuggestedBy: p.SuggestedBy,
		Origin:      track.OriginSuggestion,
		Seq:         p.seq,
		AddedAt:     q.now(),
	})
	q.reorder()
	return true
}

// Discard drops a rejected proposal.
func (q *Queue) Discard(p *Proposal) {
	p.done = true
}

// PopEligible removes and returns the best track whose score reaches minimumScore.
func (q *Queue) PopEligible(minimumScore int) (track.QueuedTrack, bool) {
	for i, qt := range q.tracks {
		if qt.IsEligible(minimumScore) {
			q.tracks = append(q.tracks[:i], q.tracks[i+1:]...)
			return qt, true
		}
	}
	return track.QueuedTrack{}, false
}

// HasEligible reports whether any track reaches minimumScore.
func (q *Queue) HasEligible(minimumScore int) bool {
	for _, qt := range q.tracks {
		if qt.IsEligible(minimumScore) {
			return true
		}
	}
	return false
}

// Remove deletes a track from the queue.
func (q *Queue) Remove(trackID string) (track.QueuedTrack, bool) {
	idx := q.indexOf(trackID)
	if idx < 0 {
		return track.QueuedTrack{}, false
	}
	removed := q.tracks[idx]
	q.tracks = append(q.tracks[:idx], q.tracks[idx+1:]...)
	return removed, true
}

// Get returns a queued track by ID.
func (q *Queue) Get(trackID string) (track.QueuedTrack, bool) {
	idx := q.indexOf(trackID)
	if idx < 0 {
		return track.QueuedTrack{}, false
	}
	return q.tracks[idx], true
}

// Contains reports whether the track is queued.
func (q *Queue) Contains(trackID string) bool {
	return q.indexOf(trackID) >= 0
}

// Tracks returns a copy of the queue in play order.
func (q *Queue) Tracks() []track.QueuedTrack {
	out := make([]track.QueuedTrack, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// IDs returns the queued track IDs in play order.
func (q *Queue) IDs() []string {
	ids := make([]string, len(q.tracks))
	for i, qt := range q.tracks {
		ids[i] = qt.Track.ID
	}
	return ids
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// reorder sorts by score descending; equal scores keep suggestion order.
func (q *Queue) reorder() {
	sort.SliceStable(q.tracks, func(i, j int) bool {
		if q.tracks[i].Score != q.tracks[j].Score {
			return q.tracks[i].Score > q.tracks[j].Score
		}
		return q.tracks[i].Seq < q.tracks[j].Seq
	})
}

func (q *Queue) indexOf(trackID string) int {
	for i, qt := range q.tracks {
		if qt.Track.ID == trackID {
			return i
		}
	}
	return -1
}

func (q *Queue) allocSeq() uint64 {
	q.nextSeq++
	return q.nextSeq
}
