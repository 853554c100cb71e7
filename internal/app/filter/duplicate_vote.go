package filter

import (
	"context"

	"github.com/osa030/19room/internal/domain/track"
)

// DuplicateVoteFilter rejects a second vote by the same member for the same track.
type DuplicateVoteFilter struct{}

func (f *DuplicateVoteFilter) Name() string {
	return "duplicate_vote_filter"
}

func (f *DuplicateVoteFilter) Description() string {
	return "Each member may vote once per queued track"
}

func (f *DuplicateVoteFilter) ReturnCodes() []string {
	return []string{CodeAlreadyVoted}
}

func (f *DuplicateVoteFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *DuplicateVoteFilter) AppliesTo(kind Kind) bool {
	return kind == KindVote
}

func (f *DuplicateVoteFilter) Check(ctx context.Context, req Request, t track.Track) Result {
	if req.Voter != nil && req.Voter.HasVotedFor(t.ID) {
		return Reject(CodeAlreadyVoted)
	}
	return Accept()
}
