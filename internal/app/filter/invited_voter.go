package filter

import (
	"context"

	"github.com/osa030/19room/internal/domain/track"
)

// InvitedVoterFilter restricts votes and suggestions to invited users
// when the room only lets invited users vote.
type InvitedVoterFilter struct{}

func (f *InvitedVoterFilter) Name() string {
	return "invited_voter_filter"
}

func (f *InvitedVoterFilter) Description() string {
	return "Only the creator and invited users may vote or suggest in invite-only voting rooms"
}

func (f *InvitedVoterFilter) ReturnCodes() []string {
	return []string{CodeNotInvited}
}

func (f *InvitedVoterFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *InvitedVoterFilter) AppliesTo(kind Kind) bool {
	return kind == KindVote || kind == KindSuggestion
}

func (f *InvitedVoterFilter) Check(ctx context.Context, req Request, t track.Track) Result {
	if !req.Settings.OnlyInvitedUsersCanVote || req.IsCreator || req.IsInvited {
		return Accept()
	}
	return Reject(CodeNotInvited)
}
