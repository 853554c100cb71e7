package session

import (
	"github.com/osa030/19room/internal/domain/room"
)

// snapshotFor builds the full state of the room as seen by viewerID.
// deviceID selects the device used for the position constraint; it defaults
// to the viewer's emitting device.
func (r *Room) snapshotFor(viewerID, deviceID string) *room.Snapshot {
	req := r.filterRequest(viewerID, deviceID)
	authority := r.authority()

	s := &room.Snapshot{
		RoomID:                        r.id,
		Name:                          r.settings.Name,
		CreatorUserID:                 r.perms.CreatorID(),
		Playing:                       r.clock.IsPlaying(),
		UsersLength:                   len(r.members),
		IsOpen:                        r.settings.IsOpen(),
		IsOpenOnlyInvitedUsersCanVote: r.settings.OnlyInvitedUsersCanVote,
		HasTimeAndPositionConstraints: r.settings.HasConstraints(),
		TimeConstraintIsValid:         r.gate.TimeWindowOpen(req),
		DelegationOwnerUserID:         r.perms.DelegationOwner(),
		MinimumScoreToBePlayed:        r.settings.MinimumScoreToBePlayed,
		PlayingMode:                   r.settings.PlayingMode,
		AudioAuthorityUserID:          authority,
		Phase:                         r.state.GetPhase().String(),
	}

	if cur, ok := r.clock.Current(); ok {
		s.CurrentTrack = &room.CurrentTrack{
			ID:         cur.Track.ID,
			Title:      cur.Track.Title,
			ArtistName: cur.Track.ArtistName(),
			DurationMs: cur.Track.Duration.Milliseconds(),
			ElapsedMs:  r.clock.Elapsed().Milliseconds(),
		}
	}

	queued := r.queue.Tracks()
	s.Tracks = make([]room.QueuedTrack, 0, len(queued))
	for _, qt := range queued {
		s.Tracks = append(s.Tracks, room.QueuedTrack{
			ID:         qt.Track.ID,
			Title:      qt.Track.Title,
			ArtistName: qt.Track.ArtistName(),
			DurationMs: qt.Track.Duration.Milliseconds(),
			Score:      qt.Score,
		})
	}

	if m, ok := r.members[viewerID]; ok {
		s.UserRelatedInformation = &room.UserRelatedInformation{
			UserID:                            viewerID,
			HasControlAndDelegationPermission: m.HasControlAndDelegationPermission,
			UserFitsPositionConstraint:        r.gate.FitsPosition(r.ctx, req),
			UserHasBeenInvited:                r.perms.IsInvited(viewerID),
			EmittingDeviceID:                  m.EmittingDeviceID,
			Emitting:                          r.elector.IsEmittingFor(r.settings.PlayingMode, viewerID, authority, m.EmittingDeviceID),
			TracksVotedFor:                    m.TracksVotedFor(),
		}
	}
	return s
}

// usersList returns the roster in join order.
func (r *Room) usersList() []room.UserSummary {
	owner := r.perms.DelegationOwner()
	out := make([]room.UserSummary, 0, len(r.order))
	for _, userID := range r.order {
		m := r.members[userID]
		devices := r.elector.Devices(userID)
		summaries := make([]room.DeviceSummary, 0, len(devices))
		for _, d := range devices {
			summaries = append(summaries, room.DeviceSummary{
				ID:        d.ID,
				Name:      d.Name,
				Connected: r.elector.IsConnected(d.ID),
				Emitting:  d.ID == m.EmittingDeviceID,
			})
		}
		out = append(out, room.UserSummary{
			UserID:                            userID,
			HasControlAndDelegationPermission: m.HasControlAndDelegationPermission,
			IsCreator:                         r.perms.IsCreator(userID),
			IsDelegationOwner:                 owner != "" && owner == userID,
			EmittingDeviceID:                  m.EmittingDeviceID,
			ConnectedDevices:                  r.elector.ConnectedCount(userID),
			Devices:                           summaries,
			JoinedAt:                          m.JoinedAt,
		})
	}
	return out
}

func (r *Room) constraintsFor(userID, deviceID string) *room.ConstraintsDetails {
	req := r.filterRequest(userID, deviceID)
	return &room.ConstraintsDetails{
		RoomID:                     r.id,
		TimeConstraint:             r.settings.TimeConstraint,
		PositionConstraint:         r.settings.PositionConstraint,
		TimeConstraintIsValid:      r.gate.TimeWindowOpen(req),
		UserFitsPositionConstraint: r.gate.FitsPosition(r.ctx, req),
	}
}
