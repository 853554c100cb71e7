package session

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/19room/internal/app/emitting"
	"github.com/osa030/19room/internal/app/filter"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/app/playback"
	"github.com/osa030/19room/internal/app/voting"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
)

func (r *Room) handleJoin(c Join) Result {
	_, reconnecting := r.members[c.UserID]
	if reason := r.joinRejection(c.UserID, c.Device.ID); reason != "" {
		return rejected(reason)
	}

	now := r.now()
	m, ok := r.members[c.UserID]
	if !ok {
		m = r.addMember(c.UserID, now)
		r.log.Info().Msgf("member joined: user_id=%s device_id=%s", c.UserID, c.Device.ID)
	}
	m.Touch(now)
	r.elector.Register(c.UserID, c.Device)
	r.syncMember(c.UserID)

	if !reconnecting {
		r.broadcast()
	}
	return withSnapshot(r.snapshotFor(c.UserID, c.Device.ID))
}

func (r *Room) handleCheckJoin(c CheckJoin) Result {
	if reason := r.joinRejection(c.UserID, c.DeviceID); reason != "" {
		return rejected(reason)
	}
	return ok()
}

// joinRejection returns why userID may not join with deviceID, or "".
func (r *Room) joinRejection(userID, deviceID string) string {
	if !r.perms.CanJoin(userID, r.IsMember(userID)) {
		return ReasonJoinForbidden
	}
	if owner := r.elector.Owner(deviceID); owner != "" && owner != userID {
		return emitting.CodeDeviceNotOwned
	}
	return ""
}

func (r *Room) handleLeave(c Leave) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}

	if r.perms.IsCreator(c.UserID) {
		r.teardown(ReasonCreatorLeft, c.UserID)
		return ok()
	}

	wasAuthority := r.authority() == c.UserID
	r.removeMember(c.UserID)
	r.log.Info().Msgf("member left: user_id=%s was_authority=%t", c.UserID, wasAuthority)

	if !r.ensureAuthority() {
		return ok()
	}
	r.broadcast()
	return ok()
}

func (r *Room) handleGetContext(c GetContext) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	return withSnapshot(r.snapshotFor(c.UserID, c.DeviceID))
}

func (r *Room) handlePlay(c Play) Result {
	if res, allowed := r.requireControl(c.UserID); !allowed {
		return res
	}

	switch r.clock.State() {
	case playback.StatePlaying:
		return rejected(ReasonAlreadyPlaying)
	case playback.StateIdle:
		if !r.queue.HasEligible(r.settings.MinimumScoreToBePlayed) {
			return rejected(ReasonNoEligibleTrack)
		}
		r.promote(false)
	}

	ev, err := r.clock.Play()
	if err != nil {
		return rejected(ReasonInternal)
	}
	r.logEvent(ev)
	r.log.Info().Msgf("playback started: user_id=%s", c.UserID)
	r.broadcast()
	return ok()
}

func (r *Room) handlePause(c Pause) Result {
	if res, allowed := r.requireControl(c.UserID); !allowed {
		return res
	}
	ev, err := r.clock.Pause()
	if err != nil {
		if errors.Is(err, playback.ErrNotPlaying) || errors.Is(err, playback.ErrNoTrack) {
			return rejected(ReasonNotPlaying)
		}
		return rejected(ReasonInternal)
	}
	r.logEvent(ev)
	r.log.Info().Msgf("playback paused: user_id=%s elapsed=%v", c.UserID, r.clock.Elapsed())
	r.broadcast()
	return ok()
}

func (r *Room) handleNextTrack(c NextTrack) Result {
	if res, allowed := r.requireControl(c.UserID); !allowed {
		return res
	}
	if !r.promote(false) {
		return rejected(ReasonNoEligibleTrack)
	}
	r.maybeRefill()
	r.broadcast()
	return ok()
}

func (r *Room) handleVote(c Vote) Result {
	m, isMember := r.members[c.UserID]
	if !isMember {
		return rejected(ReasonNotMember)
	}
	qt, queued := r.queue.Get(c.TrackID)
	if !queued {
		return rejected(voting.CodeTrackNotFound)
	}

	req := r.filterRequest(c.UserID, c.DeviceID)
	if res := r.gate.Check(r.ctx, req, qt.Track); !res.Accepted {
		return rejected(res.Code)
	}

	score, code := r.queue.Vote(m, c.TrackID)
	if code != "" {
		return rejected(code)
	}
	m.Touch(r.now())
	r.log.Debug().Msgf("vote recorded: user_id=%s track_id=%s score=%d", c.UserID, c.TrackID, score)

	r.broadcast()
	return ok()
}

func (r *Room) handleSuggest(c Suggest) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}

	outcome := &SuggestionOutcome{}
	for _, id := range c.Missing {
		outcome.Rejected = append(outcome.Rejected, TrackRejection{TrackID: id, Code: voting.CodeTrackNotFound})
	}

	req := r.filterRequest(c.UserID, c.DeviceID)
	for _, p := range r.queue.Propose(c.Tracks, c.UserID) {
		if p.Duplicate {
			r.queue.Discard(p)
			outcome.Rejected = append(outcome.Rejected, TrackRejection{TrackID: p.Track.ID, Code: filter.CodeDuplicateTrack})
			continue
		}
		res := r.suggestions.Execute(r.ctx, req, p.Track, filter.KindSuggestion)
		if !res.Accepted {
			r.queue.Discard(p)
			outcome.Rejected = append(outcome.Rejected, TrackRejection{TrackID: p.Track.ID, Code: res.Code})
			continue
		}
		if !r.queue.Commit(p) {
			outcome.Rejected = append(outcome.Rejected, TrackRejection{TrackID: p.Track.ID, Code: filter.CodeDuplicateTrack})
			continue
		}
		outcome.Accepted = append(outcome.Accepted, p.Track.ID)
	}

	r.log.Info().Msgf("tracks suggested: user_id=%s accepted=%d rejected=%d", c.UserID, len(outcome.Accepted), len(outcome.Rejected))

	if len(outcome.Accepted) == 0 {
		reason := outcome.FirstCode()
		if reason == "" {
			reason = ReasonNoTracks
		}
		res := rejected(reason)
		res.Suggestion = outcome
		return res
	}

	r.broadcast()
	res := ok()
	res.Suggestion = outcome
	return res
}

func (r *Room) handleRemoveTrack(c RemoveTrack) Result {
	if res, allowed := r.requireControl(c.UserID); !allowed {
		return res
	}
	if _, removed := r.queue.Remove(c.TrackID); !removed {
		return rejected(voting.CodeTrackNotFound)
	}
	for _, m := range r.members {
		m.ForgetTrack(c.TrackID)
	}
	r.maybeRefill()
	r.broadcast()
	return ok()
}

func (r *Room) handleChangeEmittingDevice(c ChangeEmittingDevice) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	previous, code := r.elector.Change(c.UserID, c.DeviceID)
	if code != "" {
		return rejected(code)
	}
	r.syncMember(c.UserID)
	r.log.Info().Msgf("emitting device changed: user_id=%s from=%s to=%s", c.UserID, previous, c.DeviceID)

	if r.authority() == c.UserID {
		r.broadcast()
	} else {
		r.publishTo(c.UserID)
	}
	return withSnapshot(r.snapshotFor(c.UserID, c.DeviceID))
}

func (r *Room) handleInviteUser(c InviteUser) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	if code := r.perms.Invite(c.UserID, c.InviteeID); code != "" {
		return rejected(code)
	}
	r.log.Info().Msgf("user invited: inviter=%s invitee=%s", c.UserID, c.InviteeID)

	r.publisher.Publish(c.InviteeID, notification.Invited(notification.Invitation{
		RoomID:        r.id,
		RoomName:      r.settings.Name,
		InviterUserID: c.UserID,
	}))
	r.broadcast()
	return ok()
}

func (r *Room) handleUpdatePermission(c UpdatePermission) Result {
	if code := r.perms.UpdatePermission(c.UserID, c.TargetID, c.Granted); code != "" {
		return rejected(code)
	}
	r.syncMember(c.TargetID)
	r.log.Info().Msgf("permission updated: target=%s granted=%t", c.TargetID, c.Granted)
	r.broadcast()
	return ok()
}

func (r *Room) handleUpdateDelegationOwner(c UpdateDelegationOwner) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	// In BROADCAST mode the owner takes audio authority and needs a connected device
	if r.settings.PlayingMode == room.PlayingModeBroadcast && r.perms.HasControl(c.UserID) &&
		r.IsMember(c.TargetID) && r.elector.ConnectedCount(c.TargetID) == 0 {
		return rejected(ReasonTargetOffline)
	}
	if code := r.perms.SetDelegationOwner(c.UserID, c.TargetID); code != "" {
		return rejected(code)
	}
	r.log.Info().Msgf("delegation owner updated: by=%s owner=%s", c.UserID, c.TargetID)
	r.broadcast()
	return ok()
}

func (r *Room) handleGetUsersList(c GetUsersList) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	res := ok()
	res.Users = r.usersList()
	return res
}

func (r *Room) handleGetConstraintsDetails(c GetConstraintsDetails) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	res := ok()
	res.Constraints = r.constraintsFor(c.UserID, c.DeviceID)
	return res
}

func (r *Room) handleDeviceConnected(c DeviceConnected) Result {
	m, isMember := r.members[c.UserID]
	if !isMember {
		return rejected(ReasonNotMember)
	}
	if code := r.elector.Register(c.UserID, c.Device); code != "" {
		return rejected(code)
	}
	m.Touch(r.now())
	r.syncMember(c.UserID)
	return withSnapshot(r.snapshotFor(c.UserID, c.Device.ID))
}

func (r *Room) handleDeviceDisconnected(c DeviceDisconnected) Result {
	if !r.IsMember(c.UserID) {
		return rejected(ReasonNotMember)
	}
	if code := r.elector.Disconnect(c.UserID, c.DeviceID); code != "" {
		return rejected(code)
	}

	before := r.authority()
	if before != c.UserID || r.elector.ConnectedCount(c.UserID) > 0 {
		return ok()
	}
	if !r.ensureAuthority() {
		return ok()
	}
	if r.authority() != before {
		r.broadcast()
	}
	return ok()
}

func (r *Room) handleRefill(c Refill) Result {
	r.refilling = false
	if c.Err != nil {
		r.log.Warn().Err(c.Err).Msg("fallback refill failed")
		return rejected(ReasonNoTracks)
	}
	if r.queue.Len() > 0 {
		r.log.Debug().Msg("skipping fallback refill: queue is no longer empty")
		return ok()
	}

	req := filter.Request{Settings: r.settings}
	accepted := make([]track.Track, 0, len(c.Candidates))
	for _, t := range c.Candidates {
		res := r.fallback.Execute(r.ctx, req, t, filter.KindFallback)
		if !res.Accepted {
			r.log.Debug().Msgf("fallback candidate rejected: track_id=%s reason=%s", t.ID, res.Code)
			continue
		}
		accepted = append(accepted, t)
	}
	if len(accepted) == 0 {
		return rejected(ReasonNoTracks)
	}

	r.queue.Seed(accepted, track.OriginFallback)
	r.log.Info().Msgf("queue refilled: count=%d", len(accepted))
	r.broadcast()
	return ok()
}

// handleTick advances playback when the current track ended.
func (r *Room) handleTick() Result {
	if r.clock.Due() {
		ended := r.clock.End()
		r.log.Info().Msgf("track ended: track_id=%s", ended.Track.Track.ID)
		r.promote(true)
		r.broadcast()
	}
	r.maybeRefill()
	return ok()
}

func (r *Room) handleTerminate(c Terminate) Result {
	reason := c.Reason
	if reason == "" {
		reason = ReasonAdminTerminate
	}
	r.teardown(reason, "")
	return ok()
}

// requireControl checks membership and control authority.
func (r *Room) requireControl(userID string) (Result, bool) {
	if !r.IsMember(userID) {
		return rejected(ReasonNotMember), false
	}
	if !r.perms.HasControl(userID) {
		return rejected(ReasonNoControl), false
	}
	return Result{}, true
}

// filterRequest describes userID for the filter chains. The device defaults
// to the member's emitting device when absent or not owned by the member.
func (r *Room) filterRequest(userID, deviceID string) filter.Request {
	if deviceID == "" || r.elector.Owner(deviceID) != userID {
		deviceID = r.elector.EmittingDevice(userID)
	}
	return filter.Request{
		UserID:    userID,
		DeviceID:  deviceID,
		Settings:  r.settings,
		IsCreator: r.perms.IsCreator(userID),
		IsInvited: r.perms.IsInvited(userID),
		Voter:     r.members[userID],
	}
}
