package emitting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/room"
)

func TestElector_FirstDeviceEmits(t *testing.T) {
	e := NewElector()

	require.Empty(t, e.Register("alice", device.Device{ID: "phone", Name: "Phone"}))
	require.Empty(t, e.Register("alice", device.Device{ID: "laptop", Name: "Laptop"}))

	assert.Equal(t, "phone", e.EmittingDevice("alice"))
	assert.Equal(t, 2, e.ConnectedCount("alice"))

	devices := e.Devices("alice")
	require.Len(t, devices, 2)
	assert.Equal(t, "alice", devices[1].OwnerUserID)
}

func TestElector_RegisterForeignDevice(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "phone"})

	assert.Equal(t, CodeDeviceNotOwned, e.Register("bob", device.Device{ID: "phone"}))
	assert.Equal(t, "alice", e.Owner("phone"))
}

func TestElector_Change(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "d1"})
	e.Register("alice", device.Device{ID: "d2"})
	e.Register("bob", device.Device{ID: "b1"})

	previous, code := e.Change("alice", "d2")
	assert.Empty(t, code)
	assert.Equal(t, "d1", previous)
	assert.Equal(t, "d2", e.EmittingDevice("alice"))

	_, code = e.Change("alice", "b1")
	assert.Equal(t, CodeDeviceNotOwned, code)
	assert.Equal(t, "d2", e.EmittingDevice("alice"))

	_, code = e.Change("alice", "missing")
	assert.Equal(t, CodeUnknownDevice, code)
}

func TestElector_ExactlyOneEmittingPerUser(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "d1"})
	e.Register("alice", device.Device{ID: "d2"})
	e.Register("alice", device.Device{ID: "d3"})

	for _, target := range []string{"d2", "d3", "d1", "d2"} {
		e.Change("alice", target)

		emitting := 0
		for _, d := range e.Devices("alice") {
			if e.IsEmittingFor(room.PlayingModeDirect, "alice", "", d.ID) {
				emitting++
			}
		}
		assert.Equal(t, 1, emitting)
	}
}

func TestElector_ConnectDisconnect(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "d1"})

	assert.Empty(t, e.Disconnect("alice", "d1"))
	assert.Equal(t, 0, e.ConnectedCount("alice"))
	assert.False(t, e.IsConnected("d1"))
	assert.Equal(t, "d1", e.EmittingDevice("alice"), "emitting flag survives disconnection")

	// Registering again reconnects
	assert.Empty(t, e.Register("alice", device.Device{ID: "d1", Name: "Phone"}))
	assert.True(t, e.IsConnected("d1"))
	assert.Len(t, e.Devices("alice"), 1)
	assert.Equal(t, "Phone", e.Devices("alice")[0].Name)

	assert.Equal(t, CodeDeviceNotOwned, e.Disconnect("bob", "d1"))
	assert.Equal(t, CodeUnknownDevice, e.Disconnect("alice", "nope"))
}

func TestElector_Authority(t *testing.T) {
	e := NewElector()

	assert.Equal(t, "alice", e.Authority(room.PlayingModeBroadcast, "alice", ""))
	assert.Equal(t, "bob", e.Authority(room.PlayingModeBroadcast, "alice", "bob"))
	assert.Empty(t, e.Authority(room.PlayingModeDirect, "alice", "bob"))
}

func TestElector_IsEmittingFor(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "a1"})
	e.Register("alice", device.Device{ID: "a2"})
	e.Register("bob", device.Device{ID: "b1"})

	tests := []struct {
		name      string
		mode      room.PlayingMode
		viewer    string
		authority string
		deviceID  string
		want      bool
	}{
		{"broadcast authority device", room.PlayingModeBroadcast, "bob", "alice", "a1", true},
		{"broadcast authority muted device", room.PlayingModeBroadcast, "bob", "alice", "a2", false},
		{"broadcast non authority", room.PlayingModeBroadcast, "bob", "alice", "b1", false},
		{"direct own device", room.PlayingModeDirect, "bob", "", "b1", true},
		{"direct other member", room.PlayingModeDirect, "bob", "", "a1", false},
		{"direct viewed by owner", room.PlayingModeDirect, "alice", "", "a1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IsEmittingFor(tt.mode, tt.viewer, tt.authority, tt.deviceID))
		})
	}
}

func TestElector_ChangeKeepsRoomAuthority(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "d1"})
	e.Register("alice", device.Device{ID: "d2"})
	e.Register("bob", device.Device{ID: "b1"})

	authority := e.Authority(room.PlayingModeBroadcast, "alice", "")
	e.Change("alice", "d2")

	assert.Equal(t, "alice", e.Authority(room.PlayingModeBroadcast, "alice", ""))
	assert.False(t, e.IsEmittingFor(room.PlayingModeBroadcast, "bob", authority, "d1"))
	assert.True(t, e.IsEmittingFor(room.PlayingModeBroadcast, "bob", authority, "d2"))
}

func TestElector_Reelect(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(e *Elector)
		candidates []string
		want       string
		wantOK     bool
	}{
		{
			name:       "connected creator",
			setup:      func(e *Elector) {},
			candidates: []string{"bob"},
			want:       "alice",
			wantOK:     true,
		},
		{
			name:       "creator keeps authority while disconnected",
			setup:      func(e *Elector) { e.Disconnect("alice", "a1") },
			candidates: []string{"alice", "bob"},
			want:       "alice",
			wantOK:     true,
		},
		{
			name: "without creator a connected candidate goes first",
			setup: func(e *Elector) {
				e.RemoveUser("alice")
				e.Disconnect("bob", "b1")
			},
			candidates: []string{"bob", "carol"},
			want:       "carol",
			wantOK:     true,
		},
		{
			name: "without creator a disconnected candidate is kept",
			setup: func(e *Elector) {
				e.RemoveUser("alice")
				e.Disconnect("bob", "b1")
			},
			candidates: []string{"bob"},
			want:       "bob",
			wantOK:     true,
		},
		{
			name:       "nobody qualifies",
			setup:      func(e *Elector) { e.RemoveUser("alice") },
			candidates: []string{"dave"},
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewElector()
			e.Register("alice", device.Device{ID: "a1"})
			e.Register("bob", device.Device{ID: "b1"})
			e.Register("carol", device.Device{ID: "c1"})
			tt.setup(e)

			got, ok := e.Reelect("alice", tt.candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElector_RemoveUser(t *testing.T) {
	e := NewElector()
	e.Register("alice", device.Device{ID: "a1"})
	e.RemoveUser("alice")

	assert.Empty(t, e.EmittingDevice("alice"))
	assert.Empty(t, e.Devices("alice"))
	assert.Empty(t, e.Owner("a1"))

	// The device may now be registered by someone else
	assert.Empty(t, e.Register("bob", device.Device{ID: "a1"}))
}
