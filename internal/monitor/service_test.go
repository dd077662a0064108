// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/zurgmon/internal/zurg"
)

type fakeClient struct {
	connected bool

	total    int
	totalErr error

	broken         []zurg.Torrent
	brokenErr      error
	underRepair    []zurg.Torrent
	underRepairErr error

	triggerErr error

	fetchCalls int
	triggered  []string
}

func (f *fakeClient) TestConnection(_ context.Context) bool {
	return f.connected
}

func (f *fakeClient) TorrentsByState(_ context.Context, state zurg.TorrentState) ([]zurg.Torrent, error) {
	f.fetchCalls++
	if state == zurg.StateBroken {
		return f.broken, f.brokenErr
	}
	return f.underRepair, f.underRepairErr
}

func (f *fakeClient) TotalTorrents(_ context.Context) (int, error) {
	return f.total, f.totalErr
}

func (f *fakeClient) TriggerRepair(_ context.Context, hash string) error {
	f.triggered = append(f.triggered, hash)
	return f.triggerErr
}

func newTestService(client *fakeClient, cfg Config) *Service {
	svc := NewService(cfg, client)
	svc.sleep = func(time.Duration) {}
	return svc
}

func TestRunOnceProbeFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connected: false}
	svc := newTestService(client, Config{})

	assert.Equal(t, 1, svc.RunOnce(context.Background()))
	assert.Zero(t, client.fetchCalls, "no cycle should run after a failed probe")
}

func TestRunOnceHealthyCycle(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connected: true, total: 12}
	svc := newTestService(client, Config{})

	assert.Equal(t, 0, svc.RunOnce(context.Background()))
	assert.Empty(t, client.triggered, "healthy cycle must not trigger repairs")

	snapshot := svc.Stats().Snapshot()
	assert.Equal(t, 1, snapshot.TotalChecks)
	assert.Equal(t, 12, snapshot.Current.TotalTorrents)
	assert.Equal(t, 12, snapshot.Current.OKTorrents)

	previous := svc.Stats().Previous()
	assert.Empty(t, previous.Triggered)
}

func TestPerformCheckTriggersBrokenAndUnderRepair(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		connected: true,
		total:     5,
		broken: []zurg.Torrent{
			fakeTorrent("a", "Broken.A", zurg.StateBroken),
		},
		underRepair: []zurg.Torrent{
			fakeTorrent("b", "Repairing.B", zurg.StateUnderRepair),
			fakeTorrent("c", "Repairing.C", zurg.StateUnderRepair),
		},
	}
	svc := newTestService(client, Config{})

	var pauses int
	svc.sleep = func(time.Duration) { pauses++ }

	svc.performCheck(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, client.triggered)
	assert.Equal(t, 3, pauses, "each trigger is followed by a pause")

	snapshot := svc.Stats().Snapshot()
	assert.Equal(t, 3, snapshot.RepairsTriggered)
	assert.Equal(t, 3, snapshot.Current.RepairsTriggered)

	previous := svc.Stats().Previous()
	assert.Equal(t, []string{"a"}, previous.Broken)
	assert.Equal(t, []string{"b", "c"}, previous.UnderRepair)
	assert.Equal(t, []string{"a", "b", "c"}, previous.Triggered)
}

func TestPerformCheckPartialFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		connected: true,
		brokenErr: errors.New("listing unavailable"),
		underRepair: []zurg.Torrent{
			fakeTorrent("b", "Repairing.B", zurg.StateUnderRepair),
			fakeTorrent("c", "Repairing.C", zurg.StateUnderRepair),
		},
	}
	svc := newTestService(client, Config{})

	svc.performCheck(context.Background())

	// The failed broken fetch is treated as empty; the cycle still
	// processes the two under-repair triggers.
	assert.Equal(t, []string{"b", "c"}, client.triggered)

	snapshot := svc.Stats().Snapshot()
	assert.Equal(t, 1, snapshot.TotalChecks)
	assert.Zero(t, snapshot.Current.BrokenFound)
	assert.Equal(t, 2, snapshot.Current.UnderRepairFound)
}

func TestPerformCheckDualFailureAborts(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		connected: true,
		total:     3,
		broken:    []zurg.Torrent{fakeTorrent("a", "Broken.A", zurg.StateBroken)},
	}
	svc := newTestService(client, Config{})

	// Seed a previous snapshot with a real cycle first.
	svc.performCheck(context.Background())
	require.Equal(t, []string{"a"}, svc.Stats().Previous().Triggered)

	client.brokenErr = errors.New("down")
	client.underRepairErr = errors.New("down")
	client.triggered = nil

	svc.performCheck(context.Background())

	snapshot := svc.Stats().Snapshot()
	assert.Equal(t, 2, snapshot.TotalChecks, "aborted cycle still counts as a check")
	assert.Zero(t, snapshot.Current.BrokenFound, "current counters stay at zero")
	assert.Empty(t, client.triggered)
	assert.Equal(t, []string{"a"}, svc.Stats().Previous().Triggered, "previous snapshot unchanged")
}

func TestPerformCheckDryRun(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		connected: true,
		broken:    []zurg.Torrent{fakeTorrent("a", "Broken.A", zurg.StateBroken)},
	}
	svc := newTestService(client, Config{DryRun: true})

	svc.performCheck(context.Background())

	assert.Empty(t, client.triggered, "dry run must not contact the remote")

	snapshot := svc.Stats().Snapshot()
	assert.Equal(t, 1, snapshot.RepairsTriggered, "dry-run triggers count as successful")

	assert.Equal(t, []string{"a"}, svc.Stats().Previous().Triggered)
}

func TestPerformCheckFailedTriggersStillAttempted(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		connected:  true,
		broken:     []zurg.Torrent{fakeTorrent("a", "Broken.A", zurg.StateBroken)},
		triggerErr: errors.New("repair endpoint down"),
	}
	svc := newTestService(client, Config{})

	svc.performCheck(context.Background())

	snapshot := svc.Stats().Snapshot()
	assert.Zero(t, snapshot.RepairsTriggered, "failed triggers are not counted")
	assert.Equal(t, []string{"a"}, svc.Stats().Previous().Triggered, "failed triggers still count as attempted")
}

func TestPerformCheckTotalFetchFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		connected: true,
		totalErr:  errors.New("listing down"),
		broken:    []zurg.Torrent{fakeTorrent("a", "Broken.A", zurg.StateBroken)},
	}
	svc := newTestService(client, Config{})

	svc.performCheck(context.Background())

	snapshot := svc.Stats().Snapshot()
	assert.Zero(t, snapshot.Current.TotalTorrents)
	assert.Equal(t, 1, snapshot.Current.BrokenFound)
	assert.Equal(t, []string{"a"}, client.triggered)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connected: true}
	svc := newTestService(client, Config{CheckInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := svc.Run(ctx)

	assert.Equal(t, 0, code, "interrupted run exits cleanly")
	assert.Equal(t, 1, svc.Stats().Snapshot().TotalChecks, "one check completes before the wait")
}

func TestRunProbeFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connected: false}
	svc := newTestService(client, Config{CheckInterval: time.Minute})

	assert.Equal(t, 1, svc.Run(context.Background()))
}
