package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(onOnline func()) *ConnectivityMonitor {
	lister := func() ([]Transport, error) { return nil, nil }
	return NewConnectivityMonitor(lister, time.Hour, onOnline)
}

func TestProcessSignal_FlipNotifiesOnce(t *testing.T) {
	monitor := newTestMonitor(nil)

	assert.False(t, monitor.Online())

	monitor.ProcessSignal([]Transport{TransportWifi})
	assert.True(t, monitor.Online())

	select {
	case change := <-monitor.Changes():
		assert.True(t, change)
	default:
		t.Fatal("expected a change notification for the flip")
	}

	// Same-state signals are dropped.
	monitor.ProcessSignal([]Transport{TransportWifi})
	monitor.ProcessSignal([]Transport{TransportCellular})

	select {
	case <-monitor.Changes():
		t.Fatal("same-state signal must not notify")
	default:
	}

	monitor.ProcessSignal(nil)
	assert.False(t, monitor.Online())

	select {
	case change := <-monitor.Changes():
		assert.False(t, change)
	default:
		t.Fatal("expected a change notification for the offline flip")
	}
}

func TestProcessSignal_VPNOnlyCountsAsOffline(t *testing.T) {
	monitor := newTestMonitor(nil)

	monitor.ProcessSignal([]Transport{TransportVPN})
	assert.False(t, monitor.Online())

	monitor.ProcessSignal([]Transport{TransportUnknown, TransportVPN})
	assert.False(t, monitor.Online())

	// A real transport alongside the VPN is online.
	monitor.ProcessSignal([]Transport{TransportVPN, TransportCellular})
	assert.True(t, monitor.Online())
}

func TestProcessSignal_SweepFiresOnlyOnOfflineToOnline(t *testing.T) {
	var sweeps atomic.Int32
	monitor := newTestMonitor(func() { sweeps.Add(1) })

	monitor.ProcessSignal([]Transport{TransportWifi})
	assert.Equal(t, int32(1), sweeps.Load())

	// Staying online does not re-trigger.
	monitor.ProcessSignal([]Transport{TransportEthernet})
	assert.Equal(t, int32(1), sweeps.Load())

	// Going offline does not trigger.
	monitor.ProcessSignal(nil)
	assert.Equal(t, int32(1), sweeps.Load())

	// Coming back does.
	monitor.ProcessSignal([]Transport{TransportCellular})
	assert.Equal(t, int32(2), sweeps.Load())
}

func TestStart_InitialStateDoesNotNotify(t *testing.T) {
	var sweeps atomic.Int32
	lister := func() ([]Transport, error) {
		return []Transport{TransportWifi}, nil
	}
	monitor := NewConnectivityMonitor(lister, time.Hour, func() { sweeps.Add(1) })
	monitor.Start()
	defer monitor.Close()

	require.True(t, monitor.Online())
	assert.Equal(t, int32(0), sweeps.Load())

	select {
	case <-monitor.Changes():
		t.Fatal("initial state must not produce a change notification")
	default:
	}
}

func TestClassifyInterface(t *testing.T) {
	cases := map[string]Transport{
		"wlan0":   TransportWifi,
		"wlp3s0":  TransportWifi,
		"eth0":    TransportEthernet,
		"enp0s31": TransportEthernet,
		"wwan0":   TransportCellular,
		"rmnet0":  TransportCellular,
		"tun0":    TransportVPN,
		"utun3":   TransportVPN,
		"wg0":     TransportVPN,
		"docker0": TransportUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, classifyInterface(name), "interface %q", name)
	}
}
