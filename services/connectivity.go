package services

import (
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Transport classifies a network path reported by the platform.
type Transport int

const (
	TransportUnknown Transport = iota
	TransportWifi
	TransportCellular
	TransportEthernet
	TransportVPN
)

// TransportLister reports the currently available transports. Pluggable so
// tests can drive connectivity signals directly.
type TransportLister func() ([]Transport, error)

// ConnectivityMonitor owns the single online/offline boolean and its change
// stream. Online means at least one Wi-Fi, cellular or wired Ethernet
// transport is up; a VPN-only or unknown-transport signal counts as offline.
// On an offline-to-online flip it invokes the sweep callback; it is the sole
// trigger for background reconciliation.
type ConnectivityMonitor struct {
	lister   TransportLister
	interval time.Duration
	onOnline func()

	online  atomic.Bool
	changes chan bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewConnectivityMonitor(lister TransportLister, interval time.Duration, onOnline func()) *ConnectivityMonitor {
	if lister == nil {
		lister = InterfaceTransportLister
	}
	return &ConnectivityMonitor{
		lister:   lister,
		interval: interval,
		onOnline: onOnline,
		changes:  make(chan bool, 8),
		done:     make(chan struct{}),
	}
}

// Start computes the initial state and begins polling the lister. The
// initial computation does not fire the sweep callback or a change
// notification; only subsequent flips do.
func (m *ConnectivityMonitor) Start() {
	if transports, err := m.lister(); err == nil {
		m.online.Store(anyOnline(transports))
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				transports, err := m.lister()
				if err != nil {
					continue
				}
				m.ProcessSignal(transports)
			}
		}
	}()
}

// ProcessSignal recomputes the online boolean from a reachability signal.
// Same-state signals are dropped; only an actual flip notifies subscribers,
// and only the offline-to-online flip triggers the sweep.
func (m *ConnectivityMonitor) ProcessSignal(transports []Transport) {
	nowOnline := anyOnline(transports)
	if !m.online.CompareAndSwap(!nowOnline, nowOnline) {
		return
	}

	select {
	case m.changes <- nowOnline:
	default:
		// A slow subscriber must not stall connectivity handling.
	}

	if nowOnline && m.onOnline != nil {
		m.onOnline()
	}
}

func anyOnline(transports []Transport) bool {
	for _, transport := range transports {
		switch transport {
		case TransportWifi, TransportCellular, TransportEthernet:
			return true
		}
	}
	return false
}

// Online returns the current connectivity boolean.
func (m *ConnectivityMonitor) Online() bool {
	return m.online.Load()
}

// Changes is the flip-notification stream: true for online, false for
// offline, one value per actual transition.
func (m *ConnectivityMonitor) Changes() <-chan bool {
	return m.changes
}

// Close stops polling and closes the change stream.
func (m *ConnectivityMonitor) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		close(m.changes)
	})
}

// InterfaceTransportLister classifies the host's up, non-loopback network
// interfaces by name.
func InterfaceTransportLister() ([]Transport, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var transports []Transport
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		transports = append(transports, classifyInterface(iface.Name))
	}
	return transports, nil
}

func classifyInterface(name string) Transport {
	name = strings.ToLower(name)
	switch {
	case hasAnyPrefix(name, "tun", "tap", "utun", "wg", "ppp", "ipsec"):
		return TransportVPN
	case hasAnyPrefix(name, "wlan", "wifi", "wlp", "wl", "ath"):
		return TransportWifi
	case hasAnyPrefix(name, "wwan", "wwp", "rmnet", "cell"):
		return TransportCellular
	case hasAnyPrefix(name, "eth", "eno", "ens", "enp", "en", "em"):
		return TransportEthernet
	default:
		return TransportUnknown
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
