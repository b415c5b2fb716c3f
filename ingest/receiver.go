// Package ingest implements the UDP datagram receiver adapter: one goroutine
// per configured bind address, feeding received datagrams to a callback.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// maxDatagramSize is large enough for any PITCH unit; PITCH datagrams are
// well under a standard Ethernet MTU.
const maxDatagramSize = 2048

// Config describes one UDP listener, mirroring the original receiver's
// bind address plus optional CPU pinning and realtime scheduling.
type Config struct {
	BindIP           string
	BindPort         int
	CPUAffinityCore  int // -1 disables pinning
	RealtimePriority int // 0 disables realtime scheduling
}

// PacketCallback is invoked once per received datagram. buf is only valid
// for the duration of the call; implementations that need to retain bytes
// must copy them (the decoder does this when it builds Records).
type PacketCallback func(buf []byte)

// Receiver binds a UDP socket and delivers every datagram it receives to a
// callback on its own goroutine.
type Receiver struct {
	cfg Config
	log *logrus.Logger

	mu   sync.Mutex
	conn *net.UDPConn
	wg   sync.WaitGroup
}

// New creates a Receiver for cfg. log may be nil.
func New(cfg Config, log *logrus.Logger) *Receiver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Receiver{cfg: cfg, log: log}
}

// Start binds the configured address and begins delivering datagrams to
// callback on a new goroutine. It returns once the socket is bound; the
// read loop continues until Stop closes the socket. Cancelling ctx does not
// unblock a pending read; it only makes the loop exit at its next read
// error.
func (r *Receiver) Start(ctx context.Context, callback PacketCallback) error {
	addr := &net.UDPAddr{IP: net.ParseIP(r.cfg.BindIP), Port: r.cfg.BindPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("ingest: listen %s:%d: %w", r.cfg.BindIP, r.cfg.BindPort, err)
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	r.wg.Add(1)
	go r.loop(ctx, conn, callback)
	return nil
}

// LocalAddr returns the bound socket's address, or nil if Start has not
// been called yet. Useful when BindPort is 0 and the kernel assigns one.
func (r *Receiver) LocalAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Stop closes the socket, unblocking the pending read, and waits for the
// read loop to exit.
func (r *Receiver) Stop() {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	r.wg.Wait()
}

func (r *Receiver) loop(ctx context.Context, conn *net.UDPConn, callback PacketCallback) {
	defer r.wg.Done()
	applyAffinity(r.cfg.CPUAffinityCore, r.log)
	applyRealtimePriority(r.cfg.RealtimePriority, r.log)

	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			r.log.WithFields(logrus.Fields{"component": "ingest.receiver", "err": err}).Error("read error")
			continue
		}
		callback(buf[:n])
	}
}
