package testutil

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/creack/pty"
)

// PTY is a pseudo terminal pair for tests that need a real tty. Output
// written to the tty side is drained continuously so writers never block.
type PTY struct {
	Master *os.File
	Slave  *os.File

	mu   sync.Mutex
	out  bytes.Buffer
	done chan struct{}
}

// OpenPTY opens a pseudo terminal sized cols x rows. It skips the test
// when the platform has no pty support.
func OpenPTY(t *testing.T, cols, rows int) *PTY {
	t.Helper()
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	if err := pty.Setsize(master, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		master.Close()
		slave.Close()
		t.Fatalf("set pty size: %v", err)
	}
	p := &PTY{Master: master, Slave: slave, done: make(chan struct{})}
	go p.drain()
	t.Cleanup(func() {
		slave.Close()
		master.Close()
		<-p.done
	})
	return p
}

func (p *PTY) drain() {
	defer close(p.done)
	buf := make([]byte, 4096)
	for {
		n, err := p.Master.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.out.Write(buf[:n])
			p.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Output returns everything written to the tty side so far.
func (p *PTY) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}
