package picker

import (
	"io"
	"sync"
	"time"
	"unicode/utf8"
)

// Key identifies the kind of a decoded input event.
type Key int

const (
	KeyRune Key = iota
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyEscape
	KeyTab
	KeyCtrl
	KeyAlt
)

const maxSequenceLen = 32

// escapeTimeout is how long a trailing ESC waits for the rest of a
// sequence before it counts as the Escape key.
const escapeTimeout = 50 * time.Millisecond

// Event is one logical key press. Rune is set for KeyRune, KeyCtrl (the
// lower-case letter) and KeyAlt.
type Event struct {
	Key  Key
	Rune rune
}

// String names the event the way key bindings spell it.
func (e Event) String() string {
	switch e.Key {
	case KeyRune:
		return string(e.Rune)
	case KeyBackspace:
		return "backspace"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyPageUp:
		return "pgup"
	case KeyPageDown:
		return "pgdown"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "esc"
	case KeyTab:
		return "tab"
	case KeyCtrl:
		return "ctrl+" + string(e.Rune)
	case KeyAlt:
		return "alt+" + string(e.Rune)
	}
	return "unknown"
}

// Decoder turns the raw byte stream from a terminal into key events. Every
// call to Next blocks until a whole event is available. A reader goroutine
// feeds it so a pending ESC can wait a bounded time for its sequence.
type Decoder struct {
	chunks chan chunk
	stopCh chan struct{}
	stop   sync.Once

	buf []byte
	err error
}

type chunk struct {
	data []byte
	err  error
}

func NewDecoder(r io.Reader) *Decoder {
	d := &Decoder{
		chunks: make(chan chunk),
		stopCh: make(chan struct{}),
	}
	go d.pump(r)
	return d
}

// Close stops delivering input. A Read already blocked in the underlying
// reader returns once that reader is closed.
func (d *Decoder) Close() {
	d.stop.Do(func() { close(d.stopCh) })
}

func (d *Decoder) pump(r io.Reader) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n == 0 && err == nil {
			continue
		}
		c := chunk{err: err}
		if n > 0 {
			c.data = append([]byte(nil), buf[:n]...)
		}
		select {
		case d.chunks <- c:
		case <-d.stopCh:
			return
		}
		if err != nil {
			return
		}
	}
}

func (d *Decoder) receive(c chunk) {
	d.buf = append(d.buf, c.data...)
	if c.err != nil {
		d.err = c.err
	}
}

// readByte blocks until a byte is available or the input failed.
func (d *Decoder) readByte() (byte, error) {
	for len(d.buf) == 0 {
		if d.err != nil {
			return 0, d.err
		}
		select {
		case c := <-d.chunks:
			d.receive(c)
		case <-d.stopCh:
			return 0, io.EOF
		}
	}
	b := d.buf[0]
	d.buf = d.buf[1:]
	return b, nil
}

func (d *Decoder) unreadByte(b byte) {
	d.buf = append([]byte{b}, d.buf...)
}

// awaitByte reports whether another byte is available within
// escapeTimeout.
func (d *Decoder) awaitByte() bool {
	if len(d.buf) > 0 {
		return true
	}
	if d.err != nil {
		return false
	}
	timer := time.NewTimer(escapeTimeout)
	defer timer.Stop()
	select {
	case c := <-d.chunks:
		d.receive(c)
		return len(d.buf) > 0
	case <-timer.C:
		return false
	case <-d.stopCh:
		return false
	}
}

// Next returns the next complete event. Multi-byte sequences are consumed
// whole. Malformed input yields a *DecodeError after its bytes have been
// consumed so the caller can simply read again.
func (d *Decoder) Next() (Event, error) {
	b, err := d.readByte()
	if err != nil {
		return Event{}, err
	}
	switch {
	case b == 0x1b:
		return d.escape()
	case b == '\r' || b == '\n':
		return Event{Key: KeyEnter}, nil
	case b == '\t':
		return Event{Key: KeyTab}, nil
	case b == 0x7f || b == 0x08:
		return Event{Key: KeyBackspace}, nil
	case b >= 0x01 && b <= 0x1a:
		return Event{Key: KeyCtrl, Rune: rune('a' + b - 1)}, nil
	case b < 0x20:
		return Event{}, &DecodeError{Bytes: []byte{b}, Reason: "unsupported control byte"}
	case b < utf8.RuneSelf:
		return Event{Key: KeyRune, Rune: rune(b)}, nil
	}
	return d.utf8Rune(b)
}

func (d *Decoder) utf8Rune(first byte) (Event, error) {
	n := utf8SeqLen(first)
	if n == 0 {
		return Event{}, &DecodeError{Bytes: []byte{first}, Reason: "invalid utf-8 lead byte"}
	}
	buf := make([]byte, 1, n)
	buf[0] = first
	for len(buf) < n {
		b, err := d.readByte()
		if err != nil {
			return Event{}, &DecodeError{Bytes: buf, Reason: "truncated utf-8 sequence"}
		}
		if b&0xc0 != 0x80 {
			d.unreadByte(b)
			return Event{}, &DecodeError{Bytes: buf, Reason: "invalid utf-8 continuation"}
		}
		buf = append(buf, b)
	}
	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return Event{}, &DecodeError{Bytes: buf, Reason: "invalid utf-8 sequence"}
	}
	return Event{Key: KeyRune, Rune: r}, nil
}

func utf8SeqLen(b byte) int {
	switch {
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	}
	return 0
}

// escape handles bytes following ESC. An ESC that nothing follows within
// escapeTimeout is the Escape key.
func (d *Decoder) escape() (Event, error) {
	if !d.awaitByte() {
		return Event{Key: KeyEscape}, nil
	}
	b, err := d.readByte()
	if err != nil {
		return Event{Key: KeyEscape}, nil
	}
	switch {
	case b == '[':
		return d.csi()
	case b == 'O':
		return d.ss3()
	case b == 0x1b:
		d.unreadByte(b)
		return Event{Key: KeyEscape}, nil
	case b >= 0x20 && b < 0x7f:
		return Event{Key: KeyAlt, Rune: rune(b)}, nil
	case b == 0x7f:
		return Event{Key: KeyAlt, Rune: 0x7f}, nil
	}
	return Event{}, &DecodeError{Bytes: []byte{0x1b, b}, Reason: "unsupported escape"}
}

// csi reads parameter and intermediate bytes up to the final byte.
func (d *Decoder) csi() (Event, error) {
	seq := []byte{0x1b, '['}
	for {
		b, err := d.readByte()
		if err != nil {
			return Event{}, &DecodeError{Bytes: seq, Reason: "truncated control sequence"}
		}
		seq = append(seq, b)
		if len(seq) > maxSequenceLen {
			d.discardSequence()
			return Event{}, &DecodeError{Bytes: seq, Reason: "control sequence too long"}
		}
		switch {
		case b >= 0x30 && b <= 0x3f, b >= 0x20 && b <= 0x2f:
			continue
		case b >= 0x40 && b <= 0x7e:
			return csiEvent(seq)
		default:
			return Event{}, &DecodeError{Bytes: seq, Reason: "invalid byte in control sequence"}
		}
	}
}

// discardSequence drops the rest of an overlong sequence up to its final
// byte or until nothing more is buffered.
func (d *Decoder) discardSequence() {
	for len(d.buf) > 0 {
		b, err := d.readByte()
		if err != nil || (b >= 0x40 && b <= 0x7e) {
			return
		}
	}
}

func csiEvent(seq []byte) (Event, error) {
	params := string(seq[2 : len(seq)-1])
	final := seq[len(seq)-1]
	switch final {
	case 'A':
		return Event{Key: KeyUp}, nil
	case 'B':
		return Event{Key: KeyDown}, nil
	case 'C':
		return Event{Key: KeyRight}, nil
	case 'D':
		return Event{Key: KeyLeft}, nil
	case 'H':
		return Event{Key: KeyHome}, nil
	case 'F':
		return Event{Key: KeyEnd}, nil
	case '~':
		switch params {
		case "1", "7":
			return Event{Key: KeyHome}, nil
		case "4", "8":
			return Event{Key: KeyEnd}, nil
		case "3":
			return Event{Key: KeyBackspace}, nil
		case "5":
			return Event{Key: KeyPageUp}, nil
		case "6":
			return Event{Key: KeyPageDown}, nil
		}
	}
	return Event{}, &DecodeError{Bytes: seq, Reason: "unknown control sequence"}
}

func (d *Decoder) ss3() (Event, error) {
	b, err := d.readByte()
	if err != nil {
		return Event{}, &DecodeError{Bytes: []byte{0x1b, 'O'}, Reason: "truncated ss3 sequence"}
	}
	switch b {
	case 'A':
		return Event{Key: KeyUp}, nil
	case 'B':
		return Event{Key: KeyDown}, nil
	case 'C':
		return Event{Key: KeyRight}, nil
	case 'D':
		return Event{Key: KeyLeft}, nil
	case 'H':
		return Event{Key: KeyHome}, nil
	case 'F':
		return Event{Key: KeyEnd}, nil
	}
	return Event{}, &DecodeError{Bytes: []byte{0x1b, 'O', b}, Reason: "unknown ss3 sequence"}
}
