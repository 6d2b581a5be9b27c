package sumo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Command identifiers
const (
	cmdGetVersion = 0x00
	cmdSimStep    = 0x02
	cmdClose      = 0x7f

	cmdGetTLVariable      = 0xa2
	cmdSetTLVariable      = 0xc2
	cmdGetVehicleVariable = 0xa4
	cmdGetSimVariable     = 0xab

	// The response to a get command has the id of the command plus
	// responseOffset
	responseOffset = 0x10
)

// Variable identifiers
const (
	varIDList                 = 0x00
	varTLState                = 0x20
	varTLPhaseIndex           = 0x22
	varSpeed                  = 0x40
	varMaxSpeed               = 0x41
	varPosition               = 0x42
	varTeleportStartingNumber = 0x75
	varWaitingTime            = 0x7a
	varMinExpectedNumber      = 0x7d
)

// Data types
const (
	typePosition2D = 0x01
	typeInteger    = 0x09
	typeDouble     = 0x0b
	typeString     = 0x0c
	typeStringList = 0x0e
)

// Result codes of the status response
const (
	resultOK             = 0x00
	resultNotImplemented = 0x01
	resultErr            = 0xff
)

// CommandError is returned when SUMO answers a command with a non-OK
// status
type CommandError struct {
	Command     byte
	Result      byte
	Description string
}

func (c *CommandError) Error() string {
	kind := "error"
	if c.Result == resultNotImplemented {
		kind = "not implemented"
	}
	return fmt.Sprintf("command 0x%02x: %v: %v", c.Command, kind,
		c.Description)
}

// writer serializes TraCI data types in network byte order
type writer struct {
	bytes.Buffer
}

func (w *writer) ubyte(v byte) {
	w.WriteByte(v)
}

func (w *writer) int(v int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(int32(v)))
	w.Write(b[:])
}

func (w *writer) double(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.Write(b[:])
}

func (w *writer) string(s string) {
	w.int(len(s))
	w.WriteString(s)
}

func (w *writer) stringList(l []string) {
	w.int(len(l))
	for _, s := range l {
		w.string(s)
	}
}

// command frames a single command with its length prefix. Commands
// longer than 255 bytes use a zero length byte followed by a 4-byte
// length.
func command(id byte, payload []byte) []byte {
	var w writer

	n := 2 + len(payload)
	if n <= 255 {
		w.ubyte(byte(n))
	} else {
		w.ubyte(0)
		w.int(n + 4)
	}
	w.ubyte(id)
	w.Write(payload)

	return w.Bytes()
}

// message prefixes one or more framed commands with the total message
// length
func message(commands ...[]byte) []byte {
	n := 4
	for _, c := range commands {
		n += len(c)
	}

	var w writer
	w.int(n)
	for _, c := range commands {
		w.Write(c)
	}
	return w.Bytes()
}

// reader deserializes TraCI data types from a response message
type reader struct {
	buf []byte
	pos int
}

func newReader(b []byte) *reader {
	return &reader{buf: b}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("short response: need %v bytes, have %v",
			n, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) ubyte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) int() (int, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int(int32(binary.BigEndian.Uint32(b))), nil
}

func (r *reader) double() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (r *reader) string() (string, error) {
	n, err := r.int()
	if err != nil {
		return "", err
	}
	b, err := r.next(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) stringList() ([]string, error) {
	n, err := r.int()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative string list length %v", n)
	}

	l := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		l = append(l, s)
	}
	return l, nil
}

// header reads a command header, returning the command id and the
// length of the command content following the header
func (r *reader) header() (byte, int, error) {
	n, err := r.ubyte()
	if err != nil {
		return 0, 0, err
	}

	length, headerLen := int(n), 2
	if length == 0 {
		if length, err = r.int(); err != nil {
			return 0, 0, err
		}
		headerLen = 6
	}

	id, err := r.ubyte()
	if err != nil {
		return 0, 0, err
	}
	if length < headerLen {
		return 0, 0, fmt.Errorf("invalid command length %v", length)
	}
	return id, length - headerLen, nil
}

// status reads the status response to the command with id want
func (r *reader) status(want byte) error {
	id, _, err := r.header()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if id != want {
		return fmt.Errorf("status: received status for command 0x%02x, "+
			"expected 0x%02x", id, want)
	}

	result, err := r.ubyte()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	description, err := r.string()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	if result != resultOK {
		return &CommandError{Command: id, Result: result,
			Description: description}
	}
	return nil
}

// variable reads the response command of a get command and positions
// the reader at the start of the returned value, which must be of type
// wantType
func (r *reader) variable(cmd, varID byte, objectID string,
	wantType byte) error {
	id, _, err := r.header()
	if err != nil {
		return err
	}
	if id != cmd+responseOffset {
		return fmt.Errorf("response id 0x%02x does not match command 0x%02x",
			id, cmd)
	}

	v, err := r.ubyte()
	if err != nil {
		return err
	}
	if v != varID {
		return fmt.Errorf("response variable 0x%02x, expected 0x%02x", v,
			varID)
	}

	obj, err := r.string()
	if err != nil {
		return err
	}
	if obj != objectID {
		return fmt.Errorf("response for object %q, expected %q", obj,
			objectID)
	}

	t, err := r.ubyte()
	if err != nil {
		return err
	}
	if t != wantType {
		return fmt.Errorf("response type 0x%02x, expected 0x%02x", t,
			wantType)
	}
	return nil
}
