// Package sumo implements a client for the TraCI control protocol of
// the SUMO traffic simulator, as well as a launcher which starts SUMO
// processes and connects to them.
//
// All calls are synchronous. Each method sends a single command and
// blocks until SUMO answers it.
package sumo

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os/exec"
)

// Client is a connection to a running SUMO instance. A Client is not
// safe for concurrent use.
type Client struct {
	conn net.Conn
	rw   *bufio.ReadWriter
	proc *exec.Cmd // nil if the Client did not start the process
}

// NewClient returns a new Client communicating over conn
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		rw: bufio.NewReadWriter(bufio.NewReader(conn),
			bufio.NewWriter(conn)),
	}
}

// Dial connects to a SUMO instance already listening on addr
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return NewClient(conn), nil
}

// send writes a single command and returns a reader over the full
// response message, positioned after the status of the command
func (c *Client) send(cmd byte, payload []byte) (*reader, error) {
	if _, err := c.rw.Write(message(command(cmd, payload))); err != nil {
		return nil, err
	}
	if err := c.rw.Flush(); err != nil {
		return nil, err
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(c.rw, lenBuf[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint32(lenBuf[:]))
	if n < 4 {
		return nil, fmt.Errorf("invalid message length %v", n)
	}

	body := make([]byte, n-4)
	if _, err := io.ReadFull(c.rw, body); err != nil {
		return nil, err
	}

	r := newReader(body)
	if err := r.status(cmd); err != nil {
		return nil, err
	}
	return r, nil
}

// get sends a get command for a variable of an object and returns a
// reader positioned at the returned value
func (c *Client) get(cmd, varID byte, objectID string,
	wantType byte) (*reader, error) {
	var w writer
	w.ubyte(varID)
	w.string(objectID)

	r, err := c.send(cmd, w.Bytes())
	if err != nil {
		return nil, err
	}
	if err := r.variable(cmd, varID, objectID, wantType); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) getDouble(cmd, varID byte, objectID string) (float64,
	error) {
	r, err := c.get(cmd, varID, objectID, typeDouble)
	if err != nil {
		return 0, err
	}
	return r.double()
}

func (c *Client) getInt(cmd, varID byte, objectID string) (int, error) {
	r, err := c.get(cmd, varID, objectID, typeInteger)
	if err != nil {
		return 0, err
	}
	return r.int()
}

// Version returns the TraCI API version and the SUMO version string
func (c *Client) Version() (int, string, error) {
	r, err := c.send(cmdGetVersion, nil)
	if err != nil {
		return 0, "", fmt.Errorf("version: %w", err)
	}

	id, _, err := r.header()
	if err != nil {
		return 0, "", fmt.Errorf("version: %w", err)
	}
	if id != cmdGetVersion {
		return 0, "", fmt.Errorf("version: unexpected response 0x%02x", id)
	}

	api, err := r.int()
	if err != nil {
		return 0, "", fmt.Errorf("version: %w", err)
	}
	version, err := r.string()
	if err != nil {
		return 0, "", fmt.Errorf("version: %w", err)
	}
	return api, version, nil
}

// SimulationStep advances the simulation by exactly one step
func (c *Client) SimulationStep() error {
	var w writer
	w.double(0)

	r, err := c.send(cmdSimStep, w.Bytes())
	if err != nil {
		return fmt.Errorf("simulationStep: %w", err)
	}

	// No subscriptions are made, so the count is read and ignored
	if _, err := r.int(); err != nil {
		return fmt.Errorf("simulationStep: %w", err)
	}
	return nil
}

// SetPhase sets the phase index of the traffic light tlsID
func (c *Client) SetPhase(tlsID string, phase int) error {
	var w writer
	w.ubyte(varTLPhaseIndex)
	w.string(tlsID)
	w.ubyte(typeInteger)
	w.int(phase)

	if _, err := c.send(cmdSetTLVariable, w.Bytes()); err != nil {
		return fmt.Errorf("setPhase: %w", err)
	}
	return nil
}

// RedYellowGreenState returns the light state string of the traffic
// light tlsID, one character per controlled link
func (c *Client) RedYellowGreenState(tlsID string) (string, error) {
	r, err := c.get(cmdGetTLVariable, varTLState, tlsID, typeString)
	if err != nil {
		return "", fmt.Errorf("redYellowGreenState: %w", err)
	}
	return r.string()
}

// VehicleIDs returns the ids of all vehicles currently in the network
func (c *Client) VehicleIDs() ([]string, error) {
	r, err := c.get(cmdGetVehicleVariable, varIDList, "", typeStringList)
	if err != nil {
		return nil, fmt.Errorf("vehicleIDs: %w", err)
	}
	return r.stringList()
}

// VehiclePosition returns the network coordinates of a vehicle
func (c *Client) VehiclePosition(id string) (float64, float64, error) {
	r, err := c.get(cmdGetVehicleVariable, varPosition, id, typePosition2D)
	if err != nil {
		return 0, 0, fmt.Errorf("vehiclePosition: %w", err)
	}

	x, err := r.double()
	if err != nil {
		return 0, 0, fmt.Errorf("vehiclePosition: %w", err)
	}
	y, err := r.double()
	if err != nil {
		return 0, 0, fmt.Errorf("vehiclePosition: %w", err)
	}
	return x, y, nil
}

// VehicleSpeed returns the current speed of a vehicle in m/s
func (c *Client) VehicleSpeed(id string) (float64, error) {
	v, err := c.getDouble(cmdGetVehicleVariable, varSpeed, id)
	if err != nil {
		return 0, fmt.Errorf("vehicleSpeed: %w", err)
	}
	return v, nil
}

// VehicleMaxSpeed returns the maximum speed of a vehicle in m/s
func (c *Client) VehicleMaxSpeed(id string) (float64, error) {
	v, err := c.getDouble(cmdGetVehicleVariable, varMaxSpeed, id)
	if err != nil {
		return 0, fmt.Errorf("vehicleMaxSpeed: %w", err)
	}
	return v, nil
}

// VehicleWaitingTime returns the time in seconds a vehicle has been
// standing since it last moved
func (c *Client) VehicleWaitingTime(id string) (float64, error) {
	v, err := c.getDouble(cmdGetVehicleVariable, varWaitingTime, id)
	if err != nil {
		return 0, fmt.Errorf("vehicleWaitingTime: %w", err)
	}
	return v, nil
}

// MinExpectedNumber returns the number of vehicles in the network
// plus the number of vehicles still waiting to depart
func (c *Client) MinExpectedNumber() (int, error) {
	v, err := c.getInt(cmdGetSimVariable, varMinExpectedNumber, "")
	if err != nil {
		return 0, fmt.Errorf("minExpectedNumber: %w", err)
	}
	return v, nil
}

// StartingTeleportNumber returns the number of vehicles which started
// to teleport in the last step
func (c *Client) StartingTeleportNumber() (int, error) {
	v, err := c.getInt(cmdGetSimVariable, varTeleportStartingNumber, "")
	if err != nil {
		return 0, fmt.Errorf("startingTeleportNumber: %w", err)
	}
	return v, nil
}

// Close ends the simulation, closes the connection and, if the Client
// started the SUMO process, waits for the process to exit. The
// connection is closed even if SUMO does not acknowledge the close
// command.
func (c *Client) Close() error {
	_, sendErr := c.send(cmdClose, nil)
	connErr := c.conn.Close()

	var procErr error
	if c.proc != nil {
		procErr = c.proc.Wait()
		c.proc = nil
	}

	switch {
	case sendErr != nil:
		return fmt.Errorf("close: %w", sendErr)
	case connErr != nil:
		return fmt.Errorf("close: %w", connErr)
	case procErr != nil:
		return fmt.Errorf("close: sumo exited: %w", procErr)
	}
	return nil
}

// kill terminates a started process without the close handshake
func (c *Client) kill() {
	c.conn.Close()
	if c.proc != nil && c.proc.Process != nil {
		c.proc.Process.Kill()
		c.proc.Wait()
		c.proc = nil
	}
}
