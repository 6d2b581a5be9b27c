package sumo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNoSumoHome is returned when no SUMO installation directory is
// configured
var ErrNoSumoHome = errors.New("SUMO_HOME is not set: it should point " +
	"to the root directory of your sumo installation")

// DefaultArgs are passed to every SUMO process after the configuration
// file and remote port
var DefaultArgs = []string{"--start", "--quit-on-end",
	"--duration-log.statistics"}

const (
	// DefaultConnectAttempts is the number of times the launcher polls
	// the remote port of a freshly started process
	DefaultConnectAttempts = 60

	// DefaultConnectDelay is the time between two connection attempts
	DefaultConnectDelay = 250 * time.Millisecond
)

// Options determine how a single SUMO process is started
type Options struct {
	ConfigFile string   // .sumocfg file
	GUI        bool     // start sumo-gui instead of sumo
	Args       []string // extra command line arguments
}

// Launcher starts SUMO processes and connects Clients to them.
//
// The zero value is ready to use: the installation directory is taken
// from the SUMO_HOME environment variable and the process output is
// discarded.
type Launcher struct {
	Home            string
	ConnectAttempts int
	ConnectDelay    time.Duration
	Stdout, Stderr  io.Writer
	Logger          *log.Logger
}

// Binary returns the path of the sumo (or sumo-gui) executable
func (l Launcher) Binary(gui bool) (string, error) {
	name := "sumo"
	if gui {
		name = "sumo-gui"
	}
	path, err := l.tool(name)
	if err != nil {
		return "", fmt.Errorf("binary: %w", err)
	}
	return path, nil
}

// tool returns the path of an executable in the bin directory of the
// installation
func (l Launcher) tool(name string) (string, error) {
	home := l.Home
	if home == "" {
		home = os.Getenv("SUMO_HOME")
	}
	if home == "" {
		return "", ErrNoSumoHome
	}

	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	path := filepath.Join(home, "bin", name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot find %v: %w", name, err)
	}
	return path, nil
}

// Netconvert runs the netconvert tool of the installation in directory
// dir with the given arguments. The output of the tool is returned in
// the error if it fails.
func (l Launcher) Netconvert(dir string, args ...string) error {
	bin, err := l.tool("netconvert")
	if err != nil {
		return fmt.Errorf("netconvert: %w", err)
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("netconvert: %w: %s", err, bytes.TrimSpace(out))
	}

	if l.Logger != nil {
		l.Logger.Debug("netconvert done", "dir", dir, "args", args)
	}
	return nil
}

// Start starts a SUMO process on the given configuration and returns
// a Client connected to it. The process is killed if the connection
// cannot be established.
func (l Launcher) Start(opts Options) (*Client, error) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}

	bin, err := l.Binary(opts.GUI)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("start: could not find free port: %w", err)
	}

	args := []string{"-c", opts.ConfigFile, "--remote-port",
		strconv.Itoa(port)}
	args = append(args, DefaultArgs...)
	args = append(args, opts.Args...)

	proc := exec.Command(bin, args...)
	proc.Stdout = l.Stdout
	proc.Stderr = l.Stderr
	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("start: could not start %v: %w", bin, err)
	}

	conn, err := l.connect(port)
	if err != nil {
		proc.Process.Kill()
		proc.Wait()
		return nil, fmt.Errorf("start: %w", err)
	}

	c := NewClient(conn)
	c.proc = proc

	api, version, err := c.Version()
	if err != nil {
		c.kill()
		return nil, fmt.Errorf("start: %w", err)
	}

	logger.Debug("sumo started", "binary", filepath.Base(bin), "port", port,
		"api", api, "version", version, "config", opts.ConfigFile)
	return c, nil
}

// connect polls the remote port until the process accepts a connection
func (l Launcher) connect(port int) (net.Conn, error) {
	attempts := l.ConnectAttempts
	if attempts <= 0 {
		attempts = DefaultConnectAttempts
	}
	delay := l.ConnectDelay
	if delay <= 0 {
		delay = DefaultConnectDelay
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	var err error
	for i := 0; i < attempts; i++ {
		var conn net.Conn
		if conn, err = net.Dial("tcp", addr); err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("could not connect to %v after %v attempts: %w",
		addr, attempts, err)
}

func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()

	return ln.Addr().(*net.TCPAddr).Port, nil
}
