package junction

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// NetworkFile is the road network the default SUMO configuration runs
// on. It is built from the netconvert sources shipped with the package.
const NetworkFile = "cross.net.xml"

// netconvertArgs build NetworkFile from the shipped sources
var netconvertArgs = []string{
	"--node-files", "cross.nod.xml",
	"--edge-files", "cross.edg.xml",
	"--connection-files", "cross.con.xml",
	"--tllogic-files", "cross.tll.xml",
	"--output-file", NetworkFile,
}

//go:embed data/cross.nod.xml data/cross.edg.xml data/cross.con.xml
//go:embed data/cross.tll.xml data/cross.sumocfg
var dataFiles embed.FS

// DefaultDataDir returns the directory the default configuration runs
// from: $JUNCTION_DATA if set, otherwise a gojunction directory in the
// user cache directory.
func DefaultDataDir() string {
	if dir := os.Getenv("JUNCTION_DATA"); dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "gojunction")
	}
	return filepath.Join(os.TempDir(), "gojunction")
}

// NetworkBuilder builds NetworkFile from the netconvert sources in a
// directory. SumoLauncher implements NetworkBuilder.
type NetworkBuilder interface {
	BuildNetwork(dir string) error
}

// BuildNetwork runs netconvert on the sources in dir
func (s SumoLauncher) BuildNetwork(dir string) error {
	return s.Netconvert(dir, netconvertArgs...)
}

// PrepareData writes the SUMO configuration and network sources of the
// junction to dir and builds the road network if dir does not hold one
// yet. Files already present in dir are left untouched.
func PrepareData(dir string, b NetworkBuilder) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepareData: %w", err)
	}

	files, err := fs.Glob(dataFiles, "data/*")
	if err != nil {
		return fmt.Errorf("prepareData: %w", err)
	}
	for _, name := range files {
		dst := filepath.Join(dir, path.Base(name))
		if exists(dst) {
			continue
		}

		content, err := dataFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("prepareData: %w", err)
		}
		if err := os.WriteFile(dst, content, 0o644); err != nil {
			return fmt.Errorf("prepareData: %w", err)
		}
	}

	if exists(filepath.Join(dir, NetworkFile)) {
		return nil
	}
	if err := b.BuildNetwork(dir); err != nil {
		return fmt.Errorf("prepareData: could not build %v: %w",
			NetworkFile, err)
	}
	if !exists(filepath.Join(dir, NetworkFile)) {
		return fmt.Errorf("prepareData: %v was not built", NetworkFile)
	}
	return nil
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return !errors.Is(err, fs.ErrNotExist)
}
