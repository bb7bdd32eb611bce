// Package health probes the host system for everything the backend cares
// about: display servers, kernel, memory, disk headroom and the external
// tools some installers shell out to.
package health

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"

	"cellar/internal/version"
)

// Tools probed on PATH. The first group is required for dependency
// installers that unpack cab archives and self-extracting bundles.
var (
	coreTools  = []string{"cabextract", "7z"}
	extraTools = []string{"icotool", "tar", "unzip", "xdpyinfo", "identify"}
)

// Env overrides honored by the backend, reported so bug reports show
// when a non-default repository is in play.
var overrideEnvs = []string{
	"TESTING_REPOS",
	"LOCAL_INSTALLERS",
	"LOCAL_COMPONENTS",
	"LOCAL_DEPENDENCIES",
}

type Display struct {
	X11      bool   `yaml:"x11"`
	X11Port  string `yaml:"x11_port,omitempty"`
	Wayland  bool   `yaml:"wayland"`
	XWayland bool   `yaml:"xwayland"`
}

type Memory struct {
	TotalKB     int64 `yaml:"total_kb"`
	AvailableKB int64 `yaml:"available_kb"`
}

type Disk struct {
	TotalBytes int64 `yaml:"total_bytes"`
	FreeBytes  int64 `yaml:"free_bytes"`
}

// Report is a point-in-time snapshot of the host environment.
type Report struct {
	Version       string            `yaml:"version"`
	Desktop       string            `yaml:"desktop,omitempty"`
	Display       Display           `yaml:"display"`
	Kernel        string            `yaml:"kernel"`
	KernelVersion string            `yaml:"kernel_version"`
	Memory        Memory            `yaml:"memory"`
	Disk          Disk              `yaml:"disk"`
	Tools         map[string]bool   `yaml:"tools"`
	Overrides     map[string]string `yaml:"overrides,omitempty"`
}

// Check probes the running system. diskPath is the directory whose
// filesystem headroom matters, usually the cellar data directory.
func Check(diskPath string) *Report {
	r := &Report{
		Version:   version.Version,
		Desktop:   os.Getenv("XDG_CURRENT_DESKTOP"),
		Display:   probeDisplay(os.Getenv),
		Tools:     probeTools(),
		Overrides: probeOverrides(os.Getenv),
	}
	r.Kernel, r.KernelVersion = probeKernel()
	r.Memory = probeMemory()
	r.Disk = probeDisk(diskPath)
	return r
}

// Plain renders the report as YAML for bug reports and the CLI.
func (r *Report) Plain() (string, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to render health report: %w", err)
	}
	return string(out), nil
}

// HasCoreDeps reports whether every required external tool is present.
func (r *Report) HasCoreDeps() bool {
	for _, tool := range coreTools {
		if !r.Tools[tool] {
			return false
		}
	}
	return true
}

// MissingCoreDeps lists the required tools not found on PATH.
func (r *Report) MissingCoreDeps() []string {
	var missing []string
	for _, tool := range coreTools {
		if !r.Tools[tool] {
			missing = append(missing, tool)
		}
	}
	return missing
}

func probeDisplay(getenv func(string) string) Display {
	d := Display{
		X11Port: getenv("DISPLAY"),
		Wayland: getenv("WAYLAND_DISPLAY") != "",
	}
	d.X11 = d.X11Port != ""
	d.XWayland = d.X11 && d.Wayland
	return d
}

func probeTools() map[string]bool {
	tools := make(map[string]bool, len(coreTools)+len(extraTools))
	for _, tool := range append(append([]string{}, coreTools...), extraTools...) {
		_, err := exec.LookPath(tool)
		tools[tool] = err == nil
	}
	return tools
}

func probeOverrides(getenv func(string) string) map[string]string {
	var out map[string]string
	for _, key := range overrideEnvs {
		if v := getenv(key); v != "" {
			if out == nil {
				out = make(map[string]string)
			}
			out[key] = v
		}
	}
	return out
}

func probeKernel() (string, string) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "unknown", "unknown"
	}
	return unix.ByteSliceToString(uts.Sysname[:]), unix.ByteSliceToString(uts.Release[:])
}

func probeMemory() Memory {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return Memory{}
	}
	defer f.Close()
	return parseMemInfo(f)
}

func parseMemInfo(r io.Reader) Memory {
	var m Memory
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			m.TotalKB = kb
		case "MemAvailable:":
			m.AvailableKB = kb
		}
	}
	return m
}

func probeDisk(path string) Disk {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Disk{}
	}
	bsize := int64(st.Bsize)
	return Disk{
		TotalBytes: int64(st.Blocks) * bsize,
		FreeBytes:  int64(st.Bavail) * bsize,
	}
}
