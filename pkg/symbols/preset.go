package symbols

import (
	"runtime"
	"strconv"

	"github.com/raymyers/pypre/pkg/literal"
)

// Preset symbol names.
const (
	PythonVersion      = "PYTHON_VERSION"
	PythonMajorVersion = "PYTHON_MAJOR_VERSION"
	PythonMinorVersion = "PYTHON_MINOR_VERSION"
	PythonMicroVersion = "PYTHON_MICRO_VERSION"
	OS                 = "OS"
	Arch               = "ARCH"
	Is64               = "IS64"
)

// PresetNames lists the presets in the order overrides are read.
var PresetNames = []string{
	PythonVersion,
	PythonMajorVersion,
	PythonMinorVersion,
	PythonMicroVersion,
	OS,
	Arch,
	Is64,
}

// DefaultPythonVersion is used when the interpreter version is unknown.
var DefaultPythonVersion = [3]int{3, 0, 0}

// Platform holds the facts the presets are derived from.
type Platform struct {
	PythonVersion [3]int
	OS            string
	Arch          string
	Is64          bool
}

// HostPlatform describes the running host, named the way the interpreter
// reports it (uname system name and machine).
func HostPlatform() Platform {
	return Platform{
		PythonVersion: DefaultPythonVersion,
		OS:            osName(runtime.GOOS),
		Arch:          machineName(runtime.GOOS, runtime.GOARCH),
		Is64:          strconv.IntSize == 64,
	}
}

// Presets returns the seven preset symbols for p.
func (p Platform) Presets() []Symbol {
	v := p.PythonVersion
	return []Symbol{
		{Name: PythonVersion, Value: literal.IntTuple(v[0], v[1], v[2])},
		{Name: PythonMajorVersion, Value: literal.Int(int64(v[0]))},
		{Name: PythonMinorVersion, Value: literal.Int(int64(v[1]))},
		{Name: PythonMicroVersion, Value: literal.Int(int64(v[2]))},
		{Name: OS, Value: literal.Str(p.OS)},
		{Name: Arch, Value: literal.Str(p.Arch)},
		{Name: Is64, Value: literal.Bool(p.Is64)},
	}
}

func osName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin", "ios":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	case "dragonfly":
		return "DragonFly"
	case "solaris", "illumos":
		return "SunOS"
	case "aix":
		return "AIX"
	default:
		return goos
	}
}

func machineName(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "386":
		if goos == "windows" {
			return "x86"
		}
		return "i686"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "arm":
		return "armv7l"
	case "ppc64le":
		return "ppc64le"
	case "riscv64":
		return "riscv64"
	case "s390x":
		return "s390x"
	default:
		return goarch
	}
}
