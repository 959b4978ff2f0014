// Package platform describes the host the proxy binary is provisioned for.
package platform

import goruntime "runtime"

// Descriptor identifies a release artifact's target platform.
type Descriptor struct {
	OS   string
	Arch string
}

func (d Descriptor) String() string {
	return d.OS + "/" + d.Arch
}

// archAliases maps architecture names used by other toolchains onto the
// names used in proxy release artifacts.
var archAliases = map[string]string{
	"x64": "amd64",
	"x86": "386",
}

// NormalizeArch maps x64 to amd64 and x86 to 386. Every other value is
// returned unchanged.
func NormalizeArch(arch string) string {
	if mapped, ok := archAliases[arch]; ok {
		return mapped
	}
	return arch
}

// Detect returns the descriptor for the running host. It has no side effects
// and returns the same value on every call.
func Detect() Descriptor {
	return From(goruntime.GOOS, goruntime.GOARCH)
}

// From builds a descriptor from raw OS and architecture names.
func From(osName, arch string) Descriptor {
	return Descriptor{OS: osName, Arch: NormalizeArch(arch)}
}
