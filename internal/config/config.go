package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/proxy"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/release"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/socket"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// Fallbacks for inputs left blank. The owning packages hold the values.
const (
	DefaultSocketRoot          = proxy.DefaultSocketRoot
	DefaultSocketTimeout       = socket.DefaultTimeout
	DefaultReleaseURL          = release.DefaultIndexURL
	DefaultDownloadURLTemplate = release.DefaultURLTemplate
)

const (
	// CredentialsEnv is set by google-github-actions/auth.
	CredentialsEnv = "GOOGLE_GHA_CREDS_PATH"

	// ConfigFileEnv names an optional TOML file of inputs.
	ConfigFileEnv = "SETUP_CLOUDSQL_PROXY_CONFIG"
)

// Inputs is the resolved configuration for one run. It is built once at
// the command boundary and passed by value.
type Inputs struct {
	InstanceConnectionName string
	Address                string
	Port                   string
	PrivateIP              string
	BinPath                string

	SocketRoot    string
	SocketTimeout time.Duration

	// CredentialsFile comes from GOOGLE_GHA_CREDS_PATH.
	CredentialsFile string
	GcloudPath      string

	ReleaseURL          string
	DownloadURLTemplate string
}

// Presence returns s trimmed, so blank values read as absent.
func Presence(s string) string {
	return strings.TrimSpace(s)
}

// Loader resolves inputs from, in order of precedence: changed flags,
// INPUT_* environment variables, a TOML file, and schema defaults.
type Loader struct {
	Schema *Schema
	Flags  *pflag.FlagSet
	Getenv func(string) string
	FS     system.FileSystem

	// ConfigFile is an optional TOML file path. When empty, ConfigFileEnv
	// is consulted.
	ConfigFile string
}

// Load resolves the inputs and checks every input the schema marks
// required.
func (l *Loader) Load() (Inputs, error) {
	return l.LoadRequiring(l.schema().Required()...)
}

// LoadRequiring resolves the inputs and checks only the named ones. Commands
// that run part of the sequence use it.
func (l *Loader) LoadRequiring(required ...string) (Inputs, error) {
	values, err := l.Resolve()
	if err != nil {
		return Inputs{}, err
	}
	if err := requireValues(values, required); err != nil {
		return Inputs{}, err
	}

	timeout, err := ParseTimeout(values["socket_timeout"])
	if err != nil {
		return Inputs{}, err
	}

	return Inputs{
		InstanceConnectionName: values["instance_connection_name"],
		Address:                values["address"],
		Port:                   values["port"],
		PrivateIP:              values["private_ip"],
		BinPath:                values["bin_path"],
		SocketRoot:             orDefault(values["socket_root"], DefaultSocketRoot),
		SocketTimeout:          timeout,
		CredentialsFile:        Presence(l.getenv(CredentialsEnv)),
		GcloudPath:             values["gcloud_path"],
		ReleaseURL:             orDefault(values["release_url"], DefaultReleaseURL),
		DownloadURLTemplate:    orDefault(values["download_url_template"], DefaultDownloadURLTemplate),
	}, nil
}

// Resolve returns the presence-checked value of every schema input.
func (l *Loader) Resolve() (map[string]string, error) {
	file, err := l.fileValues()
	if err != nil {
		return nil, err
	}

	s := l.schema()
	values := make(map[string]string, len(s.Inputs))
	for _, name := range s.Names() {
		values[name] = Presence(l.lookup(name, s.Inputs[name], file))
	}
	return values, nil
}

func (l *Loader) lookup(name string, in Input, file map[string]string) string {
	if l.Flags != nil {
		if f := l.Flags.Lookup(FlagName(name)); f != nil && f.Changed {
			return f.Value.String()
		}
	}
	if v := l.getenv(EnvName(name)); Presence(v) != "" {
		return v
	}
	if v, ok := file[name]; ok {
		return v
	}
	return in.Default
}

func (l *Loader) fileValues() (map[string]string, error) {
	path := l.ConfigFile
	if path == "" {
		path = Presence(l.getenv(ConfigFileEnv))
	}
	if path == "" {
		return nil, nil
	}

	fsys := l.FS
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	return ParseFile(l.schema(), data)
}

// ParseFile parses a TOML file of input values. Keys are input names;
// values may be strings, numbers or booleans.
func ParseFile(s *Schema, data []byte) (map[string]string, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errors.ConfigError("failed to parse config file", err)
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		if _, ok := s.Inputs[key]; !ok {
			return nil, errors.ConfigError(fmt.Sprintf("unknown input %q in config file", key), nil)
		}
		switch v := v.(type) {
		case string:
			values[key] = v
		case int64, float64, bool:
			values[key] = fmt.Sprint(v)
		default:
			return nil, errors.ConfigError(fmt.Sprintf("input %q must be a string, number or boolean", key), nil)
		}
	}
	return values, nil
}

// Validate reports every required input that has no value.
func (s *Schema) Validate(values map[string]string) error {
	return requireValues(values, s.Required())
}

func requireValues(values map[string]string, names []string) error {
	var missing []string
	for _, name := range names {
		if Presence(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.ValidationError(fmt.Sprintf("Input required and not supplied: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// ParseTimeout accepts a Go duration ("10s") or a bare number of
// milliseconds ("10000"). Empty means DefaultSocketTimeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = Presence(s)
	if s == "" {
		return DefaultSocketTimeout, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, errors.ValidationError(fmt.Sprintf("socket_timeout must not be negative: %s", s))
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.ConfigError(fmt.Sprintf("invalid socket_timeout %q", s), err)
	}
	if d < 0 {
		return 0, errors.ValidationError(fmt.Sprintf("socket_timeout must not be negative: %s", s))
	}
	return d, nil
}

func (l *Loader) schema() *Schema {
	if l.Schema != nil {
		return l.Schema
	}
	return DefaultSchema()
}

func (l *Loader) getenv(key string) string {
	if l.Getenv == nil {
		return ""
	}
	return l.Getenv(key)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
