package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvResourceDir overrides resource_dir from the environment.
	EnvResourceDir = "ASMQC_RESOURCE_DIR"

	DefaultResourceDir = "/usr/local/share/asmqc"
)

type Config struct {
	// ResourceDir holds the bundled tool resources: gage/ and ratt/.
	ResourceDir string     `yaml:"resource_dir" toml:"resource_dir"`
	EnvFile     string     `yaml:"env_file" toml:"env_file"`
	Tools       Tools      `yaml:"tools" toml:"tools"`
	InsertSize  InsertSize `yaml:"insert_size" toml:"insert_size"`
	Executor    Executor   `yaml:"executor" toml:"executor"`
	Log         Log        `yaml:"log" toml:"log"`

	// Env is read from EnvFile by Load.
	Env map[string]string `yaml:"-" toml:"-"`
}

type Tools struct {
	GageDir    string `yaml:"gage_dir" toml:"gage_dir"`
	RattHome   string `yaml:"ratt_home" toml:"ratt_home"`
	RattConfig string `yaml:"ratt_config" toml:"ratt_config"`
	Reapr      string `yaml:"reapr" toml:"reapr"`
	Samtools   string `yaml:"samtools" toml:"samtools"`
	Sh         string `yaml:"sh" toml:"sh"`
	Bash       string `yaml:"bash" toml:"bash"`
}

type InsertSize struct {
	// Method is samtools or native.
	Method  string `yaml:"method" toml:"method"`
	Threads int    `yaml:"threads" toml:"threads"`
}

type Executor struct {
	// Kind is local or docker.
	Kind   string   `yaml:"kind" toml:"kind"`
	Image  string   `yaml:"image" toml:"image"`
	Mounts []string `yaml:"mounts" toml:"mounts"`
	User   string   `yaml:"user" toml:"user"`
}

type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default is the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	if err := validate(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.EnvFile != "" {
		envFile := cfg.EnvFile
		if !filepath.IsAbs(envFile) {
			envFile = filepath.Join(filepath.Dir(path), envFile)
		}
		if cfg.Env, err = godotenv.Read(envFile); err != nil {
			return nil, fmt.Errorf("reading env_file %s: %w", envFile, err)
		}
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func validate(cfg *Config) error {
	if cfg.ResourceDir == "" {
		cfg.ResourceDir = os.Getenv(EnvResourceDir)
	}
	if cfg.ResourceDir == "" {
		cfg.ResourceDir = DefaultResourceDir
	}
	t := &cfg.Tools
	if t.GageDir == "" {
		t.GageDir = filepath.Join(cfg.ResourceDir, "gage")
	}
	if t.RattHome == "" {
		t.RattHome = filepath.Join(cfg.ResourceDir, "ratt")
	}
	if t.Reapr == "" {
		t.Reapr = "reapr"
	}
	if t.Samtools == "" {
		t.Samtools = "samtools"
	}
	if t.Sh == "" {
		t.Sh = "sh"
	}
	if t.Bash == "" {
		t.Bash = "bash"
	}

	switch cfg.InsertSize.Method {
	case "":
		cfg.InsertSize.Method = "samtools"
	case "samtools", "native":
	default:
		return fmt.Errorf("insert_size.method %q: want samtools or native", cfg.InsertSize.Method)
	}
	if cfg.InsertSize.Threads < 0 {
		return fmt.Errorf("insert_size.threads must not be negative")
	}

	switch cfg.Executor.Kind {
	case "":
		cfg.Executor.Kind = "local"
	case "local":
	case "docker":
		if cfg.Executor.Image == "" {
			return fmt.Errorf("executor.image is required for the docker executor")
		}
	default:
		return fmt.Errorf("executor.kind %q: want local or docker", cfg.Executor.Kind)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return nil
}
