package project

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// Manifest is a parsed quill.toml plus where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the quill.toml layout.
type Config struct {
	Package   PackageConfig   `toml:"package"`
	Toolchain ToolchainConfig `toml:"toolchain"`
	Check     CheckConfig     `toml:"check"`
}

type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// ToolchainConfig pins the quill versions a project accepts, as a semver
// constraint like ">= 0.1".
type ToolchainConfig struct {
	Quill string `toml:"quill"`
}

// CheckConfig configures the check pipeline for the project's modules.
type CheckConfig struct {
	Modules        []string `toml:"modules"`
	Jobs           int      `toml:"jobs"`
	CacheDir       string   `toml:"cache_dir"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

// Load locates and parses the nearest quill.toml above startDir. ok is
// false when no manifest exists, which is not an error.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindQuillToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if !meta.IsDefined("package", "name") || name == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if !IsValidPackageName(name) {
		return Config{}, fmt.Errorf("%s: invalid [package].name %q", path, name)
	}
	if v := strings.TrimSpace(cfg.Package.Version); v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			return Config{}, fmt.Errorf("%s: invalid [package].version %q: %w", path, v, err)
		}
	}
	if c := strings.TrimSpace(cfg.Toolchain.Quill); c != "" {
		if _, err := semver.NewConstraint(c); err != nil {
			return Config{}, fmt.Errorf("%s: invalid [toolchain].quill constraint %q: %w", path, c, err)
		}
	}
	if !meta.IsDefined("check", "modules") || len(cfg.Check.Modules) == 0 {
		return Config{}, fmt.Errorf("%s: missing [check].modules", path)
	}
	for _, m := range cfg.Check.Modules {
		if filepath.Ext(m) != ".qmod" {
			return Config{}, fmt.Errorf("%s: [check].modules entry %q is not a .qmod file", path, m)
		}
	}
	return cfg, nil
}

// CheckToolchain verifies the running quill version against the manifest's
// [toolchain].quill constraint. Prerelease tags on the running version are
// ignored so a dev build satisfies ">= 0.1.0".
func (m *Manifest) CheckToolchain(running string) error {
	raw := strings.TrimSpace(m.Config.Toolchain.Quill)
	if raw == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid [toolchain].quill constraint %q: %w", m.Path, raw, err)
	}
	v, err := semver.NewVersion(strings.TrimSpace(running))
	if err != nil {
		return fmt.Errorf("cannot parse toolchain version %q: %w", running, err)
	}
	bare := semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
	if !constraint.Check(bare) {
		return fmt.Errorf("%s: quill %s does not satisfy [toolchain].quill = %q", m.Path, running, raw)
	}
	return nil
}

// ModulePaths resolves [check].modules against the project root.
func (m *Manifest) ModulePaths() []string {
	out := make([]string, 0, len(m.Config.Check.Modules))
	for _, rel := range m.Config.Check.Modules {
		out = append(out, filepath.Join(m.Root, filepath.FromSlash(rel)))
	}
	return out
}

// IsValidPackageName accepts ASCII identifiers: a letter or underscore,
// then letters, digits, and underscores.
func IsValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
