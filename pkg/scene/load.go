package scene

import (
	"bytes"
	"embed"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/txwater/studymap/pkg/errors"
)

//go:embed presets/*.toml
var presets embed.FS

// Names lists the built-in presets.
func Names() []string {
	entries, _ := presets.ReadDir("presets")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	slices.Sort(names)
	return names
}

// PresetSource returns a preset's TOML text.
func PresetSource(name string) ([]byte, error) {
	data, err := presets.ReadFile(path.Join("presets", name+".toml"))
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene preset %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Preset decodes a built-in preset.
func Preset(name string) (*Scene, error) {
	data, err := PresetSource(name)
	if err != nil {
		return nil, err
	}
	return Decode(data, name)
}

// Load decodes a scene file.
func Load(file string) (*Scene, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound([]string{file})
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "read scene %s", file)
	}
	return Decode(data, file)
}

// Resolve returns the preset called nameOrPath, or loads it as a file.
func Resolve(nameOrPath string) (*Scene, error) {
	if slices.Contains(Names(), nameOrPath) {
		return Preset(nameOrPath)
	}
	if strings.HasSuffix(nameOrPath, ".toml") || strings.ContainsRune(nameOrPath, os.PathSeparator) {
		return Load(nameOrPath)
	}
	return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene %q: not a preset (%s) or a .toml file", nameOrPath, strings.Join(Names(), ", "))
}

// Decode parses scene TOML. Unknown keys are rejected so typos do not
// silently fall back to defaults. source names the input in errors and
// becomes the scene name when the file sets none.
func Decode(data []byte, source string) (*Scene, error) {
	var s Scene
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse scene %s", source)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScene, "scene %s: unknown keys %s", source, strings.Join(keys, ", "))
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(source), ".toml")
	}
	return &s, nil
}

// Encode writes s as TOML.
func Encode(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene %s", s.Name)
	}
	return buf.Bytes(), nil
}
