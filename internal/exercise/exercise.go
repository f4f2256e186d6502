// Package exercise loads dictation exercises from files.
package exercise

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/ditado/internal/model"
)

type exerciseFile struct {
	Exercises []model.Exercise `toml:"exercise" yaml:"exercises"`
}

// LoadExercises reads exercises from a TOML or YAML file, chosen by extension.
func LoadExercises(path string) ([]model.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DecodeTOML(bytes.NewReader(data))
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported exercise file extension %q", filepath.Ext(path))
	}
}

// DecodeTOML parses [[exercise]] tables.
func DecodeTOML(r io.Reader) ([]model.Exercise, error) {
	var file exerciseFile
	meta, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exercises: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown exercise key %q", undecoded[0].String())
	}
	return validate(file.Exercises)
}

// DecodeYAML parses an "exercises" list.
func DecodeYAML(r io.Reader) ([]model.Exercise, error) {
	var file exerciseFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("exercise file is empty")
		}
		return nil, fmt.Errorf("failed to decode exercises: %w", err)
	}
	return validate(file.Exercises)
}

func validate(exercises []model.Exercise) ([]model.Exercise, error) {
	if len(exercises) == 0 {
		return nil, fmt.Errorf("exercise file is empty")
	}
	seen := make(map[string]struct{}, len(exercises))
	out := make([]model.Exercise, 0, len(exercises))
	for i, ex := range exercises {
		ex.ID = strings.TrimSpace(ex.ID)
		ex.Text = strings.TrimSpace(ex.Text)
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise %d: id is required", i+1)
		}
		if _, ok := seen[ex.ID]; ok {
			return nil, fmt.Errorf("exercise %q: duplicate id", ex.ID)
		}
		seen[ex.ID] = struct{}{}
		if ex.Text == "" {
			return nil, fmt.Errorf("exercise %q: text is required", ex.ID)
		}
		if ex.Level < 0 {
			return nil, fmt.Errorf("exercise %q: level must be >= 0", ex.ID)
		}
		out = append(out, ex)
	}
	return out, nil
}

// Find returns the exercise with the given id.
func Find(exercises []model.Exercise, id string) (model.Exercise, bool) {
	for _, ex := range exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return model.Exercise{}, false
}
