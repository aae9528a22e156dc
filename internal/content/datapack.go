// Package content loads datapacks: YAML files of flavor text (exit, victory
// and defeat messages) with an optional Lua script whose hooks can override
// the static lists. Datapacks never affect match rules.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Readme is written into a freshly created datapacks directory.
const Readme = `Hello!
Put your .yaml datapacks for entities here.
You may also create subfolders to organize your files.

A datapack looks like this:

meta:
  name: My Pack
  author: you
  description: A few extra lines.
data:
  exit:
    - text: "See you next time!"
  victory:
    - text: "{green}Flawless.{reset}"
      formatted: true
  defeat:
    - text: "Better luck next time."
script: my_pack.lua   # optional, relative to this file
`

// Message is one line of flavor text. When Formatted is set, Text may contain
// {color} markup for the console to expand.
type Message struct {
	Text      string `yaml:"text"`
	Formatted bool   `yaml:"formatted"`
}

// Meta describes a datapack in the main menu.
type Meta struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

// Data holds a datapack's message lists.
type Data struct {
	Exit    []Message `yaml:"exit"`
	Victory []Message `yaml:"victory"`
	Defeat  []Message `yaml:"defeat"`
}

// Pack is one parsed datapack file.
type Pack struct {
	Meta   Meta   `yaml:"meta"`
	Data   Data   `yaml:"data"`
	Script string `yaml:"script"`

	// Path is the file the pack was read from. Key identifies its script VM.
	Path string `yaml:"-"`
	Key  string `yaml:"-"`
}

// Validate checks required fields.
func (p *Pack) Validate() error {
	if strings.TrimSpace(p.Meta.Name) == "" {
		return errors.New("meta.name must not be empty")
	}
	for _, list := range [][]Message{p.Data.Exit, p.Data.Victory, p.Data.Defeat} {
		for i, m := range list {
			if strings.TrimSpace(m.Text) == "" {
				return fmt.Errorf("message %d: text must not be empty", i)
			}
		}
	}
	return nil
}

// ScriptPath resolves Script relative to the pack file; empty when no script is set.
func (p *Pack) ScriptPath() string {
	if p.Script == "" {
		return ""
	}
	if filepath.IsAbs(p.Script) {
		return p.Script
	}
	return filepath.Join(filepath.Dir(p.Path), p.Script)
}

// ParsePack decodes one datapack document, rejecting unknown fields.
func ParsePack(data []byte) (*Pack, error) {
	var p Pack
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Scan returns every valid datapack under dir, searched recursively in
// lexical order. When dir does not exist it is created along with a readme
// and no packs are returned. Malformed packs are logged at warn level and skipped.
//
// Precondition: logger must not be nil.
func Scan(dir string, logger *zap.Logger) ([]*Pack, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating datapacks dir %q: %w", dir, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte(Readme), 0o644); err != nil {
			return nil, fmt.Errorf("writing datapacks readme: %w", err)
		}
		logger.Info("created datapacks directory", zap.String("dir", dir))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat datapacks dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("datapacks path %q is not a directory", dir)
	}

	var packs []*Pack
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("skipping unreadable datapack path", zap.String("path", path), zap.Error(walkErr))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable datapack", zap.String("path", path), zap.Error(err))
			return nil
		}
		p, err := ParsePack(data)
		if err != nil {
			logger.Warn("skipping malformed datapack", zap.String("path", path), zap.Error(err))
			return nil
		}
		p.Path = path
		p.Key, _ = filepath.Rel(dir, path)
		packs = append(packs, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning datapacks dir %q: %w", dir, err)
	}
	return packs, nil
}
