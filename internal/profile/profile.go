// Package profile holds the catalog of conversion profiles. A profile groups
// quality presets; a preset maps a quality name to converter parameters.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultCatalog []byte

// Preset is one quality of a profile.
type Preset struct {
	Quality   string `yaml:"quality"`
	Tag       string `yaml:"tag"`
	Extension string `yaml:"extension"`
	Params    string `yaml:"params"`

	profile string
}

// Profile is a named group of presets, e.g. DVD.
type Profile struct {
	Name    string   `yaml:"name"`
	Presets []Preset `yaml:"presets"`
}

// Catalog is the full set of profiles, keyed for lookup by quality name.
type Catalog struct {
	Profiles []Profile `yaml:"profiles"`

	byQuality map[string]*Preset
}

// UnknownQualityError is returned when a quality name is not in the catalog.
type UnknownQualityError struct {
	Quality     string
	Suggestions []string
}

func (e *UnknownQualityError) Error() string {
	msg := fmt.Sprintf("unknown quality %q", e.Quality)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic("embedded profiles: " + err.Error())
	}
	return c
}

// Resolve loads the catalog at path if it exists and falls back to the
// embedded one otherwise. A present but broken file is an error.
func Resolve(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return LoadFile(path)
}

// Export writes the embedded catalog, comments included.
func Export(w io.Writer) error {
	_, err := w.Write(defaultCatalog)
	return err
}

func (c *Catalog) index() error {
	if len(c.Profiles) == 0 {
		return errors.New("profiles: catalog is empty")
	}
	c.byQuality = make(map[string]*Preset)
	for pi := range c.Profiles {
		p := &c.Profiles[pi]
		if p.Name == "" {
			return fmt.Errorf("profiles: profile #%d has no name", pi+1)
		}
		for qi := range p.Presets {
			pr := &p.Presets[qi]
			switch {
			case pr.Quality == "":
				return fmt.Errorf("profiles: %s preset #%d has no quality name", p.Name, qi+1)
			case strings.TrimSpace(pr.Params) == "":
				return fmt.Errorf("profiles: %q has no params", pr.Quality)
			case pr.Extension == "":
				return fmt.Errorf("profiles: %q has no extension", pr.Quality)
			}
			if !strings.HasPrefix(pr.Extension, ".") {
				pr.Extension = "." + pr.Extension
			}
			if _, dup := c.byQuality[pr.Quality]; dup {
				return fmt.Errorf("profiles: duplicate quality %q", pr.Quality)
			}
			pr.profile = p.Name
			c.byQuality[pr.Quality] = pr
		}
	}
	return nil
}

// Lookup finds the preset for a quality name.
func (c *Catalog) Lookup(quality string) (Preset, error) {
	if pr, ok := c.byQuality[quality]; ok {
		return *pr, nil
	}
	return Preset{}, &UnknownQualityError{Quality: quality, Suggestions: c.suggest(quality, 3)}
}

func (c *Catalog) suggest(quality string, n int) []string {
	type candidate struct {
		target string
		tier   int // 0: characters in order, 1: within edit distance
		dist   int
	}
	folded := strings.ToLower(quality)
	cutoff := max(len([]rune(quality))/4, 1)

	var cands []candidate
	for _, q := range c.allQualities() {
		lq := strings.ToLower(q)
		if d := fuzzy.RankMatchFold(quality, q); d >= 0 {
			cands = append(cands, candidate{q, 0, d})
		} else if d := fuzzy.LevenshteinDistance(folded, lq); d <= cutoff {
			cands = append(cands, candidate{q, 1, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].tier != cands[j].tier {
			return cands[i].tier < cands[j].tier
		}
		return cands[i].dist < cands[j].dist
	})

	var out []string
	for _, cd := range cands {
		if len(out) == n {
			break
		}
		out = append(out, cd.target)
	}
	return out
}

func (c *Catalog) allQualities() []string {
	var qs []string
	for _, p := range c.Profiles {
		for _, pr := range p.Presets {
			qs = append(qs, pr.Quality)
		}
	}
	return qs
}

// Names lists profile names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Qualities lists the quality names of a profile in catalog order.
// Profile names match case-insensitively.
func (c *Catalog) Qualities(profile string) ([]string, error) {
	for _, p := range c.Profiles {
		if strings.EqualFold(p.Name, profile) {
			qs := make([]string, 0, len(p.Presets))
			for _, pr := range p.Presets {
				qs = append(qs, pr.Quality)
			}
			return qs, nil
		}
	}
	return nil, fmt.Errorf("unknown profile %q (have: %s)", profile, strings.Join(c.Names(), ", "))
}

// Profile returns the name of the profile owning the preset.
func (p Preset) Profile() string { return p.profile }

// Args splits the parameter string into argv tokens.
func (p Preset) Args() []string { return strings.Fields(p.Params) }
