package profile

import "sync"

// ConversionProfile binds an active quality to a catalog. Media files share
// one ConversionProfile, so changing the quality retargets the whole queue.
type ConversionProfile struct {
	mu      sync.RWMutex
	catalog *Catalog
	preset  Preset
}

// NewConversionProfile selects quality from catalog.
func NewConversionProfile(catalog *Catalog, quality string) (*ConversionProfile, error) {
	pr, err := catalog.Lookup(quality)
	if err != nil {
		return nil, err
	}
	return &ConversionProfile{catalog: catalog, preset: pr}, nil
}

// SetQuality switches the active preset. On error the previous quality stays.
func (cp *ConversionProfile) SetQuality(quality string) error {
	pr, err := cp.catalog.Lookup(quality)
	if err != nil {
		return err
	}
	cp.mu.Lock()
	cp.preset = pr
	cp.mu.Unlock()
	return nil
}

// Preset returns the active preset.
func (cp *ConversionProfile) Preset() Preset {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return cp.preset
}

func (cp *ConversionProfile) Quality() string   { return cp.Preset().Quality }
func (cp *ConversionProfile) Name() string      { return cp.Preset().Profile() }
func (cp *ConversionProfile) Tag() string       { return cp.Preset().Tag }
func (cp *ConversionProfile) Extension() string { return cp.Preset().Extension }
func (cp *ConversionProfile) Params() []string  { return cp.Preset().Args() }
