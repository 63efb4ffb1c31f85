package search

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultLink = "shop.html"

var defaultFallback = []Entry{
	{Name: "Classic Watch Collection", Description: "Luxury automatic and quartz watches curated from top designers.", Link: defaultLink},
	{Name: "Performance Sneakers", Description: "Lightweight trainers engineered for movement and breathability.", Link: defaultLink},
	{Name: "Artisan Accessories", Description: "Handcrafted jewelry, belts, and small leather goods.", Link: defaultLink},
	{Name: "Leather Gym Duffel", Description: "Full-grain leather gym bag with ventilated shoe pocket.", Link: defaultLink},
	{Name: "City Runner Sneakers", Description: "Featherweight knit sneakers for daily runs.", Link: defaultLink},
	{Name: "Summer Canvas Trainers", Description: "Breathable canvas trainers with contrast trims.", Link: defaultLink},
	{Name: "Gym Weight Set", Description: "Adjustable dumbbells and weight plates for strength training.", Link: defaultLink},
	{Name: "Streetwear Sneakers", Description: "Chunky sole sneaker with suede overlays.", Link: defaultLink},
	{Name: "Summer Adidas Sneakers", Description: "Retro Adidas sneakers with breathable mesh.", Link: defaultLink},
	{Name: "Smart Fitness Watch", Description: "AMOLED fitness watch with heart rate tracking.", Link: defaultLink},
}

// DefaultFallback returns a copy of the built-in product list.
func DefaultFallback() []Entry {
	out := make([]Entry, len(defaultFallback))
	copy(out, defaultFallback)
	return out
}

type fallbackFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadFallback reads a YAML catalog of the form
//
//	entries:
//	  - name: Classic Watch Collection
//	    description: ...
//	    link: shop.html
//
// Entries without a name are skipped and an empty link becomes "#".
func LoadFallback(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback catalog: %w", err)
	}

	var f fallbackFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fallback catalog %q: %w", path, err)
	}

	out := make([]Entry, 0, len(f.Entries))
	for _, e := range f.Entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		if e.Link == "" {
			e.Link = "#"
		}
		out = append(out, e)
	}
	return out, nil
}
