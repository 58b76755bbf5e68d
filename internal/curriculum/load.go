package curriculum

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed chapters.yaml
var defaultCatalogYAML []byte

type catalogDoc struct {
	Chapters []chapterDoc `yaml:"chapters"`
}

type chapterDoc struct {
	ID              int            `yaml:"id"`
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	Phase           string         `yaml:"phase"`
	PhaseNumber     int            `yaml:"phase_number"`
	TargetWPM       int            `yaml:"target_wpm"`
	MinimumAccuracy int            `yaml:"minimum_accuracy"`
	FocusKeys       []string       `yaml:"focus_keys"`
	Words           []string       `yaml:"words"`
	Sentences       []string       `yaml:"sentences"`
	Unlock          *unlockDoc     `yaml:"unlock"`
	Stars           []thresholdDoc `yaml:"stars"`
}

type unlockDoc struct {
	ChapterID int `yaml:"chapter_id"`
	MinStars  int `yaml:"min_stars"`
}

type thresholdDoc struct {
	Level    int `yaml:"level"`
	WPM      int `yaml:"wpm"`
	Accuracy int `yaml:"accuracy"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	slog.Info("catalog loaded", "path", path, "chapters", c.Len())
	return c, nil
}

// Parse decodes, schema-checks and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	chapters := make([]Chapter, 0, len(doc.Chapters))
	for _, cd := range doc.Chapters {
		chapters = append(chapters, cd.chapter())
	}
	c := NewCatalog(chapters)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (cd chapterDoc) chapter() Chapter {
	ch := Chapter{
		ID:              cd.ID,
		Title:           cd.Title,
		Description:     cd.Description,
		Phase:           cd.Phase,
		PhaseNumber:     cd.PhaseNumber,
		TargetWPM:       cd.TargetWPM,
		MinimumAccuracy: cd.MinimumAccuracy,
		FocusKeys:       cd.FocusKeys,
		Words:           cd.Words,
		Sentences:       cd.Sentences,
		StarThresholds:  make(map[int]Threshold, len(cd.Stars)),
	}
	if cd.Unlock != nil {
		ch.UnlockRequirement = &UnlockRequirement{
			ChapterID: cd.Unlock.ChapterID,
			MinStars:  cd.Unlock.MinStars,
		}
	}
	for _, t := range cd.Stars {
		ch.StarThresholds[t.Level] = Threshold{WPM: t.WPM, Accuracy: t.Accuracy}
	}
	return ch
}
