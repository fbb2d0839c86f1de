package panels

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

var panelNameRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// Panel is one named live collection and the stream that feeds it.
type Panel struct {
	Name      string        `json:"name" yaml:"name"`
	Title     string        `json:"title,omitempty" yaml:"title,omitempty"`
	Autostart bool          `json:"autostart" yaml:"autostart"`
	Stream    stream.Config `json:"stream" yaml:"stream"`
	// Initial events are present when the panel is built, before its
	// stream first ticks.
	Initial []stream.Seed `json:"initial,omitempty" yaml:"initial,omitempty"`
}

type Catalogue struct {
	Panels []Panel `json:"panels" yaml:"panels"`
}

// Load reads a catalogue from a YAML file. An empty path yields Defaults.
func Load(path string) (Catalogue, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Catalogue{}, apperrors.WrapNotFound(err, "failed to read panels file "+path)
		}
		return Catalogue{}, fmt.Errorf("failed to read panels file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalogue{}, apperrors.WrapInvalidYAML(err, "failed to parse panels")
	}
	if err := c.Validate(); err != nil {
		return Catalogue{}, err
	}
	return c, nil
}

// Marshal renders the catalogue as YAML.
func (c Catalogue) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Catalogue) Validate() error {
	if len(c.Panels) == 0 {
		return fmt.Errorf("%w: catalogue has no panels", apperrors.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Panels))
	for _, p := range c.Panels {
		if err := ValidateName(p.Name); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate panel %q", apperrors.ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true

		if err := p.Stream.Validate(); err != nil {
			return fmt.Errorf("panel %s: %w", p.Name, err)
		}
		if err := p.Stream.ValidateSeeds(p.Initial); err != nil {
			return fmt.Errorf("panel %s: %w", p.Name, err)
		}
	}
	return nil
}

func (c Catalogue) Get(name string) (Panel, bool) {
	for _, p := range c.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return Panel{}, false
}

func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: panel name cannot be empty", apperrors.ErrInvalid)
	}
	if len(name) > 63 {
		return fmt.Errorf("%w: panel name must be 63 characters or less", apperrors.ErrInvalid)
	}
	if !panelNameRegex.MatchString(name) {
		return fmt.Errorf("%w: panel name must be lowercase alphanumeric characters or '-'", apperrors.ErrInvalid)
	}
	return nil
}
