package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Path is the default settings file, relative to the process working directory.
const Path = "config/giftbox.yaml"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Settings holds everything tunable about the gift box app. Transient runtime state is never stored here.
type Settings struct {
	Window  Window  `yaml:"window"`
	Physics Physics `yaml:"physics"`
	Gift    Gift    `yaml:"gift"`
	Model   Model   `yaml:"model"`
	Snow    Snow    `yaml:"snow"`
	Card    Card    `yaml:"card"`
	API     API     `yaml:"api"`
	Debug   Debug   `yaml:"debug"`
}

type Window struct {
	Width     int32  `yaml:"width"`
	Height    int32  `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int32  `yaml:"target_fps"`
	// Font is a TTF/OTF file for the status panel, console and debug overlay. Empty uses raylib's font.
	Font string `yaml:"font,omitempty"`
}

type Physics struct {
	Gravity           [3]float32 `yaml:"gravity"`
	GroundY           float32    `yaml:"ground_y"`
	HasGround         bool       `yaml:"has_ground"`
	GroundRestitution float32    `yaml:"ground_restitution"`
	GroundFriction    float32    `yaml:"ground_friction"`
}

// Gift tunes the interactive box: its body, the open/split thresholds, impulses and the click gesture.
type Gift struct {
	Start          [3]float32 `yaml:"start"`
	Mass           float32    `yaml:"mass"`
	Restitution    float32    `yaml:"restitution"`
	Friction       float32    `yaml:"friction"`
	LinearDamping  float32    `yaml:"linear_damping"`
	AngularDamping float32    `yaml:"angular_damping"`
	ColliderScale  float32    `yaml:"collider_scale"`

	// OpenAngle is the |yaw| in degrees above which the box reports opened.
	OpenAngle float32 `yaml:"open_angle"`
	// SplitHeight is the cover world Y below which the box splits in two.
	SplitHeight  float32 `yaml:"split_height"`
	PartMass     float32 `yaml:"part_mass"`
	CoverImpulse float32 `yaml:"cover_impulse"`
	BaseImpulse  float32 `yaml:"base_impulse"`

	RumbleIntensity float32       `yaml:"rumble_intensity"`
	RumbleDuration  time.Duration `yaml:"rumble_duration"`
	ClickWindow     time.Duration `yaml:"click_window"`
	ClickThreshold  int           `yaml:"click_threshold"`

	CoverPart string `yaml:"cover_part"`
	BasePart  string `yaml:"base_part"`
}

// Model lists the named box nodes. Offsets are relative to the box origin (its bottom center).
type Model struct {
	Parts []Part `yaml:"parts"`
}

type Part struct {
	Name        string     `yaml:"name"`
	Offset      [3]float32 `yaml:"offset"`
	HalfExtents [3]float32 `yaml:"half_extents"`
	Color       string     `yaml:"color"`
}

type Snow struct {
	Count     int     `yaml:"count"`
	Area      float32 `yaml:"area"`
	FallSpeed float32 `yaml:"fall_speed"`
}

type Card struct {
	Delay    time.Duration `yaml:"delay"`
	Images   []string      `yaml:"images"` // empty cards show the greeting alone
	FontsDir string        `yaml:"fonts_dir"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	CSS      string        `yaml:"css"`
}

type API struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type Debug struct {
	ShowFPS      bool `yaml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc"`
	ShowState    bool `yaml:"show_state"`
}

// Default returns the settings the box ships with.
func Default() Settings {
	return Settings{
		Window: Window{Width: 1280, Height: 800, Title: "Gift Box", TargetFPS: 60},
		Physics: Physics{
			Gravity:           [3]float32{0, -9.81, 0},
			GroundY:           0,
			HasGround:         true,
			GroundRestitution: 0.1,
			GroundFriction:    0.7,
		},
		Gift: Gift{
			Start:           [3]float32{0, 2, 0},
			Mass:            10,
			Restitution:     0.2,
			Friction:        0.7,
			LinearDamping:   0.5,
			AngularDamping:  0.5,
			ColliderScale:   1.2,
			OpenAngle:       80,
			SplitHeight:     0.1,
			PartMass:        1,
			CoverImpulse:    5,
			BaseImpulse:     3,
			RumbleIntensity: 0.1,
			RumbleDuration:  200 * time.Millisecond,
			ClickWindow:     1000 * time.Millisecond,
			ClickThreshold:  3,
			CoverPart:       "Cover",
			BasePart:        "Base",
		},
		Model: Model{Parts: []Part{
			{Name: "Base", Offset: [3]float32{0, 0.336, 0}, HalfExtents: [3]float32{0.336, 0.336, 0.336}, Color: "#b3202a"},
			{Name: "Cover", Offset: [3]float32{0, 0.739, 0}, HalfExtents: [3]float32{0.36, 0.067, 0.36}, Color: "#ffd700"},
		}},
		Snow: Snow{Count: 1000, Area: 20, FallSpeed: 0.5},
		Card: Card{
			Delay:    500 * time.Millisecond,
			FontsDir: "assets/fonts",
			Width:    450,
			Height:   600,
			CSS:      "assets/ui/card.css",
		},
		API:   API{Enabled: true, Addr: ":8080"},
		Debug: Debug{ShowFPS: false, ShowMemAlloc: false, ShowState: true},
	}
}

// Load reads settings from path on top of Default(). A missing file returns Default() and no error;
// an unparsable or invalid file is an error.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// Save writes settings to path as YAML, creating the directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting the app cannot run with.
func (s Settings) Validate() error {
	g := s.Gift
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, s.Window.Width, s.Window.Height)
	case g.Mass <= 0 || g.PartMass <= 0:
		return fmt.Errorf("%w: gift masses must be positive", ErrInvalid)
	case g.ColliderScale <= 0:
		return fmt.Errorf("%w: collider_scale must be positive", ErrInvalid)
	case g.ClickThreshold < 1:
		return fmt.Errorf("%w: click_threshold %d", ErrInvalid, g.ClickThreshold)
	case g.ClickWindow <= 0 || g.RumbleDuration <= 0:
		return fmt.Errorf("%w: click_window and rumble_duration must be positive", ErrInvalid)
	case g.CoverPart == "" || g.BasePart == "" || g.CoverPart == g.BasePart:
		return fmt.Errorf("%w: cover_part %q and base_part %q must be distinct names", ErrInvalid, g.CoverPart, g.BasePart)
	case s.Snow.Count < 0:
		return fmt.Errorf("%w: snow count %d", ErrInvalid, s.Snow.Count)
	}
	for _, p := range s.Model.Parts {
		if p.Name == "" {
			return fmt.Errorf("%w: model part without a name", ErrInvalid)
		}
	}
	return nil
}
