package support

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/layerforge/support/internal/fill"
)

// InterfacePatternAuto selects rectilinear interfaces, or concentric ones
// when the interface is soluble.
const InterfacePatternAuto = "auto"

// Config holds the support generation options. Lengths and heights are in
// millimetres, angles in degrees.
//
// The zero value is not usable; start from DefaultConfig. LoadConfig overlays
// a JSON file on the defaults, so files only need the keys they change.
type Config struct {
	// ThresholdAngle is the steepest overhang, measured from the horizontal,
	// that still needs support. Zero derives the overhang offset from the
	// external perimeter width instead.
	ThresholdAngle float64 `json:"threshold_angle"`
	// EnforceLayers supports every overhang of the first n object layers
	// regardless of the threshold.
	EnforceLayers int `json:"enforce_layers"`
	// BuildplateOnly drops support that would stand on the object.
	BuildplateOnly bool `json:"buildplate_only"`

	// ContactDistanceTop is the Z gap between the top contact and the
	// object above it. Zero means a soluble interface synchronized with the
	// object layers.
	ContactDistanceTop float64 `json:"contact_distance_top"`
	// ContactDistanceBottom is the Z gap between the object and a bottom
	// contact standing on it.
	ContactDistanceBottom float64 `json:"contact_distance_bottom"`

	// TopInterfaceLayers counts the dense layers under an overhang,
	// including the contact layer.
	TopInterfaceLayers int `json:"top_interface_layers"`
	// BottomInterfaceLayers counts the dense layers above a bottom contact.
	// -1 copies TopInterfaceLayers.
	BottomInterfaceLayers int `json:"bottom_interface_layers"`

	// Spacing is the gap between base pattern lines.
	Spacing float64 `json:"spacing"`
	// InterfaceSpacing is the gap between interface lines; zero is solid.
	InterfaceSpacing float64 `json:"interface_spacing"`
	// Angle rotates the base pattern.
	Angle float64 `json:"angle"`
	// Pattern is the base pattern: rectilinear, rectilinear-grid or honeycomb.
	Pattern string `json:"pattern"`
	// InterfacePattern is auto, rectilinear or concentric.
	InterfacePattern string `json:"interface_pattern"`
	// WithSheath draws a perimeter loop around base islands.
	WithSheath bool `json:"with_sheath"`
	// InterfaceContactLoops traces the overhang outline with anchored
	// loops on top contact layers.
	InterfaceContactLoops bool `json:"interface_contact_loops"`

	// XYSpacing is the horizontal clearance between support and object.
	XYSpacing float64 `json:"xy_spacing"`
	// ClosingRadius closes gaps between neighbouring contact areas.
	ClosingRadius float64 `json:"closing_radius"`
	// SynchronizeLayers emits one intermediate layer per object layer.
	SynchronizeLayers bool `json:"synchronize_layers"`
	// DontSupportBridges skips overhangs printed as bridges.
	DontSupportBridges bool `json:"dont_support_bridges"`
	// ThickBridges places a separate contact under bridges extruded with a
	// full-diameter bridging flow.
	ThickBridges bool `json:"thick_bridges"`
	// SolubleInterface prints interfaces with a soluble material over a
	// non-soluble base, adding base-interface layers.
	SolubleInterface bool `json:"soluble_interface"`

	// RaftLayers is the number of layers below the first object layer,
	// including the raft contact layer.
	RaftLayers int `json:"raft_layers"`
	// RaftLayerHeight is the height of every raft layer. The bottom raft
	// layer is raised to FirstLayerHeight when that is taller.
	RaftLayerHeight float64 `json:"raft_layer_height"`
	// RaftExpansion grows the raft beyond the support columns.
	RaftExpansion float64 `json:"raft_expansion"`
	// RaftFirstLayerExpansion further grows the bottom raft layer.
	RaftFirstLayerExpansion float64 `json:"raft_first_layer_expansion"`
	// RaftFirstLayerDensity is the fill density of the bottom raft layer.
	RaftFirstLayerDensity float64 `json:"raft_first_layer_density"`
	// BrimWidth keeps first-layer support clear of the brim when no raft is
	// printed.
	BrimWidth float64 `json:"brim_width"`

	LayerHeight      float64 `json:"layer_height"`
	FirstLayerHeight float64 `json:"first_layer_height"`
	// MinLayerHeight and MaxLayerHeight bound support layer heights.
	MinLayerHeight float64 `json:"min_layer_height"`
	MaxLayerHeight float64 `json:"max_layer_height"`

	NozzleDiameter float64 `json:"nozzle_diameter"`
	SupportWidth   float64 `json:"support_width"`
	InterfaceWidth float64 `json:"interface_width"`

	// ZEpsilon merges layers whose print Z differ by less.
	ZEpsilon float64 `json:"z_epsilon"`
	// BottomContactSnapTolerance snaps a bottom contact to a top contact Z
	// within this distance. Contacts closer than MinLayerHeight always snap.
	BottomContactSnapTolerance float64 `json:"bottom_contact_snap_tolerance"`
	// GridOversampling is the number of raster pixels per support line
	// spacing used to regularize contact and footprint areas.
	GridOversampling int `json:"grid_oversampling"`

	// Workers sizes the worker pool; zero selects GOMAXPROCS.
	Workers int `json:"workers"`
	// Debug enables internal consistency checks that panic on failure.
	Debug bool `json:"debug"`
}

// DefaultConfig returns the default options for a 0.4 mm nozzle.
func DefaultConfig() Config {
	return Config{
		ThresholdAngle:             0,
		ContactDistanceTop:         0.2,
		ContactDistanceBottom:      0.2,
		TopInterfaceLayers:         3,
		BottomInterfaceLayers:      -1,
		Spacing:                    2.5,
		InterfaceSpacing:           0.2,
		Angle:                      0,
		Pattern:                    fill.PatternRectilinear,
		InterfacePattern:           InterfacePatternAuto,
		WithSheath:                 true,
		XYSpacing:                  0.4,
		ClosingRadius:              2,
		DontSupportBridges:         true,
		ThickBridges:               true,
		RaftLayerHeight:            0.2,
		RaftExpansion:              1.5,
		RaftFirstLayerExpansion:    3,
		RaftFirstLayerDensity:      0.9,
		LayerHeight:                0.2,
		FirstLayerHeight:           0.2,
		MinLayerHeight:             0.07,
		MaxLayerHeight:             0.3,
		NozzleDiameter:             0.4,
		SupportWidth:               0.42,
		InterfaceWidth:             0.42,
		ZEpsilon:                   1e-4,
		BottomContactSnapTolerance: 0.035,
		GridOversampling:           3,
	}
}

// LoadConfig reads a JSON configuration file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate reports the first option outside its valid range. The returned
// error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"layer_height", c.LayerHeight},
		{"first_layer_height", c.FirstLayerHeight},
		{"min_layer_height", c.MinLayerHeight},
		{"max_layer_height", c.MaxLayerHeight},
		{"nozzle_diameter", c.NozzleDiameter},
		{"support_width", c.SupportWidth},
		{"interface_width", c.InterfaceWidth},
		{"z_epsilon", c.ZEpsilon},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return invalid("%s must be positive, got %g", p.name, p.v)
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"contact_distance_top", c.ContactDistanceTop},
		{"contact_distance_bottom", c.ContactDistanceBottom},
		{"spacing", c.Spacing},
		{"interface_spacing", c.InterfaceSpacing},
		{"xy_spacing", c.XYSpacing},
		{"closing_radius", c.ClosingRadius},
		{"raft_expansion", c.RaftExpansion},
		{"raft_first_layer_expansion", c.RaftFirstLayerExpansion},
		{"brim_width", c.BrimWidth},
		{"bottom_contact_snap_tolerance", c.BottomContactSnapTolerance},
	}
	for _, p := range nonNegative {
		if !(p.v >= 0) {
			return invalid("%s must not be negative, got %g", p.name, p.v)
		}
	}

	if c.ThresholdAngle < 0 || c.ThresholdAngle >= 90 {
		return invalid("threshold_angle must be in [0, 90), got %g", c.ThresholdAngle)
	}
	if c.MinLayerHeight > c.MaxLayerHeight {
		return invalid("min_layer_height %g exceeds max_layer_height %g", c.MinLayerHeight, c.MaxLayerHeight)
	}
	if c.ZEpsilon >= c.MinLayerHeight {
		return invalid("z_epsilon %g must be below min_layer_height %g", c.ZEpsilon, c.MinLayerHeight)
	}
	if c.LayerHeight < c.MinLayerHeight {
		return invalid("layer_height %g is below min_layer_height %g", c.LayerHeight, c.MinLayerHeight)
	}
	if c.EnforceLayers < 0 {
		return invalid("enforce_layers must not be negative, got %d", c.EnforceLayers)
	}
	if c.TopInterfaceLayers < 0 {
		return invalid("top_interface_layers must not be negative, got %d", c.TopInterfaceLayers)
	}
	if c.BottomInterfaceLayers < -1 {
		return invalid("bottom_interface_layers must be -1 or more, got %d", c.BottomInterfaceLayers)
	}
	if c.RaftLayers < 0 {
		return invalid("raft_layers must not be negative, got %d", c.RaftLayers)
	}
	if c.RaftLayers > 0 && !(c.RaftLayerHeight > 0) {
		return invalid("raft_layer_height must be positive with a raft, got %g", c.RaftLayerHeight)
	}
	if c.RaftLayers > 0 && c.RaftLayerHeight < c.MinLayerHeight {
		return invalid("raft_layer_height %g is below min_layer_height %g", c.RaftLayerHeight, c.MinLayerHeight)
	}
	if c.RaftFirstLayerDensity <= 0 || c.RaftFirstLayerDensity > 1 {
		return invalid("raft_first_layer_density must be in (0, 1], got %g", c.RaftFirstLayerDensity)
	}
	if c.GridOversampling < 1 {
		return invalid("grid_oversampling must be at least 1, got %d", c.GridOversampling)
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative, got %d", c.Workers)
	}
	switch c.Pattern {
	case fill.PatternRectilinear, fill.PatternRectilinearGrid, fill.PatternHoneycomb:
	default:
		return invalid("unknown pattern %q", c.Pattern)
	}
	switch c.InterfacePattern {
	case InterfacePatternAuto, fill.PatternRectilinear, fill.PatternConcentric:
	default:
		return invalid("unknown interface_pattern %q", c.InterfacePattern)
	}
	return nil
}

// bottomInterfaceLayers resolves the -1 default.
func (c *Config) bottomInterfaceLayers() int {
	if c.BottomInterfaceLayers < 0 {
		return c.TopInterfaceLayers
	}
	return c.BottomInterfaceLayers
}
