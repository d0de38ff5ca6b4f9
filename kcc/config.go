package kcc

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config holds the immutable per-character movement tunables. All durations
// are in seconds, all distances in meters, all angular thresholds as cosines.
type Config struct {
	// Collider dimensions of the standing character.
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`

	CrouchHeight       float32 `yaml:"crouch_height"`
	StandingViewHeight float32 `yaml:"standing_view_height"`
	CrouchViewHeight   float32 `yaml:"crouch_view_height"`
	CrouchSpeedScale   float32 `yaml:"crouch_speed_scale"`

	Speed    float32 `yaml:"speed"`
	AirSpeed float32 `yaml:"air_speed"`
	MaxSpeed float32 `yaml:"max_speed"`

	AccelerationHz      float32 `yaml:"acceleration_hz"`
	AirAccelerationHz   float32 `yaml:"air_acceleration_hz"`
	WaterAccelerationHz float32 `yaml:"water_acceleration_hz"`

	FrictionHz float32 `yaml:"friction_hz"`
	StopSpeed  float32 `yaml:"stop_speed"`

	Gravity    float32 `yaml:"gravity"`
	JumpHeight float32 `yaml:"jump_height"`

	WaterGravity  float32 `yaml:"water_gravity"`
	WaterSlowdown float32 `yaml:"water_slowdown"`

	StepSize                  float32 `yaml:"step_size"`
	MinStepLedgeSpace         float32 `yaml:"min_step_ledge_space"`
	GroundDistance            float32 `yaml:"ground_distance"`
	StepDownDetectionDistance float32 `yaml:"step_down_detection_distance"`

	MinWalkCos    float32 `yaml:"min_walk_cos"`
	UngroundSpeed float32 `yaml:"unground_speed"`

	SkinWidth          float32 `yaml:"skin_width"`
	MaxSlideIterations int     `yaml:"max_slide_iterations"`

	CoyoteTime      float32 `yaml:"coyote_time"`
	JumpInputBuffer float32 `yaml:"jump_input_buffer"`

	TacInputBuffer float32 `yaml:"tac_input_buffer"`
	TacCooldown    float32 `yaml:"tac_cooldown"`
	TacPower       float32 `yaml:"tac_power"`
	TacJumpFactor  float32 `yaml:"tac_jump_factor"`
	MaxTacCos      float32 `yaml:"max_tac_cos"`

	CraneHeight        float32 `yaml:"crane_height"`
	CraneSpeed         float32 `yaml:"crane_speed"`
	MinCraneLedgeSpace float32 `yaml:"min_crane_ledge_space"`
	MinCraneCos        float32 `yaml:"min_crane_cos"`
	CraneInputBuffer   float32 `yaml:"crane_input_buffer"`
	JumpCraneChainTime float32 `yaml:"jump_crane_chain_time"`

	MantleHeight         float32    `yaml:"mantle_height"`
	MantleSpeed          float32    `yaml:"mantle_speed"`
	MaxLedgeGrabDistance float32    `yaml:"max_ledge_grab_distance"`
	MinLedgeGrabSpace    mgl32.Vec3 `yaml:"min_ledge_grab_space,flow"`
	MantleInputBuffer    float32    `yaml:"mantle_input_buffer"`
	MinMantleCos         float32    `yaml:"min_mantle_cos"`
	ClimbPullUpHeight    float32    `yaml:"climb_pull_up_height"`
	ClimbReverseSin      float32    `yaml:"climb_reverse_sin"`
	ClimbSensitivity     float32    `yaml:"climb_sensitivity"`

	LedgeJumpFactor float32 `yaml:"ledge_jump_factor"`
	LedgeJumpPower  float32 `yaml:"ledge_jump_power"`

	Filter Filter `yaml:"-"`
}

// DefaultConfig returns the baseline tuning for a standing-height character.
func DefaultConfig() Config {
	return Config{
		Width:  0.8,
		Height: 1.8,

		CrouchHeight:       1.3,
		StandingViewHeight: 1.7,
		CrouchViewHeight:   1.2,
		CrouchSpeedScale:   1.0 / 3.0,

		Speed:    10,
		AirSpeed: 1.5,
		MaxSpeed: 100,

		AccelerationHz:      5,
		AirAccelerationHz:   12,
		WaterAccelerationHz: 6,

		FrictionHz: 4,
		StopSpeed:  2.54,

		Gravity:    20.3,
		JumpHeight: 1.5,

		WaterGravity:  1.2,
		WaterSlowdown: 0.8,

		StepSize:                  1,
		MinStepLedgeSpace:         0.1,
		GroundDistance:            0.05,
		StepDownDetectionDistance: 0.25,

		MinWalkCos:    0.766,
		UngroundSpeed: 10,

		SkinWidth:          0.0075,
		MaxSlideIterations: 5,

		CoyoteTime:      0.15,
		JumpInputBuffer: 0.15,

		TacInputBuffer: 0.15,
		TacCooldown:    0.3,
		TacPower:       0.45,
		TacJumpFactor:  1,
		MaxTacCos:      0.5,

		CraneHeight:        1.5,
		CraneSpeed:         4,
		MinCraneLedgeSpace: 0.35,
		MinCraneCos:        0.643,
		CraneInputBuffer:   0.15,
		JumpCraneChainTime: 0.1,

		MantleHeight:         2.2,
		MantleSpeed:          2.5,
		MaxLedgeGrabDistance: 0.5,
		MinLedgeGrabSpace:    mgl32.Vec3{0.3, 0.3, 0.3},
		MantleInputBuffer:    0.15,
		MinMantleCos:         0.643,
		ClimbPullUpHeight:    0.35,
		ClimbReverseSin:      0.35,
		ClimbSensitivity:     2,

		LedgeJumpFactor: 1,
		LedgeJumpPower:  0.4,
	}
}

// LoadConfig reads YAML overrides from path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
