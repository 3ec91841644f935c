package engine

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/vovakirdan/calendon/internal/cmdline"
	"github.com/vovakirdan/calendon/internal/demos"
	"github.com/vovakirdan/calendon/internal/platform"
	"github.com/vovakirdan/calendon/internal/systems/assets"
)

var abis = []string{"go", "c"}

// MainConfig selects the payload and bounds the run.
type MainConfig struct {
	Game      string `yaml:"game"`       // payload module path
	TickLimit uint64 `yaml:"tick_limit"` // 0 runs until quit
	Demo      string `yaml:"demo"`       // built-in demo, instead of Game
	ABI       string `yaml:"abi"`        // "go" (default) or "c"
	Watch     bool   `yaml:"watch"`      // reload Game when it changes on disk
	UI        string `yaml:"ui"`         // "auto" (default), "terminal" or "headless"
	Help      bool   `yaml:"-"`
}

// mainSystem is the Main subsystem. Its configuration drives payload
// selection and the loop; it has no shutdown step.
type mainSystem struct {
	cfg MainConfig
}

func (s *mainSystem) Name() string { return "Main" }

func (s *mainSystem) Config() any { return &s.cfg }

func (s *mainSystem) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Short:   "-g",
			Long:    "--game",
			Arg:     "PATH",
			Help:    "Payload module to boot",
			Handler: cmdline.Value(setGame),
		},
		{
			Short: "-t",
			Long:  "--tick-limit",
			Arg:   "NUM_TICKS",
			Help:  "Limit the run to a number of ticks",
			Handler: cmdline.Value(func(config any, v string) error {
				n, err := cmdline.ParseUint(v)
				if err != nil {
					return fmt.Errorf("tick limit: %w", err)
				}
				config.(*MainConfig).TickLimit = n
				return nil
			}),
		},
		{
			Short: "-d",
			Long:  "--demo",
			Arg:   "NAME",
			Help:  "Run a built-in demo instead of a module",
			Handler: cmdline.Value(func(config any, v string) error {
				if !demos.Exists(v) {
					return fmt.Errorf("%q: %w (see \"calendon demos\")", v, cmdline.ErrInvalidValue)
				}
				config.(*MainConfig).Demo = v
				return nil
			}),
		},
		{
			Long: "--abi",
			Arg:  "ABI",
			Help: "Payload module kind: go or c",
			Handler: cmdline.Value(func(config any, v string) error {
				if err := cmdline.OneOf(v, abis...); err != nil {
					return err
				}
				config.(*MainConfig).ABI = v
				return nil
			}),
		},
		{
			Short: "-w",
			Long:  "--watch",
			Help:  "Reload the payload module when it changes",
			Handler: cmdline.Switch(func(config any) {
				config.(*MainConfig).Watch = true
			}),
		},
		{
			Long: "--ui",
			Arg:  "KIND",
			Help: "Display: auto, terminal or headless",
			Handler: cmdline.Value(func(config any, v string) error {
				if err := cmdline.OneOf(v, platform.Kinds...); err != nil {
					return err
				}
				config.(*MainConfig).UI = v
				return nil
			}),
		},
		{
			Short: "-h",
			Long:  "--help",
			Help:  "Print this help and exit",
			Handler: cmdline.Switch(func(config any) {
				config.(*MainConfig).Help = true
			}),
		},
	}
}

func setGame(config any, path string) error {
	if !assets.IsFile(path) {
		wd, _ := os.Getwd()
		return fmt.Errorf("game library %s: %w (working directory %s)", path, fs.ErrNotExist, wd)
	}
	config.(*MainConfig).Game = path
	return nil
}

func (s *mainSystem) SetDefaultConfig(config any) {
	*config.(*MainConfig) = MainConfig{}
}

// Init checks values that may have come from the config file.
func (s *mainSystem) Init() error {
	if s.cfg.Game != "" && s.cfg.Demo != "" {
		return fmt.Errorf("both a game (%s) and a demo (%s) were selected", s.cfg.Game, s.cfg.Demo)
	}
	if s.cfg.Demo != "" && !demos.Exists(s.cfg.Demo) {
		return fmt.Errorf("unknown demo %q", s.cfg.Demo)
	}
	if s.cfg.ABI != "" {
		if err := cmdline.OneOf(s.cfg.ABI, abis...); err != nil {
			return fmt.Errorf("abi: %w", err)
		}
	}
	if s.cfg.UI != "" {
		if err := cmdline.OneOf(s.cfg.UI, platform.Kinds...); err != nil {
			return fmt.Errorf("ui: %w", err)
		}
	}
	return nil
}
