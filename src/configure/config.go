package configure

import (
	"bytes"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultRows          = 6
	DefaultColumns       = 6
	DefaultFrameRate     = 30
	MinFrameRate         = 1
	MaxFrameRate         = 120
	DefaultThumbnailSize = 60
	DefaultBackground    = "#ffffff"
	EnvPrefix            = "ATLAS"
)

func checkErr(err error) {
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
}

// New reads the configuration from the command line, the config file and the
// environment, in increasing order of precedence for flags.
func New() *Config {
	cfg, err := Load(pflag.CommandLine, nil)
	checkErr(err)

	initLogging(cfg.LogLevel, cfg.NoLogs)

	return cfg
}

func Defaults() Config {
	return Config{
		LogLevel:      "info",
		Config:        "config.yaml",
		Rows:          DefaultRows,
		Columns:       DefaultColumns,
		FrameRate:     DefaultFrameRate,
		OutputDir:     DefaultOutputDir(),
		Optimize:      true,
		PaletteMethod: "kmeans",
		Background:    DefaultBackground,
		ThumbnailSize: DefaultThumbnailSize,
	}
}

// Load builds a Config using flags. A nil args parses os.Args.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	config := viper.New()
	config.SetConfigType("yaml")

	b, err := json.Marshal(Defaults())
	if err != nil {
		return nil, err
	}

	tmp := viper.New()
	tmp.SetConfigType("json")
	if err := tmp.ReadConfig(bytes.NewBuffer(b)); err != nil {
		return nil, err
	}
	if err := config.MergeConfigMap(tmp.AllSettings()); err != nil {
		return nil, err
	}

	registerFlags(flags)
	if !flags.Parsed() {
		if args == nil {
			args = os.Args[1:]
		}
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
	}
	if err := config.BindPFlags(flags); err != nil {
		return nil, err
	}

	config.SetConfigFile(config.GetString("config"))
	if err := config.ReadInConfig(); err == nil {
		if err := config.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Config{}

	config.SetEnvPrefix(EnvPrefix)
	config.AllowEmptyEnv(true)
	config.AutomaticEnv()

	if err := config.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Args = flags.Args()

	return &cfg, nil
}

func registerFlags(flags *pflag.FlagSet) {
	if flags.Lookup("config") != nil {
		return
	}

	d := Defaults()
	flags.String("config", d.Config, "Config file location")
	flags.Bool("noheader", false, "Disable the startup header")
	flags.Bool("nologs", false, "Disable logging")
	flags.String("log_level", d.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int("rows", d.Rows, "Number of atlas rows")
	flags.Int("columns", d.Columns, "Number of atlas columns")
	flags.Int("frame_rate", d.FrameRate, "GIF frame rate (1-120)")
	flags.String("output_dir", d.OutputDir, "Directory results are written to")
	flags.Bool("optimize", d.Optimize, "Optimize GIF frames after quantization")
	flags.String("palette_method", d.PaletteMethod, "GIF palette method (kmeans, dominantcolor)")
	flags.String("background", d.Background, "Atlas background colour")
	flags.Int("thumbnail_size", d.ThumbnailSize, "Sequence thumbnail edge in pixels")
	flags.String("job", "", "JSON job file to run")
}

type Config struct {
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level,omitempty"`
	Config   string `json:"config,omitempty" mapstructure:"config,omitempty"`
	NoHeader bool   `json:"noheader,omitempty" mapstructure:"noheader,omitempty"`
	NoLogs   bool   `json:"nologs,omitempty" mapstructure:"nologs,omitempty"`

	Rows      int `json:"rows,omitempty" mapstructure:"rows,omitempty"`
	Columns   int `json:"columns,omitempty" mapstructure:"columns,omitempty"`
	FrameRate int `json:"frame_rate,omitempty" mapstructure:"frame_rate,omitempty"`

	OutputDir     string `json:"output_dir,omitempty" mapstructure:"output_dir,omitempty"`
	Optimize      bool   `json:"optimize,omitempty" mapstructure:"optimize,omitempty"`
	PaletteMethod string `json:"palette_method,omitempty" mapstructure:"palette_method,omitempty"`
	Background    string `json:"background,omitempty" mapstructure:"background,omitempty"`
	ThumbnailSize int    `json:"thumbnail_size,omitempty" mapstructure:"thumbnail_size,omitempty"`

	Job string `json:"job,omitempty" mapstructure:"job,omitempty"`

	// positional arguments left after flag parsing
	Args []string `json:"-" mapstructure:"-"`
}
