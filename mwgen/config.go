package main

import (
	"os"

	"github.com/ZenLiuCN/fn"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

type (
	//Config drives a gen run: the cross toolchain, the output directory and
	//the units to lower.
	Config struct {
		CC    string       `yaml:"cc"`
		Out   string       `yaml:"out"`
		Units []UnitConfig `yaml:"units"`
	}
	//UnitConfig binds one translation unit to its hook manifest.
	UnitConfig struct {
		Source  string `yaml:"source"`  //source path, origin token derives from it
		Context string `yaml:"context"` //asm or c
		Hooks   string `yaml:"hooks"`   //hks manifest path
	}
)

// DefaultCC resolve the cross compiler, MW_CC overrides.
func DefaultCC() string {
	return env.Str("MW_CC", "arm-none-eabi-gcc")
}

// DefaultOut resolve the output directory, MW_OUT overrides.
func DefaultOut() string {
	return env.Str("MW_OUT", ".")
}

// manifestUnits lifts bare manifest paths passed on the command line into
// units, rendered in the assembler context with the manifest path standing
// in as the origin source.
func manifestUnits(paths []string) (ucs []UnitConfig) {
	for _, p := range paths {
		ucs = append(ucs, UnitConfig{Source: p, Context: "asm", Hooks: p})
	}
	return
}

// LoadConfig read a yaml config, environment defaults fill absent fields.
func LoadConfig(path string) (c *Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer fn.IgnoreClose(f)
	c = new(Config)
	if err = yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, err
	}
	if c.CC == "" {
		c.CC = DefaultCC()
	}
	if c.Out == "" {
		c.Out = DefaultOut()
	}
	return
}
