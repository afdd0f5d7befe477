package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	. "github.com/mwtools/magwi"
	"github.com/mwtools/magwi/hks"
	"github.com/urfave/cli/v2"
	"golang.org/x/arch/arm/armasm"
)

func main() {
	_ = godotenv.Load()
	app := cli.NewApp()
	app.Name = "mwgen"
	app.Usage = "hook declaration generator"
	app.Description = "mwgen synthesizes linker-visible hook tokens and renders them as assembler or C declarations for the downstream patch tool"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "preflight",
			Action: preflight,
			Usage:  "verify toolchain capability and origin configuration, exit nonzero on violation",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "cc", Usage: "cross compiler to probe", Value: DefaultCC()},
				&cli.StringFlag{Name: "origin", Aliases: []string{"o"}, Usage: "origin token to validate"},
			},
		},
		{
			Name:   "header",
			Action: header,
			Usage:  "write the include header for inline hook declarations",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path", Value: "magwi.h"},
			},
		},
		{
			Name:      "gen",
			Action:    gen,
			Usage:     "lower hks manifests into declaration fragments per translation unit",
			ArgsUsage: "[unit.hks...]",
			Args:      true,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "yaml config path", Value: "mwgen.yaml"},
			},
		},
		{
			Name:   "inspect",
			Action: inspect,
			Usage:  "display hook descriptors materialized inside object files",
			Args:   true,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("failure %s", err)
	}
}

func preflight(ctx *cli.Context) (err error) {
	d := ctx.Bool("debug")
	cc := ctx.String("cc")
	if o := ctx.String("origin"); o != "" {
		return Preflight(d, cc, o)
	}
	major, minor, err := ToolchainVersion(d, cc)
	if err != nil {
		return
	}
	if major < MinToolchainMajor {
		return fmt.Errorf("%w: %s is %d.%d, requires >= %d.0", ErrToolchainUnsupported, cc, major, minor, MinToolchainMajor)
	}
	log.Printf("toolchain %s: %d.%d", cc, major, minor)
	return
}

func header(ctx *cli.Context) (err error) {
	f, err := os.Create(ctx.String("out"))
	if err != nil {
		return
	}
	defer fn.IgnoreClose(f)
	return WriteHeader(f)
}

func gen(ctx *cli.Context) (err error) {
	d := ctx.Bool("debug")
	cfg, err := LoadConfig(ctx.String("config"))
	if err != nil {
		return
	}
	for _, uc := range append(cfg.Units, manifestUnits(ctx.Args().Slice())...) {
		if err = generate(d, cfg, uc); err != nil {
			return fmt.Errorf("unit %s: %w", uc.Source, err)
		}
	}
	return
}

func generate(debug bool, cfg *Config, uc UnitConfig) (err error) {
	origin := EncodePath(uc.Source)
	if err = Preflight(debug, cfg.CC, origin); err != nil {
		return
	}
	be, err := ParseBackend(uc.Context)
	if err != nil {
		return
	}
	u, err := NewUnit(origin, be)
	if err != nil {
		return
	}
	f, err := os.Open(uc.Hooks)
	if err != nil {
		return
	}
	defer fn.IgnoreClose(f)
	r := hks.NewReader(f)
	for {
		var e *hks.Entry
		if e, err = r.Next(); err != nil || e == nil {
			break
		}
		if err = declare(u, e); err != nil {
			return fmt.Errorf("entry %q: %w", e.Title(), err)
		}
	}
	if err != nil {
		return
	}

	ext := ".mw.c"
	if be.Name() == "asm" {
		ext = ".mw.s"
	}
	out := filepath.Join(cfg.Out, strings.TrimSuffix(filepath.Base(uc.Source), filepath.Ext(uc.Source))+ext)
	if debug {
		log.Printf("render %s (%d hooks) to %s", uc.Source, len(u.Hooks()), out)
	}
	o, err := os.Create(out)
	if err != nil {
		return
	}
	defer fn.IgnoreClose(o)
	return u.Render(o)
}

func declare(u Unit, e *hks.Entry) (err error) {
	ks, err := e.Get("kind")
	if err != nil {
		return
	}
	k, err := ParseKind(ks)
	if err != nil {
		return
	}
	arg, err := e.Get("arg")
	if err != nil {
		return
	}
	line, err := e.GetInt("line")
	if err != nil {
		return
	}
	u.Seek(line)
	if e.Has("loader") {
		var loader bool
		if loader, err = e.GetBool("loader"); err != nil {
			return
		}
		if loader {
			u.LoaderCode()
		}
	}
	if k.Class == ClassReplace {
		var payload string
		if payload, err = e.Get("payload"); err != nil {
			return
		}
		if err = u.Replace(arg); err != nil {
			return
		}
		u.Raw(payload)
		if err = u.ReplaceEnd(); err != nil {
			return
		}
	} else if err = u.Declare(k, arg); err != nil {
		return
	}
	if !e.Done() {
		return fmt.Errorf("unknown keys %v", e.Remaining())
	}
	return
}

func inspect(ctx *cli.Context) (err error) {
	d := ctx.Bool("debug")
	if ctx.Args().Len() == 0 {
		return fmt.Errorf("missing target object list")
	}
	for _, file := range ctx.Args().Slice() {
		var r *Report
		if r, err = Scan(file); err != nil {
			return
		}
		if d {
			log.Printf("scan %s:\n%s", file, spew.Sdump(r))
		}
		for _, h := range r.Hooks {
			log.Printf("%s: %s %s at %s#%d", file, h.Kind, h.Arg, h.Location(), h.Counter)
			for _, l := range disasm(h.Payload) {
				log.Printf("\t%s", l)
			}
		}
		if r.Loader != nil {
			log.Printf("%s: loader region %#x..%#x, %d bytes", file, r.Loader.Start, r.Loader.End, r.Loader.Size())
		}
	}
	return
}

// disasm decodes a replacement payload as ARM words for display, undecodable
// words print as raw data.
func disasm(payload []byte) (lines []string) {
	for len(payload) >= 4 {
		word := payload[:4]
		payload = payload[4:]
		inst, err := armasm.Decode(word, armasm.ModeARM)
		if err != nil {
			lines = append(lines, fmt.Sprintf(".word 0x%08x", binary.LittleEndian.Uint32(word)))
			continue
		}
		lines = append(lines, armasm.GNUSyntax(inst))
	}
	if len(payload) > 0 {
		lines = append(lines, fmt.Sprintf(".byte % x", payload))
	}
	return
}
