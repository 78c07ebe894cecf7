// Package hclload loads factory and sequence definitions from HCL files into
// a fabrik environment.
//
// A definition file holds global sequence blocks and factory blocks:
//
//	sequence "email" {
//	  start  = 1
//	  format = "person%d@example.com"
//	}
//
//	factory "user" {
//	  aliases = ["author"]
//	  set { name = "Billy Idol" }
//	  sequence "code" { start = 5 }
//	  association "team" { factory = "org" }
//	  declare "email" {}
//	}
//
// Factory bodies are replayed as declaration calls against the same proxy a
// Go-defined factory body uses; in particular a declare block takes the
// unqualified-declaration path, so it resolves to a global sequence when one
// is registered under its name and to an association otherwise. Global
// sequences are registered before any factory, regardless of file order.
package hclload

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/fabrikgo/fabrik"
	"github.com/fabrikgo/fabrik/internal/ctxlog"
	"github.com/fabrikgo/fabrik/internal/fsutil"
)

// Load parses every .hcl file across paths (files or directories) and
// registers the sequences and factories found there in env's registry.
func Load(ctx context.Context, env *fabrik.Env, paths ...string) error {
	return load(ctx, env, fabrik.DefaultConfig(), paths...)
}

// LoadFromEnv loads the paths named by the FABRIK_DEFINITIONS environment
// variable. With the variable unset it does nothing.
func LoadFromEnv(ctx context.Context, env *fabrik.Env) error {
	cfg, err := fabrik.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	if len(cfg.DefinitionPaths) == 0 {
		return nil
	}
	return load(ctx, env, cfg, cfg.DefinitionPaths...)
}

func load(ctx context.Context, env *fabrik.Env, cfg fabrik.Config, paths ...string) error {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return fmt.Errorf("hclload: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("no .hcl definition files found", "paths", paths)
		return nil
	}

	parser := hclparse.NewParser()
	var seqs []sequenceDef
	var facs []factoryDef
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return fmt.Errorf("hclload: parse %s: %w", file, diags)
		}
		content, diags := hclFile.Body.Content(fileSchema)
		if diags.HasErrors() {
			return fmt.Errorf("hclload: decode %s: %w", file, diags)
		}
		for _, block := range content.Blocks {
			switch block.Type {
			case "sequence":
				sd, err := decodeSequence(block, cfg.SequenceStart)
				if err != nil {
					return fmt.Errorf("hclload: %s: %w", file, err)
				}
				seqs = append(seqs, sd)
			case "factory":
				fd, err := decodeFactory(block, cfg.SequenceStart)
				if err != nil {
					return fmt.Errorf("hclload: %s: %w", file, err)
				}
				facs = append(facs, fd)
			}
		}
		logger.Debug("loaded definition file", "file", file)
	}

	// Sequences first: the disambiguation of declare blocks consults the
	// global sequence registry while the factory body replays.
	for _, sd := range seqs {
		if _, err := env.DefineSequence(sd.name, sd.start, sd.fn); err != nil {
			return err
		}
	}
	for _, fd := range facs {
		if err := register(env, fd); err != nil {
			return err
		}
	}

	logger.Debug("definitions loaded", "sequences", len(seqs), "factories", len(facs))
	return nil
}

// register replays a decoded factory body through a proxy and registers the
// resulting definition. Loaded factories have no Go prototype, so they build
// map[string]any instances.
func register(env *fabrik.Env, fd factoryDef) error {
	def := fabrik.NewDefinition()
	proxy := fabrik.NewProxy(fd.name, def, env.Registry())
	for _, alias := range fd.aliases {
		proxy.AliasedAs(alias)
	}
	for _, c := range fd.calls {
		if err := proxy.Apply(c); err != nil {
			return fmt.Errorf("hclload: factory %q: %w", fd.name, err)
		}
	}
	return env.Registry().Register(fabrik.NewFactory(fd.name, nil, def))
}
