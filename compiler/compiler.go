// Package compiler wires the whole front half of the pipeline together:
// source bytes through lex, parse, analyze, emit, and pngb encoding, in
// one call. Compilation is a pure function of its inputs, no I/O and no
// shared state, so the compiler holds nothing between calls.
package compiler

import (
	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/diag"
	"github.com/oxy-lang/pngb/emit"
	"github.com/oxy-lang/pngb/lex"
	"github.com/oxy-lang/pngb/pngb"
	"github.com/oxy-lang/pngb/scene"
	"github.com/oxy-lang/pngb/wgslreflect"
)

type config struct {
	assets    emit.Assets
	reflector scene.Reflector
	executor  []byte
}

// Option is a functional option for one Compile call.
type Option func(*config)

// WithAssets supplies the raw bytes behind the scene's $data references.
func WithAssets(a emit.Assets) Option {
	return func(c *config) { c.assets = a }
}

// WithReflector overrides the default WGSL reflector (wgslreflect.New())
// the analyzer uses for uniform struct sizes. Pass nil to compile without
// one; pipelines then fall back to hand-declared uniform layouts.
func WithReflector(r scene.Reflector) Option {
	return func(c *config) { c.reflector = r }
}

// WithExecutor embeds a platform-side executor image in the produced
// module. The bytes are opaque to the compiler; omit the option to
// produce an executor-free module.
func WithExecutor(exec []byte) Option {
	return func(c *config) { c.executor = exec }
}

// Compile lowers DSL source into a PNGB module blob.
//
// Source problems come back as diagnostics: lex and parse stop at their
// first, analysis reports everything it finds. The returned blob is nil
// whenever a non-warning diagnostic is present. Environment problems,
// a $data reference with no bytes in the assets map, a descriptor that
// won't marshal, are errors, not diagnostics, since no edit to the
// source alone can fix them.
func Compile(source []byte, opts ...Option) ([]byte, []diag.Diagnostic, error) {
	cfg := config{reflector: wgslreflect.New()}
	for _, o := range opts {
		o(&cfg)
	}

	tokens, lexErr := lex.Lex(source)
	if lexErr != nil {
		return nil, []diag.Diagnostic{*lexErr}, nil
	}

	tree, parseErr := ast.Parse(source, tokens)
	if parseErr != nil {
		return nil, []diag.Diagnostic{*parseErr}, nil
	}

	var analyzerOpts []scene.AnalyzerOption
	if cfg.reflector != nil {
		analyzerOpts = append(analyzerOpts, scene.WithReflector(cfg.reflector))
	}
	s, diags := scene.Analyze(tree, analyzerOpts...)
	for _, d := range diags {
		if !d.IsWarning() {
			return nil, diags, nil
		}
	}

	build, err := emit.Emit(s, cfg.assets)
	if err != nil {
		return nil, diags, err
	}
	build.Exec = cfg.executor

	return pngb.Encode(build), diags, nil
}
