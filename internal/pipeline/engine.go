package pipeline

import (
	"context"
	"go/token"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"union-generator/internal/diagnostic"
	"union-generator/internal/errors"
	"union-generator/internal/extract"
	"union-generator/internal/gen"
	"union-generator/internal/logger"
	"union-generator/internal/model"
)

// Engine holds the state committed by previous passes. Apply calls are
// serialized; work inside a pass runs concurrently.
type Engine struct {
	mu  sync.Mutex
	log *zap.SugaredLogger

	opts        model.Options
	fingerprint string

	// sources keeps the last change per package so an options change can
	// re-extract packages the host did not resend.
	sources   map[string]Change
	packages  map[string][]string // package path -> target IDs
	targets   map[string]entry
	arities   map[int]int // arity -> number of targets
	scaffolds map[int]gen.Unit
	stats     Stats
}

// NewEngine creates an engine with no committed state.
func NewEngine(opts model.Options, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = logger.Logger
	}

	return &Engine{
		log:       log.Named("pipeline"),
		opts:      opts,
		sources:   make(map[string]Change),
		packages:  make(map[string][]string),
		targets:   make(map[string]entry),
		arities:   make(map[int]int),
		scaffolds: make(map[int]gen.Unit),
	}
}

// SetOptions replaces the options used from the next pass on.
func (e *Engine) SetOptions(opts model.Options) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts = opts
}

// Stats returns the counters of committed passes.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.stats
}

// Targets returns the committed models, ordered by ID.
func (e *Engine) Targets() []*model.UnionTarget {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := slices.Sorted(maps.Keys(e.targets))
	out := make([]*model.UnionTarget, len(ids))
	for i, id := range ids {
		out[i] = e.targets[id].target
	}

	return out
}

// pass is the staged state of one Apply call.
type pass struct {
	opts        model.Options
	fingerprint string
	diags       *diagnostic.Diagnostics

	sources   map[string]Change
	packages  map[string][]string
	targets   map[string]entry
	arities   map[int]int
	scaffolds map[int]gen.Unit
	stats     Stats

	changed     []gen.Unit
	removed     []gen.Unit
	unformatted []*gen.FormatError
}

// Apply runs one pass over changes and commits it. On cancellation or an
// internal failure nothing is committed and the previous state stays intact.
func (e *Engine) Apply(ctx context.Context, changes ...Change) (*Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	p := &pass{
		opts:        e.opts,
		fingerprint: e.opts.Fingerprint(),
		diags:       &diagnostic.Diagnostics{},
		sources:     maps.Clone(e.sources),
		packages:    maps.Clone(e.packages),
		targets:     maps.Clone(e.targets),
		arities:     maps.Clone(e.arities),
		scaffolds:   maps.Clone(e.scaffolds),
		stats:       e.stats,
	}

	for _, c := range changes {
		if len(c.Declarations) == 0 {
			delete(p.sources, c.Package.PkgPath)
			continue
		}
		p.sources[c.Package.PkgPath] = c
	}

	// Rendering options apply to every target, including the ones in
	// packages this pass was not told about.
	optionsChanged := p.fingerprint != e.fingerprint
	if optionsChanged && e.fingerprint != "" {
		e.log.Infow("options changed, re-extracting every package", logger.FieldCount, len(p.sources))
	}

	work := changes
	if optionsChanged {
		work = make([]Change, 0, len(p.sources))
		for _, path := range slices.Sorted(maps.Keys(p.sources)) {
			work = append(work, p.sources[path])
		}
		for _, c := range changes {
			if len(c.Declarations) == 0 {
				work = append(work, c)
			}
		}
	}

	extracted, err := e.extractAll(ctx, p, work)
	if err != nil {
		return nil, err
	}

	if err := e.renderTargets(ctx, p, work, extracted, optionsChanged); err != nil {
		return nil, err
	}

	if err := e.renderScaffolds(ctx, p, optionsChanged); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "pass canceled before commit")
	}

	p.stats.Passes++
	e.commit(p)

	out := e.output(p)
	e.log.Infow("pass committed",
		logger.FieldCount, len(out.Units),
		"changed", len(out.Changed),
		"removed", len(out.Removed),
		logger.FieldDuration, time.Since(start).Milliseconds())

	return out, nil
}

// extractAll runs the extractor over every declaration of work concurrently.
// Results are indexed per change and declaration.
func (e *Engine) extractAll(ctx context.Context, p *pass, work []Change) ([][]*model.UnionTarget, error) {
	results := make([][]*model.UnionTarget, len(work))

	type job struct{ change, decl int }
	var jobs []job
	for i, c := range work {
		results[i] = make([]*model.UnionTarget, len(c.Declarations))
		for j := range c.Declarations {
			jobs = append(jobs, job{i, j})
		}
	}

	if len(jobs) == 0 {
		return results, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobLimit(p.opts), len(jobs)))

	for _, jb := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			c := work[jb.change]
			results[jb.change][jb.decl] = extract.Extract(c.Declarations[jb.decl], c.Symbols, p.opts, p.diags)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "extracting targets")
	}

	p.stats.Extractions += len(jobs)

	return results, nil
}

type renderJob struct {
	target *model.UnionTarget
	pos    token.Position
	unit   gen.Unit
	err    error
}

// renderTargets stages the new target set of every package in work and composes the
// targets whose model or options changed.
func (e *Engine) renderTargets(ctx context.Context, p *pass, work []Change, extracted [][]*model.UnionTarget, force bool) error {
	var jobs []*renderJob
	next := make(map[string][]string, len(work))

	for i, c := range work {
		pkgPath := c.Package.PkgPath
		seen := make(map[string]bool)
		files := make(map[string]string) // generated file name -> target name

		for j, target := range extracted[i] {
			if target == nil {
				continue
			}

			id := target.ID()
			pos := c.Declarations[j].Pos
			if seen[id] {
				p.diags.Report(diagnostic.Warningf(diagnostic.CodeDuplicateTarget, id, pos,
					"%s is declared in several files; only the first declaration is generated", target.Name))
				continue
			}
			seen[id] = true

			filename := gen.TargetFilename(target)
			if other, ok := files[filename]; ok {
				p.diags.Report(diagnostic.Errorf(diagnostic.CodeOutputClash, id, pos,
					"%s and %s would both be generated into %s; rename one of them", other, target.Name, filename))
				continue
			}
			files[filename] = target.Name
			next[pkgPath] = append(next[pkgPath], id)

			prev, ok := e.targets[id]
			if ok && !force && prev.target.Equal(target) {
				e.log.Debugw("model unchanged, reusing unit", logger.FieldTarget, id)
				continue
			}

			e.log.Debugw("rendering target", logger.FieldTarget, id, logger.FieldArity, target.Arity())
			jobs = append(jobs, &renderJob{target: target, pos: pos})
		}
	}

	if len(jobs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobLimit(p.opts), len(jobs)))

		for _, jb := range jobs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				jb.unit, jb.err = gen.ComposeTarget(jb.target, p.opts)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return errors.Wrap(err, "composing targets")
		}

		p.stats.TargetRenders += len(jobs)
	}

	rendered := make(map[string]*renderJob, len(jobs))
	for _, jb := range jobs {
		rendered[jb.target.ID()] = jb
	}

	for _, c := range work {
		pkgPath := c.Package.PkgPath
		var kept []string

		for _, id := range next[pkgPath] {
			jb, ok := rendered[id]
			if !ok {
				kept = append(kept, id)
				continue
			}

			if jb.err != nil {
				p.diags.Report(diagnostic.Errorf(diagnostic.CodeCompose, id, jb.pos, "%v", jb.err))
				var fe *gen.FormatError
				if errors.As(jb.err, &fe) {
					p.unformatted = append(p.unformatted, fe)
				}
				continue
			}

			p.put(entry{target: jb.target, unit: jb.unit})
			kept = append(kept, id)
		}

		p.replacePackage(pkgPath, kept)
	}

	return nil
}

// renderScaffolds renders the scaffold units of arities that appeared and drops the
// ones of arities no target uses any more.
func (e *Engine) renderScaffolds(ctx context.Context, p *pass, force bool) error {
	for arity, unit := range p.scaffolds {
		if p.arities[arity] == 0 {
			p.removed = append(p.removed, unit)
			delete(p.scaffolds, arity)
		}
	}

	for _, arity := range slices.Sorted(maps.Keys(p.arities)) {
		if _, ok := p.scaffolds[arity]; ok && !force {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "composing scaffolds")
		}

		unit, err := gen.ComposeScaffold(arity, p.opts.Scaffold)
		if err != nil {
			return errors.Wrapf(err, "composing scaffold for arity %d", arity)
		}
		e.log.Debugw("rendered scaffold", logger.FieldArity, arity)

		p.stats.ScaffoldRenders++
		if prev, ok := p.scaffolds[arity]; !ok || prev.Hash != unit.Hash || prev.Path() != unit.Path() {
			if ok && prev.Path() != unit.Path() {
				p.removed = append(p.removed, prev)
			}
			p.changed = append(p.changed, unit)
		}
		p.scaffolds[arity] = unit
	}

	return nil
}

// put stages a rendered target, adjusting arity refcounts and the change set.
func (p *pass) put(en entry) {
	id := en.target.ID()

	prev, ok := p.targets[id]
	if ok {
		p.release(prev)
		if prev.unit.Path() != en.unit.Path() {
			p.removed = append(p.removed, prev.unit)
		}
	}

	p.targets[id] = en
	p.arities[en.target.Arity()]++

	if !ok || prev.unit.Hash != en.unit.Hash || prev.unit.Path() != en.unit.Path() {
		p.changed = append(p.changed, en.unit)
	}
}

// replacePackage drops the staged targets of pkgPath that are not in ids.
func (p *pass) replacePackage(pkgPath string, ids []string) {
	for _, id := range p.packages[pkgPath] {
		if slices.Contains(ids, id) {
			continue
		}

		if prev, ok := p.targets[id]; ok {
			p.release(prev)
			p.removed = append(p.removed, prev.unit)
			delete(p.targets, id)
		}
	}

	if len(ids) == 0 {
		delete(p.packages, pkgPath)
		return
	}
	p.packages[pkgPath] = ids
}

func (p *pass) release(en entry) {
	arity := en.target.Arity()
	p.arities[arity]--
	if p.arities[arity] <= 0 {
		delete(p.arities, arity)
	}
}

func (e *Engine) commit(p *pass) {
	e.fingerprint = p.fingerprint
	e.sources = p.sources
	e.packages = p.packages
	e.targets = p.targets
	e.arities = p.arities
	e.scaffolds = p.scaffolds
	e.stats = p.stats
}

func (e *Engine) output(p *pass) *Output {
	out := &Output{
		Changed:     sortUnits(p.changed),
		Removed:     sortUnits(p.removed),
		Unformatted: p.unformatted,
		Diagnostics: p.diags,
	}
	slices.SortFunc(out.Unformatted, func(a, b *gen.FormatError) int {
		return strings.Compare(a.SidecarPath(), b.SidecarPath())
	})

	for _, en := range e.targets {
		out.Units = append(out.Units, en.unit)
	}
	for _, u := range e.scaffolds {
		out.Units = append(out.Units, u)
	}
	out.Units = sortUnits(out.Units)

	return out
}

func sortUnits(units []gen.Unit) []gen.Unit {
	slices.SortFunc(units, func(a, b gen.Unit) int {
		return strings.Compare(a.Path(), b.Path())
	})

	return units
}

func jobLimit(opts model.Options) int {
	if opts.Jobs < 1 {
		return 1
	}

	return opts.Jobs
}
