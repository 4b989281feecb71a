// Package pipeline runs a cache run from project load to the persisted record.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/checksum"
	"go.trai.ch/bake/internal/engine/matrix"
	"go.trai.ch/bake/internal/engine/patch"
	"go.trai.ch/bake/internal/engine/prune"
	"go.trai.ch/zerr"
)

// Step names, in execution order.
const (
	StepLock     = "lock"
	StepLoad     = "load"
	StepSelect   = "select"
	StepChecksum = "checksum"
	StepBuild    = matrix.StepBuild
	StepMerge    = "merge"
	StepPrune    = "prune"
	StepPatch    = "patch"
	StepPersist  = "persist"
	StepHistory  = "history"
)

// AggregateTarget is the temporary target building every dirty module.
const AggregateTarget = "BakePods"

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Loader    ports.ProjectLoader
	Toolchain ports.Toolchain
	Checksum  *checksum.Engine
	Matrix    *matrix.Driver
	Pruner    *prune.Pruner
	Patcher   *patch.Patcher
	Locker    ports.Locker
	Archiver  ports.LogArchiver
	History   ports.HistoryStore
	Telemetry ports.Telemetry
	Logger    ports.Logger
}

// Pipeline runs the ordered cache steps.
type Pipeline struct {
	Deps
	layout domain.Layout
	now    func() time.Time
}

// New creates a Pipeline working below root.
func New(deps Deps, root string) *Pipeline {
	return &Pipeline{
		Deps:   deps,
		layout: domain.Layout{Root: root},
		now:    time.Now,
	}
}

// Layout returns the working directory layout of the pipeline.
func (p *Pipeline) Layout() domain.Layout {
	return p.layout
}

// Report summarizes a run. It is filled as far as the run got.
type Report struct {
	RunID      string
	Candidates []string
	Dirty      []string
	Cacheable  []string
	Pruned     []string
	Patched    []string
	States     map[string]domain.ModuleState
	Duration   time.Duration
}

// run holds the state shared by the steps of one run.
type run struct {
	opts         domain.CacheOptions
	report       *Report
	project      ports.Project
	snapshot     *Snapshot
	states       *domain.ModuleStates
	fingerprints map[domain.SDK]checksum.Fingerprint
	checksums    map[string]domain.Checksum
	records      map[domain.SDK]*domain.BuildCacheRecord
	ready        []string
	missing      []string
}

// Run executes one cache run. The first failing step stops the run and is
// returned as a *domain.StepError. The run is recorded in the history in
// every case.
func (p *Pipeline) Run(ctx context.Context, opts domain.CacheOptions) (*Report, error) {
	started := p.now()
	r := &run{
		opts:   opts,
		report: &Report{RunID: uuid.NewString()},
		states: domain.NewModuleStates(nil),
	}

	err := p.execute(ctx, r)

	r.report.States = r.states.Snapshot()
	r.report.Duration = p.now().Sub(started)
	p.recordHistory(ctx, r, started, err)
	return r.report, err
}

func (p *Pipeline) execute(ctx context.Context, r *run) error {
	var unlock func()
	err := p.step(ctx, StepLock, func(context.Context) error {
		var err error
		unlock, err = p.Locker.Lock(p.layout.LockFile())
		if err != nil {
			return err
		}
		p.archiveLogs(r.opts.SDKs)
		return nil
	})
	if err != nil {
		return err
	}
	defer unlock()

	steps := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{StepLoad, p.load},
		{StepSelect, p.selectModules},
		{StepChecksum, p.classify},
		{StepBuild, p.build},
		{StepMerge, p.merge},
		{StepPrune, p.prune},
		{StepPatch, p.patch},
		{StepPersist, p.persist},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return &domain.StepError{Step: s.name, Err: err}
		}
		if err := p.step(ctx, s.name, func(ctx context.Context) error { return s.fn(ctx, r) }); err != nil {
			return err
		}
	}
	return nil
}

// step runs fn inside a telemetry vertex and tags failures with the step.
func (p *Pipeline) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, vertex := p.Telemetry.Record(ctx, name)
	err := fn(ctx)
	vertex.Complete(err)
	if err == nil {
		return nil
	}

	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		return err
	}
	return &domain.StepError{Step: name, Err: err}
}

func (p *Pipeline) archiveLogs(sdks []domain.SDK) {
	logs := []string{p.layout.MergeLog()}
	for _, sdk := range sdks {
		logs = append(logs, p.layout.BuildLog(sdk))
	}
	for _, path := range logs {
		archived, err := p.Archiver.Archive(path, p.layout.LogArchiveDir())
		if err != nil {
			p.Logger.Warn("failed to archive " + path + ": " + err.Error())
			continue
		}
		if archived != "" {
			p.Logger.Debug("archived " + path + " to " + archived)
		}
	}
}

func (p *Pipeline) load(_ context.Context, r *run) error {
	project, err := p.Loader.Load(filepath.Join(p.layout.Root, r.opts.ProjectPath))
	if err != nil {
		return err
	}
	if prune.IsPatched(project) {
		p.Logger.Warn("project was already rewritten by bake; reinstall pods to cache new modules")
	}

	snapshot, err := NewSnapshot(project)
	if err != nil {
		return err
	}
	r.project = project
	r.snapshot = snapshot
	return nil
}

func (p *Pipeline) selectModules(_ context.Context, r *run) error {
	candidates, err := r.snapshot.Select(r.opts)
	if err != nil {
		return err
	}
	r.report.Candidates = candidates
	r.states = domain.NewModuleStates(candidates)
	p.Logger.Info("selected " + strconv.Itoa(len(candidates)) + " modules")
	return nil
}

func (p *Pipeline) classify(ctx context.Context, r *run) error {
	tooling, err := p.Toolchain.Version(ctx)
	if err != nil {
		return err
	}

	flags := r.opts.BuildFlags()
	r.fingerprints = make(map[domain.SDK]checksum.Fingerprint, len(r.opts.SDKs))
	for _, sdk := range r.opts.SDKs {
		r.fingerprints[sdk] = checksum.Fingerprint{Tooling: tooling, Flags: flags, Arch: sdk.ArchLabel(r.opts.Archs)}
	}

	modules := r.snapshot.List(r.report.Candidates)
	salt := checksum.Fingerprint{Tooling: tooling, Flags: flags}
	r.checksums, err = p.Checksum.ComputeAll(ctx, modules, r.opts.ChecksumMode, salt)
	if err != nil {
		return err
	}

	r.records, err = p.Checksum.Load(r.opts.SDKs, r.opts.Configuration)
	if err != nil {
		return err
	}

	result := checksum.Classify(checksum.ClassifyRequest{
		Graph:            r.snapshot.Graph,
		Candidates:       r.report.Candidates,
		Checksums:        r.checksums,
		Records:          r.records,
		Fingerprints:     r.fingerprints,
		SDKs:             r.opts.SDKs,
		IgnoreChecksums:  r.opts.IgnoreChecksums,
		ExpandDependents: r.opts.Graph,
		BundlePresent: func(name string, sdk domain.SDK) bool {
			m, ok := r.snapshot.Modules[name]
			return ok && p.Matrix.HasSlice(p.layout, m, sdk, r.opts.Archs)
		},
	})
	r.report.Dirty = result.Dirty
	r.report.Cacheable = result.Cacheable

	if err := transitionAll(r.states, result.Dirty, domain.StateDirty); err != nil {
		return err
	}
	if err := transitionAll(r.states, result.Cacheable, domain.StateCacheable); err != nil {
		return err
	}
	p.Logger.Info(strconv.Itoa(len(result.Dirty)) + " modules to build, " + strconv.Itoa(len(result.Cacheable)) + " reused")
	return nil
}

func (p *Pipeline) build(ctx context.Context, r *run) error {
	if len(r.report.Dirty) == 0 {
		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Cached()
		}
		return nil
	}

	if err := p.prepareBuild(r); err != nil {
		return p.revert(r, err)
	}

	err := p.Matrix.Build(ctx, matrix.BuildRequest{
		Layout:        p.layout,
		ProjectPath:   r.project.Path(),
		Scheme:        AggregateTarget,
		Configuration: r.opts.Configuration,
		SDKs:          r.opts.SDKs,
		Archs:         r.opts.Archs,
		Flags:         r.opts.BuildFlags(),
	})
	if err != nil {
		return p.revert(r, err)
	}
	return transitionAll(r.states, r.report.Dirty, domain.StateBuilt)
}

func (p *Pipeline) prepareBuild(r *run) error {
	if err := r.project.AddAggregateTarget(AggregateTarget, r.report.Dirty); err != nil {
		return err
	}
	if err := r.project.CreateScheme(AggregateTarget, AggregateTarget); err != nil {
		return err
	}
	return r.project.Save()
}

// revert restores the project as loaded and returns cause.
func (p *Pipeline) revert(r *run, cause error) error {
	if err := r.project.Revert(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (p *Pipeline) merge(ctx context.Context, r *run) error {
	for _, name := range r.report.Dirty {
		module := r.snapshot.Modules[name]
		ok, err := p.Matrix.Merge(ctx, matrix.MergeRequest{
			Layout:           p.layout,
			Module:           module,
			Configuration:    r.opts.Configuration,
			SDKs:             r.opts.SDKs,
			SkipDebugSymbols: r.opts.SkipDebugSymbols,
		})
		if err != nil && !errors.Is(err, domain.ErrMergeFailed) {
			return &domain.StepError{Step: StepMerge, Module: name, LogPath: p.layout.MergeLog(), Err: err}
		}
		if err != nil {
			p.Logger.Warn("keeping " + name + " as source: " + err.Error())
		}

		state := domain.StateBundleMissing
		if ok {
			state = domain.StateBundleReady
			r.ready = append(r.ready, name)
		} else {
			r.missing = append(r.missing, name)
		}
		if err := r.states.Transition(name, state); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) prune(_ context.Context, r *run) error {
	var modules []string
	for _, name := range r.states.In(domain.StateCacheable, domain.StateBundleReady) {
		if !r.opts.IsFocused(name) {
			modules = append(modules, name)
		}
	}

	result, err := p.Pruner.Prune(prune.Request{
		Layout:      p.layout,
		Project:     r.project,
		Modules:     modules,
		Exclude:     r.opts.Exclude,
		Aggregate:   AggregateTarget,
		KeepSources: r.opts.KeepSources,
	})
	if err != nil {
		return err
	}
	r.report.Pruned = result.Pruned

	if err := transitionAll(r.states, result.Pruned, domain.StatePruned); err != nil {
		return err
	}
	for _, name := range r.report.Candidates {
		if st, _ := r.states.Get(name); !st.IsTerminal() {
			if err := r.states.Transition(name, domain.StateKeptAsSource); err != nil {
				return err
			}
		}
	}
	if len(result.Pruned) > 0 {
		p.Logger.Info("replaced " + strconv.Itoa(len(result.Pruned)) + " modules by bundles: " + strings.Join(result.Pruned, ", "))
	}
	return nil
}

func (p *Pipeline) patch(_ context.Context, r *run) error {
	if len(r.report.Pruned) == 0 {
		return nil
	}

	patched, err := p.Patcher.PatchSearchPaths(patch.SearchPathRequest{
		Dir:       filepath.Dir(r.project.Path()),
		Pattern:   r.opts.XcconfigPattern,
		Modules:   r.report.Pruned,
		BundleDir: p.layout.BundleDir(),
		Relative:  r.opts.RelativePaths,
		Archs:     r.opts.Archs,
	})
	if err != nil {
		return err
	}

	interfaces, err := p.Patcher.PatchInterfaces(patch.InterfaceRequest{
		Layout:  p.layout,
		Pattern: r.opts.InterfacePattern,
		Modules: r.snapshot.List(r.report.Pruned),
	})
	if err != nil {
		return err
	}
	r.report.Patched = slices.Concat(patched, interfaces)
	return nil
}

func (p *Pipeline) persist(_ context.Context, r *run) error {
	upsert := map[string]domain.Checksum{}
	for _, name := range slices.Concat(r.report.Cacheable, r.ready) {
		upsert[name] = r.checksums[name]
	}

	records := make(map[domain.SDK]domain.BuildCacheRecord, len(r.opts.SDKs))
	for _, sdk := range r.opts.SDKs {
		records[sdk] = checksum.MergeRecord(r.records[sdk], checksum.RecordUpdate{
			SDK:         sdk,
			Fingerprint: r.fingerprints[sdk],
			Upsert:      upsert,
			Drop:        r.missing,
		})
	}
	return p.Checksum.Update(r.opts.Configuration, records)
}

func (p *Pipeline) recordHistory(ctx context.Context, r *run, started time.Time, runErr error) {
	record := &domain.RunRecord{
		ID:         r.report.RunID,
		StartedAt:  started,
		FinishedAt: p.now(),
		SDKs:       r.opts.SDKs,
		Status:     domain.RunStatusSucceeded,
		Modules:    r.report.States,
	}
	if runErr != nil {
		record.Status = domain.RunStatusFailed
		record.Error = runErr.Error()
		var stepErr *domain.StepError
		if errors.As(runErr, &stepErr) {
			record.FailedStep = stepErr.Step
		}
	}

	err := p.step(context.WithoutCancel(ctx), StepHistory, func(ctx context.Context) error {
		return p.History.Record(ctx, record)
	})
	if err != nil {
		p.Logger.Warn("failed to record run history: " + err.Error())
	}
}

func transitionAll(states *domain.ModuleStates, names []string, to domain.ModuleState) error {
	for _, name := range names {
		if err := states.Transition(name, to); err != nil {
			return zerr.With(err, "state", string(to))
		}
	}
	return nil
}
