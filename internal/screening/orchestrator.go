package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type OrchestratorConfig struct {
	// Concurrency bounds in-flight section requests; 0 runs every section at once.
	Concurrency int
	Sections    []SectionDefinition
}

// Orchestrator fans a report out into one generation per section and joins
// on all of them before assembling.
type Orchestrator struct {
	gen         *SectionGenerator
	logger      *zap.Logger
	sections    []SectionDefinition
	concurrency int
	now         func() time.Time
}

func NewOrchestrator(gen *SectionGenerator, logger *zap.Logger, cfg OrchestratorConfig) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	sections := cfg.Sections
	if len(sections) == 0 {
		sections = Sections
	}
	return &Orchestrator{
		gen:         gen,
		logger:      logger,
		sections:    sections,
		concurrency: cfg.Concurrency,
		now:         time.Now,
	}
}

func (o *Orchestrator) Sections() []SectionDefinition {
	out := make([]SectionDefinition, len(o.sections))
	copy(out, o.sections)
	return out
}

// Generate produces the full report for company. Section failures never
// fail the report; an error is returned only for a broken section table or
// a missing company name.
func (o *Orchestrator) Generate(ctx context.Context, company Company, progress ProgressFunc) (ComprehensiveReport, error) {
	if company.Name == "" {
		return ComprehensiveReport{}, fmt.Errorf("company name is required")
	}
	ctx, span := tracer.Start(ctx, "report.generate")
	defer span.End()
	span.SetAttributes(attribute.String("company.name", company.Name), attribute.Int("report.sections", len(o.sections)))

	started := o.now()
	for _, def := range o.sections {
		emit(progress, def.Key, StatusPending)
	}

	var (
		mu      sync.Mutex
		results = make(map[string]SectionResult, len(o.sections))
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		eg.SetLimit(o.concurrency)
	}
	for _, def := range o.sections {
		eg.Go(func() error {
			res := o.gen.Generate(egCtx, def.Key, def.PromptFor(company), def.ExpectJSON, def.Default, progress)
			mu.Lock()
			results[def.Key] = res
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	report, err := Assemble(company, o.sections, results)
	if err != nil {
		return report, err
	}
	report.GeneratedAt = o.now().UTC()

	failed := 0
	for _, oc := range report.SectionOutcomes {
		if oc.Status == StatusError {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("report.failed_sections", failed))
	o.logger.Info("report generated",
		zap.String("company", company.Name),
		zap.Int("sections", len(o.sections)),
		zap.Int("failed_sections", failed),
		zap.Int("web_sources", len(report.Sources.Web)),
		zap.Int("map_sources", len(report.Sources.Maps)),
		zap.Duration("elapsed", o.now().Sub(started)))
	return report, nil
}

func emit(progress ProgressFunc, key string, status SectionStatus) {
	if progress != nil {
		progress(key, status)
	}
}
