package intel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProfileServiceConfig tunes the profile orchestrator.
type ProfileServiceConfig struct {
	// SourceTimeout bounds the concurrent source fan-out of one build.
	// Zero leaves the caller's deadline in charge.
	SourceTimeout time.Duration
	// CacheTTL overrides the cache default when positive.
	CacheTTL time.Duration
	// CacheEnabled toggles read-through caching of full profiles.
	CacheEnabled bool
}

// ProfileService assembles the twelve-section intelligence profile for one
// company: nine base sections from the dossier snapshot (rebuilt on demand
// when absent) and three supplemental sections aggregated from live records.
type ProfileService struct {
	records  intel.RecordReader
	dossiers intel.DossierProvider
	cache    intel.ProfileCache
	logger   *zap.Logger
	config   ProfileServiceConfig

	// rebuilds collapses concurrent get-or-rebuild calls for the same
	// company into one snapshot fetch.
	rebuilds singleflight.Group
}

// NewProfileService creates a profile orchestrator. The cache may be nil, in
// which case every build recomputes from source.
func NewProfileService(
	records intel.RecordReader,
	dossiers intel.DossierProvider,
	cache intel.ProfileCache,
	config ProfileServiceConfig,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		records:  records,
		dossiers: dossiers,
		cache:    cache,
		logger:   logger,
		config:   config,
	}
}

// BuildProfile assembles the full profile with all twelve sections computed.
func (s *ProfileService) BuildProfile(ctx context.Context, companyID uuid.UUID) (*intel.Profile, error) {
	if s.cacheEnabled() {
		cached, err := s.cache.Get(ctx, companyID)
		if err != nil {
			s.logger.Warn("Profile cache read failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	profile, err := s.assemble(ctx, companyID, intel.SupplementalSectionNames())
	if err != nil {
		return nil, err
	}

	// Degraded builds are not cached so the next request retries the
	// failed sources.
	if s.cacheEnabled() && !profile.Degraded {
		if err := s.cache.Set(ctx, profile, s.config.CacheTTL); err != nil {
			s.logger.Warn("Profile cache write failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}

	return profile, nil
}

// BuildProfileSections assembles a structurally complete profile while
// computing only the requested supplemental sections; skipped ones carry
// their documented empty defaults. The base snapshot backs all nine base
// sections with a single read, so base names cost nothing to include.
func (s *ProfileService) BuildProfileSections(ctx context.Context, companyID uuid.UUID, sections []intel.SectionName) (*intel.Profile, error) {
	if len(sections) == 0 {
		return s.BuildProfile(ctx, companyID)
	}

	supplemental := make([]intel.SectionName, 0, len(sections))
	for _, name := range sections {
		parsed, err := intel.ParseSectionName(string(name))
		if err != nil {
			return nil, err
		}
		if parsed.IsSupplemental() {
			supplemental = append(supplemental, parsed)
		}
	}

	return s.assemble(ctx, companyID, supplemental)
}

// BuildSection computes and returns the content of one named section. For
// supplemental names only the relevant aggregator runs; for base names the
// section is read from the current (or freshly rebuilt) dossier snapshot.
func (s *ProfileService) BuildSection(ctx context.Context, companyID uuid.UUID, name intel.SectionName) (interface{}, error) {
	parsed, err := intel.ParseSectionName(string(name))
	if err != nil {
		return nil, err
	}

	if parsed.IsSupplemental() {
		fetchCtx, cancel := s.fetchContext(ctx)
		defer cancel()

		var content interface{}
		var fetchErr error
		switch parsed {
		case intel.SectionNAFlags:
			content, fetchErr = s.fetchNAFlags(fetchCtx, companyID)
		case intel.SectionDisclosures:
			content, fetchErr = s.fetchDisclosures(fetchCtx, companyID)
		case intel.SectionNotes:
			content, fetchErr = s.fetchNotes(fetchCtx, companyID)
		}
		if fetchErr != nil {
			return nil, s.sourceFailure(fetchErr)
		}
		return content, nil
	}

	snapshot, err := s.currentSnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	profile := &intel.Profile{}
	profile.ApplySnapshot(snapshot)
	return profile.Section(parsed)
}

// InvalidateCachedProfile drops the cached profile for a company, forcing the
// next build to recompute. Used after explicit dossier rebuilds.
func (s *ProfileService) InvalidateCachedProfile(ctx context.Context, companyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		s.logger.Warn("Profile cache invalidation failed",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
	}
}

// assemble runs the build pipeline: snapshot get-or-rebuild, concurrent
// supplemental fan-out, metadata derivation.
func (s *ProfileService) assemble(ctx context.Context, companyID uuid.UUID, supplemental []intel.SectionName) (*intel.Profile, error) {
	snapshot, err := s.currentSnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()

	want := make(map[intel.SectionName]bool, len(supplemental))
	for _, name := range supplemental {
		want[name] = true
	}

	var (
		wg sync.WaitGroup

		naFlags intel.NAFlagsSection
		naErr   error

		disclosures intel.DisclosuresSection
		discErr     error

		notes    intel.NotesSection
		notesErr error

		bundle    intel.TimestampBundle
		bundleErr error
	)

	// Each fetch is isolated: one failing source degrades its own section
	// instead of aborting the build.
	if want[intel.SectionNAFlags] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			naFlags, naErr = s.fetchNAFlags(fetchCtx, companyID)
		}()
	}
	if want[intel.SectionDisclosures] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			disclosures, discErr = s.fetchDisclosures(fetchCtx, companyID)
		}()
	}
	if want[intel.SectionNotes] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			notes, notesErr = s.fetchNotes(fetchCtx, companyID)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		bundle, bundleErr = s.records.LatestTimestamps(fetchCtx, companyID)
	}()
	wg.Wait()

	now := time.Now()
	profile := &intel.Profile{
		CompanyID:   companyID,
		GeneratedAt: now,
		NAFlags:     intel.EmptyNAFlagsSection(),
		Disclosures: intel.EmptyDisclosuresSection(),
		Notes:       intel.EmptyNotesSection(),
	}
	profile.ApplySnapshot(snapshot)

	if want[intel.SectionNAFlags] {
		if naErr != nil {
			s.degrade(profile, intel.SectionNAFlags, companyID, naErr)
		} else {
			profile.NAFlags = naFlags
		}
	}
	if want[intel.SectionDisclosures] {
		if discErr != nil {
			s.degrade(profile, intel.SectionDisclosures, companyID, discErr)
		} else {
			profile.Disclosures = disclosures
		}
	}
	if want[intel.SectionNotes] {
		if notesErr != nil {
			s.degrade(profile, intel.SectionNotes, companyID, notesErr)
		} else {
			profile.Notes = notes
		}
	}

	if bundleErr != nil {
		s.logger.Warn("Timestamp bundle fetch failed, metadata falls back to the snapshot time",
			zap.String("company_id", companyID.String()),
			zap.Error(bundleErr))
		bundle = intel.TimestampBundle{}
	}
	// The snapshot in hand is authoritative for the dossier build time.
	bundle.DossierBuiltAt = &snapshot.BuiltAt

	profile.Metadata = intel.BuildSectionMetadata(profile, bundle, now)
	return profile, nil
}

// currentSnapshot reads the dossier snapshot, rebuilding when none exists.
// Concurrent calls for the same company share one fetch.
func (s *ProfileService) currentSnapshot(ctx context.Context, companyID uuid.UUID) (*intel.DossierSnapshot, error) {
	v, err, _ := s.rebuilds.Do(companyID.String(), func() (interface{}, error) {
		snapshot, err := s.dossiers.GetCurrent(ctx, companyID)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, intel.ErrSnapshotNotFound) {
			return nil, err
		}

		s.logger.Info("No dossier snapshot, rebuilding",
			zap.String("company_id", companyID.String()))
		return s.dossiers.Rebuild(ctx, companyID, intel.RebuildReasonProfileBuild)
	})
	if err != nil {
		return nil, s.sourceFailure(err)
	}
	return v.(*intel.DossierSnapshot), nil
}

func (s *ProfileService) fetchNAFlags(ctx context.Context, companyID uuid.UUID) (intel.NAFlagsSection, error) {
	flags, err := s.records.ListAssessmentNAFlags(ctx, companyID)
	if err != nil {
		return intel.EmptyNAFlagsSection(), err
	}
	tasks, err := s.records.ListNATasks(ctx, companyID)
	if err != nil {
		return intel.EmptyNAFlagsSection(), err
	}
	breakdown, err := s.records.CategoryNABreakdown(ctx, companyID)
	if err != nil {
		return intel.EmptyNAFlagsSection(), err
	}
	return intel.BuildNAFlagsSection(flags, tasks, breakdown), nil
}

func (s *ProfileService) fetchDisclosures(ctx context.Context, companyID uuid.UUID) (intel.DisclosuresSection, error) {
	markers, err := s.records.ListDisclosureMarkers(ctx, companyID)
	if err != nil {
		return intel.EmptyDisclosuresSection(), err
	}
	responses, err := s.records.ListDisclosureResponses(ctx, companyID)
	if err != nil {
		return intel.EmptyDisclosuresSection(), err
	}
	return intel.BuildDisclosuresSection(markers, responses), nil
}

func (s *ProfileService) fetchNotes(ctx context.Context, companyID uuid.UUID) (intel.NotesSection, error) {
	assessmentNotes, err := s.records.ListAssessmentNotes(ctx, companyID)
	if err != nil {
		return intel.EmptyNotesSection(), err
	}
	legacy, err := s.records.ListLegacyTaskNotes(ctx, companyID)
	if err != nil {
		return intel.EmptyNotesSection(), err
	}
	records, err := s.records.ListTaskNoteRecords(ctx, companyID)
	if err != nil {
		return intel.EmptyNotesSection(), err
	}
	checkIns, err := s.records.ListCompletedCheckIns(ctx, companyID)
	if err != nil {
		return intel.EmptyNotesSection(), err
	}
	return intel.BuildNotesSection(assessmentNotes, legacy, records, checkIns), nil
}

func (s *ProfileService) degrade(profile *intel.Profile, name intel.SectionName, companyID uuid.UUID, err error) {
	s.logger.Warn("Supplemental source failed, substituting empty section",
		zap.String("company_id", companyID.String()),
		zap.String("section", name.String()),
		zap.Error(err))
	profile.MarkDegraded(name)
}

func (s *ProfileService) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.SourceTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.SourceTimeout)
}

func (s *ProfileService) cacheEnabled() bool {
	return s.cache != nil && s.config.CacheEnabled
}

// sourceFailure maps infrastructure errors onto the source-unavailable
// condition while letting domain errors pass through untouched.
func (s *ProfileService) sourceFailure(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("%w: %v", intel.ErrSourceUnavailable, err)
}
