package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"wattle/downloader/internal/candidate"
	"wattle/downloader/internal/domain"
	"wattle/downloader/internal/ledger"
	"wattle/downloader/internal/repository"
	"wattle/downloader/internal/selection"

	log "github.com/sirupsen/logrus"
)

// Sink performs the actual file transfer for a resolved URL
type Sink interface {
	Download(ctx context.Context, rawURL, filename string) error
}

// DelayFunc suspends the run between successful downloads
type DelayFunc func(ctx context.Context, d time.Duration)

type Service struct {
	provider   candidate.Provider
	sink       Sink
	ledger     ledger.Ledger
	repository repository.AttemptRepository
	sessionID  string
	delayMin   time.Duration
	delayMax   time.Duration
	delay      DelayFunc
}

func NewService(
	provider candidate.Provider,
	sink Sink,
	ledger ledger.Ledger,
	repository repository.AttemptRepository,
	sessionID string,
	delayMinMs int,
	delayMaxMs int,
) *Service {
	return &Service{
		provider:   provider,
		sink:       sink,
		ledger:     ledger,
		repository: repository,
		sessionID:  sessionID,
		delayMin:   time.Duration(delayMinMs) * time.Millisecond,
		delayMax:   time.Duration(delayMaxMs) * time.Millisecond,
		delay:      sleep,
	}
}

// SetDelayFunc replaces the function used to wait between successful downloads
func (s *Service) SetDelayFunc(fn DelayFunc) {
	s.delay = fn
}

// List returns the current candidates for filter
func (s *Service) List(ctx context.Context, filter string) ([]domain.Item, error) {
	return s.provider.Candidates(ctx, filter)
}

// Download re-queries the candidates for filter and runs the selection against them
func (s *Service) Download(ctx context.Context, expr, filter string) (domain.ErrorReport, error) {
	candidates, err := s.provider.Candidates(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, expr, filter, candidates)
}

// Run downloads the selected candidates one at a time. Item failures are
// collected in the returned report and counted in the ledger; they never stop
// the run. Only successful downloads are followed by the randomized delay.
func (s *Service) Run(ctx context.Context, expr, filter string, candidates []domain.Item) (domain.ErrorReport, error) {
	indices, err := selection.Resolve(ctx, expr, len(candidates), filter, s.ledger)
	if err != nil {
		return nil, err
	}

	log.Infof("🚀 Processing %d of %d %s items", len(indices), len(candidates), filter)

	report := domain.ErrorReport{}
	for _, index := range indices {
		item := candidates[index]
		key := ledger.Key{Ordinal: index + 1, Filter: filter}

		rawURL, err := s.downloadItem(ctx, item)
		if err != nil {
			if errors.Is(err, domain.ErrNoDownloadLink) {
				log.Errorf("❌ No download link found for: %s", item.Name)
			} else {
				log.Errorf("❌ Error downloading %s: %v", item.Name, err)
			}
			report = append(report, domain.ReportEntry{Name: item.Name, Error: err.Error()})

			if err := s.ledger.RecordFailure(ctx, key); err != nil {
				log.Errorf("❌ Failed to record failure for %s: %v", key, err)
			} else if count, _, err := s.ledger.Count(ctx, key); err == nil && count > 1 {
				log.Warnf("🔄 %s has failed %d times this session", item.Name, count)
			}
			s.journal(ctx, key, item, rawURL, err)
			continue
		}

		if err := s.ledger.RecordSuccess(ctx, key); err != nil {
			log.Errorf("❌ Failed to record success for %s: %v", key, err)
		}
		s.journal(ctx, key, item, rawURL, nil)

		s.delay(ctx, s.randomDelay())
	}

	return report, nil
}

func (s *Service) downloadItem(ctx context.Context, item domain.Item) (string, error) {
	u, err := item.ResolveURL()
	if err != nil {
		return "", err
	}
	rawURL := u.String()

	log.Infof("Attempting to download: %s", item.Name)

	if err := s.sink.Download(ctx, rawURL, item.SuggestedFilename()); err != nil {
		return rawURL, err
	}

	log.Infof("✅ Download initiated for: %s", item.Name)
	return rawURL, nil
}

func (s *Service) journal(ctx context.Context, key ledger.Key, item domain.Item, rawURL string, cause error) {
	attempt := domain.Attempt{
		SessionID:   s.sessionID,
		Filter:      key.Filter,
		Ordinal:     key.Ordinal,
		Name:        item.Name,
		URL:         rawURL,
		Success:     cause == nil,
		AttemptedAt: time.Now(),
	}
	if cause != nil {
		attempt.Error = cause.Error()
	}

	if err := s.repository.SaveAttempt(ctx, attempt); err != nil {
		log.Warnf("⚠️ Failed to journal attempt for %s: %v", item.Name, err)
	}
}

// randomDelay is uniform over [delayMin, delayMax] in whole milliseconds
func (s *Service) randomDelay() time.Duration {
	spanMs := int64((s.delayMax - s.delayMin) / time.Millisecond)
	return s.delayMin + time.Duration(rand.Int64N(spanMs+1))*time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
