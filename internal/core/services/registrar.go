package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ingest"
	"vessel-registry/internal/core/ports/output"
)

type RegisterVersionRequest struct {
	ModelID  int64  `validate:"gt=0"`
	Tag      string `validate:"required,max=255,excludesall=/\\"`
	DataSet  null.String
	Pipeline null.String
}

var registerFieldErrors = map[string]error{
	"ModelID": domain.ErrInvalidModelID,
	"Tag":     domain.ErrInvalidTag,
}

// Register ingests files into scratch, publishes them under their content
// hash and records a new version. Whatever the outcome, no scratch workspace
// outlives the call. Content that was published before a failed insert stays
// in place, since another version may already point at it.
func (s *VersionService) Register(ctx context.Context, req RegisterVersionRequest, files domain.FileIterator) (version *domain.Version, err error) {
	start := s.clock.Now()
	var digest *ingest.Digest
	deduplicated := false

	defer func() {
		err = ingestIfCancelled(err)
		outcome := registrationOutcome(err, deduplicated)
		var n int64
		if digest != nil {
			n = digest.Bytes
		}
		s.metrics.ObserveRegistration(outcome, n, s.clock.Since(start))

		entry := log.WithFields(log.Fields{
			"model_id": req.ModelID,
			"tag":      req.Tag,
			"outcome":  outcome,
		})
		if err != nil {
			entry.WithError(err).Warn("version registration failed")
			return
		}
		entry.WithField("hash", version.ContentHash).Info("version registered")
	}()

	req.Tag = strings.TrimSpace(req.Tag)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, registerFieldErrors)
	}

	if _, err := s.models.GetByID(ctx, req.ModelID); err != nil {
		return nil, err
	}

	ws, err := s.store.AllocateScratch(ctx)
	if err != nil {
		return nil, err
	}
	published := false
	defer func() {
		if published {
			return
		}
		if derr := s.store.Discard(ws); derr != nil {
			if err == nil {
				log.WithError(derr).WithField("workspace", ws.ID).Warn("failed to discard scratch")
				return
			}
			err = multierror.Append(err, derr)
		}
	}()

	digest, err = s.pipeline.Run(ctx, ws.Path, files)
	if err != nil {
		return nil, err
	}
	ws.Files = digest.Files

	// Fail fast before touching the content area. The insert below still
	// relies on the catalog constraint for concurrent registrations.
	if _, err := s.versions.GetByTag(ctx, req.ModelID, req.Tag); err == nil {
		return nil, domain.ErrDuplicateVersion
	} else if !errors.Is(err, domain.ErrVersionNotFound) {
		return nil, fmt.Errorf("check existing version: %w", err)
	}

	outcome, path, err := s.store.Publish(ctx, ws, digest.ContentHash)
	if err != nil {
		return nil, err
	}
	published = outcome == ports.Published
	deduplicated = outcome == ports.AlreadyPublished

	version = &domain.Version{
		ModelID:     req.ModelID,
		Tag:         req.Tag,
		ContentHash: digest.ContentHash,
		StoragePath: path,
		DataSet:     req.DataSet,
		Pipeline:    req.Pipeline,
		Created:     s.clock.Now().UTC(),
		State:       domain.ArchiveStateActive,
	}
	if err := s.versions.Create(ctx, version); err != nil {
		if errors.Is(err, domain.ErrDuplicateVersion) || errors.Is(err, domain.ErrModelNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("record version: %w", err)
	}
	return version, nil
}

// ingestIfCancelled reports a request that went away mid-registration as an
// ingest failure rather than a catalog or storage one.
func ingestIfCancelled(err error) error {
	if err == nil || errors.Is(err, domain.ErrIngest) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrIngest, err)
	}
	return err
}

func registrationOutcome(err error, deduplicated bool) string {
	switch {
	case err == nil && deduplicated:
		return ports.OutcomeDeduplicated
	case err == nil:
		return ports.OutcomeCreated
	case errors.Is(err, domain.ErrValidation):
		return ports.OutcomeValidation
	case errors.Is(err, domain.ErrModelNotFound):
		return ports.OutcomeModelNotFound
	case errors.Is(err, domain.ErrDuplicateVersion):
		return ports.OutcomeDuplicate
	case errors.Is(err, domain.ErrIngest):
		return ports.OutcomeIngestError
	case errors.Is(err, domain.ErrStorage):
		return ports.OutcomeStorageError
	default:
		return ports.OutcomeInternalError
	}
}
