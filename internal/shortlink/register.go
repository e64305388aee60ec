package shortlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Mode selects how registration treats repeated submissions of the same URL.
type Mode string

const (
	// ModeMint always allocates a fresh code, even for a URL the owner already
	// shortened.
	ModeMint Mode = "mint"
	// ModeReuse returns the owner's existing link for the target URL when one
	// exists, allocating only otherwise.
	ModeReuse Mode = "reuse"
)

// maxAllocateAttempts bounds the allocate/insert loop. At 7 base62 characters
// a single collision is already unlikely; several in a row means the code
// space or the allocator is misconfigured.
const maxAllocateAttempts = 5

// RegistrationService is the write path: validate, allocate, persist.
type RegistrationService struct {
	registry  Registry
	allocator Allocator
	logger    *zap.Logger
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(registry Registry, allocator Allocator, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		registry:  registry,
		allocator: allocator,
		logger:    logger,
	}
}

// Register validates targetURL and commits a new ShortLink for owner.
// Malformed input fails with *ValidationError before any allocation happens.
// Collisions with existing codes are retried with fresh codes up to the
// attempt budget; running out fails with ErrAllocationExhausted.
func (s *RegistrationService) Register(ctx context.Context, targetURL string, owner OwnerID, mode Mode) (*ShortLink, error) {
	if err := ValidateTargetURL(targetURL); err != nil {
		return nil, err
	}

	if mode == ModeReuse {
		existing, err := s.registry.GetByOwnerAndTarget(ctx, owner, targetURL)
		if err == nil {
			return existing, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("look up existing link: %w", err)
		}
	}

	for attempt := 1; attempt <= maxAllocateAttempts; attempt++ {
		code, err := s.allocator.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		link := &ShortLink{
			Code:      code,
			TargetURL: targetURL,
			OwnerID:   owner,
			CreatedAt: time.Now().UTC(),
		}

		err = s.registry.Insert(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrCodeExists) {
			return nil, fmt.Errorf("insert link: %w", err)
		}

		s.logger.Warn("code collision, retrying",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	return nil, ErrAllocationExhausted
}
