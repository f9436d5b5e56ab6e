package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/userbase-hq/userbase/internal/shared"
)

// Service wraps the credential check and the refresh token rotation protocol.
type Service struct {
	repo   Repository
	issuer *Issuer
}

// NewService constructs a new Service.
func NewService(repo Repository, issuer *Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Login validates an email/phone pair and issues a fresh token pair. The
// phone acts as the shared secret here; there is no password on purpose.
// Any mismatch surfaces the same ErrInvalidCredentials so callers cannot
// probe which field was wrong.
func (s *Service) Login(ctx context.Context, email, phone string) (TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, shared.ErrInvalidCredentials
	}
	if user.Phone != phone {
		return TokenPair{}, shared.ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	hash, err := hashToken(pair.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.repo.SetRefreshTokenHash(ctx, user.ID, hash); err != nil {
		return TokenPair{}, fmt.Errorf("auth: persist refresh hash: %w", err)
	}
	return pair, nil
}

// Refresh rotates the user's refresh token. The presented token must match the
// stored hash; a token that was already rotated away no longer matches and is
// rejected, which gives single-use refresh semantics without a revocation list.
func (s *Service) Refresh(ctx context.Context, userID int64, presented string) (TokenPair, error) {
	subject, err := s.issuer.Subject(presented)
	if err != nil {
		return TokenPair{}, shared.ErrAccessDenied
	}
	if subject != userID {
		return TokenPair{}, shared.ErrAccessDenied
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil || user.RefreshTokenHash == "" {
		return TokenPair{}, shared.ErrAccessDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.RefreshTokenHash), tokenDigest(presented)); err != nil {
		return TokenPair{}, shared.ErrAccessDenied
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	hash, err := hashToken(pair.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	// Compare-and-set against the hash we just verified. Losing the race to a
	// concurrent rotation for the same user means our hash is stale: deny.
	if err := s.repo.ReplaceRefreshTokenHash(ctx, user.ID, user.RefreshTokenHash, hash); err != nil {
		if errors.Is(err, shared.ErrAccessDenied) {
			return TokenPair{}, shared.ErrAccessDenied
		}
		return TokenPair{}, fmt.Errorf("auth: rotate refresh hash: %w", err)
	}
	return pair, nil
}

// hashToken derives the one-way stored representation of a refresh token.
// bcrypt caps its input at 72 bytes and JWTs run longer, so the token is
// reduced to a sha256 digest first.
func hashToken(token string) (string, error) {
	digest := tokenDigest(token)
	hash, err := bcrypt.GenerateFromPassword(digest, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash refresh token: %w", err)
	}
	return string(hash), nil
}

func tokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}
