package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no record exists for a token identifier,
	// either because it was never stored or because its TTL elapsed.
	ErrNotFound = errors.New("revocation: record not found")
	// ErrAlreadyTerminal is returned when a state transition loses against a
	// concurrent transition: the record is already rotated or revoked.
	// Callers treat this as a possible replay.
	ErrAlreadyTerminal = errors.New("revocation: record already terminal")
	// ErrUnavailable wraps transport failures. Callers must fail closed: an
	// unreachable store never grants a token or access decision.
	ErrUnavailable = errors.New("revocation: redis unavailable")
)

const (
	defaultPrefix     = "rr"
	defaultMaxLineage = 1024
	transitionRetries = 4
)

// Store is the Redis-backed refresh token record store. It is the single
// point of shared mutable truth for rotation state; MarkRotated and
// MarkRevoked are compare-and-swap transitions so that two concurrent
// rotations of the same token cannot both succeed.
type Store struct {
	redis      redis.UniversalClient
	prefix     string
	maxLineage int
}

// NewStore creates a record store backed by the given Redis client. prefix
// sets the key namespace; an empty prefix selects the default.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:      redisClient,
		prefix:     prefix,
		maxLineage: defaultMaxLineage,
	}
}

func (s *Store) key(tokenID string) string {
	return s.prefix + ":" + tokenID
}

func (s *Store) principalKey(principalID string) string {
	return s.prefix + "u:" + principalID
}

// Put stores or overwrites the record under the token identifier with a
// store-native expiry, and indexes it for principal-wide revocation. The TTL
// equals the refresh token's remaining lifetime, so terminal and expired
// entries self-evict.
func (s *Store) Put(ctx context.Context, tokenID string, record *RefreshRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation: non-positive ttl for %q", tokenID)
	}

	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	principalKey := s.principalKey(record.PrincipalID)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(tokenID), data, ttl)
		pipe.SAdd(ctx, principalKey, tokenID)
		// A fresh record always carries the full refresh lifetime, so this
		// keeps the index alive at least as long as its longest member.
		pipe.Expire(ctx, principalKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Get retrieves the record for a token identifier. A record whose own expiry
// has passed is reported as absent even if Redis has not evicted it yet.
func (s *Store) Get(ctx context.Context, tokenID string) (*RefreshRecord, error) {
	data, err := s.redis.Get(ctx, s.key(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() >= record.ExpiresAt {
		return nil, ErrNotFound
	}

	return record, nil
}

// Delete removes a record and its index entry. Deleting an absent record is
// not an error.
func (s *Store) Delete(ctx context.Context, tokenID string) error {
	data, err := s.redis.Get(ctx, s.key(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(tokenID))
		pipe.SRem(ctx, s.principalKey(record.PrincipalID), tokenID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// MarkRotated atomically transitions an active record to rotated, linking
// the successor token identifier. Exactly one of any set of concurrent
// callers observes active and wins; the rest get ErrAlreadyTerminal.
func (s *Store) MarkRotated(ctx context.Context, tokenID, successorID string) error {
	return s.transition(ctx, tokenID, func(record *RefreshRecord) {
		record.State = StateRotated
		record.SuccessorID = successorID
	})
}

// MarkRevoked atomically transitions an active record to revoked. Records
// already in a terminal state yield ErrAlreadyTerminal.
func (s *Store) MarkRevoked(ctx context.Context, tokenID string) error {
	return s.transition(ctx, tokenID, func(record *RefreshRecord) {
		record.State = StateRevoked
	})
}

// transition runs an optimistic WATCH/MULTI compare-and-swap: the mutation
// applies only if the record is still active and unchanged since the read.
func (s *Store) transition(ctx context.Context, tokenID string, mutate func(*RefreshRecord)) error {
	key := s.key(tokenID)

	for attempt := 0; attempt < transitionRetries; attempt++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRecord(data)
			if err != nil {
				return err
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrNotFound
			}

			if record.State.Terminal() {
				return ErrAlreadyTerminal
			}

			mutate(record)
			updated, err := encodeRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return ErrNotFound
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyTerminal):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}
		return nil
	}

	// The record kept changing under us; a concurrent caller owns the
	// transition. Treat it as lost.
	return ErrAlreadyTerminal
}

// RevokeLineage force-revokes the record and every successor reachable from
// it, including the active tip of the chain. Used when replay is detected so
// that a stolen rotation chain dies wholesale. Earlier members of the chain
// are already terminal and stay so.
func (s *Store) RevokeLineage(ctx context.Context, tokenID string) error {
	seen := make(map[string]struct{}, 8)
	current := tokenID

	for hop := 0; hop < s.maxLineage; hop++ {
		if _, ok := seen[current]; ok {
			return nil
		}
		seen[current] = struct{}{}

		successor, found, err := s.forceRevoke(ctx, current)
		if err != nil {
			return err
		}
		if !found || successor == "" {
			return nil
		}
		current = successor
	}

	return nil
}

// RevokeAllForPrincipal force-revokes every tracked record belonging to the
// principal, regardless of lineage.
func (s *Store) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	tokenIDs, err := s.redis.SMembers(ctx, s.principalKey(principalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, tokenID := range tokenIDs {
		if _, _, err := s.forceRevoke(ctx, tokenID); err != nil {
			return err
		}
	}
	return nil
}

// forceRevoke sets a record to revoked regardless of its current state and
// reports its successor link so lineage walks can continue. Absent records
// are skipped, not errors.
func (s *Store) forceRevoke(ctx context.Context, tokenID string) (successor string, found bool, err error) {
	key := s.key(tokenID)

	for attempt := 0; attempt < transitionRetries; attempt++ {
		var link string

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRecord(data)
			if err != nil {
				return err
			}
			link = record.SuccessorID

			if record.State == StateRevoked {
				return nil
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			record.State = StateRevoked
			updated, err := encodeRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return "", false, nil
			}
			return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return link, true, nil
	}

	return "", false, fmt.Errorf("%w: revoke transition kept failing for %q", ErrUnavailable, tokenID)
}

// Ping reports point-in-time store availability and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
