//go:build integration

package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taxsync/internal/auth/revocation"
	"taxsync/pkg/testutil/containers"
)

type RedisRevocationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	list  *revocation.Redis
}

func TestRedisRevocationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRevocationSuite))
}

func (s *RedisRevocationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.list = revocation.NewRedis(s.redis.Client)
}

func (s *RedisRevocationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRevocationSuite) TestRevokeRoundTrip() {
	ctx := context.Background()

	revoked, err := s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.list.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.list.IsRevoked(ctx, "jti-other")
	s.Require().NoError(err)
	s.False(revoked, "revocation is per token id")
}

func (s *RedisRevocationSuite) TestEntryExpiresWithTokenLifetime() {
	ctx := context.Background()

	// TTL matches the residual token lifetime; once the token would have
	// expired anyway the key goes with it.
	s.Require().NoError(s.list.Revoke(ctx, "jti-short", time.Second))

	revoked, err := s.list.IsRevoked(ctx, "jti-short")
	s.Require().NoError(err)
	s.True(revoked)

	s.Eventually(func() bool {
		revoked, err := s.list.IsRevoked(ctx, "jti-short")
		return err == nil && !revoked
	}, 5*time.Second, 200*time.Millisecond)
}

func (s *RedisRevocationSuite) TestEmptyJTIIsIgnored() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "", time.Hour))
	revoked, err := s.list.IsRevoked(ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
