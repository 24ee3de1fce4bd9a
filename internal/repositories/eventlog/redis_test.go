package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2026, 8, 7, 18, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestLatestWithNoLogs() {
	output, err := s.repo.Latest(context.Background())
	s.Require().NoError(err)
	s.False(output.Found)
}

func (s *RedisRepositoryTestSuite) TestOpenLogIsNotEnded() {
	err := s.repo.Open(context.Background(), &OpenInput{StartedAt: s.testNow})
	s.Require().NoError(err)

	err = s.repo.Append(context.Background(), &AppendInput{
		StartedAt: s.testNow,
		Line:      "Player One slaughtered Player Two",
	})
	s.Require().NoError(err)

	output, err := s.repo.Latest(context.Background())
	s.Require().NoError(err)
	s.True(output.Found)
	s.False(output.Ended)
	s.Equal(s.testNow.Unix(), output.StartedAt.Unix())
}

func (s *RedisRepositoryTestSuite) TestMarkEnded() {
	err := s.repo.Open(context.Background(), &OpenInput{StartedAt: s.testNow})
	s.Require().NoError(err)

	err = s.repo.MarkEnded(context.Background(), &MarkEndedInput{StartedAt: s.testNow})
	s.Require().NoError(err)

	output, err := s.repo.Latest(context.Background())
	s.Require().NoError(err)
	s.True(output.Found)
	s.True(output.Ended)
}

func (s *RedisRepositoryTestSuite) TestLatestPicksNewestLog() {
	older := s.testNow.Add(-7 * 24 * time.Hour)

	err := s.repo.Open(context.Background(), &OpenInput{StartedAt: older})
	s.Require().NoError(err)
	err = s.repo.MarkEnded(context.Background(), &MarkEndedInput{StartedAt: older})
	s.Require().NoError(err)

	err = s.repo.Open(context.Background(), &OpenInput{StartedAt: s.testNow})
	s.Require().NoError(err)

	output, err := s.repo.Latest(context.Background())
	s.Require().NoError(err)
	s.True(output.Found)
	s.Equal(s.testNow.Unix(), output.StartedAt.Unix())
	s.False(output.Ended)
}

func (s *RedisRepositoryTestSuite) TestAppendAfterEndedReopensNothing() {
	err := s.repo.Open(context.Background(), &OpenInput{StartedAt: s.testNow})
	s.Require().NoError(err)
	err = s.repo.MarkEnded(context.Background(), &MarkEndedInput{StartedAt: s.testNow})
	s.Require().NoError(err)

	// A stray late append makes the log look unfinished again; the state
	// machine never does this, but the repository should report what is
	// actually on disk
	err = s.repo.Append(context.Background(), &AppendInput{
		StartedAt: s.testNow,
		Line:      "late line",
	})
	s.Require().NoError(err)

	output, err := s.repo.Latest(context.Background())
	s.Require().NoError(err)
	s.False(output.Ended)
}
