package tests

import (
	"time"

	"github.com/emailam/Petzania-sub000/pkg/events"
	outboxDomain "github.com/emailam/Petzania-sub000/pkg/outbox/domain"
)

func (s *IntegrationTestSuite) TestRelay_PublishesAndMarksProcessed() {
	s.register("sakura", "sakura@example.com")

	s.Require().NoError(s.Relay.ProcessBatch(s.Ctx))

	_, processed, retryCount := s.outboxRow(events.UserCreated)
	s.Require().True(processed)
	s.Require().Zero(retryCount)

	var processedAt *time.Time
	err := s.DbPool.QueryRow(s.Ctx, `SELECT processed_at FROM outbox`).Scan(&processedAt)
	s.Require().NoError(err)
	s.Require().NotNil(processedAt)
}

func (s *IntegrationTestSuite) TestRelay_UnroutableRowMarkedFailed() {
	query := `
		INSERT INTO outbox (event_id, entity_id, entity_type, event_type, topic, payload)
		VALUES (gen_random_uuid(), '1', 'user', 'NobodyRoutesThis', '', '{}')
	`
	_, err := s.DbPool.Exec(s.Ctx, query)
	s.Require().NoError(err)

	s.Require().NoError(s.Relay.ProcessBatch(s.Ctx))

	var processed bool
	var retryCount int64
	var errMsg *string
	err = s.DbPool.QueryRow(s.Ctx, `SELECT processed, retry_count, error_message FROM outbox`).Scan(&processed, &retryCount, &errMsg)
	s.Require().NoError(err)

	s.Require().False(processed)
	s.Require().Equal(int64(1), retryCount)
	s.Require().NotNil(errMsg)
}

func (s *IntegrationTestSuite) TestFallback_SameEventIsSavedOnce() {
	env, err := events.NewEnvelope(events.UserCreated, "user", "9", "registration", &events.UserCreatedPayload{
		UserID:   9,
		Username: "nana",
	})
	s.Require().NoError(err)

	// Two failed immediate publishes of the same logical event each write
	// the fallback; only one row may result.
	for i := 0; i < 2; i++ {
		row, err := outboxDomain.FromEnvelope(env)
		s.Require().NoError(err)
		s.Require().NoError(s.OutboxRepo.SaveFallback(s.Ctx, row))
	}

	var count int
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM outbox WHERE event_id = $1`, env.EventID).Scan(&count)
	s.Require().NoError(err)
	s.Require().Equal(1, count)

	_, processed, _ := s.outboxRow(events.UserCreated)
	s.Require().False(processed)

	s.Require().NoError(s.Relay.ProcessBatch(s.Ctx))

	_, processed, _ = s.outboxRow(events.UserCreated)
	s.Require().True(processed, "the relay drains the fallback row")
}

func (s *IntegrationTestSuite) TestRelay_CleanupPurgesOldProcessedRows() {
	s.register("sakura", "sakura@example.com")
	s.Require().NoError(s.Relay.ProcessBatch(s.Ctx))

	// Age the delivered row past the retention window.
	_, err := s.DbPool.Exec(s.Ctx, `UPDATE outbox SET processed_at = NOW() - INTERVAL '8 days' WHERE processed`)
	s.Require().NoError(err)

	deleted, err := s.Relay.Cleanup(s.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), deleted)

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM outbox`).Scan(&count))
	s.Require().Zero(count)
}

func (s *IntegrationTestSuite) TestRelay_RecentProcessedRowsSurviveCleanup() {
	s.register("sakura", "sakura@example.com")
	s.Require().NoError(s.Relay.ProcessBatch(s.Ctx))

	deleted, err := s.Relay.Cleanup(s.Ctx)
	s.Require().NoError(err)
	s.Require().Zero(deleted, "rows inside the retention window stay for auditing")
}
