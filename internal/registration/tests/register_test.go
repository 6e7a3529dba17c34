package tests

import (
	"errors"

	"github.com/emailam/Petzania-sub000/internal/registration/domain"
	"github.com/emailam/Petzania-sub000/internal/registration/repository"
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestRegister_Success() {
	id := s.register("sakura", "sakura@example.com")

	user, err := s.RegistrationService.Get(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("sakura", user.Username)

	eventID, processed, _ := s.outboxRow(events.UserCreated)
	s.Require().NotEmpty(eventID)
	s.Require().False(processed, "new outbox rows start unprocessed")

	var payload []byte
	err = s.DbPool.QueryRow(s.Ctx, `SELECT payload FROM outbox WHERE event_id = $1`, eventID).Scan(&payload)
	s.Require().NoError(err)

	env, err := events.Decode(payload)
	s.Require().NoError(err)
	s.Require().Equal(eventID, env.EventID, "row payload is the full envelope")

	var created events.UserCreatedPayload
	s.Require().NoError(env.DecodePayload(&created))
	s.Require().Equal(id, created.UserID)
	s.Require().Equal("sakura", created.Username)
}

func (s *IntegrationTestSuite) TestRegister_DuplicateEmail() {
	s.register("sakura", "sakura@example.com")

	_, err := s.RegistrationService.Register(s.Ctx, &domain.User{
		Username: "other",
		Email:    "sakura@example.com",
	})
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrEmailTaken))
}

func (s *IntegrationTestSuite) TestRegister_InvalidInput() {
	_, err := s.RegistrationService.Register(s.Ctx, &domain.User{
		Username: "ab",
		Email:    "not-an-email",
	})
	s.Require().Error(err)

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM outbox`).Scan(&count))
	s.Require().Zero(count, "nothing is emitted for a rejected registration")
}

func (s *IntegrationTestSuite) TestDelete_EmitsUserDeleted() {
	id := s.register("sakura", "sakura@example.com")

	s.Require().NoError(s.RegistrationService.Delete(s.Ctx, id))

	_, err := s.RegistrationService.Get(s.Ctx, id)
	s.Require().True(errors.Is(err, repository.ErrUserNotFound))

	eventID, processed, _ := s.outboxRow(events.UserDeleted)
	s.Require().NotEmpty(eventID)
	s.Require().False(processed)
}

func (s *IntegrationTestSuite) TestDelete_NotFound() {
	err := s.RegistrationService.Delete(s.Ctx, 424242)
	s.Require().True(errors.Is(err, repository.ErrUserNotFound))

	var count int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM outbox`).Scan(&count))
	s.Require().Zero(count, "no event when the mutation did not happen")
}
