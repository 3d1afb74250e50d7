package usecase

import (
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"
	gopassword "github.com/sethvargo/go-password/password"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
)

const tempPasswordLength = 10

// AuthService handles sign-in and password recovery. It is the one service
// that works without an authenticated actor.
type AuthService struct {
	users  *repo.UserRepository
	scopes *repo.ScopeRepository
	logger hclog.Logger
}

func Auth(db *io.MemoryStoreTxn, parentLogger hclog.Logger) *AuthService {
	return &AuthService{
		users:  repo.NewUserRepository(db),
		scopes: repo.NewScopeRepository(db),
		logger: parentLogger.Named("Auth"),
	}
}

// SignIn verifies credentials and returns the account. Unknown phone number
// and wrong password both come back as ErrAccessForbidden, the caller
// cannot tell which.
func (s *AuthService) SignIn(phoneNumber, password string) (*model.User, error) {
	user, err := s.users.GetByPhoneNumber(phoneNumber)
	if errors.Is(err, consts.ErrNotFound) {
		return nil, consts.ErrAccessForbidden
	}
	if err != nil {
		return nil, err
	}

	ok, err := ComparePassword(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("failed sign-in attempt", "phone_number", phoneNumber)
		return nil, consts.ErrAccessForbidden
	}

	s.logger.Info("signed in", "user", user.UUID)
	return user.OmitSensitive(), nil
}

// WhoCanResetPasswordFor lists accounts able to reset the user's password:
// every center manager, plus the managers of each space the user is a
// member of. The user themselves is excluded and each helper appears once.
func (s *AuthService) WhoCanResetPasswordFor(phoneNumber string) ([]*model.User, error) {
	target, err := s.users.GetByPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	memberOf := map[model.SpaceUUID]struct{}{}
	held, err := s.scopes.ListByUser(target.UUID)
	if err != nil {
		return nil, err
	}
	for _, g := range held {
		if g.SpaceUUID != "" {
			memberOf[g.SpaceUUID] = struct{}{}
		}
	}

	seen := map[model.UserUUID]struct{}{}
	result := []*model.User{}

	add := func(userUUID model.UserUUID) error {
		if _, done := seen[userUUID]; done {
			return nil
		}
		user, err := s.users.GetByID(userUUID)
		if err != nil {
			return err
		}
		if user.PhoneNumber == phoneNumber {
			return nil
		}
		seen[userUUID] = struct{}{}
		result = append(result, user.OmitSensitive())
		return nil
	}

	centerManagers, err := s.scopes.ListByName(model.ManageCenter)
	if err != nil {
		return nil, err
	}
	for _, g := range centerManagers {
		if err := add(g.UserUUID); err != nil {
			return nil, err
		}
	}

	spaceManagers, err := s.scopes.ListByName(model.ManageSpace)
	if err != nil {
		return nil, err
	}
	for _, g := range spaceManagers {
		if _, member := memberOf[g.SpaceUUID]; !member {
			continue
		}
		if err := add(g.UserUUID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ResetPassword sets a generated temporary password on the target account
// and returns it in cleartext, once, for handover. The actor must be a
// center manager or manage a space the target is a member of.
func (s *AuthService) ResetPassword(actor model.UserUUID, phoneNumber string) (string, error) {
	target, err := s.users.GetByPhoneNumber(phoneNumber)
	if err != nil {
		return "", err
	}
	if target.UUID == actor {
		return "", fmt.Errorf("%w: cannot reset own password", consts.ErrAccessForbidden)
	}

	allowed, err := s.canReset(actor, target)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", consts.ErrAccessForbidden
	}

	tempPassword, err := gopassword.Generate(tempPasswordLength, 3, 0, false, false)
	if err != nil {
		return "", err
	}
	encoded, err := EncodePassword(tempPassword)
	if err != nil {
		return "", err
	}

	updated := *target
	updated.Password = encoded
	if err := s.users.Update(&updated); err != nil {
		return "", err
	}

	s.logger.Info("password reset", "actor", actor, "user", target.UUID)
	return tempPassword, nil
}

func (s *AuthService) canReset(actor model.UserUUID, target *model.User) (bool, error) {
	actorGrants, err := s.scopes.ListByUser(actor)
	if err != nil {
		return false, err
	}
	targetGrants, err := s.scopes.ListByUser(target.UUID)
	if err != nil {
		return false, err
	}

	memberOf := map[model.SpaceUUID]struct{}{}
	for _, g := range targetGrants {
		if g.SpaceUUID != "" {
			memberOf[g.SpaceUUID] = struct{}{}
		}
	}

	for _, g := range actorGrants {
		if g.Name == model.ManageCenter {
			return true, nil
		}
		if g.Name != model.ManageSpace {
			continue
		}
		if _, member := memberOf[g.SpaceUUID]; member {
			return true, nil
		}
	}
	return false, nil
}
