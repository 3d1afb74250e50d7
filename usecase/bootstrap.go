package usecase

import (
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

// Bootstrap creates the first admin account with the center-wide grant. It
// bypasses authorization: there is nobody to authorize against yet, which is
// also why it refuses to run on a non-empty user table.
func Bootstrap(db *io.MemoryStoreTxn, name, phoneNumber, password string, parentLogger hclog.Logger) (*model.User, error) {
	logger := parentLogger.Named("Bootstrap")

	users := repo.NewUserRepository(db)
	empty, err := users.IsEmpty()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, fmt.Errorf("%w: users already exist, bootstrap is single-shot", consts.ErrAlreadyExists)
	}

	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}
	encoded, err := EncodePassword(password)
	if err != nil {
		return nil, err
	}

	admin := &model.User{
		UUID:        uuid.New(),
		Name:        name,
		PhoneNumber: phoneNumber,
		Password:    encoded,
	}
	if err := users.Create(admin); err != nil {
		return nil, err
	}

	grant := &model.Scope{
		UUID:     uuid.New(),
		UserUUID: admin.UUID,
		Name:     model.ManageCenter,
	}
	if err := repo.NewScopeRepository(db).Create(grant); err != nil {
		return nil, err
	}

	logger.Info("bootstrapped center admin", "user", admin.UUID)
	return admin.OmitSensitive(), nil
}
