package usecase

import (
	"fmt"
	"regexp"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/model"
)

// Egyptian mobile numbers in international form.
var phoneNumberRegex = regexp.MustCompile(`^\+201[0125][0-9]{8}$`)

func validatePhoneNumber(phoneNumber string) error {
	if !phoneNumberRegex.MatchString(phoneNumber) {
		return fmt.Errorf("%w: invalid phone number %q", consts.ErrInvalidArg, phoneNumber)
	}
	return nil
}

func validateStudentPhoneNumbers(phoneNumbers []model.StudentPhoneNumber) error {
	for _, pn := range phoneNumbers {
		if err := validatePhoneNumber(pn.Number); err != nil {
			return err
		}
	}
	return nil
}
