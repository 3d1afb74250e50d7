package model

import "encoding/json"

const UserType = "user" // also, memdb schema name

// User is a staff account. Users are center-global: they do not belong to a
// space, membership is expressed through scope grants.
type User struct {
	UUID        UserUUID `json:"uuid"` // PK
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phone_number"`

	// Argon2id encoded hash, never a cleartext password
	Password string `json:"password,omitempty"`
}

func (u *User) ObjType() string {
	return UserType
}

func (u *User) ObjId() string {
	return u.UUID
}

// OmitSensitive returns a copy safe to hand out of the store. The hash has
// no read path at all, sign-in compares against the stored record directly.
func (u *User) OmitSensitive() *User {
	public := *u
	public.Password = ""
	return &public
}

func (u *User) Marshal(includeSensitive bool) ([]byte, error) {
	obj := u
	if !includeSensitive {
		obj = u.OmitSensitive()
	}
	return json.Marshal(obj)
}
