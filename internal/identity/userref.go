package identity

import (
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
)

type refKind int

const (
	refCurrent refKind = iota
	refByID
	refByEmail
	refByLogin
	refByRecord
)

// UserRef names an account by any of the references the event handlers see:
// a numeric id, an email address, a login name, an already-loaded record, or
// the session's authenticated user.
type UserRef struct {
	kind refKind
	id   snowflake.ID
	str  string
	user *accountdomain.User
}

// Current refers to the authenticated user on the request session, if any.
func Current() UserRef {
	return UserRef{kind: refCurrent}
}

func ByID(id snowflake.ID) UserRef {
	return UserRef{kind: refByID, id: id}
}

func ByEmail(email string) UserRef {
	return UserRef{kind: refByEmail, str: email}
}

func ByLogin(login string) UserRef {
	return UserRef{kind: refByLogin, str: login}
}

func ByRecord(user *accountdomain.User) UserRef {
	return UserRef{kind: refByRecord, user: user}
}

// ByString classifies free-form input the way a login form would: values
// that parse as an email address resolve by email, anything else by login.
func ByString(value string) UserRef {
	value = strings.TrimSpace(value)
	if isEmail(value) {
		return ByEmail(value)
	}
	return ByLogin(value)
}

func isEmail(value string) bool {
	if !strings.Contains(value, "@") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
