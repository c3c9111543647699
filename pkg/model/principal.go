package model

import "time"

// Kind separates the two principal namespaces. Owners and users never share
// ids, tables or tokens.
type Kind string

const (
	KindOwner Kind = "owner"
	KindUser  Kind = "user"
)

func (k Kind) Valid() bool {
	return k == KindOwner || k == KindUser
}

// Plural is the collection/table and route segment for the kind.
func (k Kind) Plural() string {
	return string(k) + "s"
}

func (k Kind) Title() string {
	switch k {
	case KindOwner:
		return "Owner"
	case KindUser:
		return "User"
	default:
		return "Principal"
	}
}

type Principal struct {
	ID           string    `json:"id" db:"id" bson:"_id"`
	Kind         Kind      `json:"-" db:"-" bson:"-"`
	FullName     string    `json:"full_name" db:"full_name" bson:"full_name"`
	Username     string    `json:"username" db:"username" bson:"username"`
	Email        string    `json:"email" db:"email" bson:"email"`
	PhoneNo      string    `json:"phone_no" db:"phone_no" bson:"phone_no"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"`
	RefreshToken *string   `json:"-" db:"refresh_token" bson:"refresh_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	PhoneNo  string `json:"phone_no" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// PrincipalPatch is a partial profile edit. Nil fields are left unchanged.
type PrincipalPatch struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Username *string `json:"username,omitempty" validate:"omitempty,username"`
	PhoneNo  *string `json:"phone_no,omitempty" validate:"omitempty,e164"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

func (p *PrincipalPatch) IsEmpty() bool {
	return p.FullName == nil && p.Username == nil && p.PhoneNo == nil && p.Password == nil
}

// PrincipalChanges is what a repository applies for a PrincipalPatch once the
// password has been hashed.
type PrincipalChanges struct {
	FullName     *string
	Username     *string
	PhoneNo      *string
	PasswordHash *string
}

// TokenPair is the credential pair handed to a principal on login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
