package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// DateFormat is the accepted layout for date-only fields.
const DateFormat = "2006-01-02"

type CreateUserRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthday  string `json:"birthday"`
	Email     string `json:"email"`
}

func (req *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required.Error("must include a name"), validation.Length(1, 100)),
		validation.Field(&req.Birthday, validation.Date(DateFormat)),
		validation.Field(&req.Email, is.Email),
	)
}

// UpdateUserRequest is a partial update: nil fields leave the stored
// value untouched.
type UpdateUserRequest struct {
	Name      *string `json:"name"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Birthday  *string `json:"birthday"`
	Email     *string `json:"email"`
}

func (req *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(1, 100)),
		validation.Field(&req.Birthday, validation.Date(DateFormat)),
		validation.Field(&req.Email, is.Email),
	)
}
