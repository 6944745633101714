package main

import (
	"errors"

	"github.com/Bibi40k/vsphere-mcp/internal/config"
	"github.com/Bibi40k/vsphere-mcp/pkg/vcenter"
)

type userError struct {
	msg  string
	hint string
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Hint() string  { return e.hint }

// asUserError attaches a hint to the startup failures an operator can fix.
func asUserError(err error) *userError {
	var ue *userError
	if errors.As(err, &ue) {
		return ue
	}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return &userError{
			msg:  err.Error(),
			hint: "set VCENTER_HOST, VCENTER_USER and VCENTER_PASSWORD in the environment or a .env file",
		}
	}

	var authErr *vcenter.AuthError
	if errors.As(err, &authErr) {
		return &userError{
			msg:  err.Error(),
			hint: "check the credentials and that " + authErr.Host + " is reachable; set VCENTER_INSECURE=true for self-signed certificates",
		}
	}

	return &userError{msg: err.Error()}
}
