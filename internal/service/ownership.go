// Package service contains the business logic layer: validation, the
// ownership gate on every mutation, and orchestration between the token,
// password, and repository collaborators. Services accept primitives and
// return domain errors; they know nothing about HTTP.
package service

import (
	"fmt"

	"github.com/SimasDei/dev-bastion/internal/apperror"
)

// requireOwner is the single ownership check every guarded mutation goes
// through: the operation is allowed only if the caller's identity equals
// the resource's owner identity.
func requireOwner(callerID, ownerID, resource string) error {
	if callerID != ownerID {
		return apperror.Forbidden(fmt.Sprintf("caller does not own this %s", resource))
	}
	return nil
}
