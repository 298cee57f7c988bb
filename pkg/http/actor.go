package http

import (
	"net/http"
	"strings"

	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// ActorFromRequest reads the caller identity set by the auth gateway.
func ActorFromRequest(r *http.Request) (model.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return model.Actor{}, apperrors.Unauthorized("missing " + HeaderUserID + " header")
	}

	role := model.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
	if !role.IsValid() {
		return model.Actor{}, apperrors.Unauthorized("missing or unknown " + HeaderUserRole + " header")
	}

	return model.Actor{ID: id, Role: role}, nil
}
