package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rgastelum/supplyline-backend/api/middleware"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

type actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

func actorFromRequest(r *http.Request) (actor, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}
	return actor{ID: id, Role: role}, nil
}
