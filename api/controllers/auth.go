package controllers

import (
	"net/http"
	"time"

	"github.com/rgastelum/supplyline-backend/api/responses"
	"github.com/rgastelum/supplyline-backend/api/validators"
	internalauth "github.com/rgastelum/supplyline-backend/internal/auth"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
	UserID       string    `json:"userId"`
	Role         string    `json:"role"`
	CustomerName string    `json:"customerName"`
}

func Login(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Token:        result.Token,
			ExpiresAt:    result.ExpiresAt,
			UserID:       result.User.ID.String(),
			Role:         result.User.Role.String(),
			CustomerName: result.User.CustomerName,
		})
	}
}
