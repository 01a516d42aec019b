package service

import (
	"scribesnap/internal/entities"
	"scribesnap/internal/models"
)

func toUserResponse(user *entities.User) *models.UserResponse {
	return &models.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}
