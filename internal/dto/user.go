package dto

import "github.com/yukikurage/tracker-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// CurrentUserDTO is the signed-in user's own profile, including the friend
// code others use to connect.
type CurrentUserDTO struct {
	UserDTO
	FriendCode string `json:"friend_code"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToCurrentUserDTO converts the acting user to CurrentUserDTO
func ToCurrentUserDTO(user models.User) CurrentUserDTO {
	return CurrentUserDTO{
		UserDTO:    ToUserDTO(user),
		FriendCode: user.FriendCode,
	}
}
