package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/session"
)

func ProfileToResponse(profile *entity.UserProfile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.ProfileResponse{
		ID:        profile.ID,
		Name:      profile.Name,
		Phone:     profile.Phone,
		Email:     profile.Email,
		UpdatedAt: profile.UpdatedAt,
	}
}

// SessionToResponse includes the root stack the client should navigate to.
func SessionToResponse(sess *session.Session) *dto.SessionResponse {
	if sess == nil {
		return &dto.SessionResponse{RootStack: string(session.RootStack(false, false))}
	}

	return &dto.SessionResponse{
		UserID:    sess.UserID,
		Email:     sess.Email,
		Role:      string(sess.Role),
		IsDoctor:  sess.IsDoctor(),
		RootStack: string(session.RootStack(true, sess.IsDoctor())),
	}
}
