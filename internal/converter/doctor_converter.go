package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:         doctor.ID,
		Name:       doctor.Name,
		Specialty:  doctor.Specialty,
		Rating:     doctor.Rating,
		Reviews:    doctor.Reviews,
		About:      doctor.About,
		Experience: doctor.Experience,
		Fees:       doctor.ConsultationFee(),
		CreatedAt:  doctor.CreatedAt,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}

func DoctorsToListResponse(doctors []entity.Doctor) *dto.DoctorListResponse {
	return &dto.DoctorListResponse{
		Doctors: DoctorsToResponses(doctors),
		Total:   len(doctors),
	}
}
