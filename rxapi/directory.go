package rxapi

import (
	"context"

	"github.com/deploymenttheory/go-api-rx-client/response"
)

// PatientService lists patients. Admins and doctors may call it.
type PatientService struct{ *base }

func (s *PatientService) ListPatients(ctx context.Context, filters PatientFilters) (response.Page[Patient], error) {
	if err := validated(filters); err != nil {
		return response.Page[Patient]{}, err
	}
	endpoint, err := withQuery(PatientsEndpoint, filters)
	if err != nil {
		return response.Page[Patient]{}, err
	}
	return getPage[Patient](ctx, s.base, endpoint)
}

// DoctorService lists doctors. Admin only.
type DoctorService struct{ *base }

func (s *DoctorService) ListDoctors(ctx context.Context, filters DoctorFilters) (response.Page[Doctor], error) {
	if err := validated(filters); err != nil {
		return response.Page[Doctor]{}, err
	}
	endpoint, err := withQuery(DoctorsEndpoint, filters)
	if err != nil {
		return response.Page[Doctor]{}, err
	}
	return getPage[Doctor](ctx, s.base, endpoint)
}
