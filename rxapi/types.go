package rxapi

import "time"

// Role is a user class. It decides which endpoints a user may call.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// PrescriptionStatus is the lifecycle state of a prescription.
type PrescriptionStatus string

const (
	StatusPending  PrescriptionStatus = "pending"
	StatusConsumed PrescriptionStatus = "consumed"
)

// User is an account as the admin endpoints return it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// AuthProfile is the authenticated user returned by the profile endpoint.
type AuthProfile User

// LoginCredentials is the body of the login call.
type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the normalised login result. Tokens are empty when the server
// returned no usable pair.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

type Doctor struct {
	ID            string `json:"id"`
	User          *User  `json:"user,omitempty"`
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"licenseNumber"`
}

type Patient struct {
	ID        string `json:"id"`
	User      *User  `json:"user,omitempty"`
	BirthDate string `json:"birthDate"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type PrescriptionItem struct {
	ID         string `json:"id,omitempty"`
	Medication string `json:"medication" validate:"required"`
	Dosage     string `json:"dosage" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
	Duration   string `json:"duration,omitempty"`
}

// PrescriptionPatient and PrescriptionAuthor are the expanded relations some
// prescription endpoints embed.
type PrescriptionPatient struct {
	ID        string `json:"id"`
	User      *User  `json:"user,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

type PrescriptionAuthor struct {
	ID        string `json:"id"`
	User      *User  `json:"user,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

type Prescription struct {
	ID         string               `json:"id"`
	Code       string               `json:"code"`
	PatientID  string               `json:"patientId"`
	AuthorID   string               `json:"authorId"`
	Diagnosis  string               `json:"diagnosis"`
	Notes      string               `json:"notes,omitempty"`
	Status     PrescriptionStatus   `json:"status"`
	CreatedAt  string               `json:"createdAt"`
	ConsumedAt *string              `json:"consumedAt,omitempty"`
	Items      []PrescriptionItem   `json:"items"`
	Patient    *PrescriptionPatient `json:"patient,omitempty"`
	Author     *PrescriptionAuthor  `json:"author,omitempty"`
}

// Consumed reports whether the prescription has been dispensed.
func (p *Prescription) Consumed() bool {
	return p.Status == StatusConsumed
}

// CreatedTime parses CreatedAt. The zero time is returned when it is not RFC 3339.
func (p *Prescription) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

type CreatePrescriptionRequest struct {
	PatientID string             `json:"patientId" validate:"required"`
	Diagnosis string             `json:"diagnosis" validate:"required"`
	Notes     string             `json:"notes,omitempty"`
	Items     []PrescriptionItem `json:"items" validate:"required,min=1,dive"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=admin doctor patient"`
}

// UpdateUserRequest is a partial update; empty fields are left unchanged.
type UpdateUserRequest struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
	Name     string `json:"name,omitempty"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=admin doctor patient"`
}

// StatusCount, DayCount and DoctorCount are rows of the admin metrics.
type StatusCount struct {
	Pending  int `json:"pending"`
	Consumed int `json:"consumed"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DoctorCount struct {
	DoctorID   string `json:"doctorId"`
	DoctorName string `json:"doctorName"`
	Specialty  string `json:"specialty"`
	Count      int    `json:"count"`
}

type AdminMetrics struct {
	Totals struct {
		Doctors       int `json:"doctors"`
		Patients      int `json:"patients"`
		Prescriptions int `json:"prescriptions"`
	} `json:"totals"`
	ByStatus   StatusCount   `json:"byStatus"`
	ByDay      []DayCount    `json:"byDay"`
	TopDoctors []DoctorCount `json:"topDoctors"`
}

// Filters. Zero values are left out of the query string.

type PrescriptionFilters struct {
	Mine   *bool              `url:"mine,omitempty"`
	Status PrescriptionStatus `url:"status,omitempty" validate:"omitempty,oneof=pending consumed"`
	From   string             `url:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To     string             `url:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Page   int                `url:"page,omitempty" validate:"gte=0"`
	Limit  int                `url:"limit,omitempty" validate:"gte=0"`
}

// PatientPrescriptionFilters narrows the caller's own prescriptions.
type PatientPrescriptionFilters struct {
	Status PrescriptionStatus `url:"status,omitempty" validate:"omitempty,oneof=pending consumed"`
	Page   int                `url:"page,omitempty" validate:"gte=0"`
	Limit  int                `url:"limit,omitempty" validate:"gte=0"`
}

type AdminPrescriptionFilters struct {
	Status    PrescriptionStatus `url:"status,omitempty" validate:"omitempty,oneof=pending consumed"`
	DoctorID  string             `url:"doctorId,omitempty"`
	PatientID string             `url:"patientId,omitempty"`
	From      string             `url:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To        string             `url:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Page      int                `url:"page,omitempty" validate:"gte=0"`
	Limit     int                `url:"limit,omitempty" validate:"gte=0"`
}

type UserFilters struct {
	Role  Role `url:"role,omitempty" validate:"omitempty,oneof=admin doctor patient"`
	Page  int  `url:"page,omitempty" validate:"gte=0"`
	Limit int  `url:"limit,omitempty" validate:"gte=0"`
}

type PatientFilters struct {
	Search string `url:"search,omitempty"`
	Page   int    `url:"page,omitempty" validate:"gte=0"`
	Limit  int    `url:"limit,omitempty" validate:"gte=0"`
}

type DoctorFilters struct {
	Specialty string `url:"specialty,omitempty"`
	Page      int    `url:"page,omitempty" validate:"gte=0"`
	Limit     int    `url:"limit,omitempty" validate:"gte=0"`
}

type MetricsFilters struct {
	From string `url:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To   string `url:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
