package rxapi

// Endpoint constants are the API paths the services call. Paths with a %s take an ID.
const (
	LoginEndpoint   = "/auth/login"   // LoginEndpoint: exchanges credentials for a token pair.
	ProfileEndpoint = "/auth/profile" // ProfileEndpoint: returns the authenticated user.
	LogoutEndpoint  = "/auth/logout"  // LogoutEndpoint: invalidates the server-side session.

	UsersEndpoint        = "/users"          // UsersEndpoint: lists and creates users.
	AdminUserEndpoint    = "/admin/users/%s" // AdminUserEndpoint: reads, updates and deletes one user.
	AdminMetricsEndpoint = "/admin/metrics"  // AdminMetricsEndpoint: dashboard aggregates.
	PatientsEndpoint     = "/patients"       // PatientsEndpoint: lists patients.
	DoctorsEndpoint      = "/doctors"        // DoctorsEndpoint: lists doctors.

	PrescriptionsEndpoint         = "/prescriptions"                     // PrescriptionsEndpoint: doctor list and create.
	PrescriptionFromAudioEndpoint = "/prescriptions/from-audio"          // PrescriptionFromAudioEndpoint: create from a dictated recording.
	PrescriptionEndpoint          = "/prescriptions/%s"                  // PrescriptionEndpoint: one prescription.
	PrescriptionConsumeEndpoint   = "/prescriptions/%s/consume"          // PrescriptionConsumeEndpoint: marks a prescription consumed.
	PrescriptionPDFEndpoint       = "/prescriptions/%s/pdf"              // PrescriptionPDFEndpoint: printable PDF.
	PatientPrescriptionsEndpoint  = "/prescriptions/me/prescriptions"    // PatientPrescriptionsEndpoint: the caller's own prescriptions.
	AdminPrescriptionsEndpoint    = "/prescriptions/admin/prescriptions" // AdminPrescriptionsEndpoint: every prescription in the system.
)

// AudioFormField and PatientIDFormField name the parts of the audio upload.
const (
	AudioFormField     = "audio"
	PatientIDFormField = "patientId"
)

// SupportedAudioTypes are the recording formats the transcription backend accepts.
var SupportedAudioTypes = []string{
	"audio/mp3",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"audio/webm",
	"audio/m4a",
	"audio/mp4",
}
