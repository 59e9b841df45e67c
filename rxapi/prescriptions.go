package rxapi

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/deploymenttheory/go-api-rx-client/httpclient"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"go.uber.org/zap"
)

// PrescriptionService covers the doctor, patient and admin prescription endpoints.
type PrescriptionService struct{ *base }

// AudioUpload is a dictated prescription recording.
type AudioUpload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// Create issues a new prescription. Doctor only.
func (s *PrescriptionService) Create(ctx context.Context, req CreatePrescriptionRequest) (*Prescription, error) {
	if err := validated(req); err != nil {
		return nil, err
	}
	var rx Prescription
	if err := s.do(ctx, http.MethodPost, PrescriptionsEndpoint, req, &rx); err != nil {
		return nil, err
	}
	return &rx, nil
}

// CreateFromAudio uploads a recording that the backend transcribes into a prescription
// for patientID. Doctor only.
func (s *PrescriptionService) CreateFromAudio(ctx context.Context, patientID string, audio AudioUpload) (*Prescription, error) {
	if patientID == "" {
		return nil, &ValidationError{Fields: map[string]string{PatientIDFormField: "is required"}}
	}
	if audio.Content == nil {
		return nil, &ValidationError{Fields: map[string]string{AudioFormField: "is required"}}
	}
	if !IsSupportedAudioType(audio.ContentType) {
		return nil, &ValidationError{Fields: map[string]string{
			AudioFormField: fmt.Sprintf("has unsupported type %q", audio.ContentType),
		}}
	}

	var rx Prescription
	_, err := s.client.DoMultipartRequest(ctx, http.MethodPost, PrescriptionFromAudioEndpoint,
		map[string]string{PatientIDFormField: patientID},
		map[string]httpclient.MultipartFile{
			AudioFormField: {FileName: audio.FileName, ContentType: audio.ContentType, Content: audio.Content},
		},
		&rx,
	)
	if err != nil {
		return nil, s.check(err)
	}
	return &rx, nil
}

// CreateFromAudioFile reads the recording at path and calls CreateFromAudio. The
// content type is taken from the file extension.
func (s *PrescriptionService) CreateFromAudioFile(ctx context.Context, patientID, path string) (*Prescription, error) {
	f, err := safeOpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return s.CreateFromAudio(ctx, patientID, AudioUpload{
		FileName:    filepath.Base(path),
		ContentType: AudioTypeByExtension(path),
		Content:     f,
	})
}

// ListMine lists the calling doctor's prescriptions. Mine defaults to true.
func (s *PrescriptionService) ListMine(ctx context.Context, filters PrescriptionFilters) (response.Page[Prescription], error) {
	if filters.Mine == nil {
		mine := true
		filters.Mine = &mine
	}
	if err := validated(filters); err != nil {
		return response.Page[Prescription]{}, err
	}
	endpoint, err := withQuery(PrescriptionsEndpoint, filters)
	if err != nil {
		return response.Page[Prescription]{}, err
	}
	return getPage[Prescription](ctx, s.base, endpoint)
}

// Get returns one prescription. Any role the backend lets see it may call this.
func (s *PrescriptionService) Get(ctx context.Context, id string) (*Prescription, error) {
	endpoint, err := pathWithID(PrescriptionEndpoint, id)
	if err != nil {
		return nil, err
	}
	var rx Prescription
	if err := s.do(ctx, http.MethodGet, endpoint, nil, &rx); err != nil {
		return nil, err
	}
	return &rx, nil
}

// ListForPatient lists the calling patient's prescriptions.
func (s *PrescriptionService) ListForPatient(ctx context.Context, filters PatientPrescriptionFilters) (response.Page[Prescription], error) {
	if err := validated(filters); err != nil {
		return response.Page[Prescription]{}, err
	}
	endpoint, err := withQuery(PatientPrescriptionsEndpoint, filters)
	if err != nil {
		return response.Page[Prescription]{}, err
	}
	return getPage[Prescription](ctx, s.base, endpoint)
}

// Consume marks a prescription as dispensed. Patient only.
func (s *PrescriptionService) Consume(ctx context.Context, id string) (*Prescription, error) {
	endpoint, err := pathWithID(PrescriptionConsumeEndpoint, id)
	if err != nil {
		return nil, err
	}
	var rx Prescription
	if err := s.do(ctx, http.MethodPut, endpoint, nil, &rx); err != nil {
		return nil, err
	}
	return &rx, nil
}

// ListAll lists every prescription in the system. Admin only.
func (s *PrescriptionService) ListAll(ctx context.Context, filters AdminPrescriptionFilters) (response.Page[Prescription], error) {
	if err := validated(filters); err != nil {
		return response.Page[Prescription]{}, err
	}
	endpoint, err := withQuery(AdminPrescriptionsEndpoint, filters)
	if err != nil {
		return response.Page[Prescription]{}, err
	}
	return getPage[Prescription](ctx, s.base, endpoint)
}

// DownloadPDF streams the printable prescription into w and returns the bytes written.
func (s *PrescriptionService) DownloadPDF(ctx context.Context, id string, w io.Writer) (int64, error) {
	endpoint, err := pathWithID(PrescriptionPDFEndpoint, id)
	if err != nil {
		return 0, err
	}
	n, err := s.client.DoDownloadRequest(ctx, endpoint, w)
	if err != nil {
		return n, s.check(err)
	}
	s.log.Debug("Prescription PDF downloaded", zap.String("prescription_id", id), zap.Int64("bytes", n))
	return n, nil
}

// PDFFileName is the suggested file name for a prescription's PDF.
func PDFFileName(code string) string {
	if code == "" {
		code = "prescription"
	}
	return fmt.Sprintf("Prescripcion-%s.pdf", strings.ReplaceAll(code, string(filepath.Separator), "_"))
}

// IsSupportedAudioType reports whether contentType, parameters ignored, is an accepted
// recording format.
func IsSupportedAudioType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(SupportedAudioTypes, mediaType)
}

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".m4a":  "audio/m4a",
	".mp4":  "audio/mp4",
}

// AudioTypeByExtension maps a recording's file name to its content type. Unknown
// extensions give application/octet-stream, which CreateFromAudio rejects.
func AudioTypeByExtension(name string) string {
	if t, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}

// safeOpenFile opens path after cleaning it and resolving symlinks.
func safeOpenFile(path string) (*os.File, error) {
	absPath, err := filepath.EvalSymlinks(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("unable to resolve the absolute path: %s, error: %w", path, err)
	}
	return os.Open(absPath)
}
