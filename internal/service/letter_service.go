package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maganghub/maganghub-api/internal/models"
	"github.com/maganghub/maganghub-api/pkg/config"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/export"
)

type letterApplicationStore interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
}

type letterGroupStore interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
}

type letterSiswaStore interface {
	List(ctx context.Context, filter models.SiswaFilter, pageSize int) ([]models.SiswaDetail, int, error)
	GetByID(ctx context.Context, id string) (*models.Siswa, error)
}

type letterReferenceStore interface {
	GetIndustri(ctx context.Context, id string) (*models.Industri, error)
	GetKelas(ctx context.Context, id string) (*models.Kelas, error)
	GetJurusan(ctx context.Context, id string) (*models.Jurusan, error)
}

// LetterService renders the surat pengantar PDF for approved applications.
type LetterService struct {
	apps     letterApplicationStore
	groups   letterGroupStore
	siswa    letterSiswaStore
	refs     letterReferenceStore
	renderer *export.LetterRenderer
	cfg      config.LettersConfig
	school   string
	address  string
	logger   *zap.Logger
}

// NewLetterService constructs the service.
func NewLetterService(
	apps letterApplicationStore,
	groups letterGroupStore,
	siswa letterSiswaStore,
	refs letterReferenceStore,
	renderer *export.LetterRenderer,
	cfg config.LettersConfig,
	schoolName, schoolAddress string,
	logger *zap.Logger,
) *LetterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterService{
		apps:     apps,
		groups:   groups,
		siswa:    siswa,
		refs:     refs,
		renderer: renderer,
		cfg:      cfg,
		school:   schoolName,
		address:  schoolAddress,
		logger:   logger,
	}
}

// Render produces the introduction letter for an approved application. Only
// approved placements carry the data the letter needs, so anything else is a
// conflict, not a render with blanks.
func (s *LetterService) Render(ctx context.Context, applicationID string) ([]byte, string, error) {
	if !s.cfg.Enabled {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "letter rendering is disabled")
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.Status != models.ApplicationStatusApproved && app.Status != models.ApplicationStatusCompleted {
		return nil, "", appErrors.Clone(appErrors.ErrConflict, "letter is only available for approved placements")
	}

	industri, err := s.refs.GetIndustri(ctx, app.IndustriID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load industry partner")
	}

	students, err := s.rosterFor(ctx, app)
	if err != nil {
		return nil, "", err
	}

	data := export.LetterData{
		SchoolName:    s.school,
		SchoolAddress: s.address,
		City:          s.cfg.City,
		Headmaster:    s.cfg.Headmaster,
		LetterNumber:  letterNumber(app),
		IssuedDate:    time.Now().Format("02 January 2006"),
		IndustriName:  industri.Nama,
		IndustriAddr:  industri.Alamat,
		Students:      students,
	}
	if app.TanggalMulai != nil {
		data.StartDate = app.TanggalMulai.Format("02 January 2006")
	}
	if app.TanggalSelesai != nil {
		data.EndDate = app.TanggalSelesai.Format("02 January 2006")
	}

	pdf, err := s.renderer.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render letter")
	}

	filename := fmt.Sprintf("surat-pengantar-%s.pdf", app.ID)
	return pdf, filename, nil
}

func (s *LetterService) rosterFor(ctx context.Context, app *models.Application) ([]export.LetterStudent, error) {
	siswaIDs := make([]string, 0, 4)
	if app.SiswaID != nil {
		siswaIDs = append(siswaIDs, *app.SiswaID)
	}
	if app.GroupID != nil {
		group, err := s.groups.GetByID(ctx, *app.GroupID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group roster")
		}
		siswaIDs = append(siswaIDs, group.OwnerSiswaID)
		for _, m := range group.Members {
			if m.Status == models.InvitationAccepted {
				siswaIDs = append(siswaIDs, m.SiswaID)
			}
		}
	}

	students := make([]export.LetterStudent, 0, len(siswaIDs))
	for _, id := range siswaIDs {
		siswa, err := s.siswa.GetByID(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student for letter")
		}
		student := export.LetterStudent{Name: siswa.FullName, NISN: siswa.NISN}
		if siswa.KelasID != nil {
			if kelas, err := s.refs.GetKelas(ctx, *siswa.KelasID); err == nil {
				student.Kelas = kelas.Nama
			}
		}
		if siswa.JurusanID != nil {
			if jurusan, err := s.refs.GetJurusan(ctx, *siswa.JurusanID); err == nil {
				student.Jurusan = jurusan.Nama
			}
		}
		students = append(students, student)
	}
	return students, nil
}

func letterNumber(app *models.Application) string {
	stamp := app.TanggalPermohonan
	if app.DecidedAt != nil {
		stamp = *app.DecidedAt
	}
	return fmt.Sprintf("421/PKL/%s/%d", stamp.Format("01"), stamp.Year())
}
