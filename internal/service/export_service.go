package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/metrics"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const exportContentType = "application/json"

// ExportLink is stored export metadata plus a fresh download URL.
type ExportLink struct {
	domain.PlanExport
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// exportDocument is the JSON written to object storage.
type exportDocument struct {
	ExportedAt time.Time            `json:"exportedAt"`
	Plan       *domain.TrainingPlan `json:"plan"`
	Days       []DayView            `json:"days"`
}

// ExportService writes resolved plan schedules to object storage.
type ExportService interface {
	ExportPlan(ctx context.Context, ownerID, planID uuid.UUID) (*ExportLink, error)
	ListExports(ctx context.Context, ownerID, planID uuid.UUID) ([]ExportLink, error)
}

type exportService struct {
	store          *repository.Store
	customizations CustomizationService
	files          storage.FileStorage
	urlExpiry      time.Duration
	clock          Clock
	log            *logger.Logger
}

// NewExportService creates a new instance of exportService.
func NewExportService(store *repository.Store, customizations CustomizationService, files storage.FileStorage, urlExpiry time.Duration, clock Clock, baseLog *logger.Logger) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &exportService{
		store:          store,
		customizations: customizations,
		files:          files,
		urlExpiry:      urlExpiry,
		clock:          clock,
		log:            baseLog.With("service", "ExportService"),
	}
}

func (s *exportService) ExportPlan(ctx context.Context, ownerID, planID uuid.UUID) (*ExportLink, error) {
	sched, err := s.customizations.GetPlanSchedule(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(exportDocument{ExportedAt: s.clock.Now(), Plan: sched.Plan, Days: sched.Days})
	if err != nil {
		return nil, apperr.Internal("failed to encode plan export", err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s/%s.json", ownerID, sched.Plan.ID, uuid.New())
	if err := s.files.PutObject(ctx, objectKey, exportContentType, bytes.NewReader(body), int64(len(body))); err != nil {
		return nil, apperr.Internal("failed to upload plan export", err)
	}

	export := &domain.PlanExport{
		PlanID:       sched.Plan.ID,
		OwnerID:      ownerID,
		ObjectKey:    objectKey,
		ContentType:  exportContentType,
		SizeBytes:    int64(len(body)),
		DaysExported: len(sched.Days),
	}
	if _, err := s.store.Exports.Create(ctx, export); err != nil {
		if delErr := s.files.DeleteObject(ctx, objectKey); delErr != nil {
			s.log.Error("failed to remove orphaned export object", "key", objectKey, "error", delErr)
		}
		return nil, storeErr(err, "plan export", sched.Plan.ID)
	}

	link, err := s.sign(ctx, *export)
	if err != nil {
		return nil, err
	}
	metrics.PlanExports.Inc()
	s.log.Info("plan exported", "planId", export.PlanID, "exportId", export.ID, "days", export.DaysExported, "bytes", export.SizeBytes)
	return link, nil
}

func (s *exportService) ListExports(ctx context.Context, ownerID, planID uuid.UUID) ([]ExportLink, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	exports, err := s.store.Exports.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "plan export", plan.ID)
	}
	links := make([]ExportLink, 0, len(exports))
	for _, export := range exports {
		link, err := s.sign(ctx, export)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

func (s *exportService) sign(ctx context.Context, export domain.PlanExport) (*ExportLink, error) {
	url, err := s.files.GeneratePresignedDownloadURL(ctx, export.ObjectKey, s.urlExpiry)
	if err != nil {
		return nil, apperr.Internal("failed to sign export download URL", err)
	}
	return &ExportLink{PlanExport: export, DownloadURL: url, ExpiresAt: s.clock.Now().Add(s.urlExpiry)}, nil
}
