package patient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
	"github.com/medicitas/clinic-api/internal/repository"
	"github.com/medicitas/clinic-api/internal/service/audit"
	"github.com/medicitas/clinic-api/internal/service/lifecycle"
)

// Service is the patient registry. Duplicate-identity detection at
// registration mirrors the attend-time check: a document pair may never
// be shared by two patients.
type Service struct {
	repo      repository.PatientRepository
	histories repository.ClinicalHistoryRepository
	auditor   *audit.Service
}

func NewService(repo repository.PatientRepository, histories repository.ClinicalHistoryRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:      repo,
		histories: histories,
		auditor:   auditor,
	}
}

func (s *Service) Register(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if req.DocumentType != nil && *req.DocumentType != "" && req.DocumentNumber != nil && *req.DocumentNumber != "" {
		existing, err := s.repo.FindByDocument(ctx, *req.DocumentType, *req.DocumentNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to check document pair: %w", err)
		}
		if existing != nil {
			return nil, lifecycle.NewDuplicateIdentityError(existing)
		}
	}

	patient := &model.Patient{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DateOfBirth:    req.DateOfBirth,
		Gender:         req.Gender,
		EPS:            req.EPS,
		MaritalStatus:  req.MaritalStatus,
		Occupation:     req.Occupation,
		EmergencyName:  req.EmergencyName,
		EmergencyPhone: req.EmergencyPhone,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if s.auditor != nil {
		s.auditor.Log(ctx, "register", "patient", patient.ID, nil)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// Histories returns a patient's consultation records, newest first,
// with the vitals map unmarshalled.
func (s *Service) Histories(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalHistory, error) {
	histories, err := s.histories.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}

	for _, h := range histories {
		if len(h.VitalsJSON) == 0 {
			continue
		}
		if err := json.Unmarshal(h.VitalsJSON, &h.Vitals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vitals for history %s: %w", h.ID, err)
		}
	}
	return histories, nil
}
