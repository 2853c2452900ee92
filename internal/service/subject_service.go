package service

import (
	"context"
	"errors"
	"log"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectService interface {
	CreateSubject(ctx context.Context, userID uuid.UUID, req *model.PostSubjectRequest) (*model.Subject, error)
	GetSubject(ctx context.Context, userID, subjectID uuid.UUID) (*model.Subject, error)
	ListSubjects(ctx context.Context, userID uuid.UUID) ([]*model.Subject, error)
	UpdateSubject(ctx context.Context, userID, subjectID uuid.UUID, req *model.PatchSubjectRequest) (*model.Subject, error)
	DeleteSubject(ctx context.Context, userID, subjectID uuid.UUID) error
}

type subjectService struct {
	db          *gorm.DB
	subjectRepo repository.SubjectRepository
}

func NewSubjectService(db *gorm.DB, subjectRepo repository.SubjectRepository) SubjectService {
	return &subjectService{
		db:          db,
		subjectRepo: subjectRepo,
	}
}

func (s *subjectService) CreateSubject(ctx context.Context, userID uuid.UUID, req *model.PostSubjectRequest) (*model.Subject, error) {
	if req.Name == "" {
		return nil, model.ErrInvalidInput
	}

	var createdSubject *model.Subject

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.subjectRepo.CheckNameExists(ctx, tx, userID, req.Name, nil)
		if err != nil {
			log.Printf("Error checking subject name existence in transaction: %v", err)
			return model.ErrInternalServer
		}
		if exists {
			return model.ErrConflict
		}

		weight := req.Weight
		if weight == 0 {
			weight = 1
		}

		subject := &model.Subject{
			SubjectID:     uuid.New(),
			UserID:        userID,
			Name:          req.Name,
			Color:         req.Color,
			CyclePosition: req.CyclePosition,
			Weight:        weight,
		}
		if err := s.subjectRepo.Create(ctx, tx, subject); err != nil {
			log.Printf("Error creating subject in transaction: %v", err)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return model.ErrConflict
			}
			return model.ErrInternalServer
		}

		createdSubject = subject
		return nil
	})

	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		log.Printf("Transaction failed for CreateSubject: %v", err)
		return nil, model.ErrInternalServer
	}

	return createdSubject, nil
}

func (s *subjectService) GetSubject(ctx context.Context, userID, subjectID uuid.UUID) (*model.Subject, error) {
	subject, err := s.subjectRepo.FindByID(ctx, s.db, userID, subjectID)
	if err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *subjectService) ListSubjects(ctx context.Context, userID uuid.UUID) ([]*model.Subject, error) {
	subjects, err := s.subjectRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		log.Printf("Error listing subjects: %v", err)
		return nil, model.ErrInternalServer
	}
	return subjects, nil
}

func (s *subjectService) UpdateSubject(ctx context.Context, userID, subjectID uuid.UUID, req *model.PatchSubjectRequest) (*model.Subject, error) {
	var updatedSubject *model.Subject

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Existence check also takes the row lock for the update below.
		if _, err := s.subjectRepo.FindByID(ctx, tx, userID, subjectID); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Name != nil {
			exists, err := s.subjectRepo.CheckNameExists(ctx, tx, userID, *req.Name, &subjectID)
			if err != nil {
				log.Printf("Error checking subject name existence: %v", err)
				return model.ErrInternalServer
			}
			if exists {
				return model.ErrConflict
			}
			updates["name"] = *req.Name
		}
		if req.Color != nil {
			updates["color"] = *req.Color
		}
		if req.CyclePosition != nil {
			updates["cycle_position"] = *req.CyclePosition
		}
		if req.Weight != nil {
			updates["weight"] = *req.Weight
		}

		if len(updates) > 0 {
			if err := s.subjectRepo.Update(ctx, tx, userID, subjectID, updates); err != nil {
				return err
			}
		}

		subject, err := s.subjectRepo.FindByID(ctx, tx, userID, subjectID)
		if err != nil {
			return err
		}
		updatedSubject = subject
		return nil
	})

	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		log.Printf("Transaction failed for UpdateSubject: %v", err)
		return nil, model.ErrInternalServer
	}

	return updatedSubject, nil
}

func (s *subjectService) DeleteSubject(ctx context.Context, userID, subjectID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Study logs keep their subject_id; a dangling reference renders as
		// an unknown subject on the client.
		return s.subjectRepo.Delete(ctx, tx, userID, subjectID)
	})

	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		log.Printf("Transaction failed for DeleteSubject: %v", err)
		return model.ErrInternalServer
	}
	return nil
}
