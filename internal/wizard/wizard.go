// Package wizard implements the multi-step registration flow: a draft
// Registration is started, adults and children are appended to it and the
// draft is finally submitted.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNoDraft            = errors.New("no registration in progress")
	ErrNotFound           = errors.New("not found")
	ErrPrivacyNotAccepted = errors.New("privacy policy must be accepted")
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type DraftInput struct {
	Comment                string
	HasDietaryRestrictions bool
	DietaryDetails         string
	NeedsTransport         bool
}

func (in DraftInput) apply(fields *models.RegistrationFields) {
	fields.Comment = strings.TrimSpace(in.Comment)
	fields.HasDietaryRestrictions = in.HasDietaryRestrictions
	fields.DietaryDetails = strings.TrimSpace(in.DietaryDetails)
	if !in.HasDietaryRestrictions {
		fields.DietaryDetails = ""
	}
	fields.NeedsTransport = in.NeedsTransport
}

type PersonInput struct {
	Name           string
	Age            int
	ArrivalDate    *time.Time
	DepartureDate  *time.Time
	FoodPreference models.FoodPreference
	Services       []string
	Lodging        models.Lodging
}

var (
	foodPreferences = map[models.FoodPreference]bool{
		models.FoodNormal:      true,
		models.FoodVegetarian:  true,
		models.FoodLactoseFree: true,
	}
	lodgings = map[models.Lodging]bool{
		models.LodgingSelf:       true,
		models.LodgingHostFamily: true,
		models.LodgingDormitory:  true,
		models.LodgingHotel:      true,
		models.LodgingCamping:    true,
	}
)

// attendance validates the input and converts it to its stored form.
func (in PersonInput) attendance(child bool) (models.Attendance, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Attendance{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if in.Age < 0 {
		return models.Attendance{}, &ValidationError{Field: "age", Message: "must not be negative"}
	}
	if child && in.Age >= 18 {
		return models.Attendance{}, &ValidationError{Field: "age", Message: "children must be younger than 18"}
	}
	if in.ArrivalDate != nil && in.DepartureDate != nil && in.DepartureDate.Before(*in.ArrivalDate) {
		return models.Attendance{}, &ValidationError{Field: "departure_date", Message: "must not be before the arrival date"}
	}

	food := in.FoodPreference
	if food == "" {
		food = models.FoodNormal
	}
	if !foodPreferences[food] {
		return models.Attendance{}, &ValidationError{Field: "food_preference", Message: fmt.Sprintf("unknown food preference %q", food)}
	}

	lodging := in.Lodging
	if lodging == "" {
		lodging = models.LodgingSelf
	}
	if !lodgings[lodging] {
		return models.Attendance{}, &ValidationError{Field: "lodging", Message: fmt.Sprintf("unknown lodging %q", lodging)}
	}

	services, err := models.ParseServices(in.Services)
	if err != nil {
		return models.Attendance{}, &ValidationError{Field: "services", Message: err.Error()}
	}

	return models.Attendance{
		Name:           name,
		Age:            in.Age,
		ArrivalDate:    in.ArrivalDate,
		DepartureDate:  in.DepartureDate,
		FoodPreference: food,
		Services:       services,
		Lodging:        lodging,
	}, nil
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Start creates the draft of the session's participant or reuses the one in
// progress. The caller stores the returned registration's ID as DraftID.
func (s *Service) Start(ctx context.Context, sess auth.Session, in DraftInput) (models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := false
		if sess.DraftID != 0 {
			err := tx.Where("id = ? AND participant_id = ? AND finalized_at IS NULL", sess.DraftID, sess.ParticipantID).First(&reg).Error
			if err == nil {
				found = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if !found {
			err := tx.Where("participant_id = ? AND finalized_at IS NULL", sess.ParticipantID).Order("id desc").First(&reg).Error
			if err == nil {
				found = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if !found {
			reg = models.Registration{ParticipantID: sess.ParticipantID}
		}

		in.apply(&reg.RegistrationFields)
		return tx.Save(&reg).Error
	})
	if err != nil {
		return models.Registration{}, fmt.Errorf("start registration: %w", err)
	}
	return reg, nil
}

// Overview returns the session's draft with its adults and children.
func (s *Service) Overview(ctx context.Context, sess auth.Session) (models.Registration, error) {
	db := s.db.WithContext(ctx)
	reg, err := draftOf(db, sess)
	if err != nil {
		return reg, err
	}
	return withPeople(db, reg.ID)
}

func (s *Service) AddAdult(ctx context.Context, sess auth.Session, in PersonInput) (models.Adult, error) {
	return addRow[models.Adult](s.db.WithContext(ctx), sess, in, false)
}

func (s *Service) AddChild(ctx context.Context, sess auth.Session, in PersonInput) (models.Child, error) {
	return addRow[models.Child](s.db.WithContext(ctx), sess, in, true)
}

// Finalize submits the session's draft. The bool result is true only for the
// call that actually finalized it; repeating the call returns the finalized
// registration unchanged.
func (s *Service) Finalize(ctx context.Context, sess auth.Session, privacyAccepted bool) (models.Registration, bool, error) {
	var (
		reg       models.Registration
		finalized bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sess.DraftID == 0 {
			return ErrNoDraft
		}
		err := tx.Where("id = ? AND participant_id = ?", sess.DraftID, sess.ParticipantID).First(&reg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoDraft
		} else if err != nil {
			return err
		}
		if !reg.IsDraft() {
			return nil
		}
		if !privacyAccepted {
			return ErrPrivacyNotAccepted
		}

		now := s.now()
		reg.PrivacyAccepted = true
		reg.FinalizedAt = &now
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}
		finalized = true
		return snapshot(tx, reg, "finalized")
	})
	if err != nil {
		return models.Registration{}, false, fmt.Errorf("finalize registration: %w", err)
	}

	reg, err = withPeople(s.db.WithContext(ctx), reg.ID)
	return reg, finalized, err
}

// List returns the participant's registrations, newest first.
func (s *Service) List(ctx context.Context, participantID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).
		Preload("Adults", orderByID).
		Preload("Children", orderByID).
		Where("participant_id = ?", participantID).
		Order("id desc").
		Find(&regs).Error
	return regs, err
}

func (s *Service) Get(ctx context.Context, participantID, id uint) (models.Registration, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedRegistration(db, participantID, id); err != nil {
		return models.Registration{}, err
	}
	return withPeople(db, id)
}

func (s *Service) UpdateRegistration(ctx context.Context, participantID, id uint, in DraftInput) (models.Registration, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := ownedRegistration(tx, participantID, id)
		if err != nil {
			return err
		}
		in.apply(&reg.RegistrationFields)
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}
		return snapshot(tx, reg, "updated")
	})
	if err != nil {
		return models.Registration{}, err
	}
	return withPeople(s.db.WithContext(ctx), id)
}

// DeleteRegistration removes the registration together with its adults and children.
func (s *Service) DeleteRegistration(ctx context.Context, participantID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := ownedRegistration(tx, participantID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("registration_id = ?", reg.ID).Delete(&models.Adult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("registration_id = ?", reg.ID).Delete(&models.Child{}).Error; err != nil {
			return err
		}
		return tx.Delete(&reg).Error
	})
}

func (s *Service) History(ctx context.Context, participantID, id uint) ([]models.RegistrationHistory, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedRegistration(db, participantID, id); err != nil {
		return nil, err
	}
	var history []models.RegistrationHistory
	err := db.Where("registration_id = ?", id).Order("created_at desc, id desc").Find(&history).Error
	return history, err
}

func (s *Service) UpdateAdult(ctx context.Context, participantID, id uint, in PersonInput) (models.Adult, error) {
	return updateRow[models.Adult](s.db.WithContext(ctx), participantID, id, in, false)
}

func (s *Service) DeleteAdult(ctx context.Context, participantID, id uint) error {
	return deleteRow[models.Adult](s.db.WithContext(ctx), participantID, id)
}

func (s *Service) UpdateChild(ctx context.Context, participantID, id uint, in PersonInput) (models.Child, error) {
	return updateRow[models.Child](s.db.WithContext(ctx), participantID, id, in, true)
}

func (s *Service) DeleteChild(ctx context.Context, participantID, id uint) error {
	return deleteRow[models.Child](s.db.WithContext(ctx), participantID, id)
}

// row is implemented by *models.Adult and *models.Child.
type row[T any] interface {
	*T
	Details() *models.Attendance
	Owner() uint
	SetOwner(uint)
}

func addRow[T any, P row[T]](db *gorm.DB, sess auth.Session, in PersonInput, child bool) (T, error) {
	var rec T
	attendance, err := in.attendance(child)
	if err != nil {
		return rec, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		reg, err := draftOf(tx, sess)
		if err != nil {
			return err
		}
		P(&rec).SetOwner(reg.ID)
		*P(&rec).Details() = attendance
		return tx.Create(P(&rec)).Error
	})
	return rec, err
}

func updateRow[T any, P row[T]](db *gorm.DB, participantID, id uint, in PersonInput, child bool) (T, error) {
	var rec T
	attendance, err := in.attendance(child)
	if err != nil {
		return rec, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		reg, err := ownedRow[T, P](tx, participantID, id, &rec)
		if err != nil {
			return err
		}
		*P(&rec).Details() = attendance
		if err := tx.Save(P(&rec)).Error; err != nil {
			return err
		}
		return recordChange(tx, reg)
	})
	return rec, err
}

func deleteRow[T any, P row[T]](db *gorm.DB, participantID, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var rec T
		reg, err := ownedRow[T, P](tx, participantID, id, &rec)
		if err != nil {
			return err
		}
		if err := tx.Delete(P(&rec)).Error; err != nil {
			return err
		}
		return recordChange(tx, reg)
	})
}

// recordChange snapshots a finalized registration after one of its people
// changed. Drafts get their first snapshot on finalize.
func recordChange(tx *gorm.DB, reg models.Registration) error {
	if reg.IsDraft() {
		return nil
	}
	return snapshot(tx, reg, "updated")
}

// ownedRow loads the row into rec if it belongs to one of the participant's
// registrations and returns that registration.
func ownedRow[T any, P row[T]](tx *gorm.DB, participantID, id uint, rec *T) (models.Registration, error) {
	err := tx.First(P(rec), id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Registration{}, ErrNotFound
	} else if err != nil {
		return models.Registration{}, err
	}
	return ownedRegistration(tx, participantID, P(rec).Owner())
}

func ownedRegistration(tx *gorm.DB, participantID, id uint) (models.Registration, error) {
	var reg models.Registration
	err := tx.Where("id = ? AND participant_id = ?", id, participantID).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reg, ErrNotFound
	}
	return reg, err
}

// draftOf loads the unfinished registration referenced by the session.
func draftOf(tx *gorm.DB, sess auth.Session) (models.Registration, error) {
	var reg models.Registration
	if sess.DraftID == 0 {
		return reg, ErrNoDraft
	}
	err := tx.Where("id = ? AND participant_id = ? AND finalized_at IS NULL", sess.DraftID, sess.ParticipantID).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reg, ErrNoDraft
	}
	return reg, err
}

func withPeople(db *gorm.DB, id uint) (models.Registration, error) {
	var reg models.Registration
	err := db.Preload("Adults", orderByID).Preload("Children", orderByID).First(&reg, id).Error
	return reg, err
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func snapshot(tx *gorm.DB, reg models.Registration, action string) error {
	var adults, children int64
	if err := tx.Model(&models.Adult{}).Where("registration_id = ?", reg.ID).Count(&adults).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Child{}).Where("registration_id = ?", reg.ID).Count(&children).Error; err != nil {
		return err
	}
	history := models.RegistrationHistory{
		RegistrationID:     reg.ID,
		ParticipantID:      reg.ParticipantID,
		Action:             action,
		Adults:             int(adults),
		Children:           int(children),
		RegistrationFields: reg.RegistrationFields,
	}
	return tx.Create(&history).Error
}
