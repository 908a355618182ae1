package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	typeModel "membership_backend/internals/features/membership/membership_types/model"
	"membership_backend/internals/features/membership/registrations/dto"
	regModel "membership_backend/internals/features/membership/registrations/model"
	emailModel "membership_backend/internals/features/notifications/emails/model"
	emailService "membership_backend/internals/features/notifications/emails/service"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	userModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/metrics"
)

const emailFailureMessage = "confirmation email could not be delivered"

// ConfirmationSender is the part of the email dispatcher the registration flow needs.
type ConfirmationSender interface {
	SendRegistrationConfirmation(ctx context.Context, registrationID uuid.UUID, c emailService.Confirmation) (*emailModel.EmailNotification, error)
}

type RegistrationService struct {
	DB                *gorm.DB
	Photos            *helper.PhotoStore
	Notifier          ConfirmationSender
	IDPrefix          string
	RenewalWindowDays int

	now func() time.Time
}

func NewRegistrationService(db *gorm.DB, photos *helper.PhotoStore, notifier ConfirmationSender, prefix string, renewalWindowDays int) *RegistrationService {
	return &RegistrationService{
		DB:                db,
		Photos:            photos,
		Notifier:          notifier,
		IDPrefix:          prefix,
		RenewalWindowDays: renewalWindowDays,
		now:               time.Now,
	}
}

// outcome of the transactional part
type committed struct {
	registration *regModel.Registration
	mtype        *typeModel.MembershipType
	replayed     bool
}

// Submit validates the form, writes user/payment/registration/document in one transaction
// and sends the confirmation email after commit. Email failure does not undo the registration.
func (s *RegistrationService) Submit(ctx context.Context, rawPayload string, photo *multipart.FileHeader) (*dto.SubmitResponse, error) {
	p, ae := s.precheck(rawPayload)
	if ae != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, ae
	}

	var stored *helper.StoredFile
	if photo != nil {
		f, err := s.Photos.Save(photo)
		if err != nil {
			metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()
			if errors.Is(err, helper.ErrUploadTooLarge) || errors.Is(err, helper.ErrUploadNotAnImage) {
				return nil, helper.ValidationError(err.Error())
			}
			return nil, helper.PersistenceError("Failed to submit registration", err)
		}
		stored = f
	}

	// the client going away must not abort a half-written submission
	txCtx := context.WithoutCancel(ctx)
	var out committed
	err := s.DB.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		res, err := s.persist(tx, p, stored)
		if err != nil {
			return err
		}
		out = *res
		return nil
	})
	if err != nil {
		s.Photos.Remove(stored)
		if ae := helper.AsAppError(err); ae != nil {
			metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, ae
		}
		metrics.Registrations.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, helper.PersistenceError("Failed to submit registration", err)
	}

	reg := out.registration
	resp := &dto.SubmitResponse{MembershipID: reg.MembershipID, RegistrationID: reg.ID}
	if out.replayed {
		metrics.Registrations.WithLabelValues(metrics.OutcomeReplayed).Inc()
		resp.Replayed = true
		return resp, nil
	}
	metrics.Registrations.WithLabelValues(metrics.OutcomeCreated).Inc()

	if _, err := s.Notifier.SendRegistrationConfirmation(txCtx, reg.ID, buildConfirmation(p, reg, out.mtype)); err != nil {
		log.Printf("[WARN] confirmation email for %s failed: %v", reg.MembershipID, err)
		resp.EmailError = emailFailureMessage
		return resp, nil
	}
	resp.EmailSent = true
	return resp, nil
}

func (s *RegistrationService) precheck(raw string) (*dto.RegistrationPayload, *helper.AppError) {
	p := dto.ParsePayload(raw)
	if p == nil {
		return nil, helper.ValidationError("Invalid payload")
	}
	if !p.HasRequiredDetails() {
		return nil, helper.ValidationError("Missing required registration details")
	}
	p.Normalize()
	if ae := helper.ValidateStruct(p); ae != nil {
		return nil, ae
	}
	if p.MembershipSlug != "" {
		if ae := dto.ValidateProfessional(p.MembershipSlug, p.Professional); ae != nil {
			return nil, ae
		}
	}
	if p.Payment.PaidAt != "" {
		if _, err := parsePaidAt(p.Payment.PaidAt); err != nil {
			return nil, helper.ValidationError("payment.paidAt must be an ISO-8601 timestamp")
		}
	}
	if p.Payment.MembershipExpiry != "" {
		exp, _ := helper.ParseDate(p.Payment.MembershipExpiry)
		if exp.Before(helper.DateOnly(s.now())) {
			return nil, helper.ValidationError("payment.membershipExpiry cannot be in the past")
		}
	}
	return p, nil
}

func (s *RegistrationService) persist(tx *gorm.DB, p *dto.RegistrationPayload, photo *helper.StoredFile) (*committed, error) {
	now := s.now()

	// 1. membership type
	typeID, err := uuid.Parse(p.MembershipTypeID)
	if err != nil {
		return nil, helper.ValidationError("Invalid membership type selected")
	}
	var mt typeModel.MembershipType
	if err := tx.Where("id = ? AND is_active = ?", typeID, true).First(&mt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ValidationError("Invalid membership type selected")
		}
		return nil, err
	}
	if p.MembershipSlug != "" && p.MembershipSlug != mt.Slug {
		return nil, helper.ValidationError("Membership slug does not match the selected membership type")
	}
	if p.MembershipSlug == "" {
		if ae := dto.ValidateProfessional(mt.Slug, p.Professional); ae != nil {
			return nil, ae
		}
	}

	// 2. user
	user, err := upsertUser(tx, p, mt.Slug, photo)
	if err != nil {
		return nil, err
	}

	// 3. payment
	payment, err := upsertPayment(tx, p, mt.Slug, now)
	if err != nil {
		return nil, err
	}

	// 4. re-registration policy
	var existing regModel.Registration
	err = tx.Where("payment_id = ?", payment.ID).Order("created_at ASC").First(&existing).Error
	if err == nil {
		// a reference already claimed by another applicant rolls the whole submit back
		if existing.UserID != user.ID {
			return nil, helper.ConflictError("This payment reference is already linked to another registration")
		}
		return &committed{registration: &existing, mtype: &mt, replayed: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	today := helper.DateOnly(now)
	renewFrom := today.AddDate(0, 0, s.RenewalWindowDays)
	var active int64
	if err := tx.Model(&regModel.Registration{}).
		Where("user_id = ? AND membership_type_id = ? AND membership_status = ? AND membership_expiry > ?",
			user.ID, mt.ID, regModel.MembershipStatusActive, renewFrom).
		Count(&active).Error; err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, helper.ConflictError("An active membership of this type already exists")
	}

	// 5. membership id
	seq, err := NextSequence(tx, now.UTC().Year())
	if err != nil {
		return nil, err
	}

	// 6. expiry
	expiry := today.AddDate(0, 0, 365)
	if p.Payment.MembershipExpiry != "" {
		expiry, _ = helper.ParseDate(p.Payment.MembershipExpiry)
	}

	// 7. registration
	reg := &regModel.Registration{
		UserID:                user.ID,
		MembershipTypeID:      mt.ID,
		PaymentID:             payment.ID,
		MembershipID:          FormatMembershipID(s.IDPrefix, now.UTC().Year(), seq),
		PaymentReference:      payment.Reference,
		PaymentStatus:         payment.Status,
		PaymentAmount:         payment.Amount,
		PaymentDate:           payment.PaidAt,
		MembershipStatus:      regModel.MembershipStatusActive,
		MembershipExpiry:      expiry,
		TermsAccepted:         p.Terms.TermsAccepted,
		CodeOfConductAccepted: p.Terms.CodeOfConductAccepted,
		DataPrivacyAccepted:   p.Terms.DataPrivacyAccepted,
	}
	if err := tx.Create(reg).Error; err != nil {
		return nil, err
	}

	// 8. document
	if photo != nil {
		doc := &regModel.RegistrationDocument{
			RegistrationID: reg.ID,
			DocumentType:   regModel.DocumentTypeProfilePhoto,
			FileName:       photo.OriginalName,
			FilePath:       photo.RelPath,
			FileSize:       photo.Size,
			MimeType:       photo.MimeType,
		}
		if err := tx.Create(doc).Error; err != nil {
			return nil, err
		}
	}

	reg.User = user
	return &committed{registration: reg, mtype: &mt}, nil
}

var userUpdateColumns = []string{
	"first_name", "middle_name", "last_name", "phone_number", "alternative_phone",
	"date_of_birth", "gender", "nationality", "id_type", "id_number",
	"street_address", "city", "region", "digital_address",
	"professional_kind", "professional_info", "emergency_contact", "updated_at",
}

func upsertUser(tx *gorm.DB, p *dto.RegistrationPayload, slug string, photo *helper.StoredFile) (*userModel.User, error) {
	dob, _ := helper.ParseDate(p.Personal.DateOfBirth)
	emergency := userModel.EmergencyContactInfo{
		Name:         p.EmergencyContact.Name,
		Relationship: p.EmergencyContact.Relationship,
		Phone:        p.EmergencyContact.Phone,
	}
	u := &userModel.User{
		FirstName:        p.Personal.FirstName,
		MiddleName:       helper.StrPtr(p.Personal.MiddleName),
		LastName:         p.Personal.LastName,
		Email:            p.Contact.Email,
		PhoneNumber:      p.Contact.Phone,
		AlternativePhone: helper.StrPtr(p.Contact.AlternativePhone),
		DateOfBirth:      dob,
		Gender:           p.Personal.Gender,
		Nationality:      p.Personal.Nationality,
		IDType:           p.Identification.IDType,
		IDNumber:         p.Identification.IDNumber,
		StreetAddress:    p.Contact.StreetAddress,
		City:             p.Contact.City,
		Region:           p.Contact.Region,
		DigitalAddress:   helper.StrPtr(p.Contact.DigitalAddress),
		ProfessionalKind: slug,
		ProfessionalInfo: datatypes.JSON(p.ProfessionalJSON()),
		EmergencyContact: mustJSON(emergency),
	}
	if photo != nil {
		u.ProfilePhotoURL = &photo.RelPath
	}

	set := clause.AssignmentColumns(userUpdateColumns)
	set = append(set, clause.Assignment{
		Column: clause.Column{Name: "profile_photo_url"},
		Value:  gorm.Expr("COALESCE(excluded.profile_photo_url, users.profile_photo_url)"),
	})
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: set,
	}).Create(u).Error; err != nil {
		return nil, err
	}

	// on conflict the generated id is not the stored one
	var stored userModel.User
	if err := tx.Where("email = ?", p.Contact.Email).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func upsertPayment(tx *gorm.DB, p *dto.RegistrationPayload, slug string, now time.Time) (*paymentModel.Payment, error) {
	paidAt := now.UTC()
	if p.Payment.PaidAt != "" {
		paidAt, _ = parsePaidAt(p.Payment.PaidAt)
	}
	pay := &paymentModel.Payment{
		Reference:     p.Payment.Reference,
		Gateway:       p.Payment.Gateway,
		Status:        p.Payment.Status,
		Amount:        p.Payment.Amount,
		Currency:      p.Payment.Currency,
		Channel:       helper.StrPtr(p.Payment.Channel),
		PaidAt:        &paidAt,
		Metadata:      datatypes.JSON(p.MetadataJSON(slug)),
		CustomerEmail: helper.StrPtr(p.Contact.Email),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "amount", "paid_at", "metadata", "customer_email", "updated_at"}),
	}).Create(pay).Error; err != nil {
		return nil, err
	}

	var stored paymentModel.Payment
	if err := tx.Where("reference = ?", p.Payment.Reference).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func parsePaidAt(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", helper.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Parse(time.RFC3339, s)
}

func buildConfirmation(p *dto.RegistrationPayload, reg *regModel.Registration, mt *typeModel.MembershipType) emailService.Confirmation {
	name := strings.Join(strings.Fields(strings.Join([]string{
		p.Personal.FirstName, p.Personal.MiddleName, p.Personal.LastName,
	}, " ")), " ")

	address := strings.Join(nonEmpty(p.Contact.StreetAddress, p.Contact.City, p.Contact.Region), ", ")

	return emailService.Confirmation{
		MembershipID:          reg.MembershipID,
		MembershipType:        mt.Name,
		Reference:             reg.PaymentReference,
		Amount:                reg.PaymentAmount,
		Currency:              p.Payment.Currency,
		PaymentStatus:         reg.PaymentStatus,
		FullName:              name,
		Email:                 p.Contact.Email,
		Phone:                 p.Contact.Phone,
		AlternativePhone:      p.Contact.AlternativePhone,
		DateOfBirth:           p.Personal.DateOfBirth,
		Gender:                p.Personal.Gender,
		Nationality:           p.Personal.Nationality,
		IDType:                p.Identification.IDType,
		IDNumber:              p.Identification.IDNumber,
		Address:               address,
		DigitalAddress:        p.Contact.DigitalAddress,
		EmergencyName:         p.EmergencyContact.Name,
		EmergencyRelationship: p.EmergencyContact.Relationship,
		EmergencyPhone:        p.EmergencyContact.Phone,
		Professional:          emailService.ProfessionalDetails(p.ProfessionalJSON()),
	}
}

func nonEmpty(ss ...string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
