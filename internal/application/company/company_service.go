package company

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdateCompanyRequest updates the company profile. Nil fields are left
// unchanged.
type UpdateCompanyRequest struct {
	Actor        uuid.UUID `json:"-"`
	Name         *string   `json:"name" binding:"omitempty,min=1,max=200"`
	LegalName    *string   `json:"legal_name" binding:"omitempty,max=200"`
	ContactEmail *string   `json:"contact_email" binding:"omitempty,email"`
	ContactPhone *string   `json:"contact_phone" binding:"omitempty,max=50"`
	Address      *string   `json:"address"`
	TaxID        *string   `json:"tax_id" binding:"omitempty,max=50"`
}

// UpdateSettingsRequest updates the billing defaults
type UpdateSettingsRequest struct {
	Actor                   uuid.UUID        `json:"-"`
	Currency                *string          `json:"currency" binding:"omitempty,len=3"`
	DefaultPaymentTermsDays *int             `json:"default_payment_terms_days" binding:"omitempty,min=0,max=365"`
	DefaultTaxRate          *decimal.Decimal `json:"default_tax_rate"`
	LateFeeMonthlyRate      *decimal.Decimal `json:"late_fee_monthly_rate"`
}

// TransferOwnershipRequest hands the company to another member
type TransferOwnershipRequest struct {
	Actor      uuid.UUID `json:"-"`
	NewOwnerID uuid.UUID `json:"new_owner_id" binding:"required"`
}

// CreateUserRequest adds a member to the company
type CreateUserRequest struct {
	Actor       uuid.UUID `json:"-"`
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"required,min=8"`
	Role        string    `json:"role" binding:"required,oneof=accountant staff"`
	DisplayName string    `json:"display_name" binding:"omitempty,max=200"`
}

// UpdateUserRoleRequest changes a member's role
type UpdateUserRoleRequest struct {
	Actor uuid.UUID `json:"-"`
	Role  string    `json:"role" binding:"required,oneof=accountant staff"`
}

// CompanySettingsResponse mirrors the billing defaults
type CompanySettingsResponse struct {
	Currency                string          `json:"currency"`
	DefaultPaymentTermsDays int             `json:"default_payment_terms_days"`
	DefaultTaxRate          decimal.Decimal `json:"default_tax_rate"`
	LateFeeMonthlyRate      decimal.Decimal `json:"late_fee_monthly_rate"`
}

// CompanyResponse is the company profile representation
type CompanyResponse struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	LegalName    string                  `json:"legal_name,omitempty"`
	OwnerUserID  uuid.UUID               `json:"owner_user_id"`
	Status       string                  `json:"status"`
	ContactEmail string                  `json:"contact_email,omitempty"`
	ContactPhone string                  `json:"contact_phone,omitempty"`
	Address      string                  `json:"address,omitempty"`
	TaxID        string                  `json:"tax_id,omitempty"`
	Settings     CompanySettingsResponse `json:"settings"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// CompanyService manages the company profile and its members
type CompanyService struct {
	companyRepo company.CompanyRepository
	userRepo    company.UserRepository
}

// NewCompanyService creates a new company service
func NewCompanyService(companyRepo company.CompanyRepository, userRepo company.UserRepository) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

// Get returns the company profile
func (s *CompanyService) Get(ctx context.Context, companyID uuid.UUID) (*CompanyResponse, error) {
	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(comp), nil
}

// UpdateProfile updates the company's profile fields
func (s *CompanyService) UpdateProfile(ctx context.Context, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	if err := s.requireManager(ctx, companyID, req.Actor); err != nil {
		return nil, err
	}

	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.LegalName != nil {
		name := comp.Name
		if req.Name != nil {
			name = *req.Name
		}
		legalName := comp.LegalName
		if req.LegalName != nil {
			legalName = *req.LegalName
		}
		if err := comp.Update(name, legalName); err != nil {
			return nil, err
		}
	}

	if req.ContactEmail != nil || req.ContactPhone != nil {
		email := comp.ContactEmail
		if req.ContactEmail != nil {
			email = *req.ContactEmail
		}
		phone := comp.ContactPhone
		if req.ContactPhone != nil {
			phone = *req.ContactPhone
		}
		if err := comp.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	if req.Address != nil {
		if err := comp.SetAddress(*req.Address); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil {
		if err := comp.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}

	if err := s.companyRepo.Save(ctx, comp); err != nil {
		return nil, err
	}

	return toCompanyResponse(comp), nil
}

// UpdateSettings updates the billing defaults
func (s *CompanyService) UpdateSettings(ctx context.Context, companyID uuid.UUID, req UpdateSettingsRequest) (*CompanyResponse, error) {
	if err := s.requireManager(ctx, companyID, req.Actor); err != nil {
		return nil, err
	}

	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Currency != nil {
		if err := comp.SetCurrency(valueobject.Currency(*req.Currency)); err != nil {
			return nil, err
		}
	}
	if req.DefaultPaymentTermsDays != nil || req.DefaultTaxRate != nil {
		termsDays := comp.Settings.DefaultPaymentTermsDays
		if req.DefaultPaymentTermsDays != nil {
			termsDays = *req.DefaultPaymentTermsDays
		}
		taxRate := comp.Settings.DefaultTaxRate
		if req.DefaultTaxRate != nil {
			taxRate = *req.DefaultTaxRate
		}
		if err := comp.SetPaymentDefaults(termsDays, taxRate); err != nil {
			return nil, err
		}
	}
	if req.LateFeeMonthlyRate != nil {
		if err := comp.SetLateFeeRate(*req.LateFeeMonthlyRate); err != nil {
			return nil, err
		}
	}

	if err := s.companyRepo.Save(ctx, comp); err != nil {
		return nil, err
	}

	return toCompanyResponse(comp), nil
}

// TransferOwnership hands the company to another active member
func (s *CompanyService) TransferOwnership(ctx context.Context, companyID uuid.UUID, req TransferOwnershipRequest) (*CompanyResponse, error) {
	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if comp.OwnerUserID != req.Actor {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the current owner can transfer ownership")
	}

	newOwner, err := s.findMember(ctx, companyID, req.NewOwnerID)
	if err != nil {
		return nil, err
	}
	if !newOwner.IsActive() {
		return nil, shared.NewDomainError("USER_INACTIVE", "New owner must be an active user")
	}

	if err := comp.TransferOwnership(newOwner.ID); err != nil {
		return nil, err
	}
	if err := newOwner.SetRole(company.UserRoleOwner); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, comp); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, newOwner); err != nil {
		return nil, err
	}

	return toCompanyResponse(comp), nil
}

// CreateUser adds a member account to the company
func (s *CompanyService) CreateUser(ctx context.Context, companyID uuid.UUID, req CreateUserRequest) (*UserInfo, error) {
	if err := s.requireManager(ctx, companyID, req.Actor); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_EMAIL", "An account with this email already exists")
	}

	role := company.UserRole(req.Role)
	if role == company.UserRoleOwner {
		return nil, shared.NewDomainError("INVALID_ROLE", "Additional owners cannot be created. Use ownership transfer")
	}

	user, err := company.NewActiveUser(companyID, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != "" {
		if err := user.SetDisplayName(req.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	info := toUserInfo(user)
	return &info, nil
}

// ListUsers returns all member accounts of the company
func (s *CompanyService) ListUsers(ctx context.Context, companyID uuid.UUID) ([]UserInfo, error) {
	users, err := s.userRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, toUserInfo(u))
	}
	return infos, nil
}

// UpdateUserRole changes a member's role. The owner's role is fixed.
func (s *CompanyService) UpdateUserRole(ctx context.Context, companyID, userID uuid.UUID, req UpdateUserRoleRequest) (*UserInfo, error) {
	if err := s.requireManager(ctx, companyID, req.Actor); err != nil {
		return nil, err
	}

	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if comp.OwnerUserID == userID {
		return nil, shared.NewDomainError("OWNER_ROLE_FIXED", "The owner's role cannot be changed. Use ownership transfer")
	}

	user, err := s.findMember(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(company.UserRole(req.Role)); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	info := toUserInfo(user)
	return &info, nil
}

// DeactivateUser disables a member account
func (s *CompanyService) DeactivateUser(ctx context.Context, companyID, userID, actor uuid.UUID) error {
	if err := s.requireManager(ctx, companyID, actor); err != nil {
		return err
	}

	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if comp.OwnerUserID == userID {
		return shared.NewDomainError("OWNER_PROTECTED", "The owner account cannot be deactivated")
	}

	user, err := s.findMember(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}

	return s.userRepo.Save(ctx, user)
}

// ActivateUser re-enables a member account
func (s *CompanyService) ActivateUser(ctx context.Context, companyID, userID, actor uuid.UUID) error {
	if err := s.requireManager(ctx, companyID, actor); err != nil {
		return err
	}

	user, err := s.findMember(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if err := user.Activate(); err != nil {
		return err
	}

	return s.userRepo.Save(ctx, user)
}

// UnlockUser clears a lockout before its window elapses
func (s *CompanyService) UnlockUser(ctx context.Context, companyID, userID, actor uuid.UUID) error {
	if err := s.requireManager(ctx, companyID, actor); err != nil {
		return err
	}

	user, err := s.findMember(ctx, companyID, userID)
	if err != nil {
		return err
	}
	user.Unlock()

	return s.userRepo.Save(ctx, user)
}

// RemoveUser deletes a member account
func (s *CompanyService) RemoveUser(ctx context.Context, companyID, userID, actor uuid.UUID) error {
	if err := s.requireManager(ctx, companyID, actor); err != nil {
		return err
	}

	comp, err := s.findCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if comp.OwnerUserID == userID {
		return shared.NewDomainError("OWNER_PROTECTED", "The owner account cannot be removed")
	}

	if _, err := s.findMember(ctx, companyID, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

func (s *CompanyService) findCompany(ctx context.Context, companyID uuid.UUID) (*company.Company, error) {
	comp, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Company not found")
		}
		return nil, err
	}
	return comp, nil
}

func (s *CompanyService) findMember(ctx context.Context, companyID, userID uuid.UUID) (*company.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if user.CompanyID != companyID {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}
	return user, nil
}

func (s *CompanyService) requireManager(ctx context.Context, companyID, actorID uuid.UUID) error {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("FORBIDDEN", "Actor does not belong to this company")
		}
		return err
	}
	if actor.CompanyID != companyID {
		return shared.NewDomainError("FORBIDDEN", "Actor does not belong to this company")
	}
	if !actor.Role.CanManageCompany() {
		return shared.NewDomainError("FORBIDDEN", "Only the owner can manage the company")
	}
	return nil
}

func toCompanyResponse(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:           c.ID,
		Name:         c.Name,
		LegalName:    c.LegalName,
		OwnerUserID:  c.OwnerUserID,
		Status:       string(c.Status),
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Address:      c.Address,
		TaxID:        c.TaxID,
		Settings: CompanySettingsResponse{
			Currency:                string(c.Settings.Currency),
			DefaultPaymentTermsDays: c.Settings.DefaultPaymentTermsDays,
			DefaultTaxRate:          c.Settings.DefaultTaxRate,
			LateFeeMonthlyRate:      c.Settings.LateFeeMonthlyRate,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
