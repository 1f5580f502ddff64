package services

import (
	"errors"

	"grapher_backend/internal/models"
	"grapher_backend/internal/repositories"
	"grapher_backend/internal/services/dto"
	"grapher_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ProfileService interface {
	GetOrCreateProfessional(db *gorm.DB, uid string) (*models.ProfessionalProfile, error)
	GetPublicProfessional(db *gorm.DB, uid string) (*dto.PublicProfessional, error)
	ListProfessionals(db *gorm.DB, req *dto.ProfessionalListRequest, page, pageSize int) (*dto.PaginatedResponse, error)
	GetPublicClient(db *gorm.DB, uid string) (*dto.PublicClient, error)
}

type ProfileServiceImpl struct {
	userRepo   repositories.UserRepository
	proRepo    repositories.ProfessionalProfileRepository
	clientRepo repositories.ClientProfileRepository
}

func NewProfileService(
	userRepo repositories.UserRepository,
	proRepo repositories.ProfessionalProfileRepository,
	clientRepo repositories.ClientProfileRepository,
) ProfileService {
	return &ProfileServiceImpl{
		userRepo:   userRepo,
		proRepo:    proRepo,
		clientRepo: clientRepo,
	}
}

// ==========================
// Professional profile
// ==========================

// GetOrCreateProfessional is the professional opt-in: the first call seeds the
// profile with defaults.
func (s *ProfileServiceImpl) GetOrCreateProfessional(db *gorm.DB, uid string) (*models.ProfessionalProfile, error) {
	profile, err := s.proRepo.FindByUID(db, uid)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, handleProfileError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.userRepo.FindByUID(tx, uid); err != nil {
		return nil, handleUserError(err)
	}
	profile = models.NewProfessionalProfile(uid)
	if err := s.proRepo.Create(tx, profile); err != nil {
		return nil, handleProfileError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return profile, nil
}

// GetPublicProfessional hides profiles that are incomplete or deleted.
func (s *ProfileServiceImpl) GetPublicProfessional(db *gorm.DB, uid string) (*dto.PublicProfessional, error) {
	profile, err := s.proRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if !profile.IsSetupCompleted {
		return nil, apperrors.NotFoundError("profile", "Profile not found")
	}
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	return toPublicProfessional(profile, user), nil
}

func (s *ProfileServiceImpl) ListProfessionals(db *gorm.DB, req *dto.ProfessionalListRequest, page, pageSize int) (*dto.PaginatedResponse, error) {
	filter := repositories.ProfessionalFilter{
		Query:    req.Query,
		Service:  req.Service,
		Remote:   req.Remote,
		City:     req.City,
		Page:     page,
		PageSize: pageSize,
	}
	profiles, total, err := s.proRepo.ListCompleted(db, filter)
	if err != nil {
		return nil, handleProfileError(err)
	}

	uids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		uids = append(uids, p.UID)
	}
	users, err := s.userRepo.FindByUIDs(db, uids)
	if err != nil {
		return nil, handleUserError(err)
	}

	cards := make([]dto.ProfessionalSummary, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		user, ok := users[p.UID]
		if !ok {
			continue
		}
		cards = append(cards, toProfessionalSummary(p, &user))
	}
	return dto.NewPaginatedResponse(cards, total, page, pageSize), nil
}

// ==========================
// Client profile
// ==========================

func (s *ProfileServiceImpl) GetPublicClient(db *gorm.DB, uid string) (*dto.PublicClient, error) {
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	profile, err := s.clientRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return &dto.PublicClient{
		UID:         uid,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		UsageStats:  profile.UsageStats,
		Ranking:     profile.Ranking,
		MemberSince: profile.CreatedAt,
	}, nil
}

// ==========================
// Mapping
// ==========================

func toPublicProfessional(p *models.ProfessionalProfile, user *models.User) *dto.PublicProfessional {
	return &dto.PublicProfessional{
		UID:          p.UID,
		DisplayName:  user.DisplayName,
		PhotoURL:     user.PhotoURL,
		Bio:          p.Bio,
		Services:     p.Services,
		Skills:       p.Skills,
		Equipment:    p.Equipment,
		Experience:   p.Experience,
		CoverImage:   p.CoverImage,
		Portfolio:    p.Portfolio,
		Availability: p.Availability,
		Ranking:      p.Ranking,
		UsageStats:   p.UsageStats,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProfessionalSummary(p *models.ProfessionalProfile, user *models.User) dto.ProfessionalSummary {
	card := dto.ProfessionalSummary{
		UID:          p.UID,
		DisplayName:  user.DisplayName,
		PhotoURL:     user.PhotoURL,
		Bio:          p.Bio,
		Services:     p.Services,
		Locations:    p.Availability.Locations,
		RemoteWork:   p.Availability.RemoteWork,
		ResponseTime: p.Availability.ResponseTime,
		Ranking:      p.Ranking,
	}
	if p.CoverImage != nil {
		card.CoverURL = p.CoverImage.URL
	}
	return card
}
