package repositories

import (
	"errors"
	"strings"
	"time"

	"grapher_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists for this user")
	ErrVersionConflict      = errors.New("profile version conflict")
)

type ProfessionalProfileRepository interface {
	FindByUID(db *gorm.DB, uid string) (*models.ProfessionalProfile, error)
	FindByUIDForUpdate(db *gorm.DB, uid string) (*models.ProfessionalProfile, error)
	Create(db *gorm.DB, profile *models.ProfessionalProfile) error
	Save(db *gorm.DB, profile *models.ProfessionalProfile) error
	UpdateFields(db *gorm.DB, uid string, expectedVersion int64, patch models.ProfessionalPatch) (int64, error)
	MarkDeleted(db *gorm.DB, uid string, at time.Time) error
	ListCompleted(db *gorm.DB, filter ProfessionalFilter) ([]models.ProfessionalProfile, int64, error)
}

type ProfessionalProfileRepositoryImpl struct{}

// ProfessionalFilter drives the public browse page. Filtering only, no ranking.
type ProfessionalFilter struct {
	Query    string `form:"query"`
	Service  string `form:"service"`
	Remote   *bool  `form:"remote"`
	City     string `form:"city"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

func NewProfessionalProfileRepository() ProfessionalProfileRepository {
	return &ProfessionalProfileRepositoryImpl{}
}

func (r *ProfessionalProfileRepositoryImpl) FindByUID(db *gorm.DB, uid string) (*models.ProfessionalProfile, error) {
	var profile models.ProfessionalProfile
	err := db.Where("uid = ? AND is_deleted = ?", uid, false).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// FindByUIDForUpdate takes a row lock; call it inside a transaction.
func (r *ProfessionalProfileRepositoryImpl) FindByUIDForUpdate(db *gorm.DB, uid string) (*models.ProfessionalProfile, error) {
	return r.FindByUID(db.Clauses(clause.Locking{Strength: "UPDATE"}), uid)
}

func (r *ProfessionalProfileRepositoryImpl) Create(db *gorm.DB, profile *models.ProfessionalProfile) error {
	var count int64
	if err := db.Model(&models.ProfessionalProfile{}).Where("uid = ?", profile.UID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrProfileAlreadyExists
	}
	if profile.Version == 0 {
		profile.Version = 1
	}
	return db.Create(profile).Error
}

// Save overwrites the whole record and bumps the version.
func (r *ProfessionalProfileRepositoryImpl) Save(db *gorm.DB, profile *models.ProfessionalProfile) error {
	var current struct{ Version int64 }
	err := db.Model(&models.ProfessionalProfile{}).Select("version").Where("uid = ?", profile.UID).Take(&current).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		current.Version = 0
	case err != nil:
		return err
	}
	profile.Version = current.Version + 1
	return db.Save(profile).Error
}

// UpdateFields writes the patch and bumps the version in one statement.
// expectedVersion 0 skips the version check and is reserved for server-side paths.
func (r *ProfessionalProfileRepositoryImpl) UpdateFields(db *gorm.DB, uid string, expectedVersion int64, patch models.ProfessionalPatch) (int64, error) {
	cols := patch.Columns()
	cols["version"] = gorm.Expr("version + 1")

	q := db.Model(&models.ProfessionalProfile{}).Where("uid = ? AND is_deleted = ?", uid, false)
	if expectedVersion > 0 {
		q = q.Where("version = ?", expectedVersion)
	}
	result := q.Updates(cols)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.ProfessionalProfile{}).
			Where("uid = ? AND is_deleted = ?", uid, false).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrProfileNotFound
		}
		return 0, ErrVersionConflict
	}

	if expectedVersion > 0 {
		return expectedVersion + 1, nil
	}
	var current struct{ Version int64 }
	if err := db.Model(&models.ProfessionalProfile{}).Select("version").Where("uid = ?", uid).Take(&current).Error; err != nil {
		return 0, err
	}
	return current.Version, nil
}

// MarkDeleted drops media references and locations but keeps external links.
func (r *ProfessionalProfileRepositoryImpl) MarkDeleted(db *gorm.DB, uid string, at time.Time) error {
	profile, err := r.FindByUID(db, uid)
	if err != nil {
		return err
	}

	portfolio := models.Portfolio{Files: []models.PortfolioFile{}, ExternalLinks: profile.Portfolio.ExternalLinks}
	availability := profile.Availability
	availability.Locations = []models.Location{}
	availability.RemoteWork = false

	return db.Model(&models.ProfessionalProfile{}).Where("uid = ?", uid).Updates(map[string]any{
		"cover_image":  nil,
		"portfolio":    portfolio,
		"availability": availability,
		"is_deleted":   true,
		"deleted_at":   at,
		"version":      gorm.Expr("version + 1"),
	}).Error
}

// ListCompleted returns one page of completed, non-deleted profiles.
// Service and remote filters run in SQL. City and free-text matching need
// case-insensitive search inside JSON, so when either is set the SQL result
// is filtered and paged in Go.
func (r *ProfessionalProfileRepositoryImpl) ListCompleted(db *gorm.DB, filter ProfessionalFilter) ([]models.ProfessionalProfile, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	q := db.Model(&models.ProfessionalProfile{}).
		Where("is_setup_completed = ? AND is_deleted = ?", true, false)
	if f := strings.TrimSpace(filter.Service); f != "" {
		service, ok := models.ParseService(f)
		if !ok {
			return []models.ProfessionalProfile{}, 0, nil
		}
		q = q.Where(datatypes.JSONArrayQuery("services").Contains(string(service)))
	}
	if filter.Remote != nil {
		q = q.Where(datatypes.JSONQuery("availability").Equals(*filter.Remote, "remoteWork"))
	}
	q = q.Session(&gorm.Session{})

	if !filter.needsScan() {
		var total int64
		if err := q.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		start, _ := pageBounds(page, pageSize, int(min(total, int64(maxInt))))
		if int64(start) >= total {
			return []models.ProfessionalProfile{}, total, nil
		}
		var profiles []models.ProfessionalProfile
		if err := q.Order("updated_at DESC").Offset(start).Limit(pageSize).Find(&profiles).Error; err != nil {
			return nil, 0, err
		}
		return profiles, total, nil
	}

	var candidates []models.ProfessionalProfile
	if err := q.Order("updated_at DESC").Find(&candidates).Error; err != nil {
		return nil, 0, err
	}
	matched := make([]models.ProfessionalProfile, 0, len(candidates))
	for _, p := range candidates {
		if filter.matches(&p) {
			matched = append(matched, p)
		}
	}
	start, end := pageBounds(page, pageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

const (
	defaultPageSize = 20
	maxInt          = int(^uint(0) >> 1)
)

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// pageBounds returns the [start, end) slice of n items for a 1-based page.
// Pages past the end yield an empty range without overflowing.
func pageBounds(page, pageSize, n int) (int, int) {
	if n <= 0 || page-1 >= (n+pageSize-1)/pageSize {
		return n, n
	}
	start := (page - 1) * pageSize
	return start, min(start+pageSize, n)
}

func (f ProfessionalFilter) needsScan() bool {
	return strings.TrimSpace(f.City) != "" || strings.TrimSpace(f.Query) != ""
}

func (f ProfessionalFilter) matches(p *models.ProfessionalProfile) bool {
	if city := strings.TrimSpace(f.City); city != "" {
		found := false
		for _, loc := range p.Availability.Locations {
			if strings.EqualFold(loc.City, city) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(p.Bio), q) {
			return true
		}
		for _, skill := range p.Skills {
			if strings.Contains(strings.ToLower(skill), q) {
				return true
			}
		}
		return false
	}
	return true
}
