package services

import (
	"strings"
	"sync"
	"time"

	"coaching-platform-api/models"

	"gorm.io/gorm"
)

var (
	skillCacheMu sync.RWMutex
	skillCache   *skillCacheEntry
	skillTTL     = 5 * time.Minute
)

type skillCacheEntry struct {
	skills    []models.Skill
	byCode    map[string]models.Skill
	fetchedAt time.Time
}

// SkillService resolves and caches the skill catalog that submission skill
// tags are validated against.
type SkillService struct {
	db *gorm.DB
}

func NewSkillService(db *gorm.DB) *SkillService {
	return &SkillService{db: db}
}

func (s *SkillService) loadSkills(force bool) (*skillCacheEntry, error) {
	skillCacheMu.RLock()
	cached := skillCache
	skillCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < skillTTL {
		return cached, nil
	}

	skillCacheMu.Lock()
	defer skillCacheMu.Unlock()

	if skillCache != nil && !force && time.Since(skillCache.fetchedAt) < skillTTL {
		return skillCache, nil
	}

	var rows []models.Skill
	if err := s.db.Where("is_active = ? AND delete_at IS NULL", true).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	byCode := make(map[string]models.Skill, len(rows))
	for _, skill := range rows {
		if skill.Code == "" {
			continue
		}
		byCode[strings.TrimSpace(skill.Code)] = skill
	}

	entry := &skillCacheEntry{
		skills:    rows,
		byCode:    byCode,
		fetchedAt: time.Now(),
	}
	skillCache = entry
	return entry, nil
}

// ClearSkillCache invalidates the in-memory skill cache.
func ClearSkillCache() {
	skillCacheMu.Lock()
	defer skillCacheMu.Unlock()
	skillCache = nil
}

// GetSkills returns all active skills with caching support.
func (s *SkillService) GetSkills() ([]models.Skill, error) {
	entry, err := s.loadSkills(false)
	if err != nil {
		return nil, err
	}
	return entry.skills, nil
}

// IsKnownSkillTag reports whether code matches an active skill. A cache miss
// forces one refresh before giving up so newly added skills are usable
// immediately.
func (s *SkillService) IsKnownSkillTag(code string) (bool, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return false, nil
	}

	entry, err := s.loadSkills(false)
	if err != nil {
		return false, err
	}
	if _, ok := entry.byCode[trimmed]; ok {
		return true, nil
	}

	entry, err = s.loadSkills(true)
	if err != nil {
		return false, err
	}
	_, ok := entry.byCode[trimmed]
	return ok, nil
}
