package catalog

import (
	_ "embed"
	"fmt"

	"NicoQuitService/internal/models"
	"NicoQuitService/internal/pet"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// FoodItem еда, которую можно дать питомцу
type FoodItem struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	NameDA         string `yaml:"name_da"`
	HealthBoost    int    `yaml:"health_boost"`
	HungerBoost    int    `yaml:"hunger_boost"`
	HappinessBoost *int   `yaml:"happiness_boost"`
}

// OutfitItem наряд, открываемый длиной серии
type OutfitItem struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	NameDA       string `yaml:"name_da"`
	DaysRequired int    `yaml:"days_required"`
}

// AccessoryItem аксессуар питомца
type AccessoryItem struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	NameDA string `yaml:"name_da"`
}

// AchievementItem описание достижения
type AchievementItem struct {
	ID               string `yaml:"id"`
	Icon             string `yaml:"icon"`
	Name             string `yaml:"name"`
	NameDA           string `yaml:"name_da"`
	Description      string `yaml:"description"`
	DescriptionDA    string `yaml:"description_da"`
	RequirementType  string `yaml:"requirement_type"`
	RequirementValue int    `yaml:"requirement_value"`
}

// Catalog справочник предметов и достижений
type Catalog struct {
	Foods          []FoodItem        `yaml:"foods"`
	Outfits        []OutfitItem      `yaml:"outfits"`
	Accessories    []AccessoryItem   `yaml:"accessories"`
	CheckinRewards []string          `yaml:"checkin_rewards"`
	Achievements   []AchievementItem `yaml:"achievements"`
}

// Load загружает встроенный справочник
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse разбирает справочник из YAML и проверяет его согласованность
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	for _, f := range c.Foods {
		if f.ID == "" || seen["food:"+f.ID] {
			return fmt.Errorf("invalid or duplicate food id %q", f.ID)
		}
		seen["food:"+f.ID] = true
	}
	for _, o := range c.Outfits {
		if o.ID == "" || seen["outfit:"+o.ID] {
			return fmt.Errorf("invalid or duplicate outfit id %q", o.ID)
		}
		seen["outfit:"+o.ID] = true
	}
	for _, a := range c.Accessories {
		if a.ID == "" || seen["accessory:"+a.ID] {
			return fmt.Errorf("invalid or duplicate accessory id %q", a.ID)
		}
		seen["accessory:"+a.ID] = true
	}
	for _, id := range c.CheckinRewards {
		if !seen["food:"+id] {
			return fmt.Errorf("checkin reward %q is not a known food", id)
		}
	}
	for _, a := range c.Achievements {
		switch models.RequirementType(a.RequirementType) {
		case models.RequirementStreak, models.RequirementSavings, models.RequirementCheckins, models.RequirementPet:
		default:
			return fmt.Errorf("achievement %q has unknown requirement type %q", a.ID, a.RequirementType)
		}
		if a.ID == "" || a.RequirementValue < 1 {
			return fmt.Errorf("achievement %q is invalid", a.ID)
		}
	}
	return nil
}

// Food возвращает параметры еды для симуляции
func (c *Catalog) Food(id string) (pet.Food, bool) {
	for _, f := range c.Foods {
		if f.ID == id {
			return pet.Food{
				ID:             f.ID,
				HealthBoost:    f.HealthBoost,
				HungerBoost:    f.HungerBoost,
				HappinessBoost: f.HappinessBoost,
			}, true
		}
	}
	return pet.Food{}, false
}

// Has проверяет, существует ли предмет в справочнике
func (c *Catalog) Has(itemType models.ItemType, id string) bool {
	switch itemType {
	case models.ItemFood:
		_, ok := c.Food(id)
		return ok
	case models.ItemOutfit:
		for _, o := range c.Outfits {
			if o.ID == id {
				return true
			}
		}
	case models.ItemAccessory:
		for _, a := range c.Accessories {
			if a.ID == id {
				return true
			}
		}
	}
	return false
}

// OutfitsForStreak возвращает наряды, открытые серией указанной длины
func (c *Catalog) OutfitsForStreak(streakDays int) []OutfitItem {
	var result []OutfitItem
	for _, o := range c.Outfits {
		if streakDays >= o.DaysRequired {
			result = append(result, o)
		}
	}
	return result
}

// AchievementModels возвращает достижения в виде моделей для сохранения
func (c *Catalog) AchievementModels() []models.Achievement {
	result := make([]models.Achievement, 0, len(c.Achievements))
	for _, a := range c.Achievements {
		result = append(result, models.Achievement{
			ID:               a.ID,
			Name:             a.Name,
			NameDA:           a.NameDA,
			Description:      a.Description,
			DescriptionDA:    a.DescriptionDA,
			Icon:             a.Icon,
			RequirementType:  models.RequirementType(a.RequirementType),
			RequirementValue: a.RequirementValue,
		})
	}
	return result
}
