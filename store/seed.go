package store

import (
	"strings"

	"github.com/gokulpos/restaurant-pos/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	SettingNumTables      = "num_tables"
	SettingOwnerPassword  = "owner_password"
	SettingRestaurantName = "restaurant_name"
	SettingTaxRate        = "tax_rate"
)

var defaultMenu = []models.MenuItem{
	{Category: "Appetizers", Name: "Samosa", Price: 8},
	{Category: "Appetizers", Name: "French Fries", Price: 50},
	{Category: "Appetizers", Name: "Chilli Potato", Price: 60},
	{Category: "Appetizers", Name: "Honey Chilli Potato", Price: 70},
	{Category: "Breads", Name: "Idly", Price: 50},
	{Category: "Breads", Name: "Veg Momos", Price: 50},
	{Category: "Breads", Name: "Veg Fried Momos", Price: 70},
	{Category: "Main Course", Name: "Paneer Momos", Price: 80},
	{Category: "Main Course", Name: "Paneer Fried Momos", Price: 100},
	{Category: "Main Course", Name: "Chilli Paneer (Half)", Price: 80},
	{Category: "Main Course", Name: "Chilli Paneer (Full)", Price: 150},
	{Category: "Main Course", Name: "Gokul Thali", Price: 100},
	{Category: "Main Course", Name: "Gokul Special Thali", Price: 140},
	{Category: "Main Course", Name: "Chowmein (Half)", Price: 50},
	{Category: "Main Course", Name: "Chowmein (Full)", Price: 90},
	{Category: "Main Course", Name: "Biryani (Half)", Price: 120},
	{Category: "Main Course", Name: "Biryani (Full)", Price: 180},
}

func defaultSettings() map[string]string {
	return map[string]string{
		SettingNumTables:      "4",
		SettingOwnerPassword:  "gokul2024",
		SettingRestaurantName: "Gokul Restaurant",
		SettingTaxRate:        "0",
	}
}

// hashSettingValue hashes the owner password before it is stored. Every
// other setting is stored verbatim.
func hashSettingValue(key, value string) string {
	if key != SettingOwnerPassword || strings.HasPrefix(value, "$2") {
		return value
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(value), bcrypt.DefaultCost)
	if err != nil {
		return value
	}
	return string(hashed)
}

// seedDefaults installs missing default settings and, for the local
// backend, the starter menu. Existing rows are never touched.
func seedDefaults(db *gorm.DB, includeMenu bool) error {
	for key, value := range defaultSettings() {
		var count int64
		if err := db.Model(&models.Setting{}).Where("`key` = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		row := models.Setting{Key: key, Value: hashSettingValue(key, value)}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}

	if !includeMenu {
		return nil
	}
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	items := make([]models.MenuItem, len(defaultMenu))
	copy(items, defaultMenu)
	return db.Create(&items).Error
}
